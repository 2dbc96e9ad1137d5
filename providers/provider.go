package providers

import (
	"context"

	"cosmos-pkn/models"
)

// Options parametrisieren einen Abruf. Sie werden vom BuildService aus der
// globalen Konfiguration und den SourceSettings zusammengesetzt.
type Options struct {
	// Organism ist die NCBI-Taxonomie-ID (Default 9606).
	Organism int

	// MaxRecords begrenzt die Anzahl gelieferter Records (0 = unbegrenzt).
	MaxRecords int

	// IncludeReverse steuert, ob Adapter für reversible Reaktionen explizite
	// Rückrichtungs-Records erzeugen. Gilt nur für Quellen mit
	// Reaktionssemantik (GEM); alle anderen ignorieren das Flag.
	IncludeReverse bool

	// ScoreThreshold und AllowedModes werden nur von Quellen mit
	// Evidenz-Score angewendet (siehe Provider.Scored).
	ScoreThreshold int
	AllowedModes   []models.Mode
}

// Provider ist das Interface, das jeder Quellen-Adapter (z.B. STITCH, TCDB)
// implementieren muss. Interactions liefert einen endlichen Pull-Iterator;
// der Iterator ist nicht mid-stream restartbar, ein erneuter Aufruf von
// Interactions startet den Abruf neu.
type Provider interface {
	// Name gibt den eindeutigen Namen der Quelle zurück (z.B. "stitch").
	Name() string

	// Scored meldet, ob die Quelle einen Evidenz-Score trägt und damit dem
	// Score-/Modus-Filter unterliegt.
	Scored() bool

	// Interactions startet den Abruf und liefert normalisierte Records.
	// Fetch-Fehler sind für diese Quelle fatal und brechen den Build ab.
	Interactions(ctx context.Context, opts Options) (models.RecordIterator, error)
}
