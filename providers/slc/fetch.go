package slc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
	"cosmos-pkn/services"
)

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// Fetcher implementiert das Provider-Interface für die SLC-Tabelle
// (Solute-Carrier-Transporter mit kuratierten Substraten und
// Lokalisierungen). Die Tabelle ist human-spezifisch.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen SLC Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "slc"
}

// Scored meldet, dass die SLC-Tabelle keinen Evidenz-Score trägt.
func (f *Fetcher) Scored() bool {
	return false
}

const humanTaxID = 9606

// Interactions lädt die SLC-Tabelle und erzeugt pro (Transporter, Substrat,
// Kompartiment) einen Transport-Zyklus. Für andere Organismen als Mensch
// wird eine leere Sequenz geliefert.
func (f *Fetcher) Interactions(ctx context.Context, opts providers.Options) (models.RecordIterator, error) {
	log := f.Logger.With(zap.String("source", f.Name()))
	if opts.Organism != 0 && opts.Organism != humanTaxID {
		log.Warn("SLC-Tabelle ist human-spezifisch, überspringe Quelle",
			zap.Int("ncbi_tax_id", opts.Organism))
		return models.NewSliceIterator(nil), nil
	}
	log.Info("Starte SLC-Abruf.")

	tableURL := fmt.Sprintf("%s/slc_table.json", f.Config.SLCBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tableURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slc table: unexpected status %s", resp.Status)
	}

	var entries []slcEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("slc table: %w", err)
	}

	resolver := services.SLCLocations()
	var records []models.Interaction
	dropped := 0

	for _, entry := range entries {
		if !uniprotRe.MatchString(entry.Accession) {
			dropped++
			continue
		}
		other := nonCytosolic(resolver.ResolveAll(entry.Localization))
		if len(other) == 0 {
			dropped++
			continue
		}

		transporter := models.Entity{
			ID:        entry.Accession,
			Type:      models.EntityProtein,
			NCBITaxID: humanTaxID,
		}
		for _, sub := range entry.Substrates {
			if !chebiRe.MatchString(sub.ChebiID) {
				log.Debug("Verwerfe Substrat mit ungültiger ChEBI-ID",
					zap.String("slc", entry.Name), zap.String("chebi", sub.ChebiID))
				continue
			}
			met := models.Entity{ID: sub.ChebiID, Type: models.EntityMetabolite}
			for _, comp := range other {
				reactionID := fmt.Sprintf("SLC:%s:%s:%s", entry.Accession, sub.ChebiID, comp)
				records = append(records, providers.TransporterCycle(
					met, transporter, comp, reactionID, "SLC",
					models.KindTransport, true,
				)...)
			}
		}
		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			records = records[:opts.MaxRecords]
			break
		}
	}

	log.Info("SLC-Abruf abgeschlossen",
		zap.Int("records", len(records)),
		zap.Int("dropped_entries", dropped),
	)
	return models.NewSliceIterator(records), nil
}

// nonCytosolic behält die Kompartimente, aus denen transportiert wird.
func nonCytosolic(codes []string) []string {
	var other []string
	for _, c := range codes {
		if c != "c" {
			other = append(other, c)
		}
	}
	return other
}
