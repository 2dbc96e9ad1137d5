package models

import (
	"fmt"
	"strings"
)

// EntityType klassifiziert einen Interaktions-Endpunkt.
type EntityType string

const (
	EntityMetabolite   EntityType = "metabolite"
	EntityProtein      EntityType = "protein"
	EntityPseudoEnzyme EntityType = "pseudo_enzyme"
)

// Mode ist der regulatorische Modus einer Interaktion. Nur Activation und
// Inhibition tragen kausale Information; alle übrigen Werte sind
// quellenspezifisch und rein informativ.
type Mode string

const (
	ModeUnknown    Mode = "unknown"
	ModeActivation Mode = "activation"
	ModeInhibition Mode = "inhibition"
	ModeBinding    Mode = "binding"
	ModePredBind   Mode = "pred_bind"
	ModeExpression Mode = "expression"
	ModeReaction   Mode = "reaction"
	ModeCatalysis  Mode = "catalysis"
	ModeConnector  Mode = "connector"
)

// Kind ist die biologische Kategorie einer Kante, genutzt für Subset-Builds.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindReceptor    Kind = "ligand_receptor"
	KindAllosteric  Kind = "allosteric_regulation"
	KindCatalysis   Kind = "catalysis"
	KindOther       Kind = "other"
	KindConnector   Kind = "connector"
)

// Entity ist ein Endpunkt einer Interaktion.
type Entity struct {
	// ID ist der quellennative Identifier (ChEBI, ENSG/ENSP, UniProt,
	// PubChem CID, MetAtlas ...). Niemals leer.
	ID string `json:"id"`

	Type EntityType `json:"type"`

	// Stereospecific wird mitgeführt, fließt aber derzeit nicht in die
	// Knotenidentität ein.
	Stereospecific bool `json:"stereospecific,omitempty"`

	// NCBITaxID ist für Proteine erforderlich, sonst optional (0 = unbekannt).
	NCBITaxID int `json:"ncbi_tax_id,omitempty"`
}

// Attrs are the known source-specific annotations, with a documented
// extension point for anything a new source may bring along.
type Attrs struct {
	TransportFrom   string `json:"transport_from,omitempty"`
	TransportTo     string `json:"transport_to,omitempty"`
	CosmosFormatted bool   `json:"cosmos_formatted,omitempty"`
	Orphan          bool   `json:"orphan,omitempty"`
	EnzymeComplex   bool   `json:"enzyme_complex,omitempty"`

	// SourceMode preserves the original mode string of the upstream
	// database when the record's Mode was canonicalized.
	SourceMode string `json:"source_mode,omitempty"`

	// Extra ist der Erweiterungspunkt für neue Quellen. Schlüssel sollten
	// mit dem Quellennamen geprefixt sein (z.B. "stitch_evidence").
	Extra map[string]string `json:"extra,omitempty"`
}

// Interaction ist ein Kanten-Kandidat im PKN. Records werden von den
// Providern erzeugt, durch Filter und Builder unverändert gereicht und
// genau einmal vom Formatter mutiert.
type Interaction struct {
	Source Entity `json:"source"`
	Target Entity `json:"target"`

	// ReactionID gruppiert Kanten derselben biochemischen Reaktion.
	// Leer für unabhängige Evidenz-Kanten (compound-protein Quellen).
	ReactionID string `json:"reaction_id,omitempty"`

	Mode Mode `json:"mode"`
	Kind Kind `json:"kind"`

	// Mor ist der mode of regulation: 1 Aktivierung, -1 Inhibition, 0 sonst.
	Mor int `json:"mor"`

	// Score ist die quellendefinierte Konfidenz (0 wenn die Quelle keine hat).
	Score int `json:"score,omitempty"`

	Directed bool `json:"directed"`

	// Reverse ist nur wahr für explizit vom Adapter erzeugte Rückrichtungen
	// reversibler Reaktionen. Der Builder synthetisiert niemals Reverse-Kanten.
	Reverse bool `json:"reverse,omitempty"`

	// Locations sind 0-2 Kompartiment-Codes (z.B. "e", "c").
	Locations []string `json:"locations,omitempty"`

	Attrs Attrs `json:"attrs"`

	// Resource ist der Name der Ursprungsdatenbank (z.B. "STITCH", "GEM:Human-GEM").
	Resource string `json:"resource"`
}

// MorFor liefert das feste mor-Mapping: activation → 1, inhibition → -1,
// alles andere → 0. Das Mapping ist quellenunabhängig.
func MorFor(mode Mode) int {
	switch mode {
	case ModeActivation:
		return 1
	case ModeInhibition:
		return -1
	default:
		return 0
	}
}

// EdgeKey ist der globale Eindeutigkeitsschlüssel einer Kante.
type EdgeKey struct {
	Source     string
	Target     string
	ReactionID string
	Reverse    bool
}

// Key liefert den Eindeutigkeitsschlüssel des Records.
func (r *Interaction) Key() EdgeKey {
	return EdgeKey{
		Source:     r.Source.ID,
		Target:     r.Target.ID,
		ReactionID: r.ReactionID,
		Reverse:    r.Reverse,
	}
}

func (k EdgeKey) String() string {
	rev := ""
	if k.Reverse {
		rev = " (reverse)"
	}
	return fmt.Sprintf("%s -> %s [reaction=%s]%s", k.Source, k.Target, k.ReactionID, rev)
}

// DuplicateEdgeError signalisiert einen Datenintegritäts-Defekt: zwei Records
// mit identischem EdgeKey. Wird niemals still dedupliziert.
type DuplicateEdgeError struct {
	Key      EdgeKey
	Resource string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("duplicate edge %s from resource %q", e.Key, e.Resource)
}

// LocationsString rendert die Kompartiment-Codes für den Tabellen-Export.
func (r *Interaction) LocationsString() string {
	return strings.Join(r.Locations, ";")
}
