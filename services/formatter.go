package services

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"cosmos-pkn/models"
)

// Knoten-Präfixe im COSMOS-Format.
const (
	GenePrefix  = "Gene"
	MetabPrefix = "Metab__"

	// ReverseSuffix markiert das Gen einer expliziten Rückrichtungs-Kante.
	ReverseSuffix = "_rev"

	// ConnectorResource ist der Resource-Name der angehängten Connector-Kanten.
	ConnectorResource = "COSMOS_formatter"
)

// FormatResult ist das Ergebnis eines Formatter-Laufs. Die Index-Tabelle
// gehört zur Invokation und wird explizit zurückgegeben, damit wiederholte
// Builds im selben Prozess unabhängig und reproduzierbar bleiben.
type FormatResult struct {
	// Records sind die formatierten Kanten inklusive Connector-Kanten.
	Records []models.Interaction

	// ReactionIndex ist die Zuordnung reaction_id → N in der Reihenfolge
	// des ersten Auftretens (beginnend bei 1).
	ReactionIndex map[string]int

	// ConnectorCount ist die Anzahl der angehängten Connector-Kanten.
	ConnectorCount int
}

// Formatter schreibt Knoten-Identifier in die endgültige, von nachgelagerten
// Kausalmodellierungs-Tools erwartete Form um, genau einmal pro Record:
//
//   - Metabolit: "Metab__<id>_<comp>", Kompartiment aus locations[0]
//     (Source-Rolle) bzw. locations[last] (Target-Rolle); ohne Locations
//     bleibt es beim nackten "Metab__<id>".
//   - Gen mit Reaktionskontext: "Gene<N>__<id>", N fortlaufend pro
//     reaction_id ab 1; Reverse-Kanten hängen "_rev" an und verwenden
//     dasselbe N wie ihre Vorwärts-Kante.
//   - Gen ohne Reaktionskontext (unabhängige Evidenz-Kanten der
//     compound-protein Quellen): flaches "Gene__<id>".
//
// Bereits formatierte Records (attrs.cosmos_formatted) werden unverändert
// durchgereicht. Nach dem Umschreiben werden Connector-Kanten angehängt
// (nackte ID → formatierte ID) und die Eindeutigkeits-Invariante auf den
// formatierten Identifiern erneut geprüft; eine Kollision ist fatal.
type Formatter struct {
	logger *zap.Logger
}

// NewFormatter erstellt einen Formatter.
func NewFormatter(logger *zap.Logger) *Formatter {
	return &Formatter{logger: logger}
}

// Format formatiert die Record-Sequenz. Die Eingabe bleibt unverändert;
// das Ergebnis ist eine neue Sequenz in Eingabe-Reihenfolge, gefolgt von
// den Connector-Kanten in sortierter Reihenfolge.
func (f *Formatter) Format(records []models.Interaction) (*FormatResult, error) {
	reactionIndex := make(map[string]int)
	connectors := make(map[[2]string]bool)
	out := make([]models.Interaction, 0, len(records))

	nFormatted := 0
	for i := range records {
		rec := records[i]

		if rec.Attrs.CosmosFormatted {
			out = append(out, rec)
			continue
		}

		rec.Source.ID = f.formatNode(&rec, &rec.Source, true, reactionIndex, connectors)
		rec.Target.ID = f.formatNode(&rec, &rec.Target, false, reactionIndex, connectors)
		rec.Attrs.CosmosFormatted = true
		out = append(out, rec)
		nFormatted++
	}

	connectorRows := connectorEdges(connectors)
	out = append(out, connectorRows...)

	if err := validateUnique(out); err != nil {
		return nil, err
	}

	f.logger.Info("COSMOS-Formatierung abgeschlossen",
		zap.Int("formatted", nFormatted),
		zap.Int("passthrough", len(records)-nFormatted),
		zap.Int("connectors", len(connectorRows)),
		zap.Int("reactions", len(reactionIndex)),
	)

	return &FormatResult{
		Records:        out,
		ReactionIndex:  reactionIndex,
		ConnectorCount: len(connectorRows),
	}, nil
}

// formatNode formatiert einen Endpunkt gemäß seinem Entity-Typ und merkt
// das (nackte ID, formatierte ID)-Paar für die Connector-Kanten vor.
func (f *Formatter) formatNode(
	rec *models.Interaction,
	entity *models.Entity,
	isSource bool,
	reactionIndex map[string]int,
	connectors map[[2]string]bool,
) string {
	bare := entity.ID
	var formatted string

	switch entity.Type {
	case models.EntityMetabolite:
		formatted = metabNode(bare, metabCompartment(rec, isSource))
	default:
		// Proteine und Orphan-Pseudo-Enzyme teilen das Gene-Schema.
		formatted = geneNode(bare, rec.ReactionID, rec.Reverse, reactionIndex)
	}

	connectors[[2]string{bare, formatted}] = true
	return formatted
}

// metabCompartment liefert den Kompartiment-Code für die jeweilige Rolle:
// locations[0] für die Source-Seite, locations[last] für die Target-Seite.
// Ohne Locations bleibt der Knoten ohne Kompartiment-Suffix.
func metabCompartment(rec *models.Interaction, isSource bool) string {
	if len(rec.Locations) == 0 {
		return ""
	}
	if isSource {
		return rec.Locations[0]
	}
	return rec.Locations[len(rec.Locations)-1]
}

// metabNode formatiert einen Metabolit-Knoten.
func metabNode(id, compartment string) string {
	if compartment == "" {
		return MetabPrefix + id
	}
	return fmt.Sprintf("%s%s_%s", MetabPrefix, id, compartment)
}

// geneNode formatiert einen Gen-Knoten. Records mit Reaktionskontext
// erhalten einen fortlaufenden, pro reaction_id stabilen Index, damit
// dasselbe Gen in unabhängigen Reaktionen als eigener Knoten erscheint
// (vermeidet falsche Self-Loops). Evidenz-Kanten ohne reaction_id
// degradieren zum flachen "Gene__"-Präfix.
func geneNode(id, reactionID string, reverse bool, reactionIndex map[string]int) string {
	var node string
	if reactionID == "" {
		node = GenePrefix + "__" + id
	} else {
		n, ok := reactionIndex[reactionID]
		if !ok {
			n = len(reactionIndex) + 1
			reactionIndex[reactionID] = n
		}
		node = fmt.Sprintf("%s%d__%s", GenePrefix, n, id)
	}
	if reverse {
		node += ReverseSuffix
	}
	return node
}

// connectorEdges baut die Connector-Kanten (nackte ID → formatierte ID) in
// deterministischer Reihenfolge. Sie erlauben nachgelagerten Tools, Messwerte
// über nackte IDs (ENSG, ChEBI) an die formatierten Knoten anzubinden.
func connectorEdges(connectors map[[2]string]bool) []models.Interaction {
	pairs := make([][2]string, 0, len(connectors))
	for p := range connectors {
		if p[0] == p[1] {
			continue
		}
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	rows := make([]models.Interaction, 0, len(pairs))
	for _, p := range pairs {
		typ := models.EntityProtein
		if len(p[1]) >= len(MetabPrefix) && p[1][:len(MetabPrefix)] == MetabPrefix {
			typ = models.EntityMetabolite
		}
		rows = append(rows, models.Interaction{
			Source:   models.Entity{ID: p[0], Type: typ},
			Target:   models.Entity{ID: p[1], Type: typ},
			Mode:     models.ModeConnector,
			Kind:     models.KindConnector,
			Mor:      1,
			Directed: true,
			Attrs:    models.Attrs{CosmosFormatted: true},
			Resource: ConnectorResource,
		})
	}
	return rows
}

// validateUnique prüft die Eindeutigkeits-Invariante auf den formatierten
// Identifiern. Eine Kollision hier ist ein Index-Zuweisungs-Defekt und
// bricht den Build ab.
func validateUnique(records []models.Interaction) error {
	seen := make(map[models.EdgeKey]string, len(records))
	for i := range records {
		key := records[i].Key()
		if prev, dup := seen[key]; dup {
			return &models.DuplicateEdgeError{
				Key: key,
				Resource: fmt.Sprintf(
					"%s (first seen from %s)", records[i].Resource, prev,
				),
			}
		}
		seen[key] = records[i].Resource
	}
	return nil
}
