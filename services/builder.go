package services

import (
	"fmt"

	"go.uber.org/zap"

	"cosmos-pkn/models"
)

// SourceStream ist eine benannte, bereits normalisierte und gefilterte
// Record-Sequenz einer Quelle.
type SourceStream struct {
	Name string
	Iter models.RecordIterator
}

// Builder führt die Record-Sequenzen aller aktiven Quellen zu einer globalen
// Sequenz zusammen und erzwingt dabei die Eindeutigkeits- und
// Richtungs-Invarianten:
//
//   - (source, target, reaction_id, reverse) ist global eindeutig; eine
//     Kollision ist ein fataler Datenintegritäts-Fehler, niemals stille
//     Deduplizierung.
//   - Reverse-Kanten werden niemals synthetisiert, nur durchgereicht.
//   - Die Ausgabereihenfolge ist deterministisch: Quellen-Reihenfolge des
//     Aufrufers, innerhalb einer Quelle die Reihenfolge des Iterators.
//
// Die seen-Map ist der einzige veränderliche Zustand und nicht für
// nebenläufige Schreiber ausgelegt; Merge läuft single-threaded.
type Builder struct {
	logger *zap.Logger

	// IncludeOrphans steuert, ob Orphan-Pseudo-Enzym-Records durchgereicht
	// werden (Default true).
	IncludeOrphans bool
}

// NewBuilder erstellt einen Builder.
func NewBuilder(logger *zap.Logger, includeOrphans bool) *Builder {
	return &Builder{logger: logger, IncludeOrphans: includeOrphans}
}

// Merge konsumiert die Quellen-Streams in der gegebenen Reihenfolge und
// liefert die zusammengeführte Record-Sequenz. Bei einer Schlüssel-Kollision
// oder einem Stream-Fehler wird abgebrochen.
func (b *Builder) Merge(streams []SourceStream) ([]models.Interaction, error) {
	seen := make(map[models.EdgeKey]string)
	var merged []models.Interaction

	for _, stream := range streams {
		log := b.logger.With(zap.String("source", stream.Name))
		count := 0

		for stream.Iter.Next() {
			rec := stream.Iter.Record()

			if !b.IncludeOrphans && b.isOrphan(rec) {
				recordsDropped.WithLabelValues("orphan").Inc()
				continue
			}

			key := rec.Key()
			if prev, dup := seen[key]; dup {
				return nil, &models.DuplicateEdgeError{
					Key: key,
					Resource: fmt.Sprintf(
						"%s (first seen from %s)", rec.Resource, prev,
					),
				}
			}
			seen[key] = rec.Resource

			merged = append(merged, *rec)
			edgesEmitted.WithLabelValues(rec.Resource).Inc()
			count++
		}

		if err := stream.Iter.Err(); err != nil {
			// Fetch-Fehler sind für die Quelle fatal: kein stiller
			// Teilgraph ohne Kennzeichnung.
			return nil, fmt.Errorf("source %s: %w", stream.Name, err)
		}

		log.Info("Quelle zusammengeführt", zap.Int("edges", count))
	}

	b.logger.Info("Merge abgeschlossen",
		zap.Int("sources", len(streams)),
		zap.Int("edges", len(merged)),
	)
	return merged, nil
}

// isOrphan erkennt Orphan-Pseudo-Enzym-Records (Reaktions-Platzhalter ohne
// charakterisiertes Gen).
func (b *Builder) isOrphan(rec *models.Interaction) bool {
	return rec.Attrs.Orphan ||
		rec.Source.Type == models.EntityPseudoEnzyme ||
		rec.Target.Type == models.EntityPseudoEnzyme
}
