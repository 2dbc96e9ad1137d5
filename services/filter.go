package services

import (
	"errors"
	"fmt"

	"cosmos-pkn/models"
)

// Filter wendet Score- und Modus-Zulassungsregeln auf Records aus Quellen
// mit Evidenz-Score an. Zustandslos pro Record; Verschärfen von Threshold
// oder Modus-Menge verkleinert die zugelassene Menge monoton.
type Filter struct {
	// ScoreThreshold ist der minimale Evidenz-Score (Default 700).
	ScoreThreshold int

	// AllowedModes sind die zugelassenen regulatorischen Modi
	// (Default activation und inhibition).
	AllowedModes map[models.Mode]bool

	// Organism wird defensiv erneut geprüft, obwohl die Provider bereits
	// nach Organismus filtern. 0 deaktiviert die Prüfung.
	Organism int
}

// NewFilter erstellt einen Filter mit den gegebenen Parametern.
func NewFilter(scoreThreshold int, allowedModes []models.Mode, organism int) *Filter {
	modes := make(map[models.Mode]bool, len(allowedModes))
	for _, m := range allowedModes {
		modes[m] = true
	}
	return &Filter{
		ScoreThreshold: scoreThreshold,
		AllowedModes:   modes,
		Organism:       organism,
	}
}

// Validate prüft die Filter-Parameter vor dem Lauf. Fehler hier sind
// Konfigurationsfehler und brechen den Build ab, bevor Daten fließen.
func (f *Filter) Validate() error {
	if f.ScoreThreshold <= 0 {
		return fmt.Errorf("score threshold must be positive, got %d", f.ScoreThreshold)
	}
	if len(f.AllowedModes) == 0 {
		return errors.New("allowed mode set must not be empty")
	}
	return nil
}

// Admit entscheidet, ob ein Record zugelassen wird: Score >= Threshold UND
// Modus in der zugelassenen Menge UND (defensiv) passender Organismus.
func (f *Filter) Admit(rec *models.Interaction) bool {
	if rec.Score < f.ScoreThreshold {
		return false
	}
	if !f.AllowedModes[rec.Mode] {
		return false
	}
	if f.Organism != 0 {
		if rec.Source.NCBITaxID != 0 && rec.Source.NCBITaxID != f.Organism {
			return false
		}
		if rec.Target.NCBITaxID != 0 && rec.Target.NCBITaxID != f.Organism {
			return false
		}
	}
	return true
}

// FilteredIterator wendet einen Filter lazy auf einen Upstream-Iterator an.
type FilteredIterator struct {
	upstream models.RecordIterator
	filter   *Filter
	dropped  int
}

// NewFilteredIterator umhüllt upstream mit dem Filter. Verworfene Records
// werden gezählt, aber nicht gepuffert.
func NewFilteredIterator(upstream models.RecordIterator, filter *Filter) *FilteredIterator {
	return &FilteredIterator{upstream: upstream, filter: filter}
}

func (it *FilteredIterator) Next() bool {
	for it.upstream.Next() {
		if it.filter.Admit(it.upstream.Record()) {
			return true
		}
		it.dropped++
		recordsDropped.WithLabelValues("filter").Inc()
	}
	return false
}

func (it *FilteredIterator) Record() *models.Interaction {
	return it.upstream.Record()
}

func (it *FilteredIterator) Err() error {
	return it.upstream.Err()
}

// Dropped liefert die Anzahl der bisher verworfenen Records.
func (it *FilteredIterator) Dropped() int {
	return it.dropped
}
