package services

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cosmos-pkn/models"
)

// EntityTranslator mappt quellennative Identifier auf die einheitlichen
// Ziel-Namensräume: Metaboliten → ChEBI, Proteine → Ensembl-Gen (ENSG).
// ok == false bedeutet, dass der Identifier nicht übersetzbar ist; der
// Aufrufer verwirft den Record.
type EntityTranslator interface {
	Metabolite(id string) (string, bool)
	Protein(id string) (string, bool)
}

// TableTranslator übersetzt über statische Mapping-Tabellen. Identifier,
// die bereits im Ziel-Namensraum liegen (CHEBI:- bzw. ENSG-Präfix),
// passieren unverändert.
type TableTranslator struct {
	Metabolites map[string]string
	Proteins    map[string]string
}

func (t *TableTranslator) Metabolite(id string) (string, bool) {
	if strings.HasPrefix(id, "CHEBI:") {
		return id, true
	}
	mapped, ok := t.Metabolites[id]
	return mapped, ok
}

func (t *TableTranslator) Protein(id string) (string, bool) {
	if strings.HasPrefix(id, "ENSG") {
		return id, true
	}
	mapped, ok := t.Proteins[id]
	return mapped, ok
}

// translationFile ist das YAML-Schema der Übersetzungstabellen.
type translationFile struct {
	Metabolites map[string]string `yaml:"metabolites"`
	Proteins    map[string]string `yaml:"proteins"`
}

// LoadTranslations lädt die Mapping-Tabellen aus einer YAML-Datei
// (PubChem/Synonym → ChEBI, UniProt/ENSP/Entrez → ENSG).
func LoadTranslations(path string) (*TableTranslator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read translations: %w", err)
	}

	var file translationFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	return &TableTranslator{
		Metabolites: file.Metabolites,
		Proteins:    file.Proteins,
	}, nil
}

// TranslateRecords vereinheitlicht die Endpunkt-Identifier der Sequenz.
// Records, deren Metabolit oder Protein nicht übersetzbar ist, werden
// verworfen und gezählt. Kollabieren zwei Records nach der Übersetzung
// auf denselben Schlüssel (dieselbe Interaktion aus zwei Quellen), bleibt
// der erste erhalten. Pseudo-Enzym-Knoten tragen Reaktions-IDs und werden
// nicht übersetzt. Liefert die übersetzte Sequenz und die Anzahl der
// verworfenen Records.
func TranslateRecords(
	records []models.Interaction,
	tr EntityTranslator,
	logger *zap.Logger,
) ([]models.Interaction, int) {
	kept := make([]models.Interaction, 0, len(records))
	seen := make(map[models.EdgeKey]bool, len(records))
	dropped := 0
	converged := 0

	for i := range records {
		rec := records[i]

		if !translateEntity(&rec.Source, tr) || !translateEntity(&rec.Target, tr) {
			dropped++
			recordsDropped.WithLabelValues("translate").Inc()
			continue
		}

		key := rec.Key()
		if seen[key] {
			converged++
			recordsDropped.WithLabelValues("translate_duplicate").Inc()
			continue
		}
		seen[key] = true
		kept = append(kept, rec)
	}

	if dropped > 0 || converged > 0 {
		logger.Info("ID-Übersetzung angewendet",
			zap.Int("untranslatable", dropped),
			zap.Int("converged", converged),
		)
	}
	return kept, dropped + converged
}

func translateEntity(e *models.Entity, tr EntityTranslator) bool {
	switch e.Type {
	case models.EntityMetabolite:
		mapped, ok := tr.Metabolite(e.ID)
		if !ok {
			return false
		}
		e.ID = mapped
	case models.EntityProtein:
		mapped, ok := tr.Protein(e.ID)
		if !ok {
			return false
		}
		e.ID = mapped
	}
	// Pseudo-Enzyme behalten ihre Reaktions-ID.
	return true
}
