package services

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cosmos-pkn/models"
)

// BlacklistEntry ist eine Experten-Kurations-Regel: Feld → Wert-Bedingungen,
// die alle zutreffen müssen (UND innerhalb eines Eintrags). Mehrere Einträge
// werden mit ODER kombiniert.
//
// Unterstützte Felder: source, target, resource, mode, kind, reaction_id.
type BlacklistEntry map[string]string

// blacklistFile ist das YAML-Schema der Blacklist-Datei.
type blacklistFile struct {
	Blacklist []BlacklistEntry `yaml:"blacklist"`
}

// LoadBlacklist lädt Blacklist-Einträge aus einer YAML-Datei.
func LoadBlacklist(path string) ([]BlacklistEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blacklist: %w", err)
	}

	var file blacklistFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse blacklist: %w", err)
	}

	entries := make([]BlacklistEntry, 0, len(file.Blacklist))
	for _, e := range file.Blacklist {
		if len(e) > 0 {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// ApplyBlacklist entfernt Records, die auf einen Blacklist-Eintrag passen.
// Wird am besten vor der Formatierung angewendet, solange die IDs in
// kanonischer Form vorliegen.
func ApplyBlacklist(
	records []models.Interaction,
	entries []BlacklistEntry,
	logger *zap.Logger,
) []models.Interaction {
	if len(entries) == 0 {
		return records
	}

	kept := make([]models.Interaction, 0, len(records))
	removed := 0
	for i := range records {
		if matchesAny(&records[i], entries) {
			removed++
			recordsDropped.WithLabelValues("blacklist").Inc()
			continue
		}
		kept = append(kept, records[i])
	}

	if removed > 0 {
		logger.Info("Blacklist angewendet", zap.Int("removed", removed))
	}
	return kept
}

func matchesAny(rec *models.Interaction, entries []BlacklistEntry) bool {
	for _, entry := range entries {
		if matchesEntry(rec, entry) {
			return true
		}
	}
	return false
}

func matchesEntry(rec *models.Interaction, entry BlacklistEntry) bool {
	for field, want := range entry {
		var got string
		switch field {
		case "source":
			got = rec.Source.ID
		case "target":
			got = rec.Target.ID
		case "resource":
			got = rec.Resource
		case "mode":
			got = string(rec.Mode)
		case "kind":
			got = string(rec.Kind)
		case "reaction_id":
			got = rec.ReactionID
		default:
			// Unbekannte Felder werden ignoriert, der Eintrag bleibt aktiv.
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}
