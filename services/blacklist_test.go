package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cosmos-pkn/models"
)

func TestLoadBlacklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.yaml")
	content := `blacklist:
  - source: CHEBI:15422
    resource: BRENDA
  - kind: ligand_receptor
  - {}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := LoadBlacklist(path)
	require.NoError(t, err)
	// leere Einträge werden verworfen
	require.Len(t, entries, 2)
	assert.Equal(t, "CHEBI:15422", entries[0]["source"])
	assert.Equal(t, "BRENDA", entries[0]["resource"])
	assert.Equal(t, "ligand_receptor", entries[1]["kind"])
}

func TestLoadBlacklistMissingFile(t *testing.T) {
	_, err := LoadBlacklist(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestApplyBlacklist(t *testing.T) {
	records := []models.Interaction{
		{
			Source:   models.Entity{ID: "CHEBI:15422", Type: models.EntityMetabolite},
			Target:   models.Entity{ID: "P10001", Type: models.EntityProtein},
			Kind:     models.KindAllosteric,
			Resource: "BRENDA",
		},
		{
			Source:   models.Entity{ID: "CHEBI:15422", Type: models.EntityMetabolite},
			Target:   models.Entity{ID: "P10002", Type: models.EntityProtein},
			Kind:     models.KindReceptor,
			Resource: "MRCLinksDB",
		},
		{
			Source:   models.Entity{ID: "CHEBI:29101", Type: models.EntityMetabolite},
			Target:   models.Entity{ID: "P10003", Type: models.EntityProtein},
			Kind:     models.KindTransport,
			Resource: "SLC",
		},
	}

	// Bedingungen innerhalb eines Eintrags sind UND-verknüpft: nur die
	// BRENDA-Kante von CHEBI:15422 fällt, nicht die MRCLinksDB-Kante.
	entries := []BlacklistEntry{{"source": "CHEBI:15422", "resource": "BRENDA"}}
	kept := ApplyBlacklist(records, entries, zap.NewNop())
	require.Len(t, kept, 2)
	assert.Equal(t, "MRCLinksDB", kept[0].Resource)
	assert.Equal(t, "SLC", kept[1].Resource)

	// Mehrere Einträge sind ODER-verknüpft.
	entries = []BlacklistEntry{
		{"resource": "BRENDA"},
		{"kind": "ligand_receptor"},
	}
	kept = ApplyBlacklist(records, entries, zap.NewNop())
	require.Len(t, kept, 1)
	assert.Equal(t, "SLC", kept[0].Resource)
}

func TestApplyBlacklistIgnoresUnknownFields(t *testing.T) {
	records := []models.Interaction{{
		Source:   models.Entity{ID: "CHEBI:1", Type: models.EntityMetabolite},
		Target:   models.Entity{ID: "P10001", Type: models.EntityProtein},
		Resource: "BRENDA",
	}}

	// Unbekannte Felder werden übersprungen, die übrigen Bedingungen gelten.
	entries := []BlacklistEntry{{"flavor": "sour", "resource": "BRENDA"}}
	kept := ApplyBlacklist(records, entries, zap.NewNop())
	assert.Empty(t, kept)
}
