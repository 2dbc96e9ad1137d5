package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-pkn/models"
)

func TestLocationResolver(t *testing.T) {
	slc := SLCLocations()

	code, ok := slc.Resolve("  Plasma membrane ")
	require.True(t, ok)
	assert.Equal(t, "e", code)

	_, ok = slc.Resolve("Somewhere else")
	assert.False(t, ok)

	// zusammengesetzte Angaben: dedupliziert und sortiert, Unbekanntes fällt raus
	codes := slc.ResolveAll("ER; Plasma membrane; ER; Extracellular matrix")
	assert.Equal(t, []string{"e", "r"}, codes)

	tcdb := TCDBLocations()
	codes = tcdb.ResolveAll("Mitochondrion inner membrane; Mitochondrion")
	assert.Equal(t, []string{"m"}, codes)
}

func TestExportTSV(t *testing.T) {
	records := []models.Interaction{
		{
			Source:     models.Entity{ID: "Metab__CHEBI:29101_e", Type: models.EntityMetabolite},
			Target:     models.Entity{ID: "Gene1__P10001", Type: models.EntityProtein},
			ReactionID: "TCDB:P10001:CHEBI:29101:e",
			Mode:       models.ModeReaction,
			Kind:       models.KindTransport,
			Directed:   true,
			Locations:  []string{"e"},
			Attrs: models.Attrs{
				TransportFrom:   "e",
				TransportTo:     "c",
				CosmosFormatted: true,
			},
			Resource: "TCDB",
		},
		{
			Source:   models.Entity{ID: "Metab__CHEBI:15422", Type: models.EntityMetabolite},
			Target:   models.Entity{ID: "Gene__P10002", Type: models.EntityProtein},
			Mode:     models.ModeInhibition,
			Kind:     models.KindAllosteric,
			Mor:      -1,
			Directed: true,
			Attrs: models.Attrs{
				CosmosFormatted: true,
				SourceMode:      "inhibiting",
				Extra:           map[string]string{"brenda_ec": "2.7.1.1"},
			},
			Resource: "BRENDA",
		},
	}

	data, err := ExportTSV(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		"source\ttarget\treaction_id\tmode\tmor\tscore\tdirected\treverse\tlocations\tkind\tresource\tattrs",
		lines[0])
	assert.Equal(t,
		"Metab__CHEBI:29101_e\tGene1__P10001\tTCDB:P10001:CHEBI:29101:e\treaction\t0\t0\ttrue\tfalse\te\ttransport\tTCDB\ttransport_from=e;transport_to=c;cosmos_formatted=true",
		lines[1])
	assert.Equal(t,
		"Metab__CHEBI:15422\tGene__P10002\t\tinhibition\t-1\t0\ttrue\tfalse\t\tallosteric_regulation\tBRENDA\tcosmos_formatted=true;source_mode=inhibiting;brenda_ec=2.7.1.1",
		lines[2])
}
