package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-pkn/models"
)

func TestTransporterCycle(t *testing.T) {
	met := models.Entity{ID: "CHEBI:29101", Type: models.EntityMetabolite}
	transporter := models.Entity{ID: "P10001", Type: models.EntityProtein, NCBITaxID: 9606}

	cycle := TransporterCycle(met, transporter, "e", "TCDB:P10001:CHEBI:29101:e", "TCDB", models.KindTransport, true)
	require.Len(t, cycle, 4)

	// alle vier Kanten teilen Reaktion und Resource, bleiben aber
	// schlüssel-eindeutig
	keys := map[models.EdgeKey]bool{}
	for _, rec := range cycle {
		assert.Equal(t, "TCDB:P10001:CHEBI:29101:e", rec.ReactionID)
		assert.Equal(t, "TCDB", rec.Resource)
		assert.Equal(t, models.KindTransport, rec.Kind)
		assert.True(t, rec.Directed)
		keys[rec.Key()] = true
	}
	assert.Len(t, keys, 4)

	// Vorwärts: von außen ins Cytosol
	assert.Equal(t, []string{"e"}, cycle[0].Locations)
	assert.Equal(t, "e", cycle[0].Attrs.TransportFrom)
	assert.Equal(t, "c", cycle[0].Attrs.TransportTo)
	assert.Equal(t, []string{"c"}, cycle[1].Locations)

	// Rückrichtung trägt das Reverse-Flag und die gespiegelten Kompartimente
	assert.True(t, cycle[2].Reverse)
	assert.True(t, cycle[3].Reverse)
	assert.Equal(t, "c", cycle[2].Attrs.TransportFrom)
	assert.Equal(t, "e", cycle[2].Attrs.TransportTo)
	assert.Equal(t, []string{"e"}, cycle[3].Locations)
}

func TestTransporterCycleBetween(t *testing.T) {
	met := models.Entity{ID: "glc__D", Type: models.EntityMetabolite}
	transporter := models.Entity{ID: "6513", Type: models.EntityProtein}

	// Transport zwischen zwei beliebigen Kompartimenten (m → x)
	cycle := TransporterCycleBetween(met, transporter, "m", "x", "GLCt2", "Recon3D", models.KindTransport, true)
	require.Len(t, cycle, 4)

	assert.Equal(t, []string{"m"}, cycle[0].Locations)
	assert.Equal(t, "m", cycle[0].Attrs.TransportFrom)
	assert.Equal(t, "x", cycle[0].Attrs.TransportTo)
	assert.Equal(t, []string{"x"}, cycle[1].Locations)

	assert.True(t, cycle[2].Reverse)
	assert.Equal(t, "x", cycle[2].Attrs.TransportFrom)
	assert.Equal(t, "m", cycle[2].Attrs.TransportTo)
	assert.Equal(t, []string{"m"}, cycle[3].Locations)
}

func TestTransporterCycleWithoutReverse(t *testing.T) {
	met := models.Entity{ID: "CHEBI:29101", Type: models.EntityMetabolite}
	transporter := models.Entity{ID: "P10001", Type: models.EntityProtein}

	cycle := TransporterCycle(met, transporter, "m", "SLC:P10001:CHEBI:29101:m", "SLC", models.KindTransport, false)
	require.Len(t, cycle, 2)
	for _, rec := range cycle {
		assert.False(t, rec.Reverse)
	}
}
