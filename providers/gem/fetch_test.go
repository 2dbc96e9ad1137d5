package gem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
)

func testFetcher(maxDegree int) *Fetcher {
	return NewFetcher(&config.Config{
		GEMName:        "Human-GEM",
		MetabMaxDegree: maxDegree,
	}, zap.NewNop())
}

func TestParseGeneRule(t *testing.T) {
	assert.Nil(t, parseGeneRule(""))
	assert.Nil(t, parseGeneRule("  "))

	enzymes := parseGeneRule("ENSG1")
	require.Len(t, enzymes, 1)
	assert.Equal(t, enzyme{ID: "ENSG1"}, enzymes[0])

	// OR trennt Isoenzyme, AND bildet Komplexe mit sortierten Mitgliedern
	enzymes = parseGeneRule("(ENSG2 and ENSG1) or ENSG3")
	require.Len(t, enzymes, 2)
	assert.Equal(t, enzyme{ID: "ENSG1_ENSG2", Complex: true}, enzymes[0])
	assert.Equal(t, enzyme{ID: "ENSG3"}, enzymes[1])

	// doppelte Alternativen kollabieren
	enzymes = parseGeneRule("ENSG1 or ENSG1")
	assert.Len(t, enzymes, 1)
}

func TestStripCompartment(t *testing.T) {
	assert.Equal(t, "MAM01039", stripCompartment("MAM01039c", "c"))
	assert.Equal(t, "MAM01039", stripCompartment("MAM01039m", "m"))
	// Suffix passt nicht zum Kompartiment: ID bleibt unverändert
	assert.Equal(t, "MAM01039c", stripCompartment("MAM01039c", "m"))
	assert.Equal(t, "MAM01039c", stripCompartment("MAM01039c", ""))
}

func TestStringListAcceptsScalarAndSequence(t *testing.T) {
	var scalar struct {
		Subsystem stringList `yaml:"subsystem"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("subsystem: Glycolysis"), &scalar))
	assert.Equal(t, stringList{"Glycolysis"}, scalar.Subsystem)

	var seq struct {
		Subsystem stringList `yaml:"subsystem"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("subsystem:\n  - Transport reactions"), &seq))
	assert.Equal(t, stringList{"Transport reactions"}, seq.Subsystem)
}

func testModel() *gemModel {
	return &gemModel{
		Metabolites: []gemMetabolite{
			{ID: "MAM00001c", Compartment: "c"},
			{ID: "MAM00002c", Compartment: "c"},
			{ID: "MAM00001e", Compartment: "e"},
		},
		Reactions: []gemReaction{
			{
				ID:               "MAR00001",
				Metabolites:      map[string]float64{"MAM00001c": -1, "MAM00002c": 1},
				LowerBound:       0,
				UpperBound:       1000,
				GeneReactionRule: "ENSG1 or ENSG2 and ENSG3",
				Subsystem:        stringList{"Glycolysis"},
			},
			{
				ID:          "MAR00002",
				Metabolites: map[string]float64{"MAM00001c": -1, "MAM00002c": 1},
				LowerBound:  -1000,
				UpperBound:  1000,
				Subsystem:   stringList{"Glycolysis"},
			},
			{
				ID:               "MAR00003",
				Metabolites:      map[string]float64{"MAM00001e": -1, "MAM00001c": 1},
				LowerBound:       0,
				UpperBound:       1000,
				GeneReactionRule: "ENSG4",
				Subsystem:        stringList{"Transport reactions"},
			},
		},
	}
}

func compartmentIndex(model *gemModel) map[string]string {
	idx := make(map[string]string, len(model.Metabolites))
	for _, m := range model.Metabolites {
		idx[m.ID] = m.Compartment
	}
	return idx
}

func TestExpandIrreversibleReaction(t *testing.T) {
	f := testFetcher(0)
	model := testModel()
	model.Reactions = model.Reactions[:1]

	records := f.expand(model, compartmentIndex(model), providers.Options{Organism: 9606, IncludeReverse: true})
	// 2 Isoenzyme x (1 Edukt + 1 Produkt), keine Rückrichtung
	require.Len(t, records, 4)

	assert.Equal(t, "MAM00001", records[0].Source.ID)
	assert.Equal(t, "ENSG1", records[0].Target.ID)
	assert.Equal(t, "MAR00001", records[0].ReactionID)
	assert.Equal(t, []string{"c"}, records[0].Locations)
	assert.Equal(t, models.KindCatalysis, records[0].Kind)
	assert.Equal(t, "GEM:Human-GEM", records[0].Resource)
	assert.False(t, records[0].Reverse)

	assert.Equal(t, "ENSG1", records[1].Source.ID)
	assert.Equal(t, "MAM00002", records[1].Target.ID)

	// Komplex-Isoenzym
	assert.Equal(t, "ENSG2_ENSG3", records[2].Target.ID)
	assert.True(t, records[2].Attrs.EnzymeComplex)
	assert.False(t, records[2].Attrs.Orphan)
}

func TestExpandReversibleOrphanReaction(t *testing.T) {
	f := testFetcher(0)
	model := testModel()
	model.Reactions = model.Reactions[1:2]

	records := f.expand(model, compartmentIndex(model), providers.Options{Organism: 9606, IncludeReverse: true})
	require.Len(t, records, 4)

	for _, rec := range records {
		assert.True(t, rec.Attrs.Orphan)
	}
	// Pseudo-Enzym trägt die Reaktions-ID als Knoten
	assert.Equal(t, "MAR00002", records[0].Target.ID)
	assert.Equal(t, models.EntityPseudoEnzyme, records[0].Target.Type)

	assert.False(t, records[0].Reverse)
	assert.False(t, records[1].Reverse)
	assert.True(t, records[2].Reverse)
	assert.True(t, records[3].Reverse)

	// Rückrichtung: Produkt → Enzym, Enzym → Edukt
	assert.Equal(t, "MAM00002", records[2].Source.ID)
	assert.Equal(t, "MAM00001", records[3].Target.ID)
}

func TestExpandReverseSuppressed(t *testing.T) {
	f := testFetcher(0)
	model := testModel()
	model.Reactions = model.Reactions[1:2]

	records := f.expand(model, compartmentIndex(model), providers.Options{Organism: 9606, IncludeReverse: false})
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.False(t, rec.Reverse)
	}
}

func TestExpandTransportReaction(t *testing.T) {
	f := testFetcher(0)
	model := testModel()
	model.Reactions = model.Reactions[2:3]

	records := f.expand(model, compartmentIndex(model), providers.Options{Organism: 9606, IncludeReverse: true})
	require.Len(t, records, 2)

	// derselbe Metabolit auf beiden Seiten, unterschieden nur durch Location
	assert.Equal(t, "MAM00001", records[0].Source.ID)
	assert.Equal(t, []string{"e"}, records[0].Locations)
	assert.Equal(t, "MAM00001", records[1].Target.ID)
	assert.Equal(t, []string{"c"}, records[1].Locations)

	assert.Equal(t, models.KindTransport, records[0].Kind)
	assert.Equal(t, "GEM_transporter:Human-GEM", records[0].Resource)
}

func TestExpandNegativeDirectionSwapsSides(t *testing.T) {
	f := testFetcher(0)
	model := testModel()
	model.Reactions = []gemReaction{{
		ID:               "MAR00004",
		Metabolites:      map[string]float64{"MAM00001c": -1, "MAM00002c": 1},
		LowerBound:       -1000,
		UpperBound:       0,
		GeneReactionRule: "ENSG1",
		Subsystem:        stringList{"Glycolysis"},
	}}

	records := f.expand(model, compartmentIndex(model), providers.Options{Organism: 9606})
	require.Len(t, records, 2)
	// negative Flussgrenzen drehen die Reaktion um: MAM00002 ist das Edukt
	assert.Equal(t, "MAM00002", records[0].Source.ID)
	assert.Equal(t, "MAM00001", records[1].Target.ID)
}

func TestApplyDegreeCap(t *testing.T) {
	f := testFetcher(2)

	hub := func(rxn string) models.Interaction {
		return models.Interaction{
			Source:     models.Entity{ID: "MAM_COFACTOR", Type: models.EntityMetabolite},
			Target:     models.Entity{ID: "ENSG1", Type: models.EntityProtein},
			ReactionID: rxn,
		}
	}
	rare := models.Interaction{
		Source: models.Entity{ID: "MAM_RARE", Type: models.EntityMetabolite},
		Target: models.Entity{ID: "ENSG2", Type: models.EntityProtein},
	}

	records := []models.Interaction{hub("R1"), hub("R2"), hub("R3"), rare}
	kept := f.applyDegreeCap(records, zap.NewNop())
	require.Len(t, kept, 1)
	assert.Equal(t, "MAM_RARE", kept[0].Source.ID)
}
