package services

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmos-pkn/models"
)

func scoredRecord(score int, mode models.Mode) models.Interaction {
	return models.Interaction{
		Source:   models.Entity{ID: "CIDm00001", Type: models.EntityMetabolite},
		Target:   models.Entity{ID: "ENSP00000000001", Type: models.EntityProtein, NCBITaxID: 9606},
		Mode:     mode,
		Mor:      models.MorFor(mode),
		Score:    score,
		Directed: true,
		Resource: "STITCH",
	}
}

func TestFilterAdmit(t *testing.T) {
	f := NewFilter(700, []models.Mode{models.ModeActivation, models.ModeInhibition}, 9606)

	cases := []struct {
		name string
		rec  models.Interaction
		want bool
	}{
		{"above threshold, allowed mode", scoredRecord(900, models.ModeActivation), true},
		{"exactly at threshold", scoredRecord(700, models.ModeInhibition), true},
		{"below threshold", scoredRecord(699, models.ModeActivation), false},
		{"disallowed mode", scoredRecord(900, models.ModeBinding), false},
		{"below threshold and disallowed", scoredRecord(100, models.ModeReaction), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.rec
			assert.Equal(t, tc.want, f.Admit(&rec))
		})
	}
}

func TestFilterAdmitOrganismMismatch(t *testing.T) {
	f := NewFilter(700, []models.Mode{models.ModeActivation}, 9606)

	rec := scoredRecord(900, models.ModeActivation)
	rec.Target.NCBITaxID = 10090
	assert.False(t, f.Admit(&rec), "fremder Organismus darf nicht passieren")

	// Tax-ID 0 bedeutet unbekannt und wird nicht geprüft.
	rec.Target.NCBITaxID = 0
	assert.True(t, f.Admit(&rec))
}

func TestFilterValidate(t *testing.T) {
	err := NewFilter(0, []models.Mode{models.ModeActivation}, 9606).Validate()
	require.Error(t, err)

	err = NewFilter(700, nil, 9606).Validate()
	require.Error(t, err)

	err = NewFilter(700, []models.Mode{models.ModeActivation}, 9606).Validate()
	require.NoError(t, err)
}

func TestFilteredIteratorDropsLazily(t *testing.T) {
	records := []models.Interaction{
		scoredRecord(900, models.ModeActivation),
		scoredRecord(100, models.ModeActivation),
		scoredRecord(800, models.ModeBinding),
		scoredRecord(750, models.ModeInhibition),
	}
	f := NewFilter(700, []models.Mode{models.ModeActivation, models.ModeInhibition}, 0)
	it := NewFilteredIterator(models.NewSliceIterator(records), f)

	var admitted []int
	for it.Next() {
		admitted = append(admitted, it.Record().Score)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{900, 750}, admitted)
	assert.Equal(t, 2, it.Dropped())
}

func TestMorMapping(t *testing.T) {
	assert.Equal(t, 1, models.MorFor(models.ModeActivation))
	assert.Equal(t, -1, models.MorFor(models.ModeInhibition))
	assert.Equal(t, 0, models.MorFor(models.ModeBinding))
	assert.Equal(t, 0, models.MorFor(models.ModeReaction))
	assert.Equal(t, 0, models.MorFor(models.ModeUnknown))
}

// Verschärfen des Thresholds darf die zugelassene Menge nur verkleinern.
func TestFilterThresholdMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	modes := []models.Mode{
		models.ModeActivation, models.ModeInhibition,
		models.ModeBinding, models.ModeReaction,
	}

	properties.Property("strenger Filter ist Teilmenge", prop.ForAll(
		func(score, lowThreshold, delta, modeIdx int) bool {
			rec := scoredRecord(score, modes[modeIdx])
			low := NewFilter(lowThreshold, []models.Mode{models.ModeActivation, models.ModeInhibition}, 0)
			high := NewFilter(lowThreshold+delta, []models.Mode{models.ModeActivation}, 0)
			// was der strengere Filter zulässt, lässt auch der lockerere zu
			return !high.Admit(&rec) || low.Admit(&rec)
		},
		gen.IntRange(0, 1000),
		gen.IntRange(1, 900),
		gen.IntRange(0, 300),
		gen.IntRange(0, len(modes)-1),
	))

	properties.TestingRun(t)
}
