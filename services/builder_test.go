package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cosmos-pkn/models"
)

func edge(source, target, reactionID string, reverse bool, resource string) models.Interaction {
	return models.Interaction{
		Source:     models.Entity{ID: source, Type: models.EntityMetabolite},
		Target:     models.Entity{ID: target, Type: models.EntityProtein, NCBITaxID: 9606},
		ReactionID: reactionID,
		Mode:       models.ModeReaction,
		Directed:   true,
		Reverse:    reverse,
		Resource:   resource,
	}
}

func TestMergePreservesSourceOrder(t *testing.T) {
	a := []models.Interaction{
		edge("CHEBI:1", "P10001", "R1", false, "TCDB"),
		edge("CHEBI:2", "P10001", "R2", false, "TCDB"),
	}
	b := []models.Interaction{
		edge("CHEBI:3", "P10002", "R3", false, "SLC"),
	}

	builder := NewBuilder(zap.NewNop(), true)
	merged, err := builder.Merge([]SourceStream{
		{Name: "tcdb", Iter: models.NewSliceIterator(a)},
		{Name: "slc", Iter: models.NewSliceIterator(b)},
	})
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, "CHEBI:1", merged[0].Source.ID)
	assert.Equal(t, "CHEBI:2", merged[1].Source.ID)
	assert.Equal(t, "CHEBI:3", merged[2].Source.ID)
}

func TestMergeDuplicateKeyIsFatal(t *testing.T) {
	a := []models.Interaction{edge("CHEBI:1", "P10001", "R1", false, "TCDB")}
	b := []models.Interaction{edge("CHEBI:1", "P10001", "R1", false, "SLC")}

	builder := NewBuilder(zap.NewNop(), true)
	_, err := builder.Merge([]SourceStream{
		{Name: "tcdb", Iter: models.NewSliceIterator(a)},
		{Name: "slc", Iter: models.NewSliceIterator(b)},
	})
	require.Error(t, err)

	var dup *models.DuplicateEdgeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "CHEBI:1", dup.Key.Source)
	assert.Contains(t, dup.Resource, "SLC")
	assert.Contains(t, dup.Resource, "first seen from TCDB")
}

func TestMergeReverseDistinguishesKeys(t *testing.T) {
	// Vorwärts- und Rückrichtung derselben Reaktion sind keine Kollision.
	records := []models.Interaction{
		edge("CHEBI:1", "P10001", "R1", false, "SLC"),
		edge("CHEBI:1", "P10001", "R1", true, "SLC"),
	}

	builder := NewBuilder(zap.NewNop(), true)
	merged, err := builder.Merge([]SourceStream{
		{Name: "slc", Iter: models.NewSliceIterator(records)},
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.False(t, merged[0].Reverse)
	assert.True(t, merged[1].Reverse, "Reverse-Flag wird unverändert durchgereicht")
}

func TestMergeOrphanHandling(t *testing.T) {
	orphan := edge("CHEBI:1", "MAR00001", "MAR00001", false, "GEM:Human-GEM")
	orphan.Target.Type = models.EntityPseudoEnzyme
	orphan.Attrs.Orphan = true
	regular := edge("CHEBI:2", "P10001", "R1", false, "TCDB")

	stream := func() []SourceStream {
		return []SourceStream{
			{Name: "gem", Iter: models.NewSliceIterator([]models.Interaction{orphan, regular})},
		}
	}

	withOrphans, err := NewBuilder(zap.NewNop(), true).Merge(stream())
	require.NoError(t, err)
	assert.Len(t, withOrphans, 2)

	withoutOrphans, err := NewBuilder(zap.NewNop(), false).Merge(stream())
	require.NoError(t, err)
	require.Len(t, withoutOrphans, 1)
	assert.Equal(t, "CHEBI:2", withoutOrphans[0].Source.ID)
}

func TestMergeStreamErrorIsFatal(t *testing.T) {
	fetchErr := errors.New("connection reset")
	builder := NewBuilder(zap.NewNop(), true)
	_, err := builder.Merge([]SourceStream{
		{Name: "stitch", Iter: models.NewErrIterator(fetchErr)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
	assert.Contains(t, err.Error(), "stitch")
}
