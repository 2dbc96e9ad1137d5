package stitch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
)

const actionsFile = "item_id_a\titem_id_b\tmode\taction\ta_is_acting\tscore\n" +
	// beide Richtungen desselben Paars; nur eine darf überleben
	"CIDm00000001\t9606.ENSP00000000001\tactivation\tactivation\tt\t900\n" +
	"9606.ENSP00000000001\tCIDm00000001\tactivation\tactivation\tf\t900\n" +
	// Score unter dem Threshold
	"CIDm00000002\t9606.ENSP00000000001\tactivation\tactivation\tt\t400\n" +
	// nicht zugelassener Modus
	"CIDm00000003\t9606.ENSP00000000001\tbinding\t\tt\t950\n" +
	// fremder Organismus
	"CIDm00000004\t10090.ENSP00000000002\tinhibition\tinhibition\tt\t900\n" +
	// Protein handelt, nicht die Chemikalie
	"CIDm00000005\t9606.ENSP00000000001\tactivation\tactivation\tf\t900\n" +
	// ungültiger Identifier
	"NOTACHEM\t9606.ENSP00000000001\tactivation\tactivation\tt\t900\n" +
	// zweites gültiges Paar
	"CIDs00000006\t9606.ENSP00000000003\tinhibition\tinhibition\tt\t810\n"

func newActionsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/actions.v5.0/9606.actions.v5.0.tsv.gz"))
		gz := gzip.NewWriter(w)
		gz.Write([]byte(actionsFile))
		gz.Close()
	}))
}

func collect(t *testing.T, it models.RecordIterator) []models.Interaction {
	t.Helper()
	var out []models.Interaction
	for it.Next() {
		out = append(out, *it.Record())
	}
	require.NoError(t, it.Err())
	return out
}

func TestInteractionsFiltersAndOrients(t *testing.T) {
	server := newActionsServer(t)
	defer server.Close()

	fetcher := NewFetcher(&config.Config{StitchBaseURL: server.URL}, zap.NewNop())
	it, err := fetcher.Interactions(context.Background(), providers.Options{
		Organism:       9606,
		ScoreThreshold: 700,
		AllowedModes:   []models.Mode{models.ModeActivation, models.ModeInhibition},
	})
	require.NoError(t, err)

	records := collect(t, it)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "CIDm00000001", first.Source.ID)
	assert.Equal(t, models.EntityMetabolite, first.Source.Type)
	assert.False(t, first.Source.Stereospecific)
	assert.Equal(t, "ENSP00000000001", first.Target.ID)
	assert.Equal(t, 9606, first.Target.NCBITaxID)
	assert.Equal(t, models.ModeActivation, first.Mode)
	assert.Equal(t, 1, first.Mor)
	assert.Equal(t, 900, first.Score)
	assert.True(t, first.Directed)
	assert.Equal(t, "STITCH", first.Resource)
	assert.Equal(t, "activation", first.Attrs.SourceMode)

	second := records[1]
	assert.Equal(t, "CIDs00000006", second.Source.ID)
	assert.True(t, second.Source.Stereospecific, "CIDs-Präfix markiert die stereospezifische Form")
	assert.Equal(t, -1, second.Mor)
}

func TestInteractionsMaxRecords(t *testing.T) {
	server := newActionsServer(t)
	defer server.Close()

	fetcher := NewFetcher(&config.Config{StitchBaseURL: server.URL}, zap.NewNop())
	it, err := fetcher.Interactions(context.Background(), providers.Options{
		Organism:       9606,
		MaxRecords:     1,
		ScoreThreshold: 700,
		AllowedModes:   []models.Mode{models.ModeActivation, models.ModeInhibition},
	})
	require.NoError(t, err)

	records := collect(t, it)
	assert.Len(t, records, 1)
}

func TestInteractionsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(&config.Config{StitchBaseURL: server.URL}, zap.NewNop())
	_, err := fetcher.Interactions(context.Background(), providers.Options{Organism: 9606})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestParseActionRow(t *testing.T) {
	_, ok := parseActionRow("item_id_a\titem_id_b\tmode\taction\ta_is_acting\tscore")
	assert.False(t, ok, "Header wird übersprungen")

	_, ok = parseActionRow("too\tfew\tfields")
	assert.False(t, ok)

	row, ok := parseActionRow("CIDm00000001\t9606.ENSP00000000001\tactivation\tactivation\tt\t900")
	require.True(t, ok)
	assert.Equal(t, "CIDm00000001", row.ItemA)
	assert.True(t, row.AIsActing)
	assert.Equal(t, 900, row.Score)
}

func TestSplitItem(t *testing.T) {
	tax, id := splitItem("9606.ENSP00000354587")
	assert.Equal(t, 9606, tax)
	assert.Equal(t, "ENSP00000354587", id)

	tax, id = splitItem("CIDm91758680")
	assert.Equal(t, 0, tax)
	assert.Equal(t, "CIDm91758680", id)
}
