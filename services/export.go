package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cosmos-pkn/models"
)

// exportHeader sind die Spalten der exportierten Kantentabelle.
var exportHeader = []string{
	"source", "target", "reaction_id", "mode", "mor", "score",
	"directed", "reverse", "locations", "kind", "resource", "attrs",
}

// ExportTSV serialisiert die formatierte Record-Sequenz als
// Tab-getrennte Tabelle in Ausgabereihenfolge.
func ExportTSV(records []models.Interaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	for i := range records {
		rec := &records[i]
		row := []string{
			rec.Source.ID,
			rec.Target.ID,
			rec.ReactionID,
			string(rec.Mode),
			strconv.Itoa(rec.Mor),
			strconv.Itoa(rec.Score),
			strconv.FormatBool(rec.Directed),
			strconv.FormatBool(rec.Reverse),
			rec.LocationsString(),
			string(rec.Kind),
			rec.Resource,
			attrsString(&rec.Attrs),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// attrsString rendert die Annotationen kompakt als k=v-Paare.
func attrsString(a *models.Attrs) string {
	var parts []string
	if a.TransportFrom != "" {
		parts = append(parts, "transport_from="+a.TransportFrom)
	}
	if a.TransportTo != "" {
		parts = append(parts, "transport_to="+a.TransportTo)
	}
	if a.CosmosFormatted {
		parts = append(parts, "cosmos_formatted=true")
	}
	if a.Orphan {
		parts = append(parts, "orphan=true")
	}
	if a.EnzymeComplex {
		parts = append(parts, "enzyme_complex=true")
	}
	if a.SourceMode != "" {
		parts = append(parts, "source_mode="+a.SourceMode)
	}

	extraKeys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, a.Extra[k]))
	}

	return strings.Join(parts, ";")
}
