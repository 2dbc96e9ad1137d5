package tcdb

import (
	"regexp"
	"strings"
)

var (
	chebiRe   = regexp.MustCompile(`^CHEBI:\d+$`)
	uniprotRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{5,9}$`)
	// Evidenz-Annotationen in geschweiften Klammern, z.B. {ECO:0000269|...}
	evidenceRe = regexp.MustCompile(`\{[^}]*\}`)
)

// parseSubstrateLine zerlegt eine Zeile von getSubstrates.py:
//
//	1.A.1.1.1<TAB>CHEBI:29103|potassium(1+);CHEBI:29101|sodium(1+)
//
// Nur Substrate mit gültiger ChEBI-ID werden behalten.
func parseSubstrateLine(line string) (tcid string, chebis []string, ok bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return "", nil, false
	}
	tcid = strings.TrimSpace(fields[0])
	for _, entry := range strings.Split(fields[1], ";") {
		id, _, _ := strings.Cut(entry, "|")
		id = strings.TrimSpace(id)
		if chebiRe.MatchString(id) {
			chebis = append(chebis, id)
		}
	}
	return tcid, chebis, len(chebis) > 0
}

// transporterRow ist eine Zeile des UniProt-Streams
// (accession, xref_tcdb, cc_subcellular_location).
type transporterRow struct {
	Accession    string
	TCIDs        []string
	LocationText string
}

// parseTransporterRow zerlegt eine Tab-getrennte UniProt-Zeile. ok == false
// für Header-Zeilen und Einträge ohne TCDB-Querverweis.
func parseTransporterRow(line string) (transporterRow, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 || fields[0] == "Entry" {
		return transporterRow{}, false
	}
	acc := strings.TrimSpace(fields[0])
	if !uniprotRe.MatchString(acc) {
		return transporterRow{}, false
	}
	var tcids []string
	for _, id := range strings.Split(fields[1], ";") {
		if id = strings.TrimSpace(id); id != "" {
			tcids = append(tcids, id)
		}
	}
	if len(tcids) == 0 {
		return transporterRow{}, false
	}
	return transporterRow{
		Accession:    acc,
		TCIDs:        tcids,
		LocationText: fields[2],
	}, true
}

// locationCandidates extrahiert die Namens-Kandidaten aus dem
// UniProt-Location-Freitext ("SUBCELLULAR LOCATION: Cell membrane
// {ECO:...}; Multi-pass membrane protein ..."). Die Auflösung auf
// Kompartiment-Codes übernimmt der Aufrufer.
func locationCandidates(text string) []string {
	text = evidenceRe.ReplaceAllString(text, "")
	text = strings.TrimPrefix(text, "SUBCELLULAR LOCATION:")
	var names []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == '.' || r == ','
	}) {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
