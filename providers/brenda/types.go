package brenda

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cosmos-pkn/models"
)

var (
	chebiRe   = regexp.MustCompile(`^CHEBI:\d+$`)
	uniprotRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{5,9}$`)
	ecRe      = regexp.MustCompile(`^\d+\.\d+\.\d+\.(?:\d+|-)$`)
)

// regulationRow ist eine Zeile der Regulations-Tabelle
// (ec_number, compound, chebi_id, action, uniprot, ncbi_tax_id).
type regulationRow struct {
	EC       string
	Compound string
	ChebiID  string
	Action   string
	UniProt  string
	TaxID    int
}

// parseRegulationRow zerlegt eine Tab-getrennte Zeile. ok == false für
// Header-Zeilen und Zeilen ohne gültige EC-Nummer oder UniProt-Accession.
func parseRegulationRow(line string) (regulationRow, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 6 || fields[0] == "ec_number" {
		return regulationRow{}, false
	}
	ec := strings.TrimSpace(fields[0])
	acc := strings.TrimSpace(fields[4])
	if !ecRe.MatchString(ec) || !uniprotRe.MatchString(acc) {
		return regulationRow{}, false
	}
	tax, _ := strconv.Atoi(strings.TrimSpace(fields[5]))
	return regulationRow{
		EC:       ec,
		Compound: strings.TrimSpace(fields[1]),
		ChebiID:  strings.TrimSpace(fields[2]),
		Action:   strings.ToLower(strings.TrimSpace(fields[3])),
		UniProt:  acc,
		TaxID:    tax,
	}, true
}

// modeFor mappt die Regulations-Aktion auf den kanonischen Mode.
// Unbekannte Aktionen liefern ModeUnknown und werden verworfen.
func modeFor(action string) models.Mode {
	switch action {
	case "activating", "activation", "activator":
		return models.ModeActivation
	case "inhibiting", "inhibition", "inhibitor":
		return models.ModeInhibition
	default:
		return models.ModeUnknown
	}
}

// ligatures ersetzt typografische Ligaturen, die aus den
// Literatur-Extrakten der Compound-Synonyme stammen.
var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
	"œ", "oe",
	"æ", "ae",
)

// normalizeCompound kanonisiert einen Compound-Namen: Ligaturen auflösen,
// NFC-Normalisierung, Whitespace kollabieren, Kleinschreibung. Zwei
// Synonyme derselben Substanz kollabieren so auf denselben Knoten.
func normalizeCompound(name string) string {
	name = ligatures.Replace(name)
	name, _, _ = transform.String(transform.Chain(norm.NFC), name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.ToLower(name)
}
