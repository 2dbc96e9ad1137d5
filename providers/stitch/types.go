package stitch

import (
	"regexp"
	"strconv"
	"strings"

	"cosmos-pkn/models"
)

// actionRow ist eine Zeile der STITCH actions-Datei
// (item_id_a, item_id_b, mode, action, a_is_acting, score).
type actionRow struct {
	ItemA     string
	ItemB     string
	Mode      string
	Action    string
	AIsActing bool
	Score     int
}

var (
	chemicalRe = regexp.MustCompile(`^CID[ms]?\d+$`)
	proteinRe  = regexp.MustCompile(`^ENSP\d{11}$`)
)

// parseActionRow zerlegt eine Tab-getrennte Zeile. ok == false für
// Header- und zu kurze Zeilen.
func parseActionRow(line string) (actionRow, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 6 || fields[0] == "item_id_a" {
		return actionRow{}, false
	}
	score, err := strconv.Atoi(strings.TrimSpace(fields[5]))
	if err != nil {
		return actionRow{}, false
	}
	return actionRow{
		ItemA:     fields[0],
		ItemB:     fields[1],
		Mode:      fields[2],
		Action:    fields[3],
		AIsActing: fields[4] == "t" || fields[4] == "true",
		Score:     score,
	}, true
}

// splitItem trennt den Organismus-Präfix eines Protein-Identifiers ab
// ("9606.ENSP00000354587" → 9606, "ENSP00000354587"). Chemikalien haben
// keinen Präfix und liefern taxID 0.
func splitItem(item string) (taxID int, id string) {
	dot := strings.IndexByte(item, '.')
	if dot < 0 {
		return 0, item
	}
	tax, err := strconv.Atoi(item[:dot])
	if err != nil {
		return 0, item
	}
	return tax, item[dot+1:]
}

// modeFor mappt den STITCH-Modus auf den kanonischen Mode.
func modeFor(raw string) models.Mode {
	switch raw {
	case "activation":
		return models.ModeActivation
	case "inhibition":
		return models.ModeInhibition
	case "binding":
		return models.ModeBinding
	case "pred_bind":
		return models.ModePredBind
	case "expression":
		return models.ModeExpression
	case "reaction":
		return models.ModeReaction
	case "catalysis":
		return models.ModeCatalysis
	default:
		return models.ModeUnknown
	}
}
