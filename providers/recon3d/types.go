package recon3d

import (
	"regexp"
	"sort"
	"strings"
)

// biggModel ist der relevante Ausschnitt eines BiGG-Modells im JSON-Format.
type biggModel struct {
	Reactions []biggReaction `json:"reactions"`
}

type biggReaction struct {
	ID               string             `json:"id"`
	Metabolites      map[string]float64 `json:"metabolites"`
	LowerBound       float64            `json:"lower_bound"`
	UpperBound       float64            `json:"upper_bound"`
	GeneReactionRule string             `json:"gene_reaction_rule"`
}

// direction liefert die effektive Richtung der Reaktion: -1 wenn die
// Flussgrenzen nur Rückfluss erlauben, sonst +1.
func (r *biggReaction) direction() float64 {
	if r.LowerBound+r.UpperBound < 0 {
		return -1
	}
	return 1
}

// reversible prüft, ob die Reaktion in beide Richtungen laufen kann.
func (r *biggReaction) reversible() bool {
	return r.LowerBound < 0 && r.UpperBound > 0
}

// splitCompartment zerlegt eine BiGG-Metabolit-ID in Basis-ID und
// Kompartiment-Code. BiGG kodiert das Kompartiment als einzelnen
// Buchstaben nach dem letzten Unterstrich: "atp_c" → ("atp", "c").
// Passt der letzte Abschnitt nicht, bleibt die ID unverändert.
func splitCompartment(metID string) (string, string) {
	idx := strings.LastIndex(metID, "_")
	if idx > 0 && idx == len(metID)-2 {
		suffix := metID[idx+1:]
		if suffix[0] >= 'a' && suffix[0] <= 'z' {
			return metID[:idx], suffix
		}
	}
	return metID, ""
}

// enzyme ist ein aus der Gene-Reaction-Rule abgeleiteter Transporter:
// ein einzelnes Entrez-Gen oder ein mit '_' verbundener Komplex.
type enzyme struct {
	ID      string
	Complex bool
}

var isoformRe = regexp.MustCompile(`_AT\d+$`)

// parseGeneRule zerlegt eine Recon3D-Gene-Reaction-Rule in Isoenzyme.
// Entrez-IDs tragen "_ATn"-Isoform-Suffixe, die vor dem Komplex-Bau
// entfernt werden. OR trennt alternative Transporter, AND bildet Komplexe
// mit sortierten Mitgliedern; Klammern sind dekorativ.
func parseGeneRule(rule string) []enzyme {
	rule = strings.NewReplacer("(", " ", ")", " ").Replace(rule)
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	var enzymes []enzyme
	seen := map[string]bool{}
	for _, alt := range strings.Split(rule, " or ") {
		var genes []string
		for _, g := range strings.Split(alt, " and ") {
			g = isoformRe.ReplaceAllString(strings.TrimSpace(g), "")
			if g != "" {
				genes = append(genes, g)
			}
		}
		if len(genes) == 0 {
			continue
		}
		sort.Strings(genes)
		id := strings.Join(genes, "_")
		if seen[id] {
			continue
		}
		seen[id] = true
		enzymes = append(enzymes, enzyme{ID: id, Complex: len(genes) > 1})
	}
	return enzymes
}

// transportEvent ist ein Metabolit, der in einer Reaktion die Membran
// quert: gleiche Basis-ID auf beiden Seiten, verschiedene Kompartimente.
type transportEvent struct {
	BaseID   string
	FromComp string
	ToComp   string
}

// transportedMetabolites erkennt Membrantransport: die Basis-ID erscheint
// auf Edukt- und Produktseite mit unterschiedlichen Kompartiment-Codes.
// Cofaktoren, die im selben Kompartiment verbraucht und regeneriert
// werden, erzeugen kein Event.
func transportedMetabolites(rxn *biggReaction) []transportEvent {
	dir := rxn.direction()
	reactants := map[string][]string{}
	products := map[string][]string{}

	for metID, coeff := range rxn.Metabolites {
		base, comp := splitCompartment(metID)
		switch {
		case coeff*dir < 0:
			reactants[base] = append(reactants[base], comp)
		case coeff*dir > 0:
			products[base] = append(products[base], comp)
		}
	}

	var events []transportEvent
	for base, inComps := range reactants {
		outComps, ok := products[base]
		if !ok {
			continue
		}
		for _, in := range inComps {
			for _, out := range outComps {
				if in != out {
					events = append(events, transportEvent{BaseID: base, FromComp: in, ToComp: out})
				}
			}
		}
	}
	// Map-Iteration ist zufällig; für deterministische Ausgabe sortieren.
	sort.Slice(events, func(i, j int) bool {
		if events[i].BaseID != events[j].BaseID {
			return events[i].BaseID < events[j].BaseID
		}
		if events[i].FromComp != events[j].FromComp {
			return events[i].FromComp < events[j].FromComp
		}
		return events[i].ToComp < events[j].ToComp
	})
	return events
}
