package gem

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// gemModel ist der relevante Ausschnitt eines genomweiten
// Stoffwechselmodells im YAML-Format (Metabolic-Atlas-Konvention).
type gemModel struct {
	Metabolites []gemMetabolite `yaml:"metabolites"`
	Reactions   []gemReaction   `yaml:"reactions"`
}

type gemMetabolite struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Compartment string `yaml:"compartment"`
}

type gemReaction struct {
	ID               string             `yaml:"id"`
	Metabolites      map[string]float64 `yaml:"metabolites"`
	LowerBound       float64            `yaml:"lower_bound"`
	UpperBound       float64            `yaml:"upper_bound"`
	GeneReactionRule string             `yaml:"gene_reaction_rule"`
	Subsystem        stringList         `yaml:"subsystem"`
}

// stringList akzeptiert sowohl einen Skalar als auch eine Sequenz; die
// Modelle sind in diesem Punkt nicht einheitlich.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = stringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*s = stringList(values)
		return nil
	}
	return fmt.Errorf("subsystem: unexpected YAML node kind %d", node.Kind)
}

// isTransport prüft, ob die Reaktion einem Transport-Subsystem angehört.
func (r *gemReaction) isTransport() bool {
	for _, sub := range r.Subsystem {
		if strings.Contains(strings.ToLower(sub), "transport") {
			return true
		}
	}
	return false
}

// direction liefert die effektive Richtung der Reaktion: -1 wenn die
// Flussgrenzen nur Rückfluss erlauben, sonst +1.
func (r *gemReaction) direction() float64 {
	if r.LowerBound+r.UpperBound < 0 {
		return -1
	}
	return 1
}

// reversible prüft, ob die Reaktion in beide Richtungen laufen kann.
func (r *gemReaction) reversible() bool {
	return r.LowerBound < 0 && r.UpperBound > 0
}

// enzyme ist ein aus der Gene-Reaction-Rule abgeleiteter Katalysator:
// ein einzelnes Gen oder ein mit '_' verbundener Komplex.
type enzyme struct {
	ID      string
	Complex bool
}

// parseGeneRule zerlegt eine Gene-Reaction-Rule in Isoenzyme. OR trennt
// alternative Katalysatoren, AND bildet Komplexe; die Komplex-Mitglieder
// werden sortiert, damit die ID deterministisch ist. Klammern sind in den
// Modellen rein dekorativ und werden entfernt.
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
			if g = strings.TrimSpace(g); g != "" {
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

// stripCompartment entfernt den Kompartiment-Suffix einer Metabolit-ID
// (MAM01039c → MAM01039), sofern der Suffix zum bekannten Kompartiment
// des Metaboliten passt.
func stripCompartment(id, compartment string) string {
	if compartment != "" && strings.HasSuffix(id, compartment) && len(id) > len(compartment) {
		return id[:len(id)-len(compartment)]
	}
	return id
}
