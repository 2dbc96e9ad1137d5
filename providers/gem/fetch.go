package gem

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
)

var httpClient = &http.Client{Timeout: 30 * time.Minute}

// Fetcher implementiert das Provider-Interface für genomweite
// Stoffwechselmodelle (GEM, z.B. Human-GEM). Die Quelle liefert
// Reaktionssemantik: Metabolit → Enzym → Metabolit Kanten mit
// Reaktions-IDs, expliziten Rückrichtungen und Orphan-Pseudo-Enzymen.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen GEM Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "gem"
}

// Scored meldet, dass GEM-Rekonstruktionen keinen Evidenz-Score tragen.
func (f *Fetcher) Scored() bool {
	return false
}

// Interactions lädt das Modell und expandiert jede Reaktion in Kanten.
// Hochgradige Metaboliten (Cofaktoren wie ATP oder H2O) werden über den
// Degree-Cap in einem zweiten Durchgang vollständig entfernt.
func (f *Fetcher) Interactions(ctx context.Context, opts providers.Options) (models.RecordIterator, error) {
	log := f.Logger.With(
		zap.String("source", f.Name()),
		zap.String("model", f.Config.GEMName),
	)
	log.Info("Starte GEM-Abruf.")

	model, err := f.fetchModel(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("Modell geladen",
		zap.Int("metabolites", len(model.Metabolites)),
		zap.Int("reactions", len(model.Reactions)),
	)

	compartments := make(map[string]string, len(model.Metabolites))
	for _, m := range model.Metabolites {
		compartments[m.ID] = m.Compartment
	}

	records := f.expand(model, compartments, opts)
	records = f.applyDegreeCap(records, log)

	if opts.MaxRecords > 0 && len(records) > opts.MaxRecords {
		records = records[:opts.MaxRecords]
	}

	log.Info("GEM-Abruf abgeschlossen", zap.Int("records", len(records)))
	return models.NewSliceIterator(records), nil
}

// fetchModel lädt und dekodiert die YAML-Modelldatei.
func (f *Fetcher) fetchModel(ctx context.Context) (*gemModel, error) {
	modelURL := fmt.Sprintf("%s/%s/main/model/%s.yml",
		f.Config.GEMBaseURL, f.Config.GEMName, f.Config.GEMName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gem download: unexpected status %s", resp.Status)
	}

	var model gemModel
	if err := yaml.NewDecoder(resp.Body).Decode(&model); err != nil {
		return nil, fmt.Errorf("gem model: %w", err)
	}
	return &model, nil
}

// expand erzeugt die Kanten aller Reaktionen. Reaktionen ohne
// Gene-Reaction-Rule bekommen ein Pseudo-Enzym mit der Reaktions-ID als
// Knoten, damit der Metabolit-Fluss nicht abreißt.
func (f *Fetcher) expand(model *gemModel, compartments map[string]string, opts providers.Options) []models.Interaction {
	seen := map[models.EdgeKey]bool{}
	var records []models.Interaction

	emit := func(rec models.Interaction) {
		// Transport-Reaktionen führen denselben Metaboliten in mehreren
		// Kompartimenten; nach dem Suffix-Strip kollabieren diese Kanten
		// und nur die erste wird behalten.
		key := rec.Key()
		if seen[key] {
			return
		}
		seen[key] = true
		records = append(records, rec)
	}

	for i := range model.Reactions {
		rxn := &model.Reactions[i]
		dir := rxn.direction()

		var reactants, products []metOccurrence
		for metID, coeff := range rxn.Metabolites {
			comp := compartments[metID]
			occ := metOccurrence{
				BaseID:      stripCompartment(metID, comp),
				Compartment: comp,
			}
			switch {
			case coeff*dir < 0:
				reactants = append(reactants, occ)
			case coeff*dir > 0:
				products = append(products, occ)
			}
		}
		// Map-Iteration ist zufällig; für deterministische Ausgabe sortieren.
		sortOccurrences(reactants)
		sortOccurrences(products)

		resource := "GEM:" + f.Config.GEMName
		kind := models.KindCatalysis
		if rxn.isTransport() {
			resource = "GEM_transporter:" + f.Config.GEMName
			kind = models.KindTransport
		}

		enzymes := parseGeneRule(rxn.GeneReactionRule)
		orphan := len(enzymes) == 0
		if orphan {
			enzymes = []enzyme{{ID: rxn.ID}}
		}

		for _, enz := range enzymes {
			entity := models.Entity{
				ID:        enz.ID,
				Type:      models.EntityProtein,
				NCBITaxID: opts.Organism,
			}
			if orphan {
				entity = models.Entity{ID: enz.ID, Type: models.EntityPseudoEnzyme}
			}
			attrs := models.Attrs{
				Orphan:        orphan,
				EnzymeComplex: enz.Complex,
			}

			for _, occ := range reactants {
				emit(models.Interaction{
					Source:     models.Entity{ID: occ.BaseID, Type: models.EntityMetabolite},
					Target:     entity,
					ReactionID: rxn.ID,
					Mode:       models.ModeReaction,
					Kind:       kind,
					Directed:   true,
					Locations:  locations(occ.Compartment),
					Attrs:      attrs,
					Resource:   resource,
				})
			}
			for _, occ := range products {
				emit(models.Interaction{
					Source:     entity,
					Target:     models.Entity{ID: occ.BaseID, Type: models.EntityMetabolite},
					ReactionID: rxn.ID,
					Mode:       models.ModeReaction,
					Kind:       kind,
					Directed:   true,
					Locations:  locations(occ.Compartment),
					Attrs:      attrs,
					Resource:   resource,
				})
			}

			if !rxn.reversible() || !opts.IncludeReverse {
				continue
			}
			for _, occ := range products {
				emit(models.Interaction{
					Source:     models.Entity{ID: occ.BaseID, Type: models.EntityMetabolite},
					Target:     entity,
					ReactionID: rxn.ID,
					Mode:       models.ModeReaction,
					Kind:       kind,
					Directed:   true,
					Reverse:    true,
					Locations:  locations(occ.Compartment),
					Attrs:      attrs,
					Resource:   resource,
				})
			}
			for _, occ := range reactants {
				emit(models.Interaction{
					Source:     entity,
					Target:     models.Entity{ID: occ.BaseID, Type: models.EntityMetabolite},
					ReactionID: rxn.ID,
					Mode:       models.ModeReaction,
					Kind:       kind,
					Directed:   true,
					Reverse:    true,
					Locations:  locations(occ.Compartment),
					Attrs:      attrs,
					Resource:   resource,
				})
			}
		}
	}
	return records
}

// applyDegreeCap entfernt alle Kanten von Metaboliten, deren Kantengrad
// den konfigurierten Cap überschreitet. Solche Knoten sind Cofaktoren und
// würden das Netz mit biologisch bedeutungslosen Abkürzungen fluten.
func (f *Fetcher) applyDegreeCap(records []models.Interaction, log *zap.Logger) []models.Interaction {
	maxDegree := f.Config.MetabMaxDegree
	if maxDegree <= 0 {
		return records
	}

	degree := map[string]int{}
	for i := range records {
		if records[i].Source.Type == models.EntityMetabolite {
			degree[records[i].Source.ID]++
		}
		if records[i].Target.Type == models.EntityMetabolite {
			degree[records[i].Target.ID]++
		}
	}

	capped := map[string]bool{}
	for id, d := range degree {
		if d > maxDegree {
			capped[id] = true
		}
	}
	if len(capped) == 0 {
		return records
	}

	kept := records[:0]
	for i := range records {
		if capped[records[i].Source.ID] || capped[records[i].Target.ID] {
			continue
		}
		kept = append(kept, records[i])
	}
	log.Info("Degree-Cap angewendet",
		zap.Int("capped_metabolites", len(capped)),
		zap.Int("dropped_edges", len(records)-len(kept)),
	)
	return kept
}

// metOccurrence ist das Auftreten eines Metaboliten in einer Reaktion.
type metOccurrence struct {
	BaseID      string
	Compartment string
}

func sortOccurrences(occ []metOccurrence) {
	sort.Slice(occ, func(i, j int) bool {
		if occ[i].BaseID != occ[j].BaseID {
			return occ[i].BaseID < occ[j].BaseID
		}
		return occ[i].Compartment < occ[j].Compartment
	})
}

func locations(compartment string) []string {
	if compartment == "" {
		return nil
	}
	return []string{compartment}
}
