package recon3d

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
)

var httpClient = &http.Client{Timeout: 30 * time.Minute}

const humanTaxID = 9606

// Fetcher implementiert das Provider-Interface für Recon3D-Transporter.
// Die Quelle liefert ausschließlich Membrantransport: Metaboliten, die in
// einer Reaktion mit unterschiedlichen Kompartiment-Codes auf beiden
// Seiten stehen. Allgemeine Stoffwechselreaktionen deckt Human-GEM ab.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Recon3D Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "recon3d"
}

// Scored meldet, dass Recon3D keinen Evidenz-Score trägt.
func (f *Fetcher) Scored() bool {
	return false
}

// Interactions lädt das BiGG-Modell und expandiert jede Transport-Reaktion
// in einen Vier-Kanten-Zyklus pro Transporter (bzw. zwei Kanten, wenn die
// Reaktion irreversibel ist). Recon3D ist eine reine Human-Rekonstruktion;
// für andere Organismen bleibt die Quelle leer.
func (f *Fetcher) Interactions(ctx context.Context, opts providers.Options) (models.RecordIterator, error) {
	log := f.Logger.With(zap.String("source", f.Name()))

	if opts.Organism != 0 && opts.Organism != humanTaxID {
		log.Warn("Recon3D deckt nur Human ab, Quelle bleibt leer",
			zap.Int("organism", opts.Organism))
		return models.NewSliceIterator(nil), nil
	}

	log.Info("Starte Recon3D-Abruf.")
	model, err := f.fetchModel(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("Modell geladen", zap.Int("reactions", len(model.Reactions)))

	records := f.expand(model, opts)
	records = f.applyDegreeCap(records, log)

	if opts.MaxRecords > 0 && len(records) > opts.MaxRecords {
		records = records[:opts.MaxRecords]
	}

	log.Info("Recon3D-Abruf abgeschlossen", zap.Int("records", len(records)))
	return models.NewSliceIterator(records), nil
}

// fetchModel lädt und dekodiert die JSON-Modelldatei.
func (f *Fetcher) fetchModel(ctx context.Context) (*biggModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Config.Recon3DURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recon3d download: unexpected status %s", resp.Status)
	}

	var model biggModel
	if err := json.NewDecoder(resp.Body).Decode(&model); err != nil {
		return nil, fmt.Errorf("recon3d model: %w", err)
	}
	return &model, nil
}

// expand erzeugt pro Transport-Event und Transporter die Zyklus-Kanten.
// Reaktionen ohne Gene-Reaction-Rule bekommen ein Pseudo-Enzym mit der
// Reaktions-ID als Knoten.
func (f *Fetcher) expand(model *biggModel, opts providers.Options) []models.Interaction {
	seen := map[models.EdgeKey]bool{}
	var records []models.Interaction

	for i := range model.Reactions {
		rxn := &model.Reactions[i]
		events := transportedMetabolites(rxn)
		if len(events) == 0 {
			continue
		}

		enzymes := parseGeneRule(rxn.GeneReactionRule)
		orphan := len(enzymes) == 0
		if orphan {
			enzymes = []enzyme{{ID: rxn.ID}}
		}

		includeReverse := rxn.reversible() && opts.IncludeReverse

		for _, enz := range enzymes {
			entity := models.Entity{
				ID:        enz.ID,
				Type:      models.EntityProtein,
				NCBITaxID: humanTaxID,
			}
			if orphan {
				entity = models.Entity{ID: enz.ID, Type: models.EntityPseudoEnzyme}
			}

			for _, ev := range events {
				met := models.Entity{ID: ev.BaseID, Type: models.EntityMetabolite}
				cycle := providers.TransporterCycleBetween(
					met, entity, ev.FromComp, ev.ToComp,
					rxn.ID, "Recon3D", models.KindTransport, includeReverse,
				)
				for _, rec := range cycle {
					rec.Attrs.Orphan = orphan
					rec.Attrs.EnzymeComplex = enz.Complex
					// Transportiert derselbe Metabolit mehrere Kompartiment-
					// Paare einer Reaktion, kollabieren die Kanten auf einen
					// Schlüssel; die erste gewinnt.
					key := rec.Key()
					if seen[key] {
						continue
					}
					seen[key] = true
					records = append(records, rec)
				}
			}
		}
	}
	return records
}

// applyDegreeCap entfernt alle Kanten von Metaboliten, deren Kantengrad
// den konfigurierten Cap überschreitet (Cofaktoren).
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
