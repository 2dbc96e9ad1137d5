package mrclinksdb

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
	"cosmos-pkn/services"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// Fetcher implementiert das Provider-Interface für MRCLinksDB
// (kuratierte Metabolit-Rezeptor-Paare).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen MRCLinksDB Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "mrclinksdb"
}

// Scored meldet, dass MRCLinksDB keinen Evidenz-Score trägt.
func (f *Fetcher) Scored() bool {
	return false
}

// Interactions lädt die Paar-Tabelle und erzeugt gerichtete
// Metabolit → Rezeptor Kanten mit der Rezeptor-Lokalisierung.
func (f *Fetcher) Interactions(ctx context.Context, opts providers.Options) (models.RecordIterator, error) {
	log := f.Logger.With(zap.String("source", f.Name()))
	log.Info("Starte MRCLinksDB-Abruf.")

	fileURL := fmt.Sprintf("%s/human_pairs.tsv", f.Config.MRCLinksBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mrclinksdb download: unexpected status %s", resp.Status)
	}

	resolver := services.TCDBLocations()
	seen := map[models.EdgeKey]bool{}
	var records []models.Interaction
	dropped := 0

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		row, ok := parsePairRow(scanner.Text())
		if !ok {
			dropped++
			continue
		}

		locations := resolver.ResolveAll(row.Location)
		if len(locations) > 2 {
			locations = locations[:2]
		}

		rec := models.Interaction{
			Source: models.Entity{
				ID:   row.PubChemCID,
				Type: models.EntityMetabolite,
			},
			Target: models.Entity{
				ID:        row.UniProt,
				Type:      models.EntityProtein,
				NCBITaxID: opts.Organism,
			},
			Mode:      models.ModeBinding,
			Kind:      models.KindReceptor,
			Directed:  true,
			Locations: locations,
			Attrs: models.Attrs{
				Extra: map[string]string{
					"mrclinksdb_metabolite": row.Metabolite,
					"mrclinksdb_gene":       row.GeneSymbol,
				},
			},
			Resource: "MRCLinksDB",
		}

		key := rec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, rec)

		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Info("MRCLinksDB-Abruf abgeschlossen",
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped),
	)
	return models.NewSliceIterator(records), nil
}
