package brenda

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
)

var httpClient = &http.Client{Timeout: 10 * time.Minute}

// Fetcher implementiert das Provider-Interface für BRENDA
// (allosterische Regulation von Enzymen durch Metaboliten).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen BRENDA Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "brenda"
}

// Scored meldet, dass BRENDA keinen Evidenz-Score trägt.
func (f *Fetcher) Scored() bool {
	return false
}

// Interactions lädt die Regulations-Tabelle und erzeugt gerichtete
// Compound → Enzym Kanten. Regulationen ohne Aktivierungs- oder
// Hemmungs-Richtung tragen keine kausale Information und werden verworfen.
func (f *Fetcher) Interactions(ctx context.Context, opts providers.Options) (models.RecordIterator, error) {
	log := f.Logger.With(zap.String("source", f.Name()))
	log.Info("Starte BRENDA-Abruf.")

	fileURL := fmt.Sprintf("%s/allosteric_regulation.tsv", f.Config.BrendaBaseURL)
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
		return nil, fmt.Errorf("brenda download: unexpected status %s", resp.Status)
	}

	seen := map[models.EdgeKey]models.Mode{}
	var records []models.Interaction
	dropped := 0
	conflicts := 0

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		row, ok := parseRegulationRow(scanner.Text())
		if !ok {
			continue
		}
		if opts.Organism != 0 && row.TaxID != opts.Organism {
			continue
		}
		mode := modeFor(row.Action)
		if models.MorFor(mode) == 0 {
			dropped++
			continue
		}

		// ChEBI-ID bevorzugt, sonst der kanonisierte Compound-Name.
		compoundID := row.ChebiID
		if !chebiRe.MatchString(compoundID) {
			compoundID = normalizeCompound(row.Compound)
		}
		if compoundID == "" {
			dropped++
			continue
		}

		rec := models.Interaction{
			Source: models.Entity{
				ID:   compoundID,
				Type: models.EntityMetabolite,
			},
			Target: models.Entity{
				ID:        row.UniProt,
				Type:      models.EntityProtein,
				NCBITaxID: row.TaxID,
			},
			Mode:     mode,
			Kind:     models.KindAllosteric,
			Mor:      models.MorFor(mode),
			Directed: true,
			Attrs: models.Attrs{
				SourceMode: row.Action,
				Extra:      map[string]string{"brenda_ec": row.EC},
			},
			Resource: "BRENDA",
		}

		// Synonyme kollabieren hier; widersprüchliche Modi für dasselbe
		// Paar behalten die zuerst gesehene Zeile.
		key := rec.Key()
		if prev, dup := seen[key]; dup {
			if prev != mode {
				conflicts++
				log.Debug("Widersprüchliche Regulation, behalte erste",
					zap.String("compound", compoundID),
					zap.String("uniprot", row.UniProt))
			}
			continue
		}
		seen[key] = mode
		records = append(records, rec)

		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Info("BRENDA-Abruf abgeschlossen",
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped),
		zap.Int("conflicts", conflicts),
	)
	return models.NewSliceIterator(records), nil
}
