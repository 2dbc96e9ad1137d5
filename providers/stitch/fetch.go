package stitch

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
)

var httpClient = &http.Client{Timeout: 30 * time.Minute}

// Fetcher implementiert das Provider-Interface für STITCH
// (chemical-protein Interaktionen mit Evidenz-Score).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen STITCH Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "stitch"
}

// Scored meldet, dass STITCH-Records einen Evidenz-Score tragen und damit
// dem Score-/Modus-Filter unterliegen.
func (f *Fetcher) Scored() bool {
	return true
}

// Interactions streamt die organismus-spezifische actions-Datei. Die Datei
// ist zu groß, um sie vollständig zu puffern; der Iterator dekodiert
// Zeile für Zeile direkt aus dem gzip-Stream.
func (f *Fetcher) Interactions(ctx context.Context, opts providers.Options) (models.RecordIterator, error) {
	fileURL := fmt.Sprintf("%s/actions.v5.0/%d.actions.v5.0.tsv.gz",
		f.Config.StitchBaseURL, opts.Organism)
	log := f.Logger.With(zap.String("source", f.Name()))
	log.Info("Starte STITCH-Abruf.", zap.String("url", fileURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stitch download: unexpected status %s", resp.Status)
	}
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("stitch download: %w", err)
	}

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	allowed := make(map[models.Mode]bool, len(opts.AllowedModes))
	for _, m := range opts.AllowedModes {
		allowed[m] = true
	}

	return &actionIterator{
		body:    resp.Body,
		gz:      gz,
		scanner: scanner,
		opts:    opts,
		allowed: allowed,
		seen:    map[models.EdgeKey]bool{},
		log:     log,
	}, nil
}

// actionIterator liest die actions-Datei lazy. Score- und Modus-Schwellen
// werden bereits hier angewendet, damit Duplikat-Paare (gleiche Chemikalie,
// gleiches Protein, mehrere Modi) nach dem Filtern deterministisch auf die
// zuerst gesehene Zeile dedupliziert werden können.
type actionIterator struct {
	body    io.ReadCloser
	gz      *gzip.Reader
	scanner *bufio.Scanner
	opts    providers.Options
	allowed map[models.Mode]bool
	seen    map[models.EdgeKey]bool
	log     *zap.Logger

	cur     *models.Interaction
	emitted int
	dropped int
	err     error
	closed  bool
}

func (it *actionIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if it.opts.MaxRecords > 0 && it.emitted >= it.opts.MaxRecords {
		it.close()
		return false
	}
	for it.scanner.Scan() {
		row, ok := parseActionRow(it.scanner.Text())
		if !ok {
			continue
		}
		rec, ok := it.record(row)
		if !ok {
			it.dropped++
			continue
		}
		key := rec.Key()
		if it.seen[key] {
			continue
		}
		it.seen[key] = true
		it.cur = rec
		it.emitted++
		return true
	}
	it.err = it.scanner.Err()
	it.close()
	return false
}

func (it *actionIterator) Record() *models.Interaction {
	return it.cur
}

func (it *actionIterator) Err() error {
	return it.err
}

func (it *actionIterator) close() {
	if it.closed {
		return
	}
	it.closed = true
	it.gz.Close()
	it.body.Close()
	it.log.Info("STITCH-Abruf abgeschlossen",
		zap.Int("records", it.emitted),
		zap.Int("dropped", it.dropped),
	)
}

// record orientiert eine Zeile als Chemikalie → Protein und prüft
// Identifier-Grammatik, Organismus, Score und Modus. ok == false bedeutet
// verwerfen, nicht abbrechen.
func (it *actionIterator) record(row actionRow) (*models.Interaction, bool) {
	mode := modeFor(row.Mode)
	if row.Score < it.opts.ScoreThreshold || !it.allowed[mode] {
		return nil, false
	}

	taxA, idA := splitItem(row.ItemA)
	taxB, idB := splitItem(row.ItemB)

	var chem, prot string
	var protTax int
	switch {
	case chemicalRe.MatchString(idA) && proteinRe.MatchString(idB):
		// Die Datei listet beide Richtungen; wir behalten nur die Zeilen,
		// in denen die Chemikalie der handelnde Partner ist.
		if !row.AIsActing {
			return nil, false
		}
		chem, prot, protTax = idA, idB, taxB
	case proteinRe.MatchString(idA) && chemicalRe.MatchString(idB):
		if row.AIsActing {
			return nil, false
		}
		chem, prot, protTax = idB, idA, taxA
	default:
		it.log.Debug("Verwerfe Zeile mit ungültigen Identifiern",
			zap.String("item_a", row.ItemA), zap.String("item_b", row.ItemB))
		return nil, false
	}

	if it.opts.Organism != 0 && protTax != it.opts.Organism {
		return nil, false
	}

	return &models.Interaction{
		Source: models.Entity{
			ID:             chem,
			Type:           models.EntityMetabolite,
			Stereospecific: strings.HasPrefix(chem, "CIDs"),
		},
		Target: models.Entity{
			ID:        prot,
			Type:      models.EntityProtein,
			NCBITaxID: protTax,
		},
		Mode:     mode,
		Kind:     models.KindOther,
		Mor:      models.MorFor(mode),
		Score:    row.Score,
		Directed: true,
		Attrs: models.Attrs{
			SourceMode: row.Mode,
		},
		Resource: "STITCH",
	}, true
}
