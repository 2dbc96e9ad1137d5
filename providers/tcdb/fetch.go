package tcdb

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
	"cosmos-pkn/services"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// Fetcher implementiert das Provider-Interface für TCDB (Transporter und
// ihre Substrate). Die Substrat-Tabelle kommt von TCDB selbst, die
// subzelluläre Lokalisierung der Transporter aus UniProt.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen TCDB Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "tcdb"
}

// Scored meldet, dass TCDB keinen Evidenz-Score trägt.
func (f *Fetcher) Scored() bool {
	return false
}

// Interactions lädt Substrate und Transporter-Lokalisierungen und erzeugt
// pro (Transporter, Substrat, Kompartiment) einen Transport-Zyklus.
func (f *Fetcher) Interactions(ctx context.Context, opts providers.Options) (models.RecordIterator, error) {
	log := f.Logger.With(zap.String("source", f.Name()))
	log.Info("Starte TCDB-Abruf.")

	substrates, err := f.fetchSubstrates(ctx)
	if err != nil {
		return nil, err
	}
	transporters, err := f.fetchTransporters(ctx, opts.Organism)
	if err != nil {
		return nil, err
	}

	resolver := services.TCDBLocations()
	var records []models.Interaction
	dropped := 0

	for _, t := range transporters {
		locs := resolveLocations(resolver, t.LocationText)
		other := nonCytosolic(locs)
		if len(other) == 0 {
			dropped++
			continue
		}

		chebis := map[string]bool{}
		for _, tcid := range t.TCIDs {
			for _, chebi := range substrates[tcid] {
				chebis[chebi] = true
			}
		}
		if len(chebis) == 0 {
			dropped++
			continue
		}

		transporter := models.Entity{
			ID:        t.Accession,
			Type:      models.EntityProtein,
			NCBITaxID: opts.Organism,
		}
		for _, chebi := range sortedKeys(chebis) {
			met := models.Entity{ID: chebi, Type: models.EntityMetabolite}
			for _, comp := range other {
				reactionID := fmt.Sprintf("TCDB:%s:%s:%s", t.Accession, chebi, comp)
				records = append(records, providers.TransporterCycle(
					met, transporter, comp, reactionID, "TCDB",
					models.KindTransport, true,
				)...)
			}
		}
		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			records = records[:opts.MaxRecords]
			break
		}
	}

	log.Info("TCDB-Abruf abgeschlossen",
		zap.Int("records", len(records)),
		zap.Int("dropped_transporters", dropped),
	)
	return models.NewSliceIterator(records), nil
}

// fetchSubstrates lädt die TC-ID → Substrat-Tabelle.
func (f *Fetcher) fetchSubstrates(ctx context.Context) (map[string][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Config.TCDBBaseURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tcdb substrates: unexpected status %s", resp.Status)
	}

	substrates := map[string][]string{}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if tcid, chebis, ok := parseSubstrateLine(scanner.Text()); ok {
			substrates[tcid] = append(substrates[tcid], chebis...)
		}
	}
	return substrates, scanner.Err()
}

// fetchTransporters lädt Accession, TC-Querverweise und Lokalisierung aller
// Transporter des Organismus aus UniProt.
func (f *Fetcher) fetchTransporters(ctx context.Context, organism int) ([]transporterRow, error) {
	streamURL := fmt.Sprintf(
		"%s/stream?query=database:tcdb+AND+organism_id:%d&fields=accession,xref_tcdb,cc_subcellular_location&format=tsv",
		f.Config.UniProtBaseURL, organism)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("uniprot stream: unexpected status %s", resp.Status)
	}

	var rows []transporterRow
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if row, ok := parseTransporterRow(scanner.Text()); ok {
			rows = append(rows, row)
		}
	}
	return rows, scanner.Err()
}

// resolveLocations mappt den Location-Freitext auf eindeutige
// Kompartiment-Codes.
func resolveLocations(resolver *services.LocationResolver, text string) []string {
	seen := map[string]bool{}
	var codes []string
	for _, name := range locationCandidates(text) {
		if code, ok := resolver.Resolve(name); ok && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// nonCytosolic behält die Kompartimente, aus denen transportiert wird.
func nonCytosolic(codes []string) []string {
	var other []string
	for _, c := range codes {
		if c != "c" {
			other = append(other, c)
		}
	}
	return other
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
