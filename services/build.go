package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
	"cosmos-pkn/providers"
	"cosmos-pkn/storage"
)

// Subset-Namen für Teilnetz-Builds.
const (
	SubsetTransporter = "transporter"
	SubsetReceptor    = "receptor"
	SubsetMetabolic   = "metabolic"
)

// BuildParams sind die Parameter eines einzelnen Build-Laufs.
type BuildParams struct {
	// Sources sind die Namen der einzubeziehenden Quellen, in
	// Merge-Reihenfolge. Unbekannte Namen sind ein Konfigurationsfehler.
	Sources []string `json:"sources"`

	Organism       int           `json:"ncbi_tax_id"`
	ScoreThreshold int           `json:"score_threshold"`
	AllowedModes   []models.Mode `json:"allowed_modes"`
	IncludeOrphans bool          `json:"include_orphans"`
	IncludeReverse bool          `json:"include_reverse"`
	TranslateIDs   bool          `json:"translate_ids"`
	MaxRecords     int           `json:"max_records"`

	// SourceThresholds überschreibt den globalen Score-Schwellwert pro
	// Quelle (nur wirksam für Quellen mit Evidenz-Score).
	SourceThresholds map[string]int `json:"source_thresholds,omitempty"`

	// Subset beschränkt das Netz auf eine Kategorie ("", "transporter",
	// "receptor" oder "metabolic").
	Subset string `json:"subset,omitempty"`
}

// DefaultParams leitet die Default-Build-Parameter aus der Konfiguration ab.
func DefaultParams(cfg *config.Config) BuildParams {
	var modes []models.Mode
	for _, m := range strings.Split(cfg.AllowedModes, ",") {
		if m = strings.TrimSpace(m); m != "" {
			modes = append(modes, models.Mode(m))
		}
	}
	var sources []string
	for _, s := range strings.Split(cfg.EnabledSources, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return BuildParams{
		Sources:        sources,
		Organism:       cfg.Organism,
		ScoreThreshold: cfg.ScoreThreshold,
		AllowedModes:   modes,
		IncludeOrphans: cfg.IncludeOrphans,
		IncludeReverse: cfg.GEMIncludeReverse,
		TranslateIDs:   cfg.TranslateIDs,
		MaxRecords:     cfg.MaxRecords,
	}
}

// BuildService orchestriert den gesamten Build-Prozess: Provider-Abruf,
// Filter, Merge, ID-Übersetzung, Blacklist, Formatierung, Export.
type BuildService struct {
	Config    *config.Config
	DB        *gorm.DB
	S3Client  *s3.Client
	Logger    *zap.Logger
	Providers []providers.Provider
	Blacklist []BlacklistEntry

	// Translator vereinheitlicht Endpunkt-IDs nach dem Merge. nil
	// deaktiviert die Übersetzungsstufe unabhängig von den Parametern.
	Translator EntityTranslator
}

// NewBuildService erstellt eine neue Instanz des BuildService. DB und
// S3Client dürfen nil sein (z.B. im CLI-Einsatz ohne Bookkeeping).
func NewBuildService(
	cfg *config.Config,
	db *gorm.DB,
	s3Client *s3.Client,
	logger *zap.Logger,
	provs []providers.Provider,
	blacklist []BlacklistEntry,
) *BuildService {
	return &BuildService{
		Config:    cfg,
		DB:        db,
		S3Client:  s3Client,
		Logger:    logger,
		Providers: provs,
		Blacklist: blacklist,
	}
}

// Validate prüft die Build-Parameter vor dem Lauf (Konfigurationsfehler
// sind fatal, bevor irgendeine Quelle abgerufen wird).
func (s *BuildService) Validate(params *BuildParams) error {
	if len(params.Sources) == 0 {
		return fmt.Errorf("no sources requested")
	}
	for _, name := range params.Sources {
		if s.providerByName(name) == nil {
			return fmt.Errorf("unknown source: %q", name)
		}
	}
	filter := NewFilter(params.ScoreThreshold, params.AllowedModes, params.Organism)
	if err := filter.Validate(); err != nil {
		return err
	}
	for name, threshold := range params.SourceThresholds {
		if s.providerByName(name) == nil {
			return fmt.Errorf("source threshold for unknown source: %q", name)
		}
		if threshold <= 0 {
			return fmt.Errorf("source threshold for %s must be positive, got %d", name, threshold)
		}
	}
	switch params.Subset {
	case "", SubsetTransporter, SubsetReceptor, SubsetMetabolic:
	default:
		return fmt.Errorf("unknown subset: %q", params.Subset)
	}
	return nil
}

// BuildResult ist das Ergebnis eines BuildNetwork-Laufs: die formatierte
// Kantentabelle plus die Anzahl der an Filter und Blacklist verworfenen Rows.
type BuildResult struct {
	*FormatResult

	DroppedRows int
}

// BuildNetwork führt die reine Pipeline aus: Provider → Filter → Builder →
// ID-Übersetzung → Blacklist → Subset → Formatter. Kein Bookkeeping,
// kein Export.
func (s *BuildService) BuildNetwork(ctx context.Context, params BuildParams) (*BuildResult, error) {
	if err := s.Validate(&params); err != nil {
		return nil, err
	}

	streams := make([]SourceStream, 0, len(params.Sources))
	var filtered []*FilteredIterator
	for _, name := range params.Sources {
		threshold := params.ScoreThreshold
		if override, ok := params.SourceThresholds[name]; ok {
			threshold = override
		}
		opts := providers.Options{
			Organism:       params.Organism,
			MaxRecords:     params.MaxRecords,
			IncludeReverse: params.IncludeReverse,
			ScoreThreshold: threshold,
			AllowedModes:   params.AllowedModes,
		}

		prov := s.providerByName(name)
		iter, err := prov.Interactions(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		if prov.Scored() {
			fi := NewFilteredIterator(iter, NewFilter(threshold, params.AllowedModes, params.Organism))
			filtered = append(filtered, fi)
			iter = fi
		}
		streams = append(streams, SourceStream{Name: name, Iter: iter})
	}

	builder := NewBuilder(s.Logger, params.IncludeOrphans)
	merged, err := builder.Merge(streams)
	if err != nil {
		return nil, err
	}

	dropped := 0
	for _, fi := range filtered {
		dropped += fi.Dropped()
	}

	if params.TranslateIDs && s.Translator != nil {
		var nDropped int
		merged, nDropped = TranslateRecords(merged, s.Translator, s.Logger)
		dropped += nDropped
	}

	beforeBlacklist := len(merged)
	merged = ApplyBlacklist(merged, s.Blacklist, s.Logger)
	dropped += beforeBlacklist - len(merged)

	if params.Subset != "" {
		merged = filterSubset(merged, params.Subset)
	}

	formatter := NewFormatter(s.Logger)
	formatted, err := formatter.Format(merged)
	if err != nil {
		return nil, err
	}
	return &BuildResult{FormatResult: formatted, DroppedRows: dropped}, nil
}

// Run führt einen vollständigen Build mit Bookkeeping und S3-Export aus.
func (s *BuildService) Run(ctx context.Context, params BuildParams) (*models.BuildRun, error) {
	log := s.Logger.With(zap.Strings("sources", params.Sources))
	log.Info("Starte PKN-Build.")
	start := time.Now()

	run := &models.BuildRun{
		Status:   models.BuildStatusRunning,
		Sources:  strings.Join(params.Sources, ","),
		Organism: params.Organism,
		Subset:   params.Subset,
	}
	if raw, err := json.Marshal(params); err == nil {
		run.Params = string(raw)
	}
	if s.DB != nil {
		if err := s.DB.Create(run).Error; err != nil {
			return nil, fmt.Errorf("create build run: %w", err)
		}
	}

	result, err := s.BuildNetwork(ctx, params)
	if err != nil {
		s.finishRun(run, err)
		buildsTotal.WithLabelValues(models.BuildStatusFailed).Inc()
		return run, err
	}

	run.EdgeCount = len(result.Records) - result.ConnectorCount
	run.ConnectorCount = result.ConnectorCount
	run.DroppedRows = result.DroppedRows

	tsv, err := ExportTSV(result.Records)
	if err != nil {
		s.finishRun(run, err)
		buildsTotal.WithLabelValues(models.BuildStatusFailed).Inc()
		return run, err
	}

	if s.S3Client != nil {
		key := fmt.Sprintf("pkn/cosmos-pkn-%d-%s.tsv", run.ID, start.UTC().Format("2006-01-02T15-04-05Z"))
		link, err := storage.UploadFile(s.S3Client, s.Config.ExportS3Bucket, key, tsv, s.Config)
		if err != nil {
			log.Error("S3-Upload fehlgeschlagen", zap.Error(err))
			s.finishRun(run, err)
			buildsTotal.WithLabelValues(models.BuildStatusFailed).Inc()
			return run, err
		}
		run.S3Link = link
		log.Info("Netzwerk nach S3 exportiert", zap.String("s3_link", link))
	}

	s.finishRun(run, nil)
	buildsTotal.WithLabelValues(models.BuildStatusCompleted).Inc()
	log.Info("PKN-Build abgeschlossen",
		zap.Int("edges", run.EdgeCount),
		zap.Int("connectors", run.ConnectorCount),
		zap.Duration("took", time.Since(start)),
	)
	return run, nil
}

func (s *BuildService) finishRun(run *models.BuildRun, err error) {
	now := time.Now()
	run.FinishedAt = &now
	if err != nil {
		run.Status = models.BuildStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = models.BuildStatusCompleted
	}
	if s.DB != nil {
		s.DB.Save(run)
	}
}

func (s *BuildService) providerByName(name string) providers.Provider {
	for _, p := range s.Providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// filterSubset wendet das Teilnetz-Prädikat auf die zusammengeführte
// Sequenz an (vor der Formatierung).
func filterSubset(records []models.Interaction, subset string) []models.Interaction {
	kept := make([]models.Interaction, 0, len(records))
	for i := range records {
		if inSubset(&records[i], subset) {
			kept = append(kept, records[i])
		}
	}
	return kept
}

func inSubset(rec *models.Interaction, subset string) bool {
	switch subset {
	case SubsetTransporter:
		return rec.Kind == models.KindTransport ||
			strings.HasPrefix(rec.Resource, "GEM_transporter")
	case SubsetReceptor:
		return rec.Kind == models.KindReceptor
	case SubsetMetabolic:
		return rec.Kind == models.KindAllosteric ||
			strings.HasPrefix(rec.Resource, "GEM:") ||
			(rec.Resource == "STITCH" && rec.Kind == models.KindOther)
	}
	return true
}
