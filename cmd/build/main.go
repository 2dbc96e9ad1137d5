package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"cosmos-pkn/config"
	"cosmos-pkn/providers"
	"cosmos-pkn/providers/brenda"
	"cosmos-pkn/providers/gem"
	"cosmos-pkn/providers/mrclinksdb"
	"cosmos-pkn/providers/recon3d"
	"cosmos-pkn/providers/slc"
	"cosmos-pkn/providers/stitch"
	"cosmos-pkn/providers/tcdb"
	"cosmos-pkn/services"
	"cosmos-pkn/storage"
)

// BuildCLIConfig ist die schlanke Konfiguration für den einmaligen
// Build ohne Datenbank: das Netzwerk wird lokal als TSV geschrieben,
// optional zusätzlich nach S3 hochgeladen.
type BuildCLIConfig struct {
	OutputPath string `envconfig:"OUTPUT_PATH" default:"pkn.tsv"`

	Organism       int    `envconfig:"NCBI_TAX_ID" default:"9606"`
	ScoreThreshold int    `envconfig:"SCORE_THRESHOLD" default:"700"`
	AllowedModes   string `envconfig:"ALLOWED_MODES" default:"activation,inhibition"`
	IncludeOrphans bool   `envconfig:"INCLUDE_ORPHANS" default:"true"`
	MetabMaxDegree int    `envconfig:"METAB_MAX_DEGREE" default:"400"`
	MaxRecords     int    `envconfig:"MAX_RECORDS" default:"0"`
	Subset         string `envconfig:"SUBSET"`

	EnabledSources string `envconfig:"ENABLED_SOURCES" default:"stitch,tcdb,slc,brenda,mrclinksdb,gem,recon3d"`

	StitchBaseURL     string `envconfig:"STITCH_BASE_URL" default:"http://stitch.embl.de/download"`
	TCDBBaseURL       string `envconfig:"TCDB_BASE_URL" default:"https://www.tcdb.org/cgi-bin/substrates/getSubstrates.py"`
	UniProtBaseURL    string `envconfig:"UNIPROT_BASE_URL" default:"https://rest.uniprot.org/uniprotkb"`
	SLCBaseURL        string `envconfig:"SLC_BASE_URL" default:"https://re-solute.eu/files/api"`
	BrendaBaseURL     string `envconfig:"BRENDA_BASE_URL" default:"https://www.brenda-enzymes.org/download"`
	MRCLinksBaseURL   string `envconfig:"MRCLINKSDB_BASE_URL" default:"https://www.cellknowledge.com.cn/mrclinkdb/download"`
	GEMBaseURL        string `envconfig:"GEM_BASE_URL" default:"https://raw.githubusercontent.com/SysBioChalmers"`
	GEMName           string `envconfig:"GEM_NAME" default:"Human-GEM"`
	GEMIncludeReverse bool   `envconfig:"GEM_INCLUDE_REVERSE" default:"true"`
	Recon3DURL        string `envconfig:"RECON3D_URL" default:"http://bigg.ucsd.edu/static/models/Recon3D.json"`

	BlacklistPath string `envconfig:"BLACKLIST_PATH"`

	TranslateIDs    bool   `envconfig:"TRANSLATE_IDS" default:"true"`
	TranslationPath string `envconfig:"TRANSLATION_PATH"`

	// Optionaler Export: nur wenn alle S3-Variablen gesetzt sind.
	ExportS3Key    string `envconfig:"EXPORT_S3_KEY"`
	ExportS3Secret string `envconfig:"EXPORT_S3_SECRET"`
	ExportS3URL    string `envconfig:"EXPORT_S3_URL"`
	ExportS3Region string `envconfig:"EXPORT_S3_REGION"`
	ExportS3Bucket string `envconfig:"EXPORT_S3_BUCKET"`
}

func (c *BuildCLIConfig) s3Configured() bool {
	return c.ExportS3Key != "" && c.ExportS3Secret != "" && c.ExportS3URL != "" &&
		c.ExportS3Region != "" && c.ExportS3Bucket != ""
}

// asConfig mappt die CLI-Konfiguration auf die gemeinsame Config der
// Provider und Services.
func (c *BuildCLIConfig) asConfig() *config.Config {
	return &config.Config{
		Organism:          c.Organism,
		ScoreThreshold:    c.ScoreThreshold,
		AllowedModes:      c.AllowedModes,
		IncludeOrphans:    c.IncludeOrphans,
		MetabMaxDegree:    c.MetabMaxDegree,
		MaxRecords:        c.MaxRecords,
		EnabledSources:    c.EnabledSources,
		StitchBaseURL:     c.StitchBaseURL,
		TCDBBaseURL:       c.TCDBBaseURL,
		UniProtBaseURL:    c.UniProtBaseURL,
		SLCBaseURL:        c.SLCBaseURL,
		BrendaBaseURL:     c.BrendaBaseURL,
		MRCLinksBaseURL:   c.MRCLinksBaseURL,
		GEMBaseURL:        c.GEMBaseURL,
		GEMName:           c.GEMName,
		GEMIncludeReverse: c.GEMIncludeReverse,
		Recon3DURL:        c.Recon3DURL,
		BlacklistPath:     c.BlacklistPath,
		TranslateIDs:      c.TranslateIDs,
		TranslationPath:   c.TranslationPath,
		ExportS3Key:       c.ExportS3Key,
		ExportS3Secret:    c.ExportS3Secret,
		ExportS3URL:       c.ExportS3URL,
		ExportS3Region:    c.ExportS3Region,
		ExportS3Bucket:    c.ExportS3Bucket,
	}
}

func main() {
	log.Println("Starte einmaligen PKN-Build...")

	var cliCfg BuildCLIConfig
	if err := envconfig.Process("", &cliCfg); err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	cfg := cliCfg.asConfig()

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	var blacklist []services.BlacklistEntry
	if cfg.BlacklistPath != "" {
		blacklist, err = services.LoadBlacklist(cfg.BlacklistPath)
		if err != nil {
			logging.Fatal("Failed to load blacklist", zap.Error(err))
		}
	}

	buildService := services.NewBuildService(
		cfg, nil, nil, logging, buildProviders(cfg, logging), blacklist)

	if cfg.TranslateIDs && cfg.TranslationPath != "" {
		translator, err := services.LoadTranslations(cfg.TranslationPath)
		if err != nil {
			logging.Fatal("Failed to load translation tables", zap.Error(err))
		}
		buildService.Translator = translator
	}

	params := services.DefaultParams(cfg)
	params.Subset = cliCfg.Subset

	result, err := buildService.BuildNetwork(context.Background(), params)
	if err != nil {
		logging.Fatal("PKN build failed", zap.Error(err))
	}

	tsv, err := services.ExportTSV(result.Records)
	if err != nil {
		logging.Fatal("TSV export failed", zap.Error(err))
	}
	if err := os.WriteFile(cliCfg.OutputPath, tsv, 0o644); err != nil {
		logging.Fatal("Failed to write output file",
			zap.String("path", cliCfg.OutputPath), zap.Error(err))
	}
	logging.Info("Network written",
		zap.String("path", cliCfg.OutputPath),
		zap.Int("edges", len(result.Records)-result.ConnectorCount),
		zap.Int("connectors", result.ConnectorCount),
	)

	if cliCfg.s3Configured() {
		s3Client, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		link, err := storage.UploadFile(s3Client, cfg.ExportS3Bucket, "pkn/"+cliCfg.OutputPath, tsv, cfg)
		if err != nil {
			logging.Fatal("S3 upload failed", zap.Error(err))
		}
		logging.Info("Network uploaded", zap.String("s3_link", link))
	}

	log.Println("PKN-Build erfolgreich abgeschlossen.")
}

// buildProviders instanziiert die konfigurierten Quellen-Adapter.
func buildProviders(cfg *config.Config, logging *zap.Logger) []providers.Provider {
	var enabled []providers.Provider
	for _, name := range strings.Split(cfg.EnabledSources, ",") {
		switch strings.TrimSpace(name) {
		case "stitch":
			enabled = append(enabled, stitch.NewFetcher(cfg, logging))
		case "tcdb":
			enabled = append(enabled, tcdb.NewFetcher(cfg, logging))
		case "slc":
			enabled = append(enabled, slc.NewFetcher(cfg, logging))
		case "brenda":
			enabled = append(enabled, brenda.NewFetcher(cfg, logging))
		case "mrclinksdb":
			enabled = append(enabled, mrclinksdb.NewFetcher(cfg, logging))
		case "gem":
			enabled = append(enabled, gem.NewFetcher(cfg, logging))
		case "recon3d":
			enabled = append(enabled, recon3d.NewFetcher(cfg, logging))
		default:
			logging.Warn("Unknown source in config", zap.String("source_name", name))
		}
	}
	return enabled
}
