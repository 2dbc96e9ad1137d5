package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4243"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// PKN-Build-Defaults
	Organism       int    `envconfig:"NCBI_TAX_ID" default:"9606"`
	ScoreThreshold int    `envconfig:"SCORE_THRESHOLD" default:"700"`
	AllowedModes   string `envconfig:"ALLOWED_MODES" default:"activation,inhibition"`
	IncludeOrphans bool   `envconfig:"INCLUDE_ORPHANS" default:"true"`
	MetabMaxDegree int    `envconfig:"METAB_MAX_DEGREE" default:"400"`
	MaxRecords     int    `envconfig:"MAX_RECORDS" default:"0"`

	// Quellen-Konfiguration
	EnabledSources string `envconfig:"ENABLED_SOURCES" default:"stitch,tcdb,slc,brenda,mrclinksdb,gem,recon3d"`

	// Upstream-Endpunkte der Datenquellen
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

	// Blacklist (Experten-Kuration), leer = keine
	BlacklistPath string `envconfig:"BLACKLIST_PATH"`

	// ID-Vereinheitlichung (Metaboliten → ChEBI, Proteine → ENSG)
	TranslateIDs    bool   `envconfig:"TRANSLATE_IDS" default:"true"`
	TranslationPath string `envconfig:"TRANSLATION_PATH"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 3 * * 0"`

	ExportS3Key    string `envconfig:"EXPORT_S3_KEY" required:"true"`
	ExportS3Secret string `envconfig:"EXPORT_S3_SECRET" required:"true"`
	ExportS3URL    string `envconfig:"EXPORT_S3_URL" required:"true"`
	ExportS3Region string `envconfig:"EXPORT_S3_REGION" required:"true"`
	ExportS3Bucket string `envconfig:"EXPORT_S3_BUCKET" required:"true"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
