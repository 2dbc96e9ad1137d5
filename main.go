package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cosmos-pkn/config"
	"cosmos-pkn/models"
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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.BuildRun{}, &models.SourceSetting{})

	seedDefaultSourceSettings(db, cfg, logging)

	// Setup Providers
	enabledProviders := buildProviders(cfg, logging)
	if len(enabledProviders) == 0 {
		logging.Fatal("No valid sources enabled. Check ENABLED_SOURCES in .env")
	}

	// Blacklist laden (Experten-Kuration, optional)
	var blacklist []services.BlacklistEntry
	if cfg.BlacklistPath != "" {
		blacklist, err = services.LoadBlacklist(cfg.BlacklistPath)
		if err != nil {
			logging.Fatal("Failed to load blacklist", zap.String("path", cfg.BlacklistPath), zap.Error(err))
		}
		logging.Info("Blacklist loaded", zap.Int("entries", len(blacklist)))
	}

	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	buildService := services.NewBuildService(cfg, db, s3Client, logging, enabledProviders, blacklist)

	// ID-Vereinheitlichung (Metaboliten → ChEBI, Proteine → ENSG)
	if cfg.TranslateIDs && cfg.TranslationPath != "" {
		translator, err := services.LoadTranslations(cfg.TranslationPath)
		if err != nil {
			logging.Fatal("Failed to load translation tables",
				zap.String("path", cfg.TranslationPath), zap.Error(err))
		}
		buildService.Translator = translator
		logging.Info("Translation tables loaded",
			zap.Int("metabolites", len(translator.Metabolites)),
			zap.Int("proteins", len(translator.Proteins)))
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupBuildRoutes(router, db, buildService, cfg, logging)
	setupSourceRoutes(router, db, logging)

	// Setup Cron: wöchentlicher Rebuild mit den persistierten Settings
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled PKN rebuild...")
		params := paramsFromSettings(db, cfg, logging)
		run, err := buildService.Run(context.Background(), params)
		if err != nil {
			logging.Error("Scheduled rebuild failed", zap.Error(err))
		} else {
			logging.Info("Scheduled rebuild completed",
				zap.Uint("build_id", run.ID),
				zap.Int("edges", run.EdgeCount))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// buildProviders instanziiert die konfigurierten Quellen-Adapter.
func buildProviders(cfg *config.Config, logging *zap.Logger) []providers.Provider {
	var enabled []providers.Provider
	names := strings.Split(cfg.EnabledSources, ",")
	for _, name := range names {
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
	logging.Info("Active sources loaded", zap.Strings("sources", names))
	return enabled
}

func setupBuildRoutes(
	router *gin.Engine,
	db *gorm.DB,
	buildService *services.BuildService,
	cfg *config.Config,
	logging *zap.Logger,
) {
	rg := router.Group("/builds")

	// POST - Build asynchron anstoßen; Body überschreibt die Defaults.
	rg.POST("/", func(c *gin.Context) {
		params := services.DefaultParams(cfg)
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&params); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}
		if err := buildService.Validate(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		go func() {
			run, err := buildService.Run(context.Background(), params)
			if err != nil {
				logging.Error("Async build failed", zap.Error(err))
			} else {
				logging.Info("Async build completed",
					zap.Uint("build_id", run.ID),
					zap.Int("edges", run.EdgeCount))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "PKN build triggered.", "params": params})
	})

	// GET - Alle Build-Läufe, neueste zuerst.
	rg.GET("/", func(c *gin.Context) {
		var runs []models.BuildRun
		if err := db.Order("created_at desc").Find(&runs).Error; err != nil {
			logging.Error("Database query for build runs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})

	// GET - Einzelner Build-Lauf.
	rg.GET("/:id", func(c *gin.Context) {
		var run models.BuildRun
		if err := db.First(&run, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "build run not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, run)
	})

	// GET - Exportierte Kantentabelle eines abgeschlossenen Laufs.
	rg.GET("/:id/network.tsv", func(c *gin.Context) {
		var run models.BuildRun
		if err := db.First(&run, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "build run not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if run.Status != models.BuildStatusCompleted || run.S3Link == "" {
			c.JSON(http.StatusConflict, gin.H{"error": "build has no exported network"})
			return
		}

		key := storage.KeyFromLink(run.S3Link, cfg.ExportS3Bucket)
		data, err := storage.DownloadFile(c.Request.Context(), buildService.S3Client, cfg.ExportS3Bucket, key)
		if err != nil {
			logging.Error("Network download from S3 failed",
				zap.Uint("build_id", run.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
			return
		}
		c.Header("Content-Disposition",
			fmt.Sprintf("attachment; filename=cosmos-pkn-%d.tsv", run.ID))
		c.Data(http.StatusOK, "text/tab-separated-values", data)
	})
}

func setupSourceRoutes(router *gin.Engine, db *gorm.DB, logging *zap.Logger) {
	rg := router.Group("/sources")

	rg.GET("/", func(c *gin.Context) {
		var settings []models.SourceSetting
		if err := db.Order("name").Find(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, settings)
	})

	// PATCH - Einzelne Quelle umkonfigurieren (Enable/Disable, Threshold).
	rg.PATCH("/:name", func(c *gin.Context) {
		var setting models.SourceSetting
		if err := db.Where("name = ?", c.Param("name")).First(&setting).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var payload struct {
			Enabled        *bool `json:"enabled"`
			ScoreThreshold *int  `json:"score_threshold"`
			IncludeReverse *bool `json:"include_reverse"`
			MaxRecords     *int  `json:"max_records"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if payload.Enabled != nil {
			updates["enabled"] = *payload.Enabled
		}
		if payload.ScoreThreshold != nil {
			updates["score_threshold"] = *payload.ScoreThreshold
		}
		if payload.IncludeReverse != nil {
			updates["include_reverse"] = *payload.IncludeReverse
		}
		if payload.MaxRecords != nil {
			updates["max_records"] = *payload.MaxRecords
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
			return
		}

		if err := db.Model(&setting).Updates(updates).Error; err != nil {
			logging.Error("Failed to update source setting",
				zap.String("name", setting.Name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update source"})
			return
		}
		c.JSON(http.StatusOK, setting)
	})
}

// paramsFromSettings leitet die Cron-Build-Parameter aus den persistierten
// SourceSettings ab: nur aktivierte Quellen, in stabiler Reihenfolge.
func paramsFromSettings(db *gorm.DB, cfg *config.Config, logging *zap.Logger) services.BuildParams {
	params := services.DefaultParams(cfg)

	var settings []models.SourceSetting
	if err := db.Where("enabled = ?", true).Order("id").Find(&settings).Error; err != nil {
		logging.Warn("Failed to load source settings, using defaults", zap.Error(err))
		return params
	}
	if len(settings) == 0 {
		return params
	}

	var sources []string
	for _, s := range settings {
		sources = append(sources, s.Name)
		if s.ScoreThreshold != nil {
			// Override gilt nur für diese Quelle, nicht global.
			if params.SourceThresholds == nil {
				params.SourceThresholds = map[string]int{}
			}
			params.SourceThresholds[s.Name] = *s.ScoreThreshold
		}
	}
	params.Sources = sources
	return params
}

func seedDefaultSourceSettings(db *gorm.DB, cfg *config.Config, logging *zap.Logger) {
	var count int64
	db.Model(&models.SourceSetting{}).Count(&count)
	if count > 0 {
		return
	}
	var settings []models.SourceSetting
	for _, name := range strings.Split(cfg.EnabledSources, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		settings = append(settings, models.SourceSetting{
			Name:           name,
			Enabled:        true,
			IncludeReverse: cfg.GEMIncludeReverse,
			MaxRecords:     cfg.MaxRecords,
		})
	}
	if err := db.Create(&settings).Error; err != nil {
		logging.Warn("Failed to seed default source settings", zap.Error(err))
	} else {
		logging.Info("Default source settings seeded.")
	}
}
