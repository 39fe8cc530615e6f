// Package server wires the ingestion pipeline from configuration and runs the daemon's
// long-lived parts: the gRPC health endpoint and the Redis connection.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/export"
	"github.com/joseph-ayodele/career-profile/internal/ingest"
	"github.com/joseph-ayodele/career-profile/internal/lexicon"
	"github.com/joseph-ayodele/career-profile/internal/parsefields"
	"github.com/joseph-ayodele/career-profile/internal/pipeline"
	"github.com/joseph-ayodele/career-profile/internal/profiles"
	repo "github.com/joseph-ayodele/career-profile/internal/repository"
	"github.com/joseph-ayodele/career-profile/internal/storage"
	"github.com/joseph-ayodele/career-profile/internal/textextract"
)

// App is the object graph every binary shares.
type App struct {
	Config    *common.Config
	DB        *repo.DB
	Docs      repo.DocumentRepository
	Profiles  repo.ProfileRepository
	Store     *storage.LocalStore
	Tables    *lexicon.Tables
	Processor *pipeline.Processor
	Builder   *profiles.Builder
	Service   *profiles.Service
	Ingestor  *ingest.FSIngestor
	Export    *export.Service
	// Profile is the canonical profile named by PROFILE_NAME.
	Profile *entity.ProfessionalProfile

	logger *slog.Logger
}

// NewApp opens and migrates the database, then builds the pipeline around it.
func NewApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tables := lexicon.Default()
	if cfg.Extract.LexiconFile != "" {
		t, err := lexicon.Load(cfg.Extract.LexiconFile)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		tables = t
		logger.Info("lexicon loaded", "path", cfg.Extract.LexiconFile)
	}

	store, err := storage.NewLocalStore(cfg.Storage.Root, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	db, err := ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx, db, logger); err != nil {
		db.Close(logger)
		return nil, err
	}

	a := &App{Config: cfg, DB: db, Store: store, Tables: tables, logger: logger}
	a.Docs = repo.NewDocumentRepository(db, logger)
	a.Profiles = repo.NewProfileRepository(db, logger)

	text := pipeline.NewTextStage(a.Docs, store, textextract.NewExtractor(textextract.Config{MaxBytes: cfg.Extract.MaxBytes}, logger), logger)
	parse := pipeline.NewParseStage(logger, a.Docs, parsefields.NewExtractor(tables, logger))
	a.Processor = pipeline.NewProcessor(logger, a.Docs, text, parse)
	a.Builder = profiles.NewBuilder(a.Docs, a.Profiles, tables, logger)
	a.Service = profiles.NewService(a.Profiles, a.Builder, logger)
	a.Ingestor = ingest.NewFSIngestor(a.Docs, store, tables, logger)
	a.Export = export.NewService(a.Profiles, a.Docs, logger)

	a.Profile, err = a.Service.EnsureProfile(ctx, cfg.Profile.FullName, cfg.Profile.Title)
	if err != nil {
		db.Close(logger)
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	logger.Info("using profile", "profile_id", a.Profile.ID, "full_name", a.Profile.FullName)
	return a, nil
}

// Watcher builds the inbox watcher for the canonical profile.
func (a *App) Watcher() *ingest.Watcher {
	return ingest.NewWatcher(ingest.Config{
		ProfileID: a.Profile.ID,
		Notify:    a.Config.Ingest.Notify,
	}, a.Ingestor, a.Processor, a.Builder, a.logger)
}

func (a *App) Close() {
	a.DB.Close(a.logger)
}

// ConnectDB opens the configured database and checks it answers.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repo.DB, error) {
	db, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := PingDB(ctx, db, logger, 5*time.Second); err != nil {
		db.Close(logger)
		return nil, err
	}
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repo.DB, logger *slog.Logger, timeout time.Duration) error {
	if err := db.HealthCheck(ctx, timeout); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
