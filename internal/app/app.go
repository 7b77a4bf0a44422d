// Package app wires configuration into the concrete store, data source and
// board service shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cboard-backend/internal/board"
	"cboard-backend/internal/cache"
	"cboard-backend/internal/config"
	"cboard-backend/internal/firestore"
	"cboard-backend/internal/preview"
	"cboard-backend/internal/sheets"
	"cboard-backend/internal/store"
)

func noop() error { return nil }

// NewStore returns the token store and a function releasing it: GCS when a
// bucket is configured, a local directory otherwise.
func NewStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func() error, error) {
	if cfg.Store.GCSBucket != "" {
		s, err := store.NewGCS(ctx, cfg.Store.GCSBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing GCS store: %w", err)
		}
		logger.Info("token store", zap.String("gcs_bucket", cfg.Store.GCSBucket))
		return s, s.Close, nil
	}

	s, err := store.NewLocal(cfg.Store.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing local store: %w", err)
	}
	logger.Info("token store", zap.String("dir", cfg.Store.Dir))
	return s, noop, nil
}

// NewSheetsClient builds an authenticated Sheets client. The returned function
// releases the token store, which refreshed tokens are written back to for the
// lifetime of the client.
func NewSheetsClient(ctx context.Context, cfg config.Config, logger *zap.Logger) (*sheets.Client, func() error, error) {
	s, closeStore, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	client, err := newSheetsClient(ctx, cfg, s, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return client, closeStore, nil
}

func newSheetsClient(ctx context.Context, cfg config.Config, s store.Store, logger *zap.Logger) (*sheets.Client, error) {
	ts, err := sheets.TokenSource(ctx, cfg.Sheets.CredentialsFile, s, cfg.Sheets.TokenKey, logger)
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if cfg.Cache.Enabled() {
		c, err = cache.New(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("initializing cache: %w", err)
		}
		logger.Info("range cache enabled", zap.String("dir", cfg.Cache.Dir), zap.Duration("ttl", cfg.Cache.TTL))
	}

	return sheets.New(ctx, ts, sheets.Options{
		SpreadsheetID:      cfg.Sheets.SpreadsheetID,
		OrganizationsRange: cfg.Sheets.OrganizationsRange,
		FlyersRange:        cfg.Sheets.FlyersRange,
		Cache:              c,
		Logger:             logger,
	})
}

// NewFirestore opens the Firestore mirror.
func NewFirestore(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	if cfg.Firestore.ProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for the Firestore mirror")
	}
	return firestore.New(ctx, cfg.Firestore.ProjectID, cfg.Firestore.Organizations, cfg.Firestore.Flyers)
}

// NewSource returns the configured data source and a function releasing it.
func NewSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (board.Source, func() error, error) {
	switch cfg.DataSource {
	case config.SourceFirestore:
		fs, err := NewFirestore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("data source", zap.String("firestore_project", cfg.Firestore.ProjectID))
		return fs, fs.Close, nil
	default:
		client, closeClient, err := NewSheetsClient(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("data source", zap.String("spreadsheet", cfg.Sheets.SpreadsheetID))
		return client, closeClient, nil
	}
}

// NewService builds the board service on top of source.
func NewService(cfg config.Config, source board.Source, logger *zap.Logger) (*board.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	opts := board.Options{
		Location:      loc,
		TrendingCount: cfg.TrendingCount,
		Logger:        logger,
	}
	if cfg.ResolveImages {
		opts.Resolver = preview.NewResolver(nil, logger)
	}
	return board.NewService(source, opts), nil
}
