package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"swachh-scan-api-server/config"
	"swachh-scan-api-server/internal/store"
	"swachh-scan-api-server/internal/store/memstore"
	"swachh-scan-api-server/internal/store/mongostore"
)

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("could not load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, out io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(out, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(out, handlerOpts))
}

// openStore returns the configured store. With mustReach unset a mongo store
// whose ping failed is still returned, so the API can come up and report the
// outage on /test instead of refusing to start; its indexes are then created
// in the background once the database answers.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger, mustReach bool) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using the in-memory store; data is lost on exit")
		return memstore.New(), nil
	case config.DriverMongo, "":
		ms, err := mongostore.Connect(ctx, cfg.Mongo, logger)
		if ms == nil {
			return nil, err
		}
		if err != nil {
			if mustReach {
				ms.Close(context.Background())
				return nil, err
			}
			logger.Error("database unreachable, continuing without it", "error", err)
			ms.EnsureIndexesInBackground(ctx, logger)
			return ms, nil
		}
		if err := ms.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to ensure indexes, retrying in the background", "error", err)
			ms.EnsureIndexesInBackground(ctx, logger)
		}
		logger.Info("connected to mongo", "database", cfg.Mongo.DBName)
		return ms, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want %q or %q)", cfg.Store.Driver, config.DriverMongo, config.DriverMemory)
	}
}
