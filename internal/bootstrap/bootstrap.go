// Package bootstrap wires configuration into the stores and publishers shared
// by the api, worker and impactctl binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pawshearts/internal/adapter/repo"
	"pawshearts/internal/adapter/sqlite"
	"pawshearts/internal/domain"
	"pawshearts/internal/impact"
	"pawshearts/internal/infra"
	"pawshearts/internal/infra/credentials"
	"pawshearts/internal/pins"
	"pawshearts/internal/providers/pinterest"
	"pawshearts/internal/storage"
)

// Runtime is an opened store plus, for Postgres, the SQL runner behind it.
type Runtime struct {
	Store  domain.Store
	Runner *infra.SQLRunner
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

// Seed returns the ledger a fresh store starts from.
func Seed(cfg *infra.Config, now time.Time) domain.ImpactLedger {
	if cfg.SeedDemo {
		return impact.DemoLedger(now)
	}
	return impact.NewLedger(cfg.MonthlyGoal, now)
}

// OpenStore opens the store selected by LEDGER_DRIVER. Postgres migrations run
// first when MIGRATE_ON_START is set.
func OpenStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Runtime, error) {
	seed := Seed(cfg, time.Now().In(cfg.Location))
	switch cfg.LedgerDriver {
	case infra.DriverFile:
		store, err := storage.OpenJSONStore(cfg.LedgerPath, seed)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("driver", cfg.LedgerDriver).Str("path", cfg.LedgerPath).Msg("store opened")
		return &Runtime{Store: store}, nil
	case infra.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, seed)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("driver", cfg.LedgerDriver).Str("path", cfg.SQLitePath).Msg("store opened")
		return &Runtime{Store: store}, nil
	case infra.DriverPostgres:
		if cfg.MigrateOnStart {
			if err := repo.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runner := infra.NewSQLRunner(pool, logger)
		store, err := repo.NewStore(ctx, runner, seed, pool.Close)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info().Str("driver", cfg.LedgerDriver).Msg("store opened")
		return &Runtime{Store: store, Runner: runner}, nil
	}
	return nil, fmt.Errorf("unknown ledger driver %q", cfg.LedgerDriver)
}

// Publisher returns the Pinterest client when credentials are available from
// the environment or, on Postgres, the integration_tokens table. Otherwise it
// returns the log-only publisher.
func Publisher(ctx context.Context, cfg *infra.Config, runner *infra.SQLRunner, logger zerolog.Logger) (pins.Publisher, error) {
	creds := credentials.PinterestCredentials{
		AccessToken: cfg.PinterestAccessToken,
		BoardID:     cfg.PinterestBoardID,
	}
	if runner != nil && (creds.AccessToken == "" || creds.BoardID == "") {
		stored, err := credentials.NewStore(runner).Pinterest(ctx)
		if err != nil {
			return nil, err
		}
		if creds.AccessToken == "" {
			creds.AccessToken = stored.AccessToken
		}
		if creds.BoardID == "" {
			creds.BoardID = stored.BoardID
		}
	}

	client, err := pinterest.NewClient(pinterest.Options{
		AccessToken: creds.AccessToken,
		BoardID:     creds.BoardID,
		BaseURL:     cfg.PinterestBaseURL,
		Logger:      &logger,
	})
	if err != nil {
		return nil, err
	}
	if !client.HasCredentials() {
		logger.Warn().Msg("pinterest credentials missing, pins will be logged only")
		return pins.LogPublisher{Logger: logger}, nil
	}
	return client, nil
}

// Worker builds the pin worker from configuration.
func Worker(cfg *infra.Config, queue domain.PinQueue, publisher pins.Publisher, logger zerolog.Logger) *pins.Worker {
	return pins.NewWorker(queue, publisher, pins.WorkerOptions{
		PollInterval: cfg.WorkerPollInterval,
		BatchSize:    cfg.WorkerBatchSize,
		Concurrency:  cfg.WorkerConcurrency,
		Logger:       logger,
	})
}
