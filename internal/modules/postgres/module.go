package postgres

import (
	"context"
	"fmt"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/postgres/service"
	"signal_bot/internal/runner"
	"signal_bot/pkg/db"

	"go.uber.org/fx"
)

func newTxManager(lc fx.Lifecycle, ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
	poolMaster, err := db.NewPool(ctx, db.PoolConfig{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create poolMaster: %w", err)
	}

	err = poolMaster.Ping(ctx)
	if err != nil {
		poolMaster.Close()
		return nil, err
	}

	m := db.NewPgTxManager(poolMaster)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Close()
			return nil
		},
	})
	return m, nil
}

// Module — свечи из Postgres как источник данных цикла.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			newTxManager,
			func(m *db.PgTxManager) runner.MarketDataSource {
				return service.NewCandleRepo(m)
			},
		),
	)
}
