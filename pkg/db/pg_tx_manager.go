package db

import (
	"context"
	"fmt"
	"signal_bot/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	DSN      string
	MaxConns int32
}

type PgTxManager struct {
	pool *pgxpool.Pool
}

var _ TxManager = (*PgTxManager)(nil)

func NewPgTxManager(pool *pgxpool.Pool) *PgTxManager {
	return &PgTxManager{
		pool: pool,
	}
}

func (m *PgTxManager) Close() {
	m.pool.Close()
}

func NewPool(ctx context.Context, conf PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if conf.MaxConns > 0 {
		cfg.MaxConns = conf.MaxConns
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// RunReadOnly — согласованное чтение окна свечей одним снапшотом.
func (m *PgTxManager) RunReadOnly(ctx context.Context, fn func(ctxTx context.Context, tx Transaction) error) error {
	options := pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}
	return m.inTx(ctx, options, fn)
}

func (m *PgTxManager) Conn() Transaction {
	return m.pool
}

func (m *PgTxManager) inTx(
	ctx context.Context,
	options pgx.TxOptions,
	f func(ctxTx context.Context, tx Transaction) error,
) (err error) {
	tx, err := m.pool.BeginTx(ctx, options)
	if err != nil {
		return fmt.Errorf("failed to begin tx, err: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			logger.Error("%v", p)
			_ = tx.Rollback(ctx)
			panic(p) // fallthrough panic after rollback on caught panic
		} else if err != nil {
			_ = tx.Rollback(ctx) // if error during computations
		} else {
			err = tx.Commit(ctx) // all good
		}
	}()

	if err = f(ctx, tx); err != nil {
		return fmt.Errorf("failed to run fn, err: %w", err)
	}

	return nil
}
