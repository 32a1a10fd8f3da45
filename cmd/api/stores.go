package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"mediagen/internal/adapter/repo"
	"mediagen/internal/domain"
	"mediagen/internal/infra"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// buildJobStore returns the configured job store and a closer for its
// connection.
func buildJobStore(ctx context.Context, cfg *infra.Config) (domain.JobRepository, io.Closer, error) {
	switch cfg.JobStore {
	case infra.StorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		jobs := repo.NewJobRepository(pool)
		if err := jobs.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("job schema: %w", err)
		}
		return jobs, closerFunc(func() error { pool.Close(); return nil }), nil
	default:
		return repo.NewJobRepositoryMemory(), closerFunc(func() error { return nil }), nil
	}
}

// buildConversationStore returns the configured conversation store and a
// closer for its connection.
func buildConversationStore(ctx context.Context, cfg *infra.Config) (domain.ConversationRepository, io.Closer, error) {
	noop := closerFunc(func() error { return nil })
	switch cfg.ConversationStore {
	case infra.StoreMemory:
		return repo.NewConversationRepositoryMemory(), noop, nil
	case infra.StoreSQLite:
		db, err := infra.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlConversationStore(ctx, db, repo.DialectSQLite)
	case infra.StorePostgres:
		db, err := infra.OpenPostgresSQL(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return sqlConversationStore(ctx, db, repo.DialectPostgres)
	case infra.StoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewConversationRepositoryRedis(client), client, nil
	default:
		store, err := repo.NewConversationRepositoryFile(cfg.ConversationDir)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	}
}

func sqlConversationStore(ctx context.Context, db *sql.DB, dialect repo.Dialect) (domain.ConversationRepository, io.Closer, error) {
	store := repo.NewConversationRepositorySQL(db, dialect)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("conversation schema: %w", err)
	}
	return store, db, nil
}
