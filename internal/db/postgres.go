package db

import (
	"context"
	"errors"
	"fmt"

	"author_highlighter/internal/cache"
	"author_highlighter/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createAuthorCache = `
CREATE TABLE IF NOT EXISTS author_cache (
  cache_key    TEXT PRIMARY KEY,
  authors_text TEXT NOT NULL,
  stored_at    TIMESTAMPTZ NOT NULL
)`

// Postgres is a cache store on a single author_cache table.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createAuthorCache); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create author_cache: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Load(ctx context.Context, key string) (models.CacheEntry, error) {
	e := models.CacheEntry{ID: key}
	err := p.Pool.QueryRow(ctx, `SELECT authors_text, stored_at FROM author_cache WHERE cache_key=$1`, key).
		Scan(&e.AuthorsText, &e.StoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CacheEntry{}, cache.ErrNotFound
	}
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("load cache entry: %w", err)
	}
	return e, nil
}

func (p *Postgres) Save(ctx context.Context, e models.CacheEntry) error {
	_, err := p.Pool.Exec(ctx, `
INSERT INTO author_cache (cache_key, authors_text, stored_at)
VALUES ($1, $2, $3)
ON CONFLICT (cache_key)
DO UPDATE SET authors_text = EXCLUDED.authors_text, stored_at = EXCLUDED.stored_at`,
		e.ID, e.AuthorsText, e.StoredAt,
	)
	if err != nil {
		return fmt.Errorf("save cache entry: %w", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.Pool.Exec(ctx, `DELETE FROM author_cache WHERE cache_key=$1`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
