package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"author_highlighter/internal/models"
)

const (
	DefaultTTL    = 30 * time.Minute
	DefaultPrefix = "authorHighlighterAuthors:"
)

// ErrNotFound is returned by a Store that has no entry for a key.
var ErrNotFound = errors.New("cache entry not found")

// Store is the durable backing of an AuthorListCache.
type Store interface {
	Load(ctx context.Context, key string) (models.CacheEntry, error)
	Save(ctx context.Context, entry models.CacheEntry) error
	Delete(ctx context.Context, key string) error
}

// AuthorListCache maps a publication id to its full author list for a
// limited time. Store failures are logged and read as misses.
type AuthorListCache struct {
	store  Store
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

type Option func(*AuthorListCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *AuthorListCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(c *AuthorListCache) { c.prefix = prefix }
}

func WithClock(now func() time.Time) Option {
	return func(c *AuthorListCache) { c.now = now }
}

func New(store Store, opts ...Option) *AuthorListCache {
	c := &AuthorListCache{
		store:  store,
		ttl:    DefaultTTL,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AuthorListCache) key(id string) string {
	return c.prefix + id
}

// Get returns the cached author list for id. Expired and malformed entries
// are removed and reported as absent.
func (c *AuthorListCache) Get(ctx context.Context, id string) (string, bool) {
	if id == "" || c.store == nil {
		return "", false
	}
	key := c.key(id)

	entry, err := c.store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false
	}
	if err != nil {
		slog.Warn("cache: read failed", "paper", id, "error", err)
		return "", false
	}

	if entry.AuthorsText == "" || entry.StoredAt.IsZero() {
		c.evict(ctx, id, key)
		return "", false
	}

	age := c.now().Sub(entry.StoredAt)
	if age > c.ttl {
		c.evict(ctx, id, key)
		slog.Info("cache: expired", "paper", id, "ttl", c.ttl)
		return "", false
	}

	slog.Info("cache: hit", "paper", id, "age", age.Round(time.Second))
	return entry.AuthorsText, true
}

// Put stores text for id. Empty ids or texts are ignored.
func (c *AuthorListCache) Put(ctx context.Context, id, text string) {
	if id == "" || text == "" || c.store == nil {
		return
	}
	err := c.store.Save(ctx, models.CacheEntry{
		ID:          c.key(id),
		AuthorsText: text,
		StoredAt:    c.now(),
	})
	if err != nil {
		slog.Warn("cache: write failed", "paper", id, "error", err)
		return
	}
	slog.Info("cache: stored", "paper", id, "ttl", c.ttl)
}

func (c *AuthorListCache) evict(ctx context.Context, id, key string) {
	if err := c.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("cache: evict failed", "paper", id, "error", err)
	}
}
