package expand

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"author_highlighter/internal/cache"
	"author_highlighter/internal/fetch"
	"author_highlighter/internal/parse"
	"author_highlighter/internal/throttle"
)

// Expander retrieves the untruncated author list of a publication from its
// detail page. Retrieved lists are cached by publication id and every
// network request goes through the throttler.
type Expander struct {
	resolver  *fetch.ReferenceResolver
	cache     *cache.AuthorListCache
	throttler *throttle.Throttler
	fetcher   fetch.PageFetcher
	parser    parse.PageParser
}

func New(
	resolver *fetch.ReferenceResolver,
	c *cache.AuthorListCache,
	t *throttle.Throttler,
	f fetch.PageFetcher,
	p parse.PageParser,
) *Expander {
	return &Expander{
		resolver:  resolver,
		cache:     c,
		throttler: t,
		fetcher:   f,
		parser:    p,
	}
}

// Expand returns the full author list for ref, the detail-page link of a
// publication. Any failure reads as absent.
func (e *Expander) Expand(ctx context.Context, ref string) (string, bool) {
	if strings.TrimSpace(ref) == "" {
		return "", false
	}

	pageURL, err := e.resolver.ResolveURL(ref)
	if err != nil {
		slog.Warn("expand: bad reference", "ref", ref, "error", err)
		return "", false
	}
	id := e.resolver.ResolveID(ref)

	if text, ok := e.cache.Get(ctx, id); ok {
		return text, true
	}

	text, err := throttle.Schedule(ctx, e.throttler, func(ctx context.Context) (string, error) {
		slog.Info("network-request: fetching full authors", "paper", id, "url", pageURL)

		resp, err := e.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return "", err
		}
		return e.parser.ParseAuthors(resp.URL, resp.Body)
	})
	switch {
	case errors.Is(err, fetch.ErrCaptcha):
		slog.Warn("network-request: blocked by captcha", "paper", id)
		return "", false
	case errors.Is(err, parse.ErrNoAuthors):
		slog.Info("expand: no authors on detail page", "paper", id)
		return "", false
	case err != nil:
		slog.Warn("network-request: request failed", "paper", id, "error", err)
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	e.cache.Put(ctx, id, text)
	return text, true
}
