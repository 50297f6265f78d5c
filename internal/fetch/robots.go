package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy answers whether a URL may be fetched, loading each host's
// robots.txt once. A nil policy allows everything, as does a robots.txt
// that cannot be loaded.
type RobotsPolicy struct {
	client    *http.Client
	userAgent string

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

func NewRobotsPolicy(client *http.Client, userAgent string) *RobotsPolicy {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsPolicy{
		client:    client,
		userAgent: userAgent,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Check returns ErrDisallowed when robots.txt forbids urlStr.
func (p *RobotsPolicy) Check(ctx context.Context, urlStr string) error {
	if p == nil {
		return nil
	}
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return nil
	}

	group := p.group(ctx, u)
	if group == nil || group.Test(u.RequestURI()) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDisallowed, urlStr)
}

func (p *RobotsPolicy) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.groups[u.Host]; ok {
		return g
	}

	g := p.load(ctx, u)
	p.groups[u.Host] = g
	return g
}

func (p *RobotsPolicy) load(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	slog.Debug("robots: loading", "url", robotsURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		slog.Warn("robots: fetch failed, ignoring", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		slog.Warn("robots: parse failed, ignoring", "url", robotsURL, "error", err)
		return nil
	}
	return data.FindGroup(p.userAgent)
}
