package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/html/charset"
)

const defaultMaxRedirects = 15

// HTTPFetcher fetches pages over net/http with a persistent cookie jar.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	robots    *RobotsPolicy
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	maxHops := opts.MaxRedirects
	if maxHops <= 0 {
		maxHops = defaultMaxRedirects
	}
	jar, _ := cookiejar.New(nil)

	return &HTTPFetcher{
		client: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxHops {
					return fmt.Errorf("stopped after %d redirects", maxHops)
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		robots:    opts.Robots,
	}
}

func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (Response, error) {
	out := Response{URL: urlStr}

	if err := f.robots.Check(ctx, urlStr); err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return out, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	out.StatusCode = resp.StatusCode
	if !out.OK() {
		return out, statusError(resp.StatusCode)
	}

	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		utf8Reader = resp.Body
	}

	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return out, fmt.Errorf("read body: %w", err)
	}
	out.Body = string(body)

	if err := detectCaptcha(out.Body); err != nil {
		return out, err
	}
	return out, nil
}
