package fetch

import (
	"context"
	"errors"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
)

// CollyFetcher fetches pages through a synchronous colly collector. Clones
// share the collector's HTTP backend and therefore its cookie jar.
type CollyFetcher struct {
	collector *colly.Collector
	randomUA  bool
	robots    *RobotsPolicy
}

func NewCollyFetcher(opts Options) *CollyFetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	if opts.UserAgent != "" {
		c.UserAgent = opts.UserAgent
	}
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	return &CollyFetcher{
		collector: c,
		randomUA:  opts.RandomUserAgent,
		robots:    opts.Robots,
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, urlStr string) (Response, error) {
	out := Response{URL: urlStr}

	if err := f.robots.Check(ctx, urlStr); err != nil {
		return out, err
	}

	c := f.collector.Clone()
	if f.randomUA {
		extensions.RandomUserAgent(c)
	}

	var fetchErr error
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		out.StatusCode = r.StatusCode
		out.Body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			out.StatusCode = r.StatusCode
		}
		fetchErr = err
	})

	if err := c.Visit(urlStr); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	if out.StatusCode != 0 && !out.OK() {
		return out, errors.Join(statusError(out.StatusCode), fetchErr)
	}
	if fetchErr != nil {
		return out, fetchErr
	}

	if err := detectCaptcha(out.Body); err != nil {
		return out, err
	}
	return out, nil
}
