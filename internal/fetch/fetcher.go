package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStatus     = errors.New("unexpected response status")
	ErrCaptcha    = errors.New("captcha detected")
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Response is a fetched page.
type Response struct {
	URL        string
	StatusCode int
	Body       string
}

func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// PageFetcher retrieves pages with the session's cookies attached.
// Non-success statuses come back as an error wrapping ErrStatus.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (Response, error)
}

type Options struct {
	UserAgent       string
	Timeout         time.Duration
	MaxRedirects    int
	RandomUserAgent bool
	Robots          *RobotsPolicy
}

func statusError(code int) error {
	return fmt.Errorf("%w: HTTP %d", ErrStatus, code)
}

var captchaMarkers = []string{
	"captcha",
	"security check",
	"unusual traffic",
	"подтвердите, что вы человек",
}

func detectCaptcha(body string) error {
	lower := strings.ToLower(body)
	for _, m := range captchaMarkers {
		if strings.Contains(lower, m) {
			return ErrCaptcha
		}
	}
	return nil
}
