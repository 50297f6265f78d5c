package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"author_highlighter/internal/authorship"
	"author_highlighter/internal/cache"
	"author_highlighter/internal/config"
	"author_highlighter/internal/db"
	"author_highlighter/internal/expand"
	"author_highlighter/internal/fetch"
	"author_highlighter/internal/models"
	"author_highlighter/internal/parse"
	"author_highlighter/internal/pipeline"
	"author_highlighter/internal/throttle"
)

var ErrNoOwner = errors.New("profile page shows no owner name")

// HighlighterApp performs one load of a profile page: it reads every
// publication row, classifies the owner's position in each author list and
// expands truncated lists from the detail pages.
type HighlighterApp struct {
	config    *config.Config
	mongo     *db.MongoDB
	postgres  *db.Postgres
	fetcher   fetch.PageFetcher
	throttler *throttle.Throttler
	resolver  *fetch.ReferenceResolver
	cache     *cache.AuthorListCache
	parser    *parse.Parser
}

// Result is the outcome of one run. Metrics cover the highlighted records.
type Result struct {
	RunID           string
	Owner           string
	Records         []pipeline.Record
	Metrics         pipeline.Metrics
	OnlyHighlighted bool
	Stats           map[string]interface{}
}

func NewHighlighterApp(ctx context.Context, cfg *config.Config) (*HighlighterApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &HighlighterApp{
		config:   cfg,
		resolver: fetch.NewReferenceResolver(cfg.Profile.URL),
		throttler: throttle.New(throttle.Config{
			Spacing:    cfg.Throttle.Spacing(),
			BatchLimit: cfg.Throttle.BatchLimit,
			Cooldown:   cfg.Throttle.Cooldown(),
		}),
	}

	parser, err := parse.NewDefaultParser(cfg.Parser.Labels)
	if err != nil {
		return nil, err
	}
	a.parser = parser
	a.fetcher = newFetcher(cfg.Fetch)

	if cfg.UsesMongo() {
		a.mongo, err = db.NewMongoDB(ctx, cfg.DB, cfg.Cache.TTL())
		if err != nil {
			return nil, err
		}
	}

	store, err := a.newStore(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.cache = cache.New(store,
		cache.WithTTL(cfg.Cache.TTL()),
		cache.WithPrefix(cfg.Cache.KeyPrefix),
	)

	return a, nil
}

func newFetcher(cfg config.FetchConfig) fetch.PageFetcher {
	opts := fetch.Options{
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.Timeout(),
		MaxRedirects:    cfg.MaxRedirects,
		RandomUserAgent: cfg.RandomUserAgent,
	}
	if cfg.RespectRobots {
		opts.Robots = fetch.NewRobotsPolicy(&http.Client{Timeout: cfg.Timeout()}, cfg.UserAgent)
	}

	if cfg.Backend == "colly" {
		return fetch.NewCollyFetcher(opts)
	}
	return fetch.NewHTTPFetcher(opts)
}

func (a *HighlighterApp) newStore(ctx context.Context) (cache.Store, error) {
	switch a.config.Cache.Backend {
	case "mongo":
		return a.mongo, nil
	case "postgres":
		pg, err := db.NewPostgres(ctx, a.config.Postgres.URL)
		if err != nil {
			return nil, err
		}
		a.postgres = pg
		return pg, nil
	default:
		return cache.NewMemoryStore(), nil
	}
}

func (a *HighlighterApp) presenters() []pipeline.Presenter {
	var out []pipeline.Presenter
	for _, b := range a.config.Report.Backends {
		switch strings.ToLower(b) {
		case "log":
			out = append(out, pipeline.LogPresenter{})
		case "mongo":
			if a.mongo != nil {
				out = append(out, pipeline.SinkPresenter{Sink: a.mongo})
			}
		default:
			slog.Warn("app: unknown report backend", "backend", b)
		}
	}
	return out
}

// LoadProfile reads the profile page by page until a page comes back short
// or the page limit is hit. Profile pages share the throttler with the
// detail-page fetches.
func (a *HighlighterApp) LoadProfile(ctx context.Context) (parse.Profile, error) {
	size := a.config.Profile.PageSize
	var profile parse.Profile

	for page := 0; page < a.config.Profile.MaxPages; page++ {
		pageURL, err := profilePageURL(a.config.Profile.URL, page*size, size)
		if err != nil {
			return parse.Profile{}, err
		}

		resp, err := throttle.Schedule(ctx, a.throttler, func(ctx context.Context) (fetch.Response, error) {
			slog.Info("network-request: fetching profile page", "page", page, "url", pageURL)
			return a.fetcher.Fetch(ctx, pageURL)
		})
		if err != nil {
			if page == 0 {
				return parse.Profile{}, fmt.Errorf("load profile page: %w", err)
			}
			slog.Warn("app: stopping at failed profile page", "page", page, "error", err)
			break
		}

		p, err := parse.ProfilePage(resp.Body)
		if err != nil {
			return parse.Profile{}, err
		}
		if page == 0 {
			profile.Name = p.Name
		}
		profile.Publications = append(profile.Publications, p.Publications...)

		if len(p.Publications) < size {
			break
		}
	}

	if a.config.Profile.Name != "" {
		profile.Name = a.config.Profile.Name
	}
	if strings.TrimSpace(profile.Name) == "" {
		return parse.Profile{}, ErrNoOwner
	}

	slog.Info("app: profile loaded", "owner", profile.Name, "publications", len(profile.Publications))
	return profile, nil
}

func profilePageURL(base string, start, size int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad profile url: %w", err)
	}
	q := u.Query()
	q.Set("cstart", strconv.Itoa(start))
	q.Set("pagesize", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run loads the profile and classifies every publication, waiting for all
// expansions to finish.
func (a *HighlighterApp) Run(ctx context.Context) (*Result, error) {
	profile, err := a.LoadProfile(ctx)
	if err != nil {
		return nil, err
	}
	return a.Classify(ctx, profile.Name, profile.Publications), nil
}

// Classify runs the pipeline over pubs for owner.
func (a *HighlighterApp) Classify(ctx context.Context, owner string, pubs []models.Publication) *Result {
	filter := authorship.AllRoles()
	if a.config.Filters != nil {
		filter = *a.config.Filters
	}

	p := pipeline.New(
		authorship.NewMatcher(owner),
		expand.New(a.resolver, a.cache, a.throttler, a.fetcher, a.parser),
		pipeline.WithFilter(filter),
		pipeline.WithPresenters(a.presenters()...),
		pipeline.WithKeyFunc(a.resolver.ResolveID),
	)

	session := p.Run(ctx, pubs)
	refined := 0
	for range session.Updates() {
		refined++
	}
	slog.Info("app: classification finished", "run", p.RunID(), "publications", len(pubs), "refined", refined)

	res := &Result{
		RunID:           p.RunID(),
		Owner:           owner,
		Records:         session.Wait(),
		OnlyHighlighted: a.config.Report.OnlyHighlighted,
	}
	res.Metrics = pipeline.ComputeMetrics(res.Records)
	slog.Info("app: highlighted metrics",
		"papers", res.Metrics.Papers,
		"citations", res.Metrics.Citations,
		"h_index", res.Metrics.HIndex,
		"h10_index", res.Metrics.H10Index,
	)

	if a.mongo != nil && a.reportsTo("mongo") {
		stats, err := a.mongo.RunStats(ctx, res.RunID)
		if err != nil {
			slog.Warn("app: failed to read run stats", "error", err)
		} else {
			res.Stats = stats
		}
	}
	return res
}

func (a *HighlighterApp) reportsTo(backend string) bool {
	for _, b := range a.config.Report.Backends {
		if strings.EqualFold(b, backend) {
			return true
		}
	}
	return false
}

// Close releases the database connections.
func (a *HighlighterApp) Close(ctx context.Context) error {
	var errs []error
	if a.mongo != nil {
		errs = append(errs, a.mongo.Close(ctx))
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	return errors.Join(errs...)
}

// Print writes one line per publication, or per highlighted publication
// when OnlyHighlighted is set, followed by the metrics. Highlighted rows are
// starred.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "owner: %s  run: %s\n", r.Owner, r.RunID)

	recs := r.Records
	if r.OnlyHighlighted {
		recs = pipeline.Highlighted(recs)
	}
	for _, rec := range recs {
		mark := " "
		if rec.Highlighted {
			mark = "*"
		}
		status := ""
		switch {
		case rec.Expanded:
			status = " (expanded)"
		case rec.Truncated():
			status = " (truncated)"
		}
		fmt.Fprintf(w, "%s %3d  %-16s %s%s\n", mark, rec.Index+1, rec.Roles.String(), rec.Publication.Title, status)
	}
	fmt.Fprintf(w, "highlighted: papers %d  citations %d  h-index %d  h10-index %d\n",
		r.Metrics.Papers, r.Metrics.Citations, r.Metrics.HIndex, r.Metrics.H10Index)

	keys := make([]string, 0, len(r.Stats))
	for k := range r.Stats {
		if k != "_id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %v\n", k, r.Stats[k])
	}
}
