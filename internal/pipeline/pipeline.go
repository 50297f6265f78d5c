package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"author_highlighter/internal/authorship"
	"author_highlighter/internal/models"

	"github.com/google/uuid"
)

// Expander fetches the full author list of a publication.
type Expander interface {
	Expand(ctx context.Context, ref string) (string, bool)
}

// Pipeline classifies the publications of one profile page load. A
// publication is expanded at most once per Pipeline, and every later pass
// over it reuses the expanded list.
type Pipeline struct {
	matcher    *authorship.Matcher
	expander   Expander
	filter     authorship.Filter
	presenters []Presenter
	keyOf      func(ref string) string
	runID      string

	mu        sync.Mutex
	attempted map[string]bool
	full      map[string]string
}

type Option func(*Pipeline)

func WithFilter(f authorship.Filter) Option {
	return func(p *Pipeline) { p.filter = f }
}

func WithPresenters(ps ...Presenter) Option {
	return func(p *Pipeline) { p.presenters = append(p.presenters, ps...) }
}

// WithKeyFunc sets how a publication reference maps to its key.
func WithKeyFunc(fn func(ref string) string) Option {
	return func(p *Pipeline) { p.keyOf = fn }
}

func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New builds a pipeline. A nil expander disables network expansion.
func New(matcher *authorship.Matcher, expander Expander, opts ...Option) *Pipeline {
	p := &Pipeline{
		matcher:   matcher,
		expander:  expander,
		filter:    authorship.AllRoles(),
		keyOf:     func(ref string) string { return ref },
		runID:     uuid.NewString(),
		attempted: make(map[string]bool),
		full:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) RunID() string {
	return p.runID
}

func (p *Pipeline) key(i int, pub models.Publication) string {
	if pub.Ref != "" {
		if k := p.keyOf(pub.Ref); k != "" {
			return k
		}
	}
	return fmt.Sprintf("row:%d", i)
}

func (p *Pipeline) remembered(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	text, ok := p.full[key]
	return text, ok
}

// Classify runs one synchronous pass over pub, the i-th row of the page. It
// uses the expanded list when one is known, else the visible text.
func (p *Pipeline) Classify(i int, pub models.Publication) Record {
	key := p.key(i, pub)

	text, expanded := p.remembered(key)
	if !expanded {
		text = pub.DisplayAuthors
		if text == "" {
			text = pub.AttributeAuthors
		}
	}
	return p.record(i, key, pub, text, expanded)
}

func (p *Pipeline) record(i int, key string, pub models.Publication, text string, expanded bool) Record {
	match, roles := p.matcher.MatchAndClassify(text)

	p.mu.Lock()
	filter := p.filter
	p.mu.Unlock()

	return Record{
		RunID:       p.runID,
		Index:       i,
		Key:         key,
		Publication: pub,
		Authors:     text,
		Match:       match,
		Roles:       roles,
		Expanded:    expanded,
		Highlighted: filter.Highlights(roles),
	}
}

// Reapply re-runs the synchronous pass over recs under a new filter.
func (p *Pipeline) Reapply(f authorship.Filter, recs []Record) []Record {
	p.mu.Lock()
	p.filter = f
	p.mu.Unlock()

	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = p.Classify(r.Index, r.Publication)
	}
	return out
}

// Run classifies pubs and returns at once with the first-pass records.
// Publications whose list is truncated or lacks the profile owner are
// expanded in the background, in page order.
func (p *Pipeline) Run(ctx context.Context, pubs []models.Publication) *Session {
	s := newSession(len(pubs))

	var pending []Record
	for i, pub := range pubs {
		rec := p.Classify(i, pub)
		s.records[i] = rec
		p.present(ctx, rec)

		if p.claim(rec) {
			pending = append(pending, rec)
		}
	}
	s.initial = append([]Record(nil), s.records...)

	go func() {
		defer s.finish()
		for _, rec := range pending {
			refined, ok := p.expand(ctx, rec)
			if !ok {
				continue
			}
			s.set(refined)
			p.present(ctx, refined)
			s.updates <- refined
		}
	}()

	return s
}

// claim reports whether rec should be expanded and marks it attempted.
func (p *Pipeline) claim(rec Record) bool {
	if rec.Expanded || (!rec.Match.Truncated && rec.Match.Found()) {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attempted[rec.Key] {
		return false
	}
	p.attempted[rec.Key] = true
	return true
}

func (p *Pipeline) expand(ctx context.Context, rec Record) (Record, bool) {
	pub := rec.Publication

	text := pub.AttributeAuthors
	if text == "" || authorship.IsTruncated(text) || text == rec.Authors {
		if p.expander == nil {
			return Record{}, false
		}
		var ok bool
		if text, ok = p.expander.Expand(ctx, pub.Ref); !ok {
			return Record{}, false
		}
	}

	full := authorship.SplitAuthors(text)
	if len(full) == 0 {
		return Record{}, false
	}
	joined := authorship.Match{Entries: full}.Joined()

	p.mu.Lock()
	p.full[rec.Key] = joined
	p.mu.Unlock()

	refined := p.record(rec.Index, rec.Key, pub, joined, true)
	slog.Debug("pipeline: refined classification",
		"paper", rec.Key, "before", rec.Roles.String(), "after", refined.Roles.String())
	return refined, true
}

func (p *Pipeline) present(ctx context.Context, rec Record) {
	for _, pr := range p.presenters {
		pr.Present(ctx, rec)
	}
}
