package pipeline

import (
	"context"
	"log/slog"

	"author_highlighter/internal/models"
)

// Presenter is told about every record the pipeline emits, first-pass and
// refined alike. It must be safe for concurrent use.
type Presenter interface {
	Present(ctx context.Context, rec Record)
}

type PresenterFunc func(ctx context.Context, rec Record)

func (f PresenterFunc) Present(ctx context.Context, rec Record) { f(ctx, rec) }

// LogPresenter writes one structured line per record.
type LogPresenter struct {
	Logger *slog.Logger
}

func (p LogPresenter) Present(ctx context.Context, rec Record) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	msg := "classified"
	if rec.Expanded {
		msg = "expanded"
	}
	logger.InfoContext(ctx, msg,
		"title", rec.Publication.Title,
		"authors", rec.Authors,
		"matched", rec.Match.MatchedText,
		"index", rec.Match.MatchedIndex,
		"roles", rec.Roles.String(),
		"truncated", rec.Truncated(),
		"highlighted", rec.Highlighted,
	)
}

// RecordSink persists role records.
type RecordSink interface {
	SaveRecord(ctx context.Context, rec models.RoleRecord) error
}

// SinkPresenter stores every record it is shown.
type SinkPresenter struct {
	Sink RecordSink
}

func (p SinkPresenter) Present(ctx context.Context, rec Record) {
	if err := p.Sink.SaveRecord(ctx, rec.Model()); err != nil {
		slog.Warn("pipeline: failed to store record", "paper", rec.Key, "error", err)
	}
}
