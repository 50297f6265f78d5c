package pipeline

import (
	"time"

	"author_highlighter/internal/authorship"
	"author_highlighter/internal/models"
)

// Record is the classification of one publication in one pass.
type Record struct {
	RunID       string
	Index       int
	Key         string
	Publication models.Publication
	Authors     string
	Match       authorship.Match
	Roles       authorship.Roles
	Expanded    bool
	Highlighted bool
}

func (r Record) Truncated() bool {
	return r.Match.Truncated
}

// Model converts r into its stored form.
func (r Record) Model() models.RoleRecord {
	return models.RoleRecord{
		RunID:        r.RunID,
		PaperKey:     r.Key,
		Title:        r.Publication.Title,
		Authors:      r.Authors,
		MatchedIndex: r.Match.MatchedIndex,
		MatchedText:  r.Match.MatchedText,
		First:        r.Roles.First,
		Second:       r.Roles.Second,
		CoFirst:      r.Roles.CoFirst,
		Last:         r.Roles.Last,
		Truncated:    r.Match.Truncated,
		Expanded:     r.Expanded,
		Highlighted:  r.Highlighted,
		Citations:    r.Publication.Citations,
		UpdatedAt:    time.Now().Unix(),
	}
}
