package authorship

import (
	"strings"
)

const (
	ellipsis        = "..."
	unicodeEllipsis = "…"
)

// NoMatch is the MatchedIndex and Distance of a list without a candidate.
const NoMatch = -1

// Entry is one author token as presented in the list.
type Entry struct {
	Text  string
	Index int
}

type Match struct {
	Entries      []Entry
	MatchedIndex int
	MatchedText  string
	Distance     int
	Truncated    bool
}

func (m Match) Found() bool {
	return m.MatchedIndex >= 0
}

func (m Match) Len() int {
	return len(m.Entries)
}

// Joined renders the entries back into a comma-separated list without
// ellipsis tokens.
func (m Match) Joined() string {
	texts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, ", ")
}

// IsTruncated reports whether a raw author list ends early.
func IsTruncated(raw string) bool {
	return strings.Contains(raw, ellipsis) || strings.Contains(raw, unicodeEllipsis)
}

// SplitAuthors splits a raw comma-separated list, dropping empty and
// ellipsis tokens.
func SplitAuthors(raw string) []Entry {
	var entries []Entry
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == ellipsis || tok == unicodeEllipsis {
			continue
		}
		entries = append(entries, Entry{Text: tok, Index: len(entries)})
	}
	return entries
}

// Matcher finds the profile owner in author lists.
type Matcher struct {
	profile Name
}

func NewMatcher(profileName string) *Matcher {
	return &Matcher{profile: Normalize(profileName)}
}

func (m *Matcher) Profile() Name {
	return m.profile
}

// Match locates the best entry for the profile owner in raw. Entries whose
// characters are not drawn from the profile name are never candidates; among
// candidates the smallest edit distance wins and the earliest index breaks ties.
func (m *Matcher) Match(raw string) Match {
	res := Match{
		Entries:      SplitAuthors(raw),
		MatchedIndex: NoMatch,
		Distance:     NoMatch,
		Truncated:    IsTruncated(raw),
	}

	for _, e := range res.Entries {
		score, ok := m.score(e.Text)
		if !ok {
			continue
		}
		if res.MatchedIndex == NoMatch || score < res.Distance {
			res.MatchedIndex = e.Index
			res.MatchedText = e.Text
			res.Distance = score
		}
	}
	return res
}

func (m *Matcher) score(author string) (int, bool) {
	candidate := Normalize(author).Compact
	if candidate == "" {
		return 0, false
	}
	if !IsCharSubset(candidate, m.profile.Compact) {
		return 0, false
	}
	return Distance(candidate, m.profile.Compact), true
}

// Classify derives the roles of a match.
func Classify(res Match) Roles {
	var r Roles
	if !res.Found() {
		return r
	}

	idx, n := res.MatchedIndex, res.Len()
	if sym := MarkerIn(res.MatchedText); sym != "" && n > 1 && markedRun(res.Entries[:idx], sym) {
		r.CoFirst = true
		return r
	}

	r.First = idx == 0
	r.Second = idx == 1
	r.Last = idx == n-1 && !res.Truncated
	return r
}

func markedRun(entries []Entry, sym string) bool {
	for _, e := range entries {
		if !strings.Contains(e.Text, sym) {
			return false
		}
	}
	return true
}

// MatchAndClassify matches raw and derives its roles in one step.
func (m *Matcher) MatchAndClassify(raw string) (Match, Roles) {
	res := m.Match(raw)
	return res, Classify(res)
}
