package parse

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoAuthors = errors.New("no authors field found")

// DefaultLabels are the "authors" field labels of the detail page across
// the interface languages we know of.
var DefaultLabels = []string{
	"author", "作者", "autores", "autor", "auteurs", "autori", "autoren", "автор", "авторы", "著者",
}

// Page is a fetched detail page prepared for the strategies.
type Page struct {
	URL  *url.URL
	Body string
	Doc  *goquery.Document
}

// Strategy locates an author list on a page.
type Strategy interface {
	Name() string
	Find(page *Page) (string, bool)
}

// PageParser extracts the full author list from a detail page.
type PageParser interface {
	ParseAuthors(pageURL, body string) (string, error)
}

// Parser tries its strategies in order and returns the first hit.
type Parser struct {
	strategies []Strategy
}

func NewParser(strategies ...Strategy) *Parser {
	return &Parser{strategies: strategies}
}

// NewDefaultParser looks for a labeled field, then guesses a comma list,
// then falls back to the article byline.
func NewDefaultParser(labels []string) (*Parser, error) {
	field, err := NewLabeledField(labels)
	if err != nil {
		return nil, err
	}
	return NewParser(field, CommaListGuess{}, Byline{}), nil
}

func (p *Parser) ParseAuthors(pageURL, body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}

	page := &Page{URL: u, Body: body, Doc: doc}
	for _, s := range p.strategies {
		if text, ok := s.Find(page); ok {
			return text, nil
		}
	}
	return "", ErrNoAuthors
}

// LabeledField reads the value of the last .gs_scl row whose label matches.
type LabeledField struct {
	pattern *regexp.Regexp
}

func NewLabeledField(labels []string) (*LabeledField, error) {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			quoted = append(quoted, regexp.QuoteMeta(l))
		}
	}
	re, err := regexp.Compile(strings.Join(quoted, "|"))
	if err != nil {
		return nil, fmt.Errorf("compile label pattern: %w", err)
	}
	return &LabeledField{pattern: re}, nil
}

func (LabeledField) Name() string { return "labeled-field" }

func (f *LabeledField) Find(page *Page) (string, bool) {
	var found string
	page.Doc.Find(".gs_scl").Each(func(_ int, row *goquery.Selection) {
		field := row.Find(".gsc_oci_field")
		value := row.Find(".gsc_oci_value")
		if field.Length() == 0 || value.Length() == 0 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(field.Text()))
		if f.pattern.MatchString(label) {
			found = strings.TrimSpace(value.Text())
		}
	})
	return found, found != ""
}

var reNameLetter = regexp.MustCompile(`[A-Za-z\x{4e00}-\x{9fa5}]`)

// CommaListGuess picks the first field value that looks like a list of names.
type CommaListGuess struct{}

func (CommaListGuess) Name() string { return "comma-list" }

func (CommaListGuess) Find(page *Page) (string, bool) {
	var found string
	page.Doc.Find(".gsc_oci_value").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if looksLikeList(text) {
			found = text
			return false
		}
		return true
	})
	return found, found != ""
}

func looksLikeList(text string) bool {
	return len(strings.Split(text, ",")) >= 2 && reNameLetter.MatchString(text)
}
