package parse

import (
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

var (
	reBylinePrefix = regexp.MustCompile(`(?i)^\s*by\s+`)
	reBylineJoin   = regexp.MustCompile(`(?i)\s*(?:;|&|\band\b)\s*`)
)

// Byline uses the article byline of pages that are not detail pages, such
// as a publisher landing page. A byline naming a single person is not taken
// as a complete author list.
type Byline struct{}

func (Byline) Name() string { return "byline" }

func (Byline) Find(page *Page) (string, bool) {
	article, err := readability.FromReader(strings.NewReader(page.Body), page.URL)
	if err != nil {
		return "", false
	}

	byline := strings.TrimSpace(reBylinePrefix.ReplaceAllString(article.Byline, ""))
	byline = reBylineJoin.ReplaceAllString(byline, ", ")
	byline = strings.Trim(byline, ", ")
	if !looksLikeList(byline) {
		return "", false
	}
	return byline, true
}
