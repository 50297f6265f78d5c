package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"author_highlighter/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Profile is what a profile page shows about its owner.
type Profile struct {
	Name         string
	Publications []models.Publication
}

// ProfilePage reads the owner's name and the publication rows.
func ProfilePage(body string) (Profile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Profile{}, fmt.Errorf("parse profile html: %w", err)
	}

	p := Profile{Name: strings.TrimSpace(doc.Find("#gsc_prf_in").First().Text())}

	doc.Find(".gsc_a_tr").Each(func(_ int, row *goquery.Selection) {
		var pub models.Publication

		anchor := row.Find(".gsc_a_at").First()
		if anchor.Length() > 0 {
			pub.Title = strings.TrimSpace(anchor.Text())
			pub.Ref = attrOr(anchor, "href", "data-href")
		}

		authors := row.Find(".gs_gray").First()
		if authors.Length() > 0 {
			pub.DisplayAuthors = strings.TrimSpace(authors.Text())
			pub.AttributeAuthors = attrOr(authors, "title", "aria-label")
		}

		pub.Citations, pub.HasCitations = citations(row.Find(".gsc_a_ac").First().Text())

		p.Publications = append(p.Publications, pub)
	})

	return p, nil
}

func attrOr(s *goquery.Selection, names ...string) string {
	for _, n := range names {
		if v, ok := s.Attr(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var reLeadingCount = regexp.MustCompile(`^\s*(\d+)`)

// citations reads the leading count of a citation cell; an empty or
// non-numeric cell has none.
func citations(text string) (int, bool) {
	m := reLeadingCount.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
