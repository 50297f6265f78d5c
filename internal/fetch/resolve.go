package fetch

import (
	"net/url"
	"strings"
)

// ReferenceResolver turns detail-page links found on a profile page into
// absolute URLs and stable publication ids.
type ReferenceResolver struct {
	base *url.URL
}

func NewReferenceResolver(base string) *ReferenceResolver {
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{}
	}
	return &ReferenceResolver{base: u}
}

// ResolveURL makes link absolute against the base page.
func (r *ReferenceResolver) ResolveURL(link string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", err
	}
	return r.base.ResolveReference(ref).String(), nil
}

// ResolveID derives the cache key of a publication: its citation_for_view
// parameter, else cites, else path and query. An unparsable link is its
// own id.
func (r *ReferenceResolver) ResolveID(link string) string {
	if link == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return link
	}
	u := r.base.ResolveReference(ref)

	q := u.Query()
	if id := q.Get("citation_for_view"); id != "" {
		return id
	}
	if id := q.Get("cites"); id != "" {
		return id
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
