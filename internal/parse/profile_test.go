package parse

import (
	"testing"

	"author_highlighter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileBody = `<html><body>
<div id="gsc_prf_in">Jane Q. Smith</div>
<table><tbody id="gsc_a_b">
<tr class="gsc_a_tr"><td class="gsc_a_t">
  <a class="gsc_a_at" href="/citations?view_op=view_citation&amp;citation_for_view=u1:p1">Deep things</a>
  <div class="gs_gray">J Smith, A Lee</div><div class="gs_gray">Nature 2020</div>
</td><td class="gsc_a_c"><a class="gsc_a_ac gs_ibl">42</a></td></tr>
<tr class="gsc_a_tr"><td class="gsc_a_t">
  <a class="gsc_a_at" data-href="/citations?view_op=view_citation&amp;citation_for_view=u1:p2">Long list</a>
  <div class="gs_gray" title="A Lee, B Kim, C Park, J Smith">A Lee, B Kim, ...</div>
</td><td class="gsc_a_c"><a class="gsc_a_ac gs_ibl"></a></td></tr>
<tr class="gsc_a_tr"><td class="gsc_a_t">
  <span class="gs_gray" aria-label="Z One, J Smith">Z One, ...</span>
</td></tr>
</tbody></table>
</body></html>`

func TestProfilePage(t *testing.T) {
	p, err := ProfilePage(profileBody)
	require.NoError(t, err)

	assert.Equal(t, "Jane Q. Smith", p.Name)
	require.Len(t, p.Publications, 3)

	assert.Equal(t, models.Publication{
		Ref:            "/citations?view_op=view_citation&citation_for_view=u1:p1",
		Title:          "Deep things",
		DisplayAuthors: "J Smith, A Lee",
		Citations:      42,
		HasCitations:   true,
	}, p.Publications[0])

	assert.Equal(t, "/citations?view_op=view_citation&citation_for_view=u1:p2", p.Publications[1].Ref)
	assert.Equal(t, "A Lee, B Kim, ...", p.Publications[1].DisplayAuthors)
	assert.Equal(t, "A Lee, B Kim, C Park, J Smith", p.Publications[1].AttributeAuthors)

	assert.False(t, p.Publications[1].HasCitations)

	assert.Empty(t, p.Publications[2].Ref)
	assert.False(t, p.Publications[2].HasCitations)
	assert.Equal(t, "Z One, J Smith", p.Publications[2].AttributeAuthors)
}

func TestProfilePageEmpty(t *testing.T) {
	p, err := ProfilePage("<html></html>")
	require.NoError(t, err)
	assert.Empty(t, p.Name)
	assert.Empty(t, p.Publications)
}

func TestCitations(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{" 7\n", 7, true},
		{"15*", 15, true},
		{"0", 0, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := citations(tt.text)
		assert.Equal(t, tt.ok, ok, "text %q", tt.text)
		assert.Equal(t, tt.want, got, "text %q", tt.text)
	}
}
