package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailURL = "https://scholar.example.org/citations?view_op=view_citation&citation_for_view=abc"

func detailPage(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="gsc_oci_table">`)
	for _, r := range rows {
		b.WriteString(`<div class="gs_scl"><div class="gsc_oci_field">` + r[0] +
			`</div><div class="gsc_oci_value">` + r[1] + `</div></div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func newDefault(t *testing.T) *Parser {
	t.Helper()
	p, err := NewDefaultParser(nil)
	require.NoError(t, err)
	return p
}

func TestParseAuthorsLabeledField(t *testing.T) {
	p := newDefault(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "english",
			body: detailPage([2]string{"Authors", "A Smith, B Jones, C Lee"}, [2]string{"Publication date", "2021/3/4"}),
			want: "A Smith, B Jones, C Lee",
		},
		{
			name: "chinese",
			body: detailPage([2]string{"作者", "张三, 李四"}),
			want: "张三, 李四",
		},
		{
			name: "russian",
			body: detailPage([2]string{"Авторы", "И Иванов, П Петров"}),
			want: "И Иванов, П Петров",
		},
		{
			name: "last matching row wins",
			body: detailPage([2]string{"Author", "First Row"}, [2]string{"Autores", "Second Row, Other"}),
			want: "Second Row, Other",
		},
		{
			name: "value is trimmed",
			body: detailPage([2]string{"Auteurs", "  J Dupont, M Martin \n"}),
			want: "J Dupont, M Martin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseAuthors(detailURL, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAuthorsCommaGuess(t *testing.T) {
	p := newDefault(t)

	body := detailPage(
		[2]string{"Publication date", "2020"},
		[2]string{"Pages", "1, 2"},
		[2]string{"Contributors", "X Alpha, Y Beta"},
	)
	got, err := p.ParseAuthors(detailURL, body)
	require.NoError(t, err)
	assert.Equal(t, "X Alpha, Y Beta", got)
}

func TestParseAuthorsCustomLabels(t *testing.T) {
	field, err := NewLabeledField([]string{"Contributors"})
	require.NoError(t, err)
	p := NewParser(field)

	got, err := p.ParseAuthors(detailURL, detailPage(
		[2]string{"Authors", "Not Used"},
		[2]string{"Contributors", "X Alpha"},
	))
	require.NoError(t, err)
	assert.Equal(t, "X Alpha", got)
}

func TestParseAuthorsNotFound(t *testing.T) {
	p := NewParser(mustField(t), CommaListGuess{})

	for name, body := range map[string]string{
		"empty":        "",
		"no rows":      "<html><body><p>nothing here</p></body></html>",
		"empty value":  detailPage([2]string{"Authors", "   "}),
		"numbers only": detailPage([2]string{"Pages", "12, 13"}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.ParseAuthors(detailURL, body)
			assert.ErrorIs(t, err, ErrNoAuthors)
		})
	}
}

func TestParseAuthorsByline(t *testing.T) {
	p := newDefault(t)

	para := strings.Repeat("The study measures the effect of the treatment on a large cohort, and the results hold across every subgroup we examined. ", 6)
	body := `<html><head><title>A study of things</title>
<meta name="author" content="By Jane Smith and Bob Lee"></head>
<body><article><h1>A study of things</h1>
<p>` + para + `</p><p>` + para + `</p><p>` + para + `</p>
</article></body></html>`

	got, err := p.ParseAuthors("https://publisher.example.org/article/1", body)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith, Bob Lee", got)
}

func TestParseAuthorsIgnoresSingleNameByline(t *testing.T) {
	p := newDefault(t)

	para := strings.Repeat("A single researcher wrote this piece about a long running field study and its many findings. ", 6)
	body := `<html><head><title>Solo work</title>
<meta name="author" content="Jane Smith"></head>
<body><article><h1>Solo work</h1>
<p>` + para + `</p><p>` + para + `</p><p>` + para + `</p>
</article></body></html>`

	_, err := p.ParseAuthors("https://publisher.example.org/article/2", body)
	assert.ErrorIs(t, err, ErrNoAuthors)
}

func TestLooksLikeList(t *testing.T) {
	assert.True(t, looksLikeList("A, B"))
	assert.True(t, looksLikeList("张三, 李四"))
	assert.False(t, looksLikeList("Alone"))
	assert.False(t, looksLikeList("1, 2, 3"))
}

func mustField(t *testing.T) *LabeledField {
	t.Helper()
	f, err := NewLabeledField(nil)
	require.NoError(t, err)
	return f
}
