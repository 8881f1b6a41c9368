package listing

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseJobIDs(t *testing.T) {
	t.Run("extracts ids in page order", func(t *testing.T) {
		doc := docFrom(t, `
			<dhi-search-card><a data-cy="card-title-link" id="job-111">One</a></dhi-search-card>
			<dhi-search-card><a data-cy="card-title-link" id="job-222">Two</a></dhi-search-card>`)
		require.Equal(t, []string{"job-111", "job-222"}, parseJobIDs(doc))
	})

	t.Run("skips cards without an id", func(t *testing.T) {
		doc := docFrom(t, `
			<dhi-search-card><a data-cy="card-title-link">missing id</a></dhi-search-card>
			<dhi-search-card><span>no anchor at all</span></dhi-search-card>
			<dhi-search-card><a data-cy="card-title-link" id="job-333">Three</a></dhi-search-card>`)
		require.Equal(t, []string{"job-333"}, parseJobIDs(doc))
	})

	t.Run("zero cards yields empty list", func(t *testing.T) {
		doc := docFrom(t, `<html><body><p>no results</p></body></html>`)
		require.Empty(t, parseJobIDs(doc))
	})
}

func TestParseTotalPages(t *testing.T) {
	t.Run("takes the largest numeric link", func(t *testing.T) {
		doc := docFrom(t, `
			<a data-cy="page-number-link">1</a>
			<a data-cy="page-number-link">12</a>
			<a data-cy="page-number-link">3</a>`)
		require.Equal(t, 12, parseTotalPages(doc, 5))
	})

	t.Run("ignores non-numeric links", func(t *testing.T) {
		doc := docFrom(t, `
			<a data-cy="page-number-link">Next</a>
			<a data-cy="page-number-link">2</a>`)
		require.Equal(t, 2, parseTotalPages(doc, 5))
	})

	t.Run("missing controls fall back to default", func(t *testing.T) {
		doc := docFrom(t, `<html><body></body></html>`)
		require.Equal(t, 5, parseTotalPages(doc, 5))
	})

	t.Run("unparsable controls fall back to default", func(t *testing.T) {
		doc := docFrom(t, `<a data-cy="page-number-link">...</a>`)
		require.Equal(t, 5, parseTotalPages(doc, 5))
	})
}
