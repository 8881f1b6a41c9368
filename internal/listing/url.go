package listing

import (
	"fmt"
	"net/url"
	"strconv"
)

// RewriteSearchURL overwrites only the page and pageSize query parameters of
// a search URL, preserving every other parameter verbatim. The rewrite is
// pure and idempotent: query keys are re-encoded in sorted order, so the same
// inputs always yield the identical string.
func RewriteSearchURL(rawURL string, page, pageSize int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
