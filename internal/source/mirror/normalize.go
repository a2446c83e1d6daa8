package mirror

import (
	"regexp"
	"strings"

	"content_scraper/internal/domain"
)

// anchorOpenPattern matches an anchor opening tag carrying an href, with
// either quote style and any attributes around it. The inner text and the
// closing tag are left alone.
var anchorOpenPattern = regexp.MustCompile(`(?i)<a\s+(?:[^>]*?\s+)?href\s*=\s*(?:"[^"]*"|'[^']*')[^>]*>`)

// StripAnchors removes every anchor opening tag from s. Removal repeats until
// nothing matches, so StripAnchors(StripAnchors(s)) == StripAnchors(s).
func StripAnchors(s string) string {
	for {
		out := anchorOpenPattern.ReplaceAllString(s, "")
		if out == s {
			return out
		}
		s = out
	}
}

// Normalize maps one raw item to a content record. Absent children yield
// empty strings.
func Normalize(item Item) domain.Content {
	content := domain.NewContent()

	content.ArticleURL = joinText(item.Links)
	content.Title = joinText(item.Titles)
	content.Author = joinText(item.Creators)
	if content.Author == "" {
		content.Author = joinText(item.Authors)
	}
	content.HTMLContent = StripAnchors(joinText(item.Descriptions))
	content.OriginalContent = item.Raw

	for _, thumb := range item.Thumbnails {
		if url := strings.TrimSpace(thumb.URL); url != "" {
			content.MainImageURL = url
			break
		}
	}

	return content
}

// joinText collapses every run of whitespace to one space, trims, and joins
// the non-empty values with a space. Only ASCII whitespace counts, so a
// no-break space survives.
func joinText(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strings.FieldsFunc(v, isCollapsibleSpace)...)
	}
	return strings.Join(parts, " ")
}

func isCollapsibleSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
