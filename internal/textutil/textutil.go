package textutil

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tagExpr = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)

// Clean prepares feed text for prompting: drops invalid UTF-8 sequences and
// strips HTML markup when the text looks markup-formatted.
func Clean(text string) string {
	cleaned := strings.ToValidUTF8(text, "")
	if tagExpr.MatchString(cleaned) {
		cleaned = stripMarkup(cleaned)
	}
	return cleaned
}

// stripMarkup flattens HTML-formatted message text to its visible content.
// On parse failure the input is kept as-is.
func stripMarkup(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return strings.TrimSpace(doc.Text())
}
