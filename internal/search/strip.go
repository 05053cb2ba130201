package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML reduces a rich-text description to its plain text. Listing
// descriptions arrive from the editor as HTML fragments; the index only
// wants the words.
func StripHTML(html string) string {
	if html == "" || !strings.ContainsRune(html, '<') {
		return strings.TrimSpace(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	text := doc.Text()
	// Collapse the whitespace runs left behind by block elements
	return strings.Join(strings.Fields(text), " ")
}
