package title

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxLength is the longest cleaned title kept before truncation.
const MaxLength = 200

type extractor func(doc *goquery.Document) string

// extractors are tried in order; the first non-blank result wins.
var extractors = []extractor{
	func(doc *goquery.Document) string { return doc.Find("title").First().Text() },
	func(doc *goquery.Document) string {
		return doc.Find(`meta[property="og:title"]`).First().AttrOr("content", "")
	},
	func(doc *goquery.Document) string {
		return doc.Find(`meta[name="twitter:title"]`).First().AttrOr("content", "")
	},
	func(doc *goquery.Document) string { return doc.Find("h1").First().Text() },
}

// Extract returns the cleaned page title, or "" when no source yields one.
func Extract(doc *goquery.Document) string {
	for _, extract := range extractors {
		if title := Clean(extract(doc)); title != "" {
			return title
		}
	}
	return ""
}

// Clean collapses whitespace runs to single spaces, trims, and truncates to
// MaxLength characters followed by "...".
func Clean(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")

	runes := []rune(cleaned)
	if len(runes) > MaxLength {
		return string(runes[:MaxLength]) + "..."
	}
	return cleaned
}
