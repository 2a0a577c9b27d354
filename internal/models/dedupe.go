package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var headlineFolder = cases.Fold()

// NormalizeHeadline is the comparison form of a headline: NFC, case folded, trimmed.
func NormalizeHeadline(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return headlineFolder.String(s)
}

// Deduplicate drops every article that shares a normalized headline or a
// source URL with any article before it. Order is preserved, so callers
// decide precedence by ordering the input. Empty headlines and URLs never
// match.
func Deduplicate(articles []Article) []Article {
	headlines := make(map[string]bool)
	urls := make(map[string]bool)
	result := make([]Article, 0, len(articles))

	for _, a := range articles {
		headline := NormalizeHeadline(a.DisplayTitle())
		url := strings.TrimSpace(a.SourceURL)

		dup := (headline != "" && headlines[headline]) || (url != "" && urls[url])

		if headline != "" {
			headlines[headline] = true
		}
		if url != "" {
			urls[url] = true
		}
		if !dup {
			result = append(result, a)
		}
	}

	return result
}
