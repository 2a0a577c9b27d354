package models

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const wordsPerMinute = 200

// PlainText strips markup from CMS or provider content and collapses whitespace.
func PlainText(s string) string {
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts text to maxLen runes and appends an ellipsis when it had to cut.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}

// MetaDescription produces a markup-free description of at most maxLen runes.
func MetaDescription(content string, maxLen int) string {
	return Truncate(PlainText(content), maxLen)
}

// ReadingTime estimates minutes to read content at 200 words per minute.
func ReadingTime(content string) int {
	words := len(strings.Fields(PlainText(content)))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}
