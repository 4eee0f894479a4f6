package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// wordsPerMinute is the reading-speed assumption behind the estimator.
const wordsPerMinute = 200

var articlePolicy = bluemonday.UGCPolicy()

// SanitizeArticleHTML strips unsafe markup from article content while
// keeping the formatting tags the editor produces.
func SanitizeArticleHTML(content string) string {
	return articlePolicy.Sanitize(content)
}

// EstimateReadingTime returns the reading time of content in whole
// minutes, at least 1 for any non-empty content.
func EstimateReadingTime(content string) int {
	words := len(strings.Fields(stripTags(content)))
	if words == 0 {
		return 0
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// stripTags removes HTML tags so markup does not inflate the word count.
func stripTags(content string) string {
	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
