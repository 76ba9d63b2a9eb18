package normalize

import (
	"strings"

	"github.com/castboard/scraper/internal/constants"
)

// Tags scans profile text for the fixed tag vocabulary, case-insensitively.
// The result is in vocabulary order with no duplicates, so repeated scans of
// the same text always agree.
func Tags(text string) []string {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var tags []string
	for _, keyword := range constants.TagVocabulary {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			tags = append(tags, keyword)
		}
	}
	return tags
}
