package normalize

import (
	"regexp"
	"strings"
)

// OpenEnd is the sentinel end value for open-ended schedules. It is kept
// verbatim rather than mapped to a clock time.
const OpenEnd = "LATE"

var (
	semicolonTypo = regexp.MustCompile(`(\d);(\d{2})`)

	// Matched in order. The second pattern catches mangled meridiem
	// markers on the start time ("7P-11PM", "1M-5PM"). Separators accept
	// the en dash some sites render between times.
	rangeFull = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:AM|PM))\s*[-–]\s*(\d{1,2}(?::\d{2})?\s*(?:AM|PM))`)
	rangeBare = regexp.MustCompile(`(?i)(\d{1,2}\s*[PM])\s*[-–]\s*(\d{1,2}(?::\d{2})?\s*(?:AM|PM))`)
	rangeLate = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:AM|PM))\s*[-–]\s*(LATE)`)
	single    = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:AM|PM))\s*$`)

	timeToken = regexp.MustCompile(`(?i)^(\d{1,2}(?::\d{2})?)\s*(AM|PM|A|P|M)$`)
)

// TimeRange extracts a (start, end) pair from free text containing a
// schedule time. Handles the malformed variants seen in the wild:
//
//	7P-11PM    -> 7PM, 11PM
//	1M-5PM     -> 1AM, 5PM
//	11AM-LATE  -> 11AM, LATE
//	3;30PM-7PM -> 3:30PM, 7PM
//	3PM        -> 3PM, 3PM
//
// Returns empty strings when no time is present.
func TimeRange(text string) (string, string) {
	text = semicolonTypo.ReplaceAllString(text, "$1:$2")

	for _, pattern := range []*regexp.Regexp{rangeFull, rangeBare, rangeLate} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return Time(m[1]), Time(m[2])
		}
	}

	if m := single.FindStringSubmatch(text); m != nil {
		t := Time(m[1])
		return t, t
	}

	return "", ""
}

// Time canonicalizes a single clock-time token: uppercase, no interior
// whitespace, semicolon typos fixed, bare "P"/"M" meridiem markers
// completed ("7P" -> "7PM", "1M" -> "1AM"). LATE passes through verbatim.
// Anything unrecognizable comes back trimmed and uppercased, nothing more.
func Time(token string) string {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" || token == OpenEnd {
		return token
	}

	token = semicolonTypo.ReplaceAllString(token, "$1:$2")

	m := timeToken.FindStringSubmatch(token)
	if m == nil {
		return token
	}

	clock := m[1]
	switch strings.ToUpper(m[2]) {
	case "AM", "A", "M":
		return clock + "AM"
	default:
		return clock + "PM"
	}
}
