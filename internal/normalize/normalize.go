// Package normalize converts raw scraped text fragments into canonical
// representations. Every function is total: malformed input comes back as a
// best-effort partial result or unchanged, never as an error.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	weightKgPattern  = regexp.MustCompile(`(?i)(\d+)\s*kg`)
	weightLbsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:lbs?|pounds?)?`)

	heightCmPattern   = regexp.MustCompile(`(?i)(\d{2,3})\s*cm`)
	heightFtInPattern = regexp.MustCompile("(\\d+)[’‘'′`´″\",]+(\\d+)")

	dashSpacing      = regexp.MustCompile(`\s*-\s*`)
	bandCupGap       = regexp.MustCompile(`^(\d+)\s+([A-Za-z]+)`)
	fullMeasurements = regexp.MustCompile(`^(\d+)([A-Za-z]+)-(\d+)-(\d+)$`)
	compactFigure    = regexp.MustCompile(`^(\d{2})([A-Za-z]+)[-\s]?(\d{2})(\d{2})$`)

	bustSpaced = regexp.MustCompile(`^\d+\s+[A-Z]+$`)
	bustJoined = regexp.MustCompile(`^(\d+)([A-Z]+)$`)

	slashSpacing = regexp.MustCompile(`\s*/\s*`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

var tierDisplay = map[string]string{
	"ELITE":        "Elite",
	"VIP":          "VIP",
	"ULTRA VIP":    "Ultra VIP",
	"PLATINUM VIP": "Platinum VIP",
}

// Name converts an ALL CAPS or mixed-case display name to Title Case.
//
//	LETICIA EVA -> Leticia Eva
//	o'hara      -> O'Hara
func Name(name string) string {
	return titleCase(strings.TrimSpace(name))
}

// Tier maps a tier label to its display form. Unknown labels are
// title-cased rather than dropped.
func Tier(tier string) string {
	tier = strings.TrimSpace(tier)
	if tier == "" {
		return ""
	}
	upper := strings.ToUpper(tier)
	if display, ok := tierDisplay[upper]; ok {
		return display
	}
	return titleCase(tier)
}

// Weight converts pounds to kilograms rounded to the nearest integer.
// Values already in kilograms keep their magnitude; a bare number is
// assumed to be pounds.
//
//	130 lbs -> 59 kg
//	55 kg   -> 55 kg
func Weight(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if strings.Contains(strings.ToLower(text), "kg") {
		if m := weightKgPattern.FindStringSubmatch(text); m != nil {
			return m[1] + " kg"
		}
		return text
	}

	if m := weightLbsPattern.FindStringSubmatch(text); m != nil {
		lbs, err := strconv.Atoi(m[1])
		if err == nil {
			kg := int(float64(lbs)*0.453592 + 0.5)
			return fmt.Sprintf("%d kg", kg)
		}
	}

	return text
}

// Height canonicalizes feet/inches notation to a single straight quote and
// leaves metric values alone. The separator set covers straight and curly
// quotes, prime marks, backticks and the occasional comma.
//
//	5’9”   -> 5'9
//	5,4    -> 5'4
//	170 cm -> 170 cm
func Height(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if m := heightCmPattern.FindStringSubmatch(text); m != nil {
		return m[1] + " cm"
	}

	if m := heightFtInPattern.FindStringSubmatch(text); m != nil {
		return m[1] + "'" + m[2]
	}

	return text
}

// Measurements canonicalizes bust-waist-hip strings to NN(CUP)-NN-NN.
//
//	34DD/25/34 -> 34DD-25-34
//	34C2636    -> 34C-26-36
//	32D-23- 35 -> 32D-23-35
func Measurements(text string) string {
	m := strings.TrimSpace(text)
	if m == "" {
		return ""
	}

	m = strings.NewReplacer("/", "-", "–", "-", "—", "-").Replace(m)
	m = dashSpacing.ReplaceAllString(m, "-")
	m = bandCupGap.ReplaceAllString(m, "$1$2")

	if g := fullMeasurements.FindStringSubmatch(m); g != nil {
		return g[1] + strings.ToUpper(g[2]) + "-" + g[3] + "-" + g[4]
	}
	if g := compactFigure.FindStringSubmatch(m); g != nil {
		return g[1] + strings.ToUpper(g[2]) + "-" + g[3] + "-" + g[4]
	}

	return m
}

// BustSize separates the band number from the cup letters.
//
//	34DD -> 34 DD
//	32b  -> 32 B
func BustSize(text string) string {
	bust := strings.ToUpper(strings.TrimSpace(text))
	if bust == "" {
		return ""
	}

	if bustSpaced.MatchString(bust) {
		return bust
	}
	if g := bustJoined.FindStringSubmatch(bust); g != nil {
		return g[1] + " " + g[2]
	}

	return bust
}

// ServiceType uppercases and collapses the service label, folding the
// long-form spelling into its acronym.
func ServiceType(text string) string {
	service := strings.ToUpper(strings.TrimSpace(text))
	if service == "" {
		return ""
	}
	service = multiSpace.ReplaceAllString(service, " ")
	if service == "GF ENTERTAINER" {
		return "GFE"
	}
	return service
}

// Color title-cases hair/eye color values and tightens slash-separated
// pairs ("Blue/ Green" -> "Blue/Green").
func Color(text string) string {
	color := strings.TrimSpace(text)
	if color == "" {
		return ""
	}
	color = slashSpacing.ReplaceAllString(color, "/")
	return titleCase(color)
}

// titleCase uppercases the first letter of every run of letters and
// lowercases the rest, so "o'hara" becomes "O'Hara" and "MARY-ANNE"
// becomes "Mary-Anne".
func titleCase(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				builder.WriteRune(unicode.ToLower(r))
			} else {
				builder.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			builder.WriteRune(r)
			prevLetter = false
		}
	}
	return builder.String()
}
