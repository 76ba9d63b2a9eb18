package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/castboard/scraper/internal/constants"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/normalize"
	"github.com/castboard/scraper/internal/util"
)

// Label battery for sites that publish attributes as running text instead
// of structured markup. Each pattern anchors on the field label and stops
// at the next known label, so the order fields appear in on the page does
// not matter.
var (
	agePattern = regexp.MustCompile(`(?i)Age[:\s]+(\d+)`)

	nationalityPattern = regexp.MustCompile(`(?i)Nationality(?:\s*\([^)]*\))?(?:\s*/\s*(?:Ethnicity|Race))?[:\s]+([A-Za-z\s/&,]+?)(?:Ethnicity|Race|Bust|Height|Weight|Eyes|Hair|Measurements?|Age|Enhancements?|\n|$)`)
	ethnicityPattern   = regexp.MustCompile(`(?i)(?:Ethnicity|Race)(?:\s*\([^)]*\))?[:\s]+([A-Za-z\s/&,]+?)(?:Nationality|Bust|Height|Weight|Eyes|Hair|Measurements?|Age|Enhancements?|\n|$)`)

	heightQuotedPattern = regexp.MustCompile("(?i)Height[:\\s]+(\\d+\\s*[’‘'′`´″\",]+\\s*\\d+)")
	heightMetricPattern = regexp.MustCompile(`(?i)Height[:\s]+(\d{2,3}\s*cm)`)
	heightWordPattern   = regexp.MustCompile(`(?i)Height[:\s]+(\d+\s*ft\.?\s*\d*\s*(?:in\.?)?)`)

	weightUnitPattern = regexp.MustCompile(`(?i)Weight[:\s]+(\d+\s*(?:lbs?|kg|pounds?))`)
	weightBarePattern = regexp.MustCompile(`(?i)Weight[:\s]+(\d{2,3})`)

	hairPattern     = regexp.MustCompile(`(?i)Hair(?:\s*Colou?r)?[:\s]+([A-Za-z\s/]+?)(?:Eyes?|Bust|Height|Weight|Measurements?|Nationality|Ethnicity|Race|Age|Enhancements?|Service|\n|$)`)
	hairBarePattern = regexp.MustCompile(`(?i)Hair[:\s]+([A-Za-z]+)`)
	eyePattern      = regexp.MustCompile(`(?i)Eyes?(?:\s*Colou?r)?[:\s]+([A-Za-z\s/]+?)(?:Hair|Bust|Height|Weight|Measurements?|Nationality|Ethnicity|Race|Age|Enhancements?|Service|\n|$)`)

	// Figure separators include the en and em dashes some sites render.
	bustPattern         = regexp.MustCompile(`(?i)Bust[:\s]+(\d+[A-Z]+(?:\s*[-–—/]\s*\d+\s*[-–—/]\s*\d+)?)\s*\(?\s*(Natural|Enhanced?)?\s*\)?`)
	measurementsPattern = regexp.MustCompile(`(?i)(?:Measurements?|Figure|Body\s*Size)[:\s]+(\d+[A-Za-z]*\s*[-–—/]\s*\d+\s*[-–—/]\s*\d+)`)
	bustLeadPattern     = regexp.MustCompile(`(?i)^(\d+[A-Z]+)`)
	figureLeadPattern   = regexp.MustCompile(`^(\d+)([A-Za-z]*)`)
)

// serviceTypePatterns in report order; the long form sorts before its
// acronym so both spell GFE exactly once.
var serviceTypePatterns = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`(?:^|[^\w])GF\s+ENTERTAINER(?:[^\w]|$)`), "GFE"},
	{regexp.MustCompile(`(?:^|[^\w])GFE(?:[^\w]|$)`), "GFE"},
	{regexp.MustCompile(`(?:^|[^\w])PSE(?:[^\w]|$)`), "PSE"},
	{regexp.MustCompile(`(?:^|[^\w])FETISH\s+FRIENDLY(?:[^\w]|$)`), "FETISH FRIENDLY"},
	{regexp.MustCompile(`(?:^|[^\w])DOMINATRIX(?:[^\w]|$)`), "DOMINATRIX"},
}

// extractTier finds the first canonical tier keyword in the text. Keywords
// are ordered most-specific first, so "PLATINUM VIP" never reports as "VIP".
func extractTier(text string) string {
	upper := strings.ToUpper(text)
	for _, keyword := range constants.TierKeywords {
		if strings.Contains(upper, keyword) {
			return keyword
		}
	}
	return ""
}

func extractAge(text string) int {
	m := agePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return age
}

func extractNationality(text string) string {
	m := nationalityPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ",")
}

func extractEthnicity(text string) string {
	m := ethnicityPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ",")
}

func extractHeight(text string) string {
	for _, pattern := range []*regexp.Regexp{heightQuotedPattern, heightMetricPattern, heightWordPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractWeight keeps the unit when the page states one and assumes pounds
// otherwise, matching how these sites write bare numbers.
func extractWeight(text string) string {
	if m := weightUnitPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := weightBarePattern.FindStringSubmatch(text); m != nil {
		return m[1] + " lbs"
	}
	return ""
}

func extractHairColor(text string) string {
	if m := hairPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := hairBarePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractEyeColor(text string) string {
	m := eyePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractBust reads the labeled bust field, which on some sites carries the
// full figure ("34DD-26-36 (Natural)"). A labeled Measurements field is the
// fallback for the figure.
func extractBust(text string) (bust, bustType, measurements string) {
	if m := bustPattern.FindStringSubmatch(text); m != nil {
		value := strings.TrimSpace(m[1])
		bustType = canonicalBustType(m[2])
		if strings.ContainsAny(value, "-–—/") {
			measurements = value
			if lead := bustLeadPattern.FindStringSubmatch(value); lead != nil {
				bust = lead[1]
			}
		} else {
			bust = value
		}
	}

	if measurements == "" {
		if m := measurementsPattern.FindStringSubmatch(text); m != nil {
			measurements = strings.TrimSpace(m[1])
			if bust == "" {
				if lead := bustLeadPattern.FindStringSubmatch(measurements); lead != nil {
					bust = lead[1]
				}
			}
		}
	}

	return bust, bustType, measurements
}

func extractServiceType(text string) string {
	upper := strings.ToUpper(text)
	var found []string
	for _, entry := range serviceTypePatterns {
		if entry.pattern.MatchString(upper) && !util.Contains(found, entry.label) {
			found = append(found, entry.label)
		}
	}
	return strings.Join(found, ", ")
}

// bustFromMeasurements pulls the bust column out of a canonicalized
// measurements string. A leading band with no cup letters still counts.
func bustFromMeasurements(measurements string) string {
	m := figureLeadPattern.FindStringSubmatch(measurements)
	if m == nil {
		return ""
	}
	if m[2] != "" {
		return normalize.BustSize(m[1] + m[2])
	}
	return m[1]
}

// canonicalBustType folds the spellings seen in the wild ("natural",
// "Enhance", "ENHANCED") into the two display values.
func canonicalBustType(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case lower == "":
		return ""
	case strings.HasPrefix(lower, "enhance"):
		return "Enhanced"
	case strings.HasPrefix(lower, "natural"):
		return "Natural"
	}
	return ""
}

// bustTypeFromText infers implant status from loose page wording when no
// labeled field exists. Negated spellings are checked before the bare
// keyword so "Enhanced: No" reads as natural.
func bustTypeFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "enhanced: no"),
		strings.Contains(lower, "enhancements: none"),
		strings.Contains(lower, "natural"):
		return "Natural"
	case strings.Contains(lower, "enhanced"):
		return "Enhanced"
	}
	return ""
}

// fieldsFromText runs the whole battery over flattened page text and
// normalizes everything it finds. Sites with structured stats markup fill
// the fields directly instead and skip this.
func fieldsFromText(text string) domain.ProfileFields {
	text = strings.ReplaceAll(text, " ", " ")

	fields := domain.ProfileFields{
		Age:         extractAge(text),
		Nationality: normalize.Name(extractNationality(text)),
		Ethnicity:   normalize.Name(extractEthnicity(text)),
		Height:      normalize.Height(extractHeight(text)),
		Weight:      normalize.Weight(extractWeight(text)),
		HairColor:   normalize.Color(extractHairColor(text)),
		EyeColor:    normalize.Color(extractEyeColor(text)),
		ServiceType: normalize.ServiceType(extractServiceType(text)),
		Tags:        normalize.Tags(text),
	}

	bust, bustType, measurements := extractBust(text)
	fields.Bust = normalize.BustSize(bust)
	fields.Measurements = normalize.Measurements(measurements)
	fields.BustType = bustType
	if fields.BustType == "" {
		fields.BustType = bustTypeFromText(text)
	}

	if tier := extractTier(text); tier != "" {
		fields.Tier = normalize.Tier(tier)
	}

	return fields
}
