package adapter

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/internal/normalize"
	"github.com/castboard/scraper/internal/util"
)

// Marquee publishes one long schedule page: h5 headings name the venue, h6
// headings the day, and every relative anchor between two headings is one
// talent entry with the time range glued onto the name text.
type Marquee struct {
	site
}

func NewMarquee(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter {
	return &Marquee{site: newSite(cfg, fetcher, log)}
}

// marqueeSkipText marks navigation and credit anchors that share the
// schedule's markup.
var marqueeSkipText = []string{"Sitecraft", "Design", "Website", "Contact", "About"}

var (
	marqueeIncallSuffix = regexp.MustCompile(`(?i)\s*INCALL\s*$`)

	// Ranges are stripped before single times so "7P-11PM" does not leave
	// a dangling "-11PM" in the name.
	marqueeTimeRange   = regexp.MustCompile(`(?i)\d{1,2}[:;]?\d{0,2}\s*(?:AM|PM|[APM])?\s*[-–]\s*(?:\d{1,2}[:;]?\d{0,2}\s*(?:AM|PM|[APM])?|LATE)`)
	marqueeTimeSingle  = regexp.MustCompile(`(?i)\d{1,2}[:;]?\d{0,2}\s*(?:AM|PM)`)
	marqueeTrailingSep = regexp.MustCompile(`[;,\s]+$`)
	marqueeTrailingNum = regexp.MustCompile(`[\d\-]+$`)

	marqueeRateTier = regexp.MustCompile(`(?i)INCALL RATES\s+(PLATINUM VIP|ULTRA VIP|VIP|ELITE)\s+\d+\s*mins?`)
	marqueeStarTier = regexp.MustCompile(`(?i)\*\s*(PLATINUM VIP|ULTRA VIP|VIP|ELITE)\s*\*`)
)

// marqueeTierMarkers removes the starred tier badges from entry text.
// Longer markers are listed first so "*VIP*" never bites into them.
var marqueeTierMarkers = strings.NewReplacer(
	"*PLATINUM VIP*", "",
	"*ULTRA VIP*", "",
	"*ELITE*", "",
	"*VIP*", "",
)

func (m *Marquee) ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	doc, err := m.document(ctx, m.cfg.ScheduleURL)
	if err != nil {
		return nil, err
	}

	content := doc.Find("div.content")
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	var (
		items       []domain.ScheduleItem
		currentDay  string
		currentTown string
		candidates  int
		parseErrors int
	)

	content.Find("h5, h6, a").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "h5":
			currentTown = util.CollapseWhitespace(marqueeIncallSuffix.ReplaceAllString(sel.Text(), ""))
		case "h6":
			// Anything that is not a day heading ends the current day
			// section rather than mislabeling the entries after it.
			if day, ok := util.CanonicalDay(sel.Text()); ok {
				currentDay = day
			} else {
				currentDay = ""
			}
		case "a":
			href, _ := sel.Attr("href")
			href = strings.TrimSpace(href)
			text := util.CollapseWhitespace(sel.Text())
			// Profile links are relative on this site; absolute anchors
			// are navigation or outbound credits.
			if href == "" || strings.HasPrefix(href, "http") || marqueeSkipped(text) {
				return
			}

			candidates++
			item := m.parseEntry(text, href, currentDay, currentTown)
			if item == nil {
				parseErrors++
				m.log.Debug("unparseable schedule entry", zap.String("text", util.TruncateString(text, 80)))
				return
			}
			items = append(items, *item)
		}
	})

	if len(items) == 0 {
		return nil, m.noEntries(parseErrors)
	}
	m.warnParseErrors(parseErrors, candidates)

	return items, nil
}

func marqueeSkipped(text string) bool {
	for _, pattern := range marqueeSkipText {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

func (m *Marquee) parseEntry(text, href, day, town string) *domain.ScheduleItem {
	tier := extractTier(text)
	text = marqueeTierMarkers.Replace(text)

	start, end := normalize.TimeRange(text)

	name := marqueeTimeRange.ReplaceAllString(text, "")
	name = marqueeTimeSingle.ReplaceAllString(name, "")
	name = util.CollapseWhitespace(name)
	name = marqueeTrailingSep.ReplaceAllString(name, "")
	name = marqueeTrailingNum.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return nil
	}

	return &domain.ScheduleItem{
		Name:       normalize.Name(name),
		ProfileURL: m.absoluteURL(href),
		Tier:       normalize.Tier(tier),
		Slots: []domain.RawSlot{{
			Day:      day,
			Location: town,
			Start:    start,
			End:      end,
		}},
	}
}

func (m *Marquee) ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error) {
	doc, err := m.document(ctx, profileURL)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	content := doc.Find("div.content")
	text := content.Text()
	if content.Length() == 0 {
		text = doc.Text()
	}

	fields := fieldsFromText(text)
	// The rate table names the tier more reliably than loose text, which
	// mentions "VIP" in all sorts of copy.
	if tier := marqueeProfileTier(text); tier != "" {
		fields.Tier = tier
	}
	fields.Images = m.galleryImages(doc)

	m.logProfile(profileURL, &fields)
	return fields, nil
}

func marqueeProfileTier(text string) string {
	text = util.CollapseWhitespace(text)
	if m := marqueeRateTier.FindStringSubmatch(text); m != nil {
		return normalize.Tier(m[1])
	}
	if m := marqueeStarTier.FindStringSubmatch(text); m != nil {
		return normalize.Tier(m[1])
	}
	return ""
}

func (m *Marquee) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]bool)
	doc.Find("img.gallery-img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		resolved := m.imageURL(src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	})
	if len(images) > maxProfileImages {
		images = images[:maxProfileImages]
	}
	return images
}
