package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/internal/normalize"
	"github.com/castboard/scraper/internal/util"
)

// Prism renders its schedule client-side, so it runs in stealth mode. Each
// talent is an a.card element whose data-card attribute holds entity-escaped
// JSON with the tier badges and the dated appearances; the hours for a date
// live in a separate p[data-date] element on the same page.
type Prism struct {
	site
}

func NewPrism(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter {
	return &Prism{site: newSite(cfg, fetcher, log)}
}

type prismCard struct {
	Tier  []string   `json:"tier"`
	Dates [][]string `json:"dates"`
}

// prismTierNames maps the badge spellings, singular and plural, to display
// form.
var prismTierNames = map[string]string{
	"star":           "Star",
	"stars":          "Star",
	"silver star":    "Silver Star",
	"silver stars":   "Silver Star",
	"gold star":      "Gold Star",
	"gold stars":     "Gold Star",
	"platinum star":  "Platinum Star",
	"platinum stars": "Platinum Star",
}

// prismTowns are the towns this site abbreviates in its location strings.
var prismTowns = []string{"Kingsbridge", "Northgate", "Fairmont", "Eastbrook"}

var prismHoursSep = regexp.MustCompile(`\s*[-–]\s*`)

func (p *Prism) ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	doc, err := p.document(ctx, p.cfg.ScheduleURL)
	if err != nil {
		return nil, err
	}

	now := util.NowVenue()

	var (
		items       []domain.ScheduleItem
		candidates  int
		parseErrors int
	)

	doc.Find("a.card").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		slug := slugFromURL(href)
		// The schedule page links itself with the same card markup.
		if slug == "" || slug == "schedule" {
			return
		}

		candidates++
		raw, ok := sel.Attr("data-card")
		if !ok {
			parseErrors++
			p.log.Debug("card without data attribute", zap.String("slug", slug))
			return
		}
		card, err := parsePrismCard(raw)
		if err != nil {
			parseErrors++
			p.log.Debug("unparseable card JSON", zap.String("slug", slug), zap.Error(err))
			return
		}

		name := util.CollapseWhitespace(sel.Find("div.title").First().Text())
		if name == "" {
			name = titleFromSlug(slug)
		}

		item := domain.ScheduleItem{
			Name:       normalize.Name(name),
			ProfileURL: p.absoluteURL(href),
			Tier:       prismTier(card.Tier),
		}

		for _, pair := range card.Dates {
			if len(pair) != 2 {
				continue
			}
			day, ok := prismSlotDay(pair[0], now)
			if !ok {
				continue
			}
			location, ok := prismLocation(pair[1])
			if !ok {
				continue
			}
			start, end := prismHours(doc, pair[0])
			item.Slots = append(item.Slots, domain.RawSlot{
				Day:      day,
				Location: location,
				Start:    start,
				End:      end,
			})
		}

		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, p.noEntries(parseErrors)
	}
	p.warnParseErrors(parseErrors, candidates)

	return items, nil
}

// parsePrismCard decodes the card JSON, retrying through entity unescaping
// for the pages that double-escape the attribute.
func parsePrismCard(raw string) (prismCard, error) {
	var card prismCard
	if err := json.Unmarshal([]byte(raw), &card); err == nil {
		return card, nil
	}
	err := json.Unmarshal([]byte(html.UnescapeString(raw)), &card)
	return card, err
}

func prismTier(labels []string) string {
	for _, label := range labels {
		if display, ok := prismTierNames[util.Normalize(label)]; ok {
			return display
		}
	}
	if len(labels) > 0 {
		return normalize.Tier(labels[0])
	}
	return ""
}

// prismSlotDay resolves a "Mon, Dec 08" date to its canonical day name.
// Dates already past are dropped, today stays. A December page listing
// January dates rolls into next year.
func prismSlotDay(raw string, now time.Time) (string, bool) {
	parts := strings.SplitN(util.CollapseWhitespace(raw), ",", 2)
	if len(parts) != 2 {
		return "", false
	}
	day, ok := util.CanonicalDay(parts[0])
	if !ok {
		return "", false
	}
	monthDay, err := time.Parse("Jan 2", strings.TrimSpace(parts[1]))
	if err != nil {
		return "", false
	}

	year := now.Year()
	if int(monthDay.Month()) < int(now.Month())-6 {
		year++
	}
	date := time.Date(year, monthDay.Month(), monthDay.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return "", false
	}
	return day, true
}

// prismLocation turns the free-form location string into "town, label".
// Outcall entries have no venue and are dropped.
func prismLocation(raw string) (string, bool) {
	raw = util.CollapseWhitespace(raw)
	if raw == "" {
		return "", false
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "outcall") {
		return "", false
	}

	for _, town := range prismTowns {
		idx := strings.Index(lower, strings.ToLower(town))
		if idx < 0 {
			continue
		}
		label := strings.TrimSpace(raw[:idx] + raw[idx+len(town):])
		label = strings.Trim(label, "-–, ")
		if label == "" {
			label = "unknown"
		}
		return town + ", " + label, true
	}

	// Unseeded towns: a trailing token that is ALL CAPS or hyphenated is
	// a venue label, the rest is the town.
	if idx := strings.LastIndex(raw, " "); idx > 0 {
		head, tail := raw[:idx], raw[idx+1:]
		if strings.Contains(tail, "-") || (tail == strings.ToUpper(tail) && tail != strings.ToLower(tail)) {
			return head + ", " + tail, true
		}
	}
	return raw + ", unknown", true
}

func prismHours(doc *goquery.Document, rawDate string) (string, string) {
	selector := fmt.Sprintf(`p[data-date=%q] span.hours`, rawDate)
	text := util.CollapseWhitespace(doc.Find(selector).First().Text())
	if text == "" {
		return "", ""
	}

	pieces := prismHoursSep.Split(text, 2)
	if len(pieces) == 2 {
		return normalize.Time(pieces[0]), normalize.Time(pieces[1])
	}
	single := normalize.Time(text)
	return single, single
}

func (p *Prism) ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error) {
	doc, err := p.document(ctx, profileURL)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	text := doc.Text()
	fields := fieldsFromText(text)

	if name := prismProfileName(doc); name != "" {
		fields.Name = name
	}
	if tier := prismProfileTier(text); tier != "" {
		fields.Tier = tier
	}
	fields.Images = p.galleryImages(doc)

	p.logProfile(profileURL, &fields)
	return fields, nil
}

// prismProfileName tries the page title, the h1 and the name spans, taking
// the first candidate that looks like a full name. Single-word candidates
// lose to the schedule entry's name.
func prismProfileName(doc *goquery.Document) string {
	candidates := []string{
		nameFromTitle(doc.Find("title").First().Text()),
		util.CollapseWhitespace(doc.Find("h1").First().Text()),
		util.CollapseWhitespace(doc.Find("div.profile-name").First().Text()),
		util.CollapseWhitespace(doc.Find("span.name").First().Text()),
	}

	for i, candidate := range candidates {
		if i == 1 && len(candidate) >= 50 {
			// An h1 that long is a tagline, not a name.
			continue
		}
		if candidate != "" && strings.Contains(candidate, " ") {
			return normalize.Name(candidate)
		}
	}
	return ""
}

func prismProfileTier(text string) string {
	lower := strings.ToLower(text)
	for _, name := range []string{"platinum star", "gold star", "silver star"} {
		if strings.Contains(lower, name) {
			return prismTierNames[name]
		}
	}
	return ""
}

func (p *Prism) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]bool)
	doc.Find("div.gallery img, img.skip-lazy").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			src, _ = sel.Attr("data-src")
		}
		if !strings.Contains(src, "wp-content/uploads") {
			return
		}
		src = strings.SplitN(src, "?", 2)[0]
		resolved := p.imageURL(src)
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
