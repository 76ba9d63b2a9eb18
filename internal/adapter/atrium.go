package adapter

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/constants"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/internal/normalize"
	"github.com/castboard/scraper/internal/util"
)

// Atrium publishes a talent grid with no schedule on it; availability,
// tier and stats all live on the profile pages, so the roster pass only
// collects names and the weekly slots ride back as profile overrides.
type Atrium struct {
	site
}

func NewAtrium(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter {
	return &Atrium{site: newSite(cfg, fetcher, log)}
}

var (
	atriumSlugPattern  = regexp.MustCompile(`/talent/([^/?#]+)/?`)
	atriumHoursPattern = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:AM|PM)?)\s*[-–]\s*(\d{1,2}(?::\d{2})?\s*(?:AM|PM)?)`)
)

// atriumTiers in match order against the profile's tier box.
var atriumTiers = []struct {
	keyword, display string
}{
	{"diamond", "Diamond"},
	{"gold", "Gold"},
	{"silver", "Silver"},
	{"bronze", "Bronze"},
}

// atriumTowns are the incall areas the agency rotates through. Slot
// location text names them loosely ("Kingsbridge Incall, King & Main").
var atriumTowns = []string{"Kingsbridge", "Fairmont", "Westvale", "Northgate", "Eastbrook", "Lakewood"}

func (a *Atrium) ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	doc, err := a.document(ctx, a.cfg.ScheduleURL)
	if err != nil {
		return nil, err
	}

	var items []domain.ScheduleItem
	seen := make(map[string]bool)

	doc.Find("div.talent-grid a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := atriumSlugPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}

		resolved := a.absoluteURL(href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true

		name := util.CollapseWhitespace(sel.Text())
		if name == "" {
			name = titleFromSlug(m[1])
		}

		items = append(items, domain.ScheduleItem{
			Name:       normalize.Name(name),
			ProfileURL: resolved,
		})
	})

	if len(items) == 0 {
		return nil, a.noEntries(0)
	}

	return items, nil
}

func (a *Atrium) ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error) {
	doc, err := a.document(ctx, profileURL)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	var fields domain.ProfileFields

	if name := nameFromTitle(doc.Find("title").First().Text()); name != "" {
		fields.Name = normalize.Name(name)
	}

	a.applyStats(doc, &fields)
	fields.Slots = a.weeklySlots(doc)
	fields.Images = a.galleryImages(doc)
	fields.Tags = normalize.Tags(doc.Text())

	a.logProfile(profileURL, &fields)
	return fields, nil
}

// applyStats walks the stat boxes; each label box is followed by a sibling
// value box.
func (a *Atrium) applyStats(doc *goquery.Document, fields *domain.ProfileFields) {
	doc.Find(".stat-box").Each(func(_ int, box *goquery.Selection) {
		key := util.Normalize(box.Text())
		value := util.CollapseWhitespace(box.NextAllFiltered(".stat-value").First().Text())
		if key == "" || value == "" {
			return
		}

		switch {
		case key == "age":
			if m := firstNumberPattern.FindString(value); m != "" {
				fields.Age, _ = strconv.Atoi(m)
			}
		case key == "height":
			fields.Height = normalize.Height(value)
		case key == "weight":
			fields.Weight = normalize.Weight(value)
		case key == "stats" || strings.Contains(key, "measurement"):
			fields.Measurements = normalize.Measurements(value)
			if bust := bustFromMeasurements(fields.Measurements); bust != "" {
				fields.Bust = bust
			}
		case key == "tier":
			fields.Tier = atriumTier(value)
		case strings.Contains(key, "body"):
			if bustType := bustTypeFromText(value); bustType != "" {
				fields.BustType = bustType
			}
		case strings.Contains(key, "specialty"), key == "talents":
			fields.ServiceType = normalize.ServiceType(value)
		case strings.Contains(key, "hair"):
			fields.HairColor = normalize.Color(value)
		case strings.Contains(key, "eye"):
			fields.EyeColor = normalize.Color(value)
		case key == "background", key == "nationality":
			fields.Nationality = normalize.Name(value)
		case key == "ethnicity":
			fields.Ethnicity = normalize.Name(value)
		}
	})
}

func atriumTier(value string) string {
	lower := strings.ToLower(value)
	for _, tier := range atriumTiers {
		if strings.Contains(lower, tier.keyword) {
			return tier.display
		}
	}
	return normalize.Tier(value)
}

// weeklySlots reads the availability block. The first block for a day wins;
// the site repeats days when an update overlaps the old markup.
func (a *Atrium) weeklySlots(doc *goquery.Document) []domain.RawSlot {
	var slots []domain.RawSlot
	seen := make(map[string]bool)

	doc.Find("div.weekly-schedule .schedule-day").Each(func(_ int, sel *goquery.Selection) {
		day, _ := util.CanonicalDay(sel.Find("span.day-name").First().Text())
		if day == "" || seen[day] {
			return
		}
		seen[day] = true

		hours := util.CollapseWhitespace(sel.Find("span.day-hours").First().Text())
		if hours == "" || strings.Contains(strings.ToLower(hours), "unavailable") {
			return
		}

		m := atriumHoursPattern.FindStringSubmatch(hours)
		if m == nil {
			return
		}

		slots = append(slots, domain.RawSlot{
			Day:      day,
			Location: atriumLocation(sel.Find("span.day-location").First().Text()),
			Start:    normalize.Time(m[1]),
			End:      normalize.Time(m[2]),
		})
	})

	return slots
}

// atriumLocation maps loose incall text onto a known town; the label is
// whatever follows the last comma, usually a cross street.
func atriumLocation(raw string) string {
	raw = util.CollapseWhitespace(raw)
	if raw == "" {
		return ""
	}

	town := constants.DefaultTown
	lower := strings.ToLower(raw)
	for _, candidate := range atriumTowns {
		if strings.Contains(lower, strings.ToLower(candidate)) {
			town = candidate
			break
		}
	}

	label := constants.DefaultLabel
	if i := strings.LastIndex(raw, ","); i >= 0 {
		if tail := strings.TrimSpace(raw[i+1:]); tail != "" {
			label = tail
		}
	}

	return town + ", " + label
}

func (a *Atrium) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]bool)

	doc.Find("figure img, article img, main img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			src, _ = sel.Attr("data-src")
		}
		if !strings.Contains(src, "/uploads/") || strings.Contains(src, "logo") {
			return
		}
		src = strings.SplitN(src, "?", 2)[0]

		resolved := a.imageURL(src)
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
