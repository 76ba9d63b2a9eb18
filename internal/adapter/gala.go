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

// Gala runs a single venue, so its schedule is one table: first column the
// talent link, the remaining columns Monday through Sunday holding a time
// range, OFF, or CALL. Every listing shares one location and one tier.
type Gala struct {
	site
}

func NewGala(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter {
	return &Gala{site: newSite(cfg, fetcher, log)}
}

// galaLocation matches the seeded catalog row for the house venue.
const galaLocation = "Kingsbridge, Midtown"

const galaTier = "Standard"

var (
	galaSlugPattern = regexp.MustCompile(`/profiles/([^/?#"]+)/?`)
	galaTimePattern = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?\s*[-–]\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?`)
	galaSizeSuffix  = regexp.MustCompile(`-\d+x\d+(\.\w+)$`)
)

func (g *Gala) ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	doc, err := g.document(ctx, g.cfg.ScheduleURL)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table#weekly-schedule").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, g.noEntries(0)
	}

	// Column -> day from the header row; the site reshuffles columns when
	// the week rolls over.
	dayByColumn := make(map[int]string)
	table.Find("tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		if i == 0 {
			return
		}
		if day := galaColumnDay(cell.Text()); day != "" {
			dayByColumn[i] = day
		}
	})

	var items []domain.ScheduleItem

	table.Find("tr").Each(func(rowIdx int, row *goquery.Selection) {
		if rowIdx == 0 {
			return
		}
		link := row.Find("a").First()
		href, _ := link.Attr("href")
		m := galaSlugPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}

		name := util.CollapseWhitespace(link.Text())
		if name == "" {
			name = titleFromSlug(m[1])
		}

		item := domain.ScheduleItem{
			Name:       normalize.Name(name),
			ProfileURL: g.absoluteURL(href),
			Tier:       galaTier,
		}

		row.Find("th, td").Each(func(i int, cell *goquery.Selection) {
			if i == 0 {
				return
			}
			day := dayByColumn[i]
			if day == "" {
				return
			}
			start, end, ok := galaTimeSlot(cell.Text())
			if !ok {
				return
			}
			item.Slots = append(item.Slots, domain.RawSlot{
				Day:      day,
				Location: galaLocation,
				Start:    start,
				End:      end,
			})
		})

		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, g.noEntries(0)
	}

	return items, nil
}

func galaColumnDay(text string) string {
	upper := strings.ToUpper(util.CollapseWhitespace(text))
	for _, day := range constants.DaysOfWeek {
		if strings.Contains(upper, strings.ToUpper(day[:3])) {
			return day
		}
	}
	return ""
}

// galaTimeSlot parses one table cell. OFF and CALL mean no bookable slot.
// The site omits meridiems freely; a missing one means PM, which covers
// both the "1-9pm" afternoon form and the "9-1am" over-midnight form.
func galaTimeSlot(text string) (string, string, bool) {
	cleaned := strings.ToUpper(util.CollapseWhitespace(text))
	switch cleaned {
	case "", "-", "OFF", "CALL":
		return "", "", false
	}

	m := galaTimePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return "", "", false
	}

	startMer, endMer := m[3], m[6]
	if startMer == "" {
		startMer = "PM"
	}
	if endMer == "" {
		endMer = "PM"
	}

	return galaClock(m[1], m[2], startMer), galaClock(m[4], m[5], endMer), true
}

func galaClock(hour, minute, meridiem string) string {
	if minute != "" {
		return hour + ":" + minute + meridiem
	}
	return hour + meridiem
}

func (g *Gala) ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error) {
	doc, err := g.document(ctx, profileURL)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	var fields domain.ProfileFields

	if name := nameFromTitle(doc.Find("title").First().Text()); name != "" {
		fields.Name = normalize.Name(name)
	}

	g.applyStats(doc, &fields)
	fields.Images = g.galleryImages(doc)
	fields.Tags = normalize.Tags(doc.Text())

	g.logProfile(profileURL, &fields)
	return fields, nil
}

// applyStats reads the shop attributes table the storefront theme renders
// under every profile.
func (g *Gala) applyStats(doc *goquery.Document, fields *domain.ProfileFields) {
	doc.Find("table.shop_attributes tr").Each(func(_ int, row *goquery.Selection) {
		key := util.Normalize(row.Find("th").First().Text())
		value := util.CollapseWhitespace(row.Find("td").First().Text())
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
		case strings.Contains(key, "measurement"):
			fields.Measurements = normalize.Measurements(value)
			if bust := bustFromMeasurements(fields.Measurements); bust != "" {
				fields.Bust = bust
			}
		case strings.Contains(key, "breast"):
			fields.BustType = canonicalBustType(value)
		case strings.Contains(key, "hair"):
			fields.HairColor = normalize.Color(value)
		case strings.Contains(key, "eye"):
			fields.EyeColor = normalize.Color(value)
		case key == "nationality":
			fields.Nationality = normalize.Name(value)
		case key == "ethnicity":
			fields.Ethnicity = normalize.Name(value)
		case strings.Contains(key, "service"):
			fields.ServiceType = normalize.ServiceType(value)
		}
	})
}

func (g *Gala) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]bool)

	add := func(sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if !strings.Contains(src, "wp-content/uploads") {
			return
		}
		src = strings.SplitN(src, "?", 2)[0]
		src = galaSizeSuffix.ReplaceAllString(src, "$1")
		resolved := g.imageURL(src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	}

	doc.Find(".woocommerce-product-gallery img, img.wp-post-image").Each(func(_ int, sel *goquery.Selection) {
		add(sel)
	})
	if len(images) == 0 {
		doc.Find(".entry-content img").Each(func(_ int, sel *goquery.Selection) {
			add(sel)
		})
	}

	if len(images) > maxProfileImages {
		images = images[:maxProfileImages]
	}
	return images
}
