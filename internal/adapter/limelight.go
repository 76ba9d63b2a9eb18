package adapter

import (
	"context"
	"encoding/json"
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

// Limelight's schedule page is only a roster of profile links; who works
// when lives on each profile as a location-by-day table of availability
// dots. The roster entries therefore carry no slots and the profile scrape
// supplies them.
type Limelight struct {
	site
}

func NewLimelight(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter {
	return &Limelight{site: newSite(cfg, fetcher, log)}
}

var (
	limelightSlugPattern  = regexp.MustCompile(`/performers/([^/?#]+)/?`)
	limelightGlyphPattern = regexp.MustCompile(`(?i)♛\s*(?:PLATINUM\s+)?VIP`)
	limelightNewSuffix    = regexp.MustCompile(`(?i)\s+NEW$`)
	limelightBustSuffix   = regexp.MustCompile(`(?i)\s*\((Natural|Enhanced)\)\s*`)
	limelightSizeSuffix   = regexp.MustCompile(`-\d+x\d+(\.\w+)$`)
	firstNumberPattern    = regexp.MustCompile(`\d+`)
)

// limelightLocations maps the table's row headers to town and venue label.
var limelightLocations = map[string][2]string{
	"KINGSBRIDGE": {"Kingsbridge", "Uptown"},
	"WESTVALE":    {"Westvale", "Central"},
	"LAKEWOOD":    {"Lakewood", "Riverside"},
}

// limelightRowSkip marks table rows that are headers or filler, not venues.
var limelightRowSkip = map[string]bool{"": true, "TBA": true}

func (l *Limelight) ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	doc, err := l.document(ctx, l.cfg.ScheduleURL)
	if err != nil {
		return nil, err
	}

	var (
		items []domain.ScheduleItem
		seen  = make(map[string]bool)
	)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := limelightSlugPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		profileURL := l.absoluteURL(href)
		// Every talent is linked twice, photo and caption.
		if seen[profileURL] {
			return
		}
		seen[profileURL] = true

		name := limelightCleanName(util.CollapseWhitespace(sel.Text()))
		if name == "" {
			name = titleFromSlug(m[1])
		}

		items = append(items, domain.ScheduleItem{
			Name:       normalize.Name(name),
			ProfileURL: profileURL,
		})
	})

	if len(items) == 0 {
		return nil, l.noEntries(0)
	}

	return items, nil
}

// limelightCleanName drops the tier glyphs and the NEW badge the roster
// glues onto names.
func limelightCleanName(text string) string {
	name := strings.SplitN(text, " - ", 2)[0]
	name = limelightGlyphPattern.ReplaceAllString(name, "")
	name = limelightNewSuffix.ReplaceAllString(name, "")
	return strings.TrimSpace(util.CollapseWhitespace(name))
}

func (l *Limelight) ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error) {
	doc, err := l.document(ctx, profileURL)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	var fields domain.ProfileFields

	title := nameFromTitle(doc.Find("title").First().Text())
	fields.Tier = limelightTierFromTitle(title)
	if name := limelightCleanName(title); name != "" {
		fields.Name = normalize.Name(name)
	}

	l.applyStats(doc, &fields)
	fields.Slots = l.weeklySlots(doc)
	fields.Images = l.galleryImages(doc)
	fields.Tags = normalize.Tags(doc.Text())

	l.logProfile(profileURL, &fields)
	return fields, nil
}

// limelightTierFromTitle reads the crown glyphs in the page title. Profiles
// without one are the base tier.
func limelightTierFromTitle(title string) string {
	upper := strings.ToUpper(title)
	switch {
	case strings.Contains(upper, "PLATINUM VIP"):
		return "Platinum VIP"
	case strings.Contains(upper, "♛ VIP"):
		return "VIP"
	}
	return "Regular"
}

// applyStats walks the dt/dd attribute pairs.
func (l *Limelight) applyStats(doc *goquery.Document, fields *domain.ProfileFields) {
	doc.Find("dt").Each(func(_ int, sel *goquery.Selection) {
		label := util.Normalize(sel.Text())
		value := util.CollapseWhitespace(sel.NextAllFiltered("dd").First().Text())
		if value == "" {
			return
		}

		switch {
		case label == "age":
			if m := firstNumberPattern.FindString(value); m != "" {
				fields.Age, _ = strconv.Atoi(m)
			}
		case label == "height":
			fields.Height = normalize.Height(value)
		case label == "weight":
			fields.Weight = normalize.Weight(value)
		case strings.Contains(label, "measurement"):
			if m := limelightBustSuffix.FindStringSubmatch(value); m != nil {
				fields.BustType = canonicalBustType(m[1])
				value = limelightBustSuffix.ReplaceAllString(value, "")
			}
			fields.Measurements = normalize.Measurements(value)
			if m := bustLeadPattern.FindStringSubmatch(fields.Measurements); m != nil {
				fields.Bust = normalize.BustSize(m[1])
			}
		case strings.Contains(label, "hair"):
			fields.HairColor = normalize.Color(value)
		case strings.Contains(label, "eye"):
			fields.EyeColor = normalize.Color(value)
		case label == "nationality":
			fields.Nationality = normalize.Name(value)
		}
	})
}

// weeklySlots reads the availability table: one row per venue, one column
// per day starting Monday, a dot-on cell meaning bookable that day. The
// table states no times.
func (l *Limelight) weeklySlots(doc *goquery.Document) []domain.RawSlot {
	var slots []domain.RawSlot

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		header := strings.ToUpper(util.CollapseWhitespace(row.Find("th").First().Text()))
		if limelightRowSkip[header] {
			return
		}

		town, label := "", "Unknown"
		if mapped, ok := limelightLocations[header]; ok {
			town, label = mapped[0], mapped[1]
		} else {
			town = normalize.Name(header)
		}
		location := town + ", " + label

		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i >= len(constants.DaysOfWeek) {
				return
			}
			if cell.Find(".dot-on").Length() == 0 {
				return
			}
			slots = append(slots, domain.RawSlot{
				Day:      constants.DaysOfWeek[i],
				Location: location,
			})
		})
	})

	return slots
}

func (l *Limelight) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]bool)

	add := func(src string) {
		if !strings.Contains(src, "wp-content/uploads") {
			return
		}
		src = strings.SplitN(src, "?", 2)[0]
		src = limelightSizeSuffix.ReplaceAllString(src, "$1")
		resolved := l.imageURL(src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	}

	// Structured data first, it lists the full-size originals.
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var data struct {
			Image []string `json:"image"`
		}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return
		}
		for _, src := range data.Image {
			add(src)
		}
	})

	doc.Find("#slider img, .flexslider img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		add(src)
	})
	if len(images) == 0 {
		doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
			src, _ := sel.Attr("src")
			add(src)
		})
	}

	if len(images) > maxProfileImages {
		images = images[:maxProfileImages]
	}
	return images
}
