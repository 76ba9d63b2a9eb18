package adapter

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/constants"
	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/internal/normalize"
	"github.com/castboard/scraper/internal/util"
)

// Solstice encodes its whole schedule in CSS classes on the listing tiles:
// full day names mark availability, "mon-evening" style tokens mark time
// bands and hyphenated town tokens mark the incall. Photos sit on a CDN
// host with sized cache paths.
type Solstice struct {
	site
	imageHost string
}

func NewSolstice(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter {
	s := &Solstice{site: newSite(cfg, fetcher, log)}

	base := cfg.ImageBaseURL
	if base == "" {
		base = cfg.BaseURL
	}
	if u, err := url.Parse(base); err == nil {
		s.imageHost = u.Host
	}
	return s
}

// solsticePeriods maps a tile's time-band suffix to clock bounds.
var solsticePeriods = map[string][2]string{
	"morning":   {"10AM", "12PM"},
	"afternoon": {"12PM", "8PM"},
	"evening":   {"8PM", "12AM"},
}

// solsticeLocationClasses covers the incall tokens the theme emits.
var solsticeLocationClasses = map[string][2]string{
	"kingsbridge-downtown": {"Kingsbridge", "Downtown"},
	"northgate-airport":    {"Northgate", "Airport"},
	"westvale-central":     {"Westvale", "Central"},
	"eastbrook-riverside":  {"Eastbrook", "Riverside"},
}

var (
	solsticeSlugPattern = regexp.MustCompile(`/products/([^/?#]+)/?`)
	solsticeCachePath   = regexp.MustCompile(`/cache/\d+x\d+/`)
	solsticeTitleTier   = regexp.MustCompile(`(?i)\(?\b(Ultra\s*VIP|Platinum|VIP)\b\)?`)
)

// solsticeNameNoise strips the site suffix, tier markers and the
// "Companions" tail the product titles carry.
var solsticeNameNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[-–|]\s*Solstice\b.*$`),
	regexp.MustCompile(`(?i)\s*\(?\b(?:ultra\s*vip|platinum\s*vip|platinum|vip)\b\)?\s*$`),
	regexp.MustCompile(`(?i)\s+companions?\s*$`),
}

func (s *Solstice) ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	doc, err := s.document(ctx, s.cfg.ScheduleURL)
	if err != nil {
		return nil, err
	}

	var (
		items       []domain.ScheduleItem
		parseErrors int
	)

	doc.Find("li.items").Each(func(i int, li *goquery.Selection) {
		var href string
		li.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			h, _ := a.Attr("href")
			if solsticeSlugPattern.MatchString(h) {
				href = h
				return false
			}
			return true
		})
		if href == "" {
			parseErrors++
			s.log.Debug("listing tile without product link", zap.Int("index", i))
			return
		}
		slug := solsticeSlugPattern.FindStringSubmatch(href)[1]

		name := solsticeCleanName(li.Find("img").First().AttrOr("alt", ""))
		if name == "" {
			name = solsticeCleanName(li.Find("a").First().Text())
		}
		if name == "" {
			name = titleFromSlug(slug)
		}

		items = append(items, domain.ScheduleItem{
			Name:       normalize.Name(name),
			ProfileURL: s.absoluteURL(href),
			Slots:      solsticeSlots(li.AttrOr("class", "")),
		})
	})

	if len(items) == 0 {
		return nil, s.noEntries(parseErrors)
	}
	s.warnParseErrors(parseErrors, len(items))

	return items, nil
}

// solsticeSlots expands a tile's class list into raw slots. Time-band
// tokens beat bare day names; every slot is crossed with every incall
// token on the tile.
func solsticeSlots(classAttr string) []domain.RawSlot {
	var (
		days      []string
		timed     []domain.RawSlot
		locations []string
	)

	for _, class := range strings.Fields(strings.ToLower(classAttr)) {
		if day := solsticeDayClass(class); day != "" {
			days = append(days, day)
			continue
		}
		if loc, ok := solsticeLocationClasses[class]; ok {
			locations = append(locations, loc[0]+", "+loc[1])
			continue
		}
		if slot, ok := solsticeTimeClass(class); ok {
			timed = append(timed, slot)
		}
	}

	if len(locations) == 0 {
		locations = []string{constants.DefaultTown + ", " + constants.DefaultLabel}
	}

	var slots []domain.RawSlot
	if len(timed) > 0 {
		for _, slot := range timed {
			for _, location := range locations {
				slot.Location = location
				slots = append(slots, slot)
			}
		}
		return slots
	}
	for _, day := range days {
		for _, location := range locations {
			slots = append(slots, domain.RawSlot{Day: day, Location: location})
		}
	}
	return slots
}

func solsticeDayClass(class string) string {
	for _, day := range constants.DaysOfWeek {
		if class == strings.ToLower(day) {
			return day
		}
	}
	return ""
}

func solsticeTimeClass(class string) (domain.RawSlot, bool) {
	parts := strings.SplitN(class, "-", 2)
	if len(parts) != 2 {
		return domain.RawSlot{}, false
	}
	period, ok := solsticePeriods[parts[1]]
	if !ok {
		return domain.RawSlot{}, false
	}
	day, _ := util.CanonicalDay(parts[0])
	if day == "" {
		return domain.RawSlot{}, false
	}
	return domain.RawSlot{Day: day, Start: period[0], End: period[1]}, true
}

func (s *Solstice) ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error) {
	doc, err := s.document(ctx, profileURL)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	fields := fieldsFromText(doc.Text())

	heading := doc.Find("h1").First().Text()
	title := doc.Find("title").First().Text()

	if name := solsticeCleanName(heading); name != "" {
		fields.Name = normalize.Name(name)
	} else if name := solsticeCleanName(nameFromTitle(title)); name != "" {
		fields.Name = normalize.Name(name)
	}

	fields.Tier = s.profileTier(profileURL, heading+" "+title)
	fields.Images = s.galleryImages(doc)

	s.logProfile(profileURL, &fields)
	return fields, nil
}

// profileTier reads the tier off the product slug first; the marketing
// copy repeats tier words too loosely to trust when the slug carries one.
func (s *Solstice) profileTier(profileURL, headings string) string {
	slug := strings.ToLower(slugFromURL(profileURL))
	compact := strings.ReplaceAll(slug, "-", "")
	switch {
	case strings.Contains(compact, "ultravip"):
		return "Ultra VIP"
	case strings.Contains(slug, "platinum"):
		return "Platinum"
	case strings.Contains(slug, "-vip"), strings.HasSuffix(slug, "vip"):
		return "VIP"
	}

	if m := solsticeTitleTier.FindStringSubmatch(headings); m != nil {
		return normalize.Tier(m[1])
	}
	return "Normal"
}

func solsticeCleanName(raw string) string {
	name := util.CollapseWhitespace(raw)
	for _, pattern := range solsticeNameNoise {
		name = pattern.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

func (s *Solstice) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]bool)

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			src, _ = sel.Attr("data-src")
		}
		if s.imageHost == "" || !strings.Contains(src, s.imageHost) || strings.Contains(src, "logo") {
			return
		}

		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		src = strings.SplitN(src, "?", 2)[0]
		// The CDN keeps every render size under /cache; ask for the largest.
		src = solsticeCachePath.ReplaceAllString(src, "/cache/1000x0/")

		if seen[src] {
			return
		}
		seen[src] = true
		images = append(images, src)
	})

	if len(images) > maxProfileImages {
		images = images[:maxProfileImages]
	}
	return images
}
