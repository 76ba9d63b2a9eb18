package adapter

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/castboard/scraper/internal/domain"
	"github.com/castboard/scraper/internal/fetch"
	"github.com/castboard/scraper/internal/normalize"
	"github.com/castboard/scraper/internal/util"
)

// Encore's schedule is h2 headings: a bare day name opens a section, and
// each entry under it reads "Name | 7pm - 1am | Town" with the name linked
// to the profile. Tier badges are not on the schedule at all, they live on
// the roster page, so that page is scraped first into a name -> tier cache.
type Encore struct {
	site
	tiers map[string]string
}

func NewEncore(cfg domain.SourceConfig, fetcher fetch.Fetcher, log *zap.Logger) Adapter {
	return &Encore{site: newSite(cfg, fetcher, log)}
}

const encoreRosterPath = "/models"

// encoreTiers in rank order; the last one is the default for talent
// without a badge.
var encoreTiers = []string{"Scarlet", "Amber", "Jade"}

const encoreDefaultTier = "Jade"

var (
	encoreIncallTierPattern = regexp.MustCompile(`(?i)Incall\s*[-–]\s*(Scarlet|Amber|Jade)`)
	encoreSizeSuffix        = regexp.MustCompile(`-\d+x\d+(\.\w+)$`)
)

func (e *Encore) ScrapeSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	// Roster first: losing it only costs tier precision, so it never
	// fails the run.
	e.tiers = e.fetchTiers(ctx)

	doc, err := e.document(ctx, e.cfg.ScheduleURL)
	if err != nil {
		return nil, err
	}

	var (
		items       []domain.ScheduleItem
		currentDay  string
		candidates  int
		parseErrors int
	)

	doc.Find("h2").Each(func(_ int, sel *goquery.Selection) {
		text := util.CollapseWhitespace(sel.Text())
		if day, ok := util.CanonicalDay(text); ok {
			currentDay = day
			return
		}

		link := sel.Find(`a[href*="/models/"]`).First()
		if link.Length() == 0 {
			return
		}

		candidates++
		item := e.parseEntry(text, link, currentDay)
		if item == nil {
			parseErrors++
			e.log.Debug("unparseable schedule entry", zap.String("text", util.TruncateString(text, 80)))
			return
		}
		items = append(items, *item)
	})

	if len(items) == 0 {
		return nil, e.noEntries(parseErrors)
	}
	e.warnParseErrors(parseErrors, candidates)

	return items, nil
}

// parseEntry splits "Name | 7pm - 1am | Town". Entries whose middle part
// yields no time are dropped, they are placeholders like "Name | TBD |".
func (e *Encore) parseEntry(text string, link *goquery.Selection, day string) *domain.ScheduleItem {
	parts := strings.Split(text, "|")
	if len(parts) < 3 {
		return nil
	}

	name := util.CollapseWhitespace(parts[0])
	if name == "" {
		return nil
	}
	start, end := normalize.TimeRange(parts[1])
	if start == "" {
		return nil
	}
	location := util.CollapseWhitespace(parts[2])

	href, _ := link.Attr("href")

	tier := e.tiers[util.NormalizeKey(name)]
	if tier == "" {
		tier = encoreDefaultTier
	}

	return &domain.ScheduleItem{
		Name:       normalize.Name(name),
		ProfileURL: e.absoluteURL(href),
		Tier:       tier,
		Slots: []domain.RawSlot{{
			Day:      day,
			Location: location,
			Start:    start,
			End:      end,
		}},
	}
}

// fetchTiers scrapes the roster page into a normalized-name -> tier map.
func (e *Encore) fetchTiers(ctx context.Context) map[string]string {
	tiers := make(map[string]string)

	doc, err := e.document(ctx, e.cfg.BaseURL+encoreRosterPath)
	if err != nil {
		e.log.Warn("tier roster unavailable, defaulting tiers", zap.Error(err))
		return tiers
	}

	doc.Find(".model-card").Each(func(_ int, sel *goquery.Selection) {
		name := util.CollapseWhitespace(sel.Find("a").First().Text())
		if name == "" {
			return
		}
		lower := strings.ToLower(sel.Text())
		for _, tier := range encoreTiers {
			if strings.Contains(lower, strings.ToLower(tier)) {
				tiers[util.NormalizeKey(name)] = tier
				break
			}
		}
	})

	e.log.Debug("tier roster cached", zap.Int("entries", len(tiers)))
	return tiers
}

func (e *Encore) ScrapeProfile(ctx context.Context, profileURL string) (domain.ProfileFields, error) {
	doc, err := e.document(ctx, profileURL)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	var fields domain.ProfileFields

	name := util.CollapseWhitespace(doc.Find("span.model-title-bg").First().Text())
	if name == "" {
		name = util.CollapseWhitespace(doc.Find("h2.subtitle").First().Text())
	}
	if name == "" {
		name = titleFromSlug(slugFromURL(profileURL))
	}
	if name != "" {
		fields.Name = normalize.Name(name)
	}

	e.applyStats(doc, &fields)

	text := doc.Text()
	fields.Tier = e.profileTier(text, name)
	fields.Images = e.galleryImages(doc)
	fields.Tags = normalize.Tags(text)

	e.logProfile(profileURL, &fields)
	return fields, nil
}

func (e *Encore) applyStats(doc *goquery.Document, fields *domain.ProfileFields) {
	stats := make(map[string]string)
	doc.Find("dl dt").Each(func(_ int, sel *goquery.Selection) {
		key := util.Normalize(sel.Text())
		value := util.CollapseWhitespace(sel.NextAllFiltered("dd").First().Text())
		if key != "" && value != "" {
			stats[key] = value
		}
	})

	for key, value := range stats {
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
		case strings.Contains(key, "natural"), strings.Contains(key, "enhanc"):
			fields.BustType = canonicalBustType(value)
		case strings.Contains(key, "hair"):
			fields.HairColor = normalize.Color(value)
		case strings.Contains(key, "eye"):
			fields.EyeColor = normalize.Color(value)
		case key == "background", key == "nationality":
			fields.Nationality = normalize.Name(value)
		case strings.Contains(key, "service"):
			fields.ServiceType = normalize.ServiceType(value)
		}
	}

	// Some profiles state the figure as three separate rows.
	if fields.Measurements == "" {
		bust, waist, hips := stats["bust"], stats["waist"], stats["hips"]
		if bust != "" && waist != "" && hips != "" {
			fields.Measurements = normalize.Measurements(bust + "-" + waist + "-" + hips)
			fields.Bust = normalize.BustSize(bust)
		}
	}
}

// profileTier prefers the explicit "Incall - Tier" rate line, then the
// roster cache, then the base tier.
func (e *Encore) profileTier(text, name string) string {
	if m := encoreIncallTierPattern.FindStringSubmatch(text); m != nil {
		for _, tier := range encoreTiers {
			if strings.EqualFold(tier, m[1]) {
				return tier
			}
		}
	}
	if tier := e.tiers[util.NormalizeKey(name)]; tier != "" {
		return tier
	}
	return encoreDefaultTier
}

func (e *Encore) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]bool)

	add := func(sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			src, _ = sel.Attr("data-src")
		}
		if src == "" {
			src, _ = sel.Attr("data-lazy-src")
		}
		if !strings.Contains(src, "wp-content/uploads") {
			return
		}
		src = strings.SplitN(src, "?", 2)[0]
		src = encoreSizeSuffix.ReplaceAllString(src, "$1")
		resolved := e.imageURL(src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	}

	doc.Find(`div[class*="gallery"] img, div[class*="slider"] img, div[class*="photos"] img, div[class*="images"] img`).Each(func(_ int, sel *goquery.Selection) {
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
