package adapter

import "github.com/castboard/scraper/internal/domain"

// Catalog returns the built-in source configurations in run order. Rows are
// provisioned into the database by key on first use; the catalog only
// supplies defaults, so flipping enabled or the rate limit in the database
// survives restarts.
//
// Rate limit floors follow the transport mode: plain HTTP sites take one
// request per second, rendered sites two, stealth sites three.
func Catalog() []domain.SourceConfig {
	return []domain.SourceConfig{
		{
			Key:              "marquee",
			Name:             "Marquee",
			ScheduleURL:      "https://marquee.example/schedule",
			BaseURL:          "https://marquee.example",
			Mode:             domain.FetchModeStatic,
			RateLimitSeconds: 1.0,
			Enabled:          true,
		},
		{
			Key:              "prism",
			Name:             "Prism Club",
			ScheduleURL:      "https://prismclub.example/schedule",
			BaseURL:          "https://prismclub.example",
			Mode:             domain.FetchModeStealth,
			RateLimitSeconds: 3.0,
			WaitSelector:     "a.card",
			Enabled:          true,
		},
		{
			Key:              "limelight",
			Name:             "Limelight",
			ScheduleURL:      "https://limelight.example/schedule",
			BaseURL:          "https://limelight.example",
			Mode:             domain.FetchModeStatic,
			RateLimitSeconds: 1.0,
			Enabled:          true,
		},
		{
			Key:              "encore",
			Name:             "Encore Models",
			ScheduleURL:      "https://encore.example/schedule",
			BaseURL:          "https://encore.example",
			Mode:             domain.FetchModeBrowser,
			RateLimitSeconds: 2.0,
			WaitSelector:     "h2",
			Enabled:          true,
		},
		{
			Key:              "gala",
			Name:             "Gala",
			ScheduleURL:      "https://gala.example/weekly-schedule",
			BaseURL:          "https://gala.example",
			Mode:             domain.FetchModeBrowser,
			RateLimitSeconds: 2.0,
			WaitSelector:     "#weekly-schedule",
			Enabled:          true,
		},
		{
			Key:              "atrium",
			Name:             "Atrium",
			ScheduleURL:      "https://atrium.example/talent",
			BaseURL:          "https://atrium.example",
			Mode:             domain.FetchModeStealth,
			RateLimitSeconds: 3.0,
			WaitSelector:     ".talent-grid",
			Enabled:          true,
		},
		{
			Key:              "solstice",
			Name:             "Solstice",
			ScheduleURL:      "https://solstice.example/schedule",
			BaseURL:          "https://solstice.example",
			ImageBaseURL:     "https://cdn.solstice.example",
			Mode:             domain.FetchModeStatic,
			RateLimitSeconds: 1.0,
			Enabled:          true,
		},
	}
}

// CatalogByKey looks a source up in the catalog.
func CatalogByKey(key string) (domain.SourceConfig, bool) {
	for _, cfg := range Catalog() {
		if cfg.Key == key {
			return cfg, true
		}
	}
	return domain.SourceConfig{}, false
}

// LocationSeeds maps source key to its venue catalog. Exactly one seed per
// source is the default row the location matcher falls back to.
func LocationSeeds() map[string][]domain.LocationSeed {
	return map[string][]domain.LocationSeed{
		"marquee": {
			{Town: "Kingsbridge", Label: "Downtown", IsDefault: true},
			{Town: "Kingsbridge", Label: "Midtown"},
			{Town: "Fairmont", Label: "Airport"},
			{Town: "Westvale", Label: "Central"},
		},
		"prism": {
			{Town: "Kingsbridge", Label: "Downtown", IsDefault: true},
			{Town: "Northgate", Label: "Central"},
			{Town: "Fairmont", Label: "Airport"},
			{Town: "Eastbrook", Label: "Riverside"},
		},
		"limelight": {
			{Town: "Kingsbridge", Label: "Uptown", IsDefault: true},
			{Town: "Westvale", Label: "Central"},
			{Town: "Lakewood", Label: "Riverside"},
		},
		"encore": {
			{Town: "Kingsbridge", Label: "Downtown", IsDefault: true},
			{Town: "Fairmont", Label: "Airport"},
			{Town: "Northgate", Label: "Central"},
		},
		"gala": {
			{Town: "Kingsbridge", Label: "Midtown", IsDefault: true},
		},
		"atrium": {
			{Town: "Kingsbridge", Label: "Downtown", IsDefault: true},
			{Town: "Westvale", Label: "Central"},
			{Town: "Eastbrook", Label: "Riverside"},
		},
		"solstice": {
			{Town: "Kingsbridge", Label: "Downtown", IsDefault: true},
			{Town: "Northgate", Label: "Airport"},
			{Town: "Westvale", Label: "Central"},
			{Town: "Eastbrook", Label: "Riverside"},
		},
	}
}
