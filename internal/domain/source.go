package domain

import "time"

type FetchMode string

const (
	FetchModeStatic  FetchMode = "static"
	FetchModeBrowser FetchMode = "browser"
	FetchModeStealth FetchMode = "stealth"
)

func (m FetchMode) String() string {
	return string(m)
}

func (m FetchMode) IsValid() bool {
	switch m {
	case FetchModeStatic, FetchModeBrowser, FetchModeStealth:
		return true
	default:
		return false
	}
}

// SourceConfig is the compiled-in description of one scrape target.
// WaitSelector is the readiness condition for browser/stealth fetches;
// empty means "settle delay only".
type SourceConfig struct {
	Key              string
	Name             string
	ScheduleURL      string
	BaseURL          string
	ImageBaseURL     string
	Mode             FetchMode
	RateLimitSeconds float64
	WaitSelector     string
	Enabled          bool
}

func (c SourceConfig) RateLimit() time.Duration {
	return time.Duration(c.RateLimitSeconds * float64(time.Second))
}

// Source is the persisted counterpart of a SourceConfig.
type Source struct {
	ID          int64      `json:"id"`
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	ScheduleURL string     `json:"schedule_url"`
	Mode        FetchMode  `json:"mode"`
	Enabled     bool       `json:"enabled"`
	LastScraped *time.Time `json:"last_scraped,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
