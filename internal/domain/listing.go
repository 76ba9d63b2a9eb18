package domain

import "time"

// Listing is the reconciled persisted entity, unique per (source, name).
// Fields are overwritten wholesale on every successful rescrape.
type Listing struct {
	ID         int64         `json:"id"`
	SourceID   int64         `json:"source_id"`
	Name       string        `json:"name"`
	ProfileURL string        `json:"profile_url"`
	Fields     ProfileFields `json:"fields"`
	IsActive   bool          `json:"is_active"`
	IsExpired  bool          `json:"is_expired"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
