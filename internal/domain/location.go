package domain

// Location is one catalog entry of a source's known venues.
// Exactly one row per source carries IsDefault=true; it is the fallback
// target for location text that matches nothing.
type Location struct {
	ID        int64  `json:"id"`
	SourceID  int64  `json:"source_id"`
	Town      string `json:"town"`
	Label     string `json:"label"`
	IsDefault bool   `json:"is_default"`
}

// LocationSeed describes one catalog entry to provision for a source.
// Exactly one seed per source should set IsDefault.
type LocationSeed struct {
	Town      string
	Label     string
	IsDefault bool
}
