package model

// BusinessCandidate is a transient discovery result, not yet persisted.
// Candidates are produced by the discovery engine and consumed by the
// enrichment pipeline.
type BusinessCandidate struct {
	PlaceID       string   `json:"place_id"`
	Name          string   `json:"name"`
	Category      string   `json:"category,omitempty"`
	Types         []string `json:"types,omitempty"`
	Address       string   `json:"address,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Website       string   `json:"website,omitempty"`
	GoogleMapsURL string   `json:"google_maps_url,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
	PriceLevel    *int     `json:"price_level,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	OpeningHours  []string `json:"opening_hours,omitempty"`
	Reviews       []Review `json:"reviews,omitempty"`
	Photos        []string `json:"photos,omitempty"`
}

// SearchStrategy is one (category, keyword, radius) variation used by a
// discovery round.
type SearchStrategy struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword,omitempty"`
	Radius   int    `json:"radius"`
}
