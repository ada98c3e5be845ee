package models

// PersonStats is the profile view of a single person.
type PersonStats struct {
	PID             int64        `json:"pid"`
	Name            string       `json:"name"`
	Slug            string       `json:"slug"`
	CamdramURL      string       `json:"camdram_url"`
	TotalCredits    int          `json:"total_credits"`
	UniqueShows     int          `json:"unique_shows"`
	UniqueRoles     int          `json:"unique_roles"`
	FirstCreditDate string       `json:"first_credit_date"`
	LastCreditDate  string       `json:"last_credit_date"`
	SpanYears       float64      `json:"span_years"`
	CreditsPerYear  float64      `json:"credits_per_year"`
	TopRoles        []NamedCount `json:"top_roles"`
	TopSocieties    []NamedCount `json:"top_societies"`
	TopVenues       []NamedCount `json:"top_venues"`
	ByYear          []YearCount  `json:"by_year"`
	RecentShows     []PersonShow `json:"recent_shows"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type PersonShow struct {
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Roles    []string `json:"roles"`
	LastDate string   `json:"last_date"`
}
