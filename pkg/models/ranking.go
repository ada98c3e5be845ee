package models

// RankingRow is one person's line in the overall leaderboard.
type RankingRow struct {
	PID                 int64  `json:"pid"`
	Name                string `json:"name"`
	Slug                string `json:"slug"`
	Count               int    `json:"count"`
	TopRole             string `json:"top_role"`
	TopRoleCount        int    `json:"top_role_count"`
	NumShows            int    `json:"num_shows"`
	NumTitles           int    `json:"num_titles"`
	TopPct              int    `json:"top_pct"`
	TopSubcategory      string `json:"top_subcategory"`
	TopSubcategoryCount int    `json:"top_subcategory_count"`
	TopCategory         string `json:"top_category"`
	TopCategoryCount    int    `json:"top_category_count"`
	FirstCreditDate     string `json:"first_credit_date"`
	LastCreditDate      string `json:"last_credit_date"`
}

// CreditDateRange renders the first and last credit dates as one display string.
func (r RankingRow) CreditDateRange() string {
	switch {
	case r.FirstCreditDate != "" && r.LastCreditDate != "":
		if r.FirstCreditDate == r.LastCreditDate {
			return r.FirstCreditDate
		}
		return r.FirstCreditDate + " - " + r.LastCreditDate
	case r.FirstCreditDate != "":
		return r.FirstCreditDate
	case r.LastCreditDate != "":
		return r.LastCreditDate
	}
	return "—"
}

// PersonCount is a person paired with how many times they did something:
// credits in a role, or distinct shows for a society or venue.
type PersonCount struct {
	PID   int64  `json:"pid"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// RoleSummary is an entry of the roles index: a role and how many distinct
// people have been credited with it.
type RoleSummary struct {
	Name       string `json:"name"`
	Popularity int    `json:"num_people"`
}

// RoleListing is a display row for the role browser.
type RoleListing struct {
	Name      string `json:"name"`
	NumPeople int    `json:"num_people"`
	Category  string `json:"category"`
	MainGroup string `json:"main_group"`
}

type SocietyLeaderboard struct {
	Key   string        `json:"key"`
	Label string        `json:"label"`
	Top   []PersonCount `json:"top"`
}

type VenueLeaderboard struct {
	Key       string        `json:"key"`
	Label     string        `json:"label"`
	VenueName string        `json:"venue_name"`
	ShowCount int           `json:"show_count"`
	Top       []PersonCount `json:"top"`
}
