package grpcserver

import "github.com/cheeseechops/CamdramAPI/pkg/models"

type ListPeopleRequest struct {
	Search     string `json:"search,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
	SortCol    string `json:"sort_col,omitempty"`
	SortDir    string `json:"sort_dir,omitempty"`
	Page       int    `json:"page,omitempty"`
	PerPage    int    `json:"per_page,omitempty"`
}

type GetRoleRequest struct {
	Role       string `json:"role"`
	ActiveOnly bool   `json:"active_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type GetRoleResponse struct {
	Role      string               `json:"role"`
	Category  string               `json:"category"`
	MainGroup string               `json:"main_group"`
	NumPeople int                  `json:"num_people"`
	People    []models.PersonCount `json:"people"`
}

// BoardsRequest is shared by the society and venue listings. A zero limit
// uses the server's configured default.
type BoardsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListSocietiesResponse struct {
	Leaderboards []models.SocietyLeaderboard `json:"leaderboards"`
}

type ListVenuesResponse struct {
	Leaderboards []models.VenueLeaderboard `json:"leaderboards"`
}
