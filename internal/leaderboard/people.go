package leaderboard

import (
	"cmp"
	"sort"
	"strings"

	"github.com/cheeseechops/CamdramAPI/internal/ranking"
	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// Sortable person columns.
const (
	SortCount          = "count"
	SortNumShows       = "num_shows"
	SortNumTitles      = "num_titles"
	SortName           = "name"
	SortLastCreditDate = "last_credit_date"
	SortTopRole        = "top_role"
	SortTopSubcategory = "top_subcategory"
	SortTopCategory    = "top_category"
)

var sortColumns = map[string]struct{}{
	SortCount: {}, SortNumShows: {}, SortNumTitles: {}, SortName: {},
	SortLastCreditDate: {}, SortTopRole: {}, SortTopSubcategory: {}, SortTopCategory: {},
}

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// PeopleQuery selects one page of the person rankings.
type PeopleQuery struct {
	Search  string
	Active  ranking.IDSet // nil means everyone
	SortCol string
	SortDir string
	Page    int
	PerPage int
	MaxPer  int
}

// PersonView is a ranking row as the API renders it.
type PersonView struct {
	models.RankingRow
	CreditDateRange string `json:"credit_date_range"`
}

// PeoplePage is one page of people plus the filtered total.
type PeoplePage struct {
	People  []PersonView `json:"people"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// QueryPeople filters, sorts and pages rows. popularity maps role names to
// their number of people and is only used when sorting by top role.
func QueryPeople(rows []models.RankingRow, popularity map[string]int, q PeopleQuery) PeoplePage {
	filtered := make([]models.RankingRow, 0, len(rows))
	for _, r := range rows {
		if q.Active != nil && !q.Active.Has(r.PID) {
			continue
		}
		filtered = append(filtered, r)
	}
	filtered = FilterPeople(filtered, q.Search)
	sorted := SortPeople(filtered, q.SortCol, q.SortDir, popularity)

	maxPer := q.MaxPer
	if maxPer <= 0 {
		maxPer = MaxPageSize
	}
	perPage := q.PerPage
	if perPage == 0 {
		perPage = DefaultPageSize
	}
	perPage = min(max(1, perPage), maxPer)
	page := max(1, q.Page)

	start := min((page-1)*perPage, len(sorted))
	end := min(start+perPage, len(sorted))

	views := make([]PersonView, 0, end-start)
	for _, r := range sorted[start:end] {
		views = append(views, PersonView{RankingRow: r, CreditDateRange: r.CreditDateRange()})
	}
	return PeoplePage{People: views, Total: len(sorted), Page: page, PerPage: perPage}
}

// FilterPeople keeps rows whose name contains search, ignoring case.
func FilterPeople(rows []models.RankingRow, search string) []models.RankingRow {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return rows
	}
	out := make([]models.RankingRow, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// SortPeople returns a sorted copy of rows. Unknown columns sort by count.
// Ordering is descending unless dir is "asc"; rows equal on the column keep
// their name-then-id order in both directions, so paging is stable. Rows
// without a last credit date always trail when sorting by that column.
func SortPeople(rows []models.RankingRow, col, dir string, popularity map[string]int) []models.RankingRow {
	if _, ok := sortColumns[col]; !ok {
		col = SortCount
	}
	desc := strings.ToLower(strings.TrimSpace(dir)) != "asc"

	out := append([]models.RankingRow(nil), rows...)
	stable(out, false, byNameID)

	switch col {
	case SortName:
		stable(out, desc, byNameID)
	case SortLastCreditDate:
		var dated, undated []models.RankingRow
		for _, r := range out {
			if r.LastCreditDate != "" {
				dated = append(dated, r)
			} else {
				undated = append(undated, r)
			}
		}
		stable(dated, desc, func(a, b models.RankingRow) int {
			return firstNonZero(
				cmp.Compare(a.LastCreditDate, b.LastCreditDate),
				cmp.Compare(a.FirstCreditDate, b.FirstCreditDate),
				byNameID(a, b),
			)
		})
		out = append(dated, undated...)
	case SortTopRole:
		stable(out, desc, func(a, b models.RankingRow) int {
			return firstNonZero(
				cmp.Compare(popularity[a.TopRole], popularity[b.TopRole]),
				cmp.Compare(a.TopRoleCount, b.TopRoleCount),
				cmp.Compare(strings.ToLower(a.TopRole), strings.ToLower(b.TopRole)),
				byNameID(a, b),
			)
		})
	case SortNumShows:
		stable(out, desc, func(a, b models.RankingRow) int { return cmp.Compare(a.NumShows, b.NumShows) })
	case SortNumTitles:
		stable(out, desc, func(a, b models.RankingRow) int { return cmp.Compare(a.NumTitles, b.NumTitles) })
	case SortTopSubcategory:
		stable(out, desc, func(a, b models.RankingRow) int {
			return firstNonZero(
				cmp.Compare(a.TopSubcategoryCount, b.TopSubcategoryCount),
				cmp.Compare(strings.ToLower(a.TopSubcategory), strings.ToLower(b.TopSubcategory)),
				byNameID(a, b),
			)
		})
	case SortTopCategory:
		stable(out, desc, func(a, b models.RankingRow) int {
			return firstNonZero(
				cmp.Compare(a.TopCategoryCount, b.TopCategoryCount),
				cmp.Compare(strings.ToLower(a.TopCategory), strings.ToLower(b.TopCategory)),
				byNameID(a, b),
			)
		})
	default:
		stable(out, desc, func(a, b models.RankingRow) int { return cmp.Compare(a.Count, b.Count) })
	}
	return out
}

func byNameID(a, b models.RankingRow) int {
	return firstNonZero(
		cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		cmp.Compare(a.PID, b.PID),
	)
}

// stable sorts rows by compare, flipping the direction when desc is set
// without disturbing the relative order of equal rows.
func stable(rows []models.RankingRow, desc bool, compare func(a, b models.RankingRow) int) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func firstNonZero(cs ...int) int {
	for _, c := range cs {
		if c != 0 {
			return c
		}
	}
	return 0
}
