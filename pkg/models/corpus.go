package models

// Corpus is the harvested Camdram snapshot every ranking is computed from.
// ShowRoles is keyed by show slug.
type Corpus struct {
	CachedAt  string                 `json:"cached_at,omitempty"`
	FromDate  string                 `json:"from_date,omitempty"`
	ToDate    string                 `json:"to_date,omitempty"`
	Venues    []Venue                `json:"venues,omitempty"`
	Shows     []Show                 `json:"shows"`
	ShowRoles map[string][]RoleEntry `json:"show_roles"`

	// Records dropped while decoding because they were not objects of the
	// expected shape.
	MalformedShows int `json:"-"`
	MalformedRoles int `json:"-"`
}

// Show is a production as Camdram describes it. Slug is the identity.
type Show struct {
	ID           int64         `json:"id,omitempty"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	Performances []Performance `json:"performances,omitempty"`
	Societies    []Society     `json:"societies,omitempty"`
	Venues       []Venue       `json:"venues,omitempty"`
	Venue        *Venue        `json:"venue,omitempty"`
}

// AllVenues returns Venues, or the single legacy Venue field when the list is empty.
func (s Show) AllVenues() []Venue {
	if len(s.Venues) > 0 {
		return s.Venues
	}
	if s.Venue != nil {
		return []Venue{*s.Venue}
	}
	return nil
}

type Performance struct {
	StartAt string `json:"start_at,omitempty"`
	Venue   *Venue `json:"venue,omitempty"`
}

type Society struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Venue struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// RoleEntry is one credit line of a show's cast or crew list.
type RoleEntry struct {
	Role     string     `json:"role"`
	RoleType string     `json:"role_type,omitempty"`
	Person   *PersonRef `json:"person"`
}

// PersonRef identifies the credited person. Camdram ids start at 1, so a zero
// ID means the entry carried no usable id.
type PersonRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// HasID reports whether the reference carries a usable person id.
func (p *PersonRef) HasID() bool {
	return p != nil && p.ID > 0
}
