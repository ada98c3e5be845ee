package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Harvested files come from several generations of the Camdram API and from
// hand edits. Decoding keeps every record it can: fields of the wrong type
// decode as empty, list items that are not objects are dropped, and a show or
// credit that cannot be read at all is counted on the Corpus instead of
// failing the document.

// UnmarshalJSON decodes shows and credits one by one.
func (c *Corpus) UnmarshalJSON(b []byte) error {
	var raw struct {
		CachedAt  json.RawMessage            `json:"cached_at"`
		FromDate  json.RawMessage            `json:"from_date"`
		ToDate    json.RawMessage            `json:"to_date"`
		Venues    json.RawMessage            `json:"venues"`
		Shows     json.RawMessage            `json:"shows"`
		ShowRoles map[string]json.RawMessage `json:"show_roles"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = Corpus{
		CachedAt:  looseString(raw.CachedAt),
		FromDate:  looseString(raw.FromDate),
		ToDate:    looseString(raw.ToDate),
		Venues:    objects[Venue](raw.Venues),
		ShowRoles: make(map[string][]RoleEntry, len(raw.ShowRoles)),
	}

	for _, item := range items(raw.Shows) {
		var s Show
		if err := json.Unmarshal(item, &s); err != nil {
			c.MalformedShows++
			continue
		}
		c.Shows = append(c.Shows, s)
	}
	for slug, list := range raw.ShowRoles {
		var elems []json.RawMessage
		if err := json.Unmarshal(list, &elems); err != nil {
			c.MalformedRoles++
			continue
		}
		entries := make([]RoleEntry, 0, len(elems))
		for _, item := range elems {
			var e RoleEntry
			if err := json.Unmarshal(item, &e); err != nil {
				c.MalformedRoles++
				continue
			}
			entries = append(entries, e)
		}
		c.ShowRoles[slug] = entries
	}
	return nil
}

func (s *Show) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID           json.RawMessage `json:"id"`
		Name         json.RawMessage `json:"name"`
		Slug         json.RawMessage `json:"slug"`
		Performances json.RawMessage `json:"performances"`
		Societies    json.RawMessage `json:"societies"`
		Venues       json.RawMessage `json:"venues"`
		Venue        json.RawMessage `json:"venue"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Show{
		ID:           looseInt(raw.ID),
		Name:         looseString(raw.Name),
		Slug:         looseString(raw.Slug),
		Performances: objects[Performance](raw.Performances),
		Societies:    objects[Society](raw.Societies),
		Venues:       objects[Venue](raw.Venues),
		Venue:        object[Venue](raw.Venue),
	}
	return nil
}

// UnmarshalJSON keeps a numeric start_at as its literal text; it then fails
// timestamp parsing like any other unreadable date.
func (p *Performance) UnmarshalJSON(b []byte) error {
	var raw struct {
		StartAt json.RawMessage `json:"start_at"`
		Venue   json.RawMessage `json:"venue"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Performance{StartAt: looseText(raw.StartAt), Venue: object[Venue](raw.Venue)}
	return nil
}

func (s *Society) UnmarshalJSON(b []byte) error {
	id, name, slug, err := decodeRef(b)
	if err != nil {
		return err
	}
	*s = Society{ID: id, Name: name, Slug: slug}
	return nil
}

func (v *Venue) UnmarshalJSON(b []byte) error {
	id, name, slug, err := decodeRef(b)
	if err != nil {
		return err
	}
	*v = Venue{ID: id, Name: name, Slug: slug}
	return nil
}

// UnmarshalJSON accepts non-integer ids (strings, floats, null) without failing
// the surrounding document; they decode as a missing id.
func (p *PersonRef) UnmarshalJSON(b []byte) error {
	id, name, slug, err := decodeRef(b)
	if err != nil {
		return err
	}
	*p = PersonRef{ID: id, Name: name, Slug: slug}
	return nil
}

// UnmarshalJSON reads a numeric role as its text. A person that is not an
// object decodes as nil, which aggregation counts as a missing person.
func (e *RoleEntry) UnmarshalJSON(b []byte) error {
	var raw struct {
		Role     json.RawMessage `json:"role"`
		RoleType json.RawMessage `json:"role_type"`
		Person   json.RawMessage `json:"person"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = RoleEntry{
		Role:     looseText(raw.Role),
		RoleType: looseString(raw.RoleType),
		Person:   object[PersonRef](raw.Person),
	}
	return nil
}

func decodeRef(b []byte) (int64, string, string, error) {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name json.RawMessage `json:"name"`
		Slug json.RawMessage `json:"slug"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return 0, "", "", err
	}
	return looseInt(raw.ID), looseString(raw.Name), looseString(raw.Slug), nil
}

// items splits a JSON array; anything else yields nothing.
func items(raw json.RawMessage) []json.RawMessage {
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// objects decodes every array element that is an object of type T.
func objects[T any](raw json.RawMessage) []T {
	var out []T
	for _, item := range items(raw) {
		if v := object[T](item); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func object[T any](raw json.RawMessage) *T {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil
	}
	return v
}

func looseInt(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// looseText is looseString that also keeps a bare number as written.
func looseText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return looseString(raw)
}
