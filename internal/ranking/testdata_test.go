package ranking

import "github.com/cheeseechops/CamdramAPI/pkg/models"

func person(id int64, name string) *models.PersonRef {
	return &models.PersonRef{ID: id, Name: name, Slug: slugify(name)}
}

func slugify(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c == ' ':
			out = append(out, '-')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

func credit(role string, p *models.PersonRef) models.RoleEntry {
	return models.RoleEntry{Role: role, Person: p}
}

func show(slug string, starts ...string) models.Show {
	s := models.Show{Name: slug, Slug: slug}
	for _, at := range starts {
		s.Performances = append(s.Performances, models.Performance{StartAt: at})
	}
	return s
}

// sampleCorpus has three dated shows, one slug-dated show and a few broken
// records.
func sampleCorpus() *models.Corpus {
	al, bo, cy, di := person(1, "Al"), person(2, "Bo"), person(3, "Cy"), person(4, "Di")
	return &models.Corpus{
		Shows: []models.Show{
			show("2020-hamlet", "2020-03-01T19:30:00Z", "2020-03-04T19:30:00Z"),
			show("2021-macbeth", "2021-11-10T19:30:00Z"),
			show("2022-cabaret", "2022-02-01T19:45:00+00:00"),
			show("1999-revue"),
			show(""),
			show("2020-hamlet", "2030-01-01T00:00:00Z"),
			show("untitled"),
		},
		ShowRoles: map[string][]models.RoleEntry{
			"2020-hamlet": {
				credit("Co-Director", al),
				credit("Director", bo),
				credit("Macbeth", cy),
				credit("Producer", al),
			},
			"2021-macbeth": {
				credit("Director", al),
				credit("Lighting Designer", cy),
				credit("Macbeth", cy),
				credit("Actor", di),
				credit("Sound", nil),
				credit("Actor", &models.PersonRef{Name: "No Id"}),
			},
			"2022-cabaret": {
				credit("Violin I", di),
				credit("", cy),
				credit("LX", cy),
			},
			"1999-revue": {
				credit("Actor", di),
			},
			"untitled": {
				credit("Actor", al),
			},
		},
	}
}
