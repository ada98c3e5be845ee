package roles

// aliasGroups lists canonical role names with the spellings that should
// collapse into them. Later groups win when two register the same key.
var aliasGroups = []struct {
	canonical string
	aliases   []string
}{
	{"Assistant Stage Manager", []string{"ASM", "Assistant Stage Managers"}},
	{"Deputy Stage Manager", []string{"DSM"}},
	{"Stage Manager", []string{"SM"}},
	{"Technical Director", []string{"TD", "Technical Directors"}},
	{"Technical Director", []string{"Co-Technical Director"}},
	{"Assistant Technical Director", nil},
	{"Producer", []string{"Producers"}},
	{"Producer", []string{"Co-producer", "Co-Producer"}},
	{"Assistant Producer", []string{"Assistant producer"}},
	{"Executive Producer", nil},
	{"Associate Producer", nil},
	{"Director", []string{"Directors"}},
	{"Director", []string{"Co-director", "Co-Director"}},
	{"Assistant Director", []string{"Assistant director"}},
	{"Associate Director", nil},
	{"Writer/Director", []string{"Director/Writer", "Director, Writer"}},
	{"Director/Producer", []string{"Producer/Director"}},
	{"Writer", []string{"Writers"}},
	{"Writer/Performer", []string{"Writer / Performer", "Writer/ Performer", "Writer/performer", "Writer /Performer"}},
	{"Performer", []string{"Performer/Writer", "Performer, Writer", "Performer (Freshers)", "Performers"}},
	{"Script Editor", []string{"Script editor"}},
	{"Lighting (General)", []string{"LX", "Lighting"}},
	{"Chief Electrician", []string{"CLX", "Chief LX"}},
	{"Production Electrician", []string{"PLX", "Production LX"}},
	{"Lighting Operator", []string{"Lighting Op", "LX Operator"}},
	{"Followspot Operator", []string{"Followspot", "Followspot Op"}},
	{"Lighting Designer", []string{"Lighting designer"}},
	{"Lighting Design", nil},
	{"Lighting Designer", []string{"Co-Lighting Designer"}},
	{"Assistant Lighting Designer", nil},
	{"Lighting Crew", []string{"Lighting Team"}},
	{"Lighting & Sound Designer", []string{"Lighting and Sound", "Lighting and Sound Designer", "Lighting/Sound Designer"}},
	{"Sound Operator", []string{"Sound", "Sound Op"}},
	{"Sound Technician", []string{"Sound Tech"}},
	{"Sound Assistant", nil},
	{"Sound Designer", nil},
	{"Assistant Sound Designer", nil},
	{"Associate Sound Designer", nil},
	{"Sound Design", nil},
	{"Sound Engineer", nil},
	{"Mic Runner", nil},
	{"Sound Editor", nil},
	{"Audio Editor", nil},
	{"Sound Recordist", nil},
	{"Sound Helper", nil},
	{"Set Designer", []string{"Set Design"}},
	{"Assistant Set Designer", nil},
	{"Set Construction", []string{"Set Building"}},
	{"Set Builder", nil},
	{"Scenic Artist", []string{"Set Painter"}},
	{"Props", nil},
	{"Props Manager", nil},
	{"Props Assistant", nil},
	{"Head of Props", nil},
	{"Costume (General)", []string{"Costume", "Costumes", "Costume Design"}},
	{"Costume Designer", nil},
	{"Costume Designer", []string{"Co-Costume Designer"}},
	{"Assistant Costume Designer", nil},
	{"Costume Assistant", nil},
	{"Costume Team", nil},
	{"Wardrobe Assistant", nil},
	{"Wardrobe Supervisor", nil},
	{"Wardrobe Mistress", nil},
	{"Makeup (General)", []string{"Make-up", "Makeup"}},
	{"Makeup Artist", []string{"Make-up Artist", "Make-Up Artist"}},
	{"Makeup Designer", []string{"Make-Up Designer"}},
	{"Hair & Makeup Designer", []string{"Hair & Makeup", "Hair and Makeup Designer", "Hair &amp; Makeup"}},
	{"Hair Stylist", nil},
	{"Publicity (General)", []string{"Publicity", "Publicist"}},
	{"Publicity Designer", []string{"Publicity designer"}},
	{"Publicity Design", nil},
	{"Publicity Manager", nil},
	{"Publicity Officer", nil},
	{"Graphic Designer", nil},
	{"Poster Designer", []string{"Poster Design"}},
	{"Programme Designer", []string{"Programme Design"}},
	{"Web Designer", []string{"Website Designer"}},
	{"Photographer", []string{"Photography", "Headshot Photographer", "Production Photographer", "Rehearsal Photographer", "Dress Rehearsal Photographer", "Publicity Photographer"}},
	{"Videographer", nil},
	{"Camera Operator", nil},
	{"Cinematographer", nil},
	{"Video Director", nil},
	{"Video Editor", nil},
	{"Trailer Director", nil},
	{"Trailer Cinematographer", nil},
	{"Director of Photography", nil},
	{"Musical Director", []string{"Music Director"}},
	{"Assistant Musical Director", nil},
	{"Associate Musical Director", nil},
	{"Musical Director", []string{"Co-Musical Director"}},
	{"Conductor", nil},
	{"Chorus Master", nil},
	{"Répétiteur", []string{"Répétiteur", "Repetiteur", "R&eacute;p&eacute;titeur"}},
	{"Orchestrator", nil},
	{"Arranger", nil},
	{"Composer", nil},
	{"Lyricist", nil},
	{"Librettist", nil},
	{"Cast", []string{"cast"}},
	{"Performer", nil},
	{"Actor", nil},
	{"Ensemble", nil},
	{"Chorus", []string{"Choir", "Male Chorus", "Female Chorus", "Ladies' Chorus", "Dance Chorus"}},
	{"Singer", nil},
	{"Soloist", nil},
	{"Narrator", nil},
	{"Compere", []string{"Compère", "MC"}},
	{"Crew", []string{"Stage Crew", "Get-in Crew"}},
	{"Get-In Helper", []string{"Get In Helper", "Get-in helper", "Get-In Helper"}},
	{"Get-Out Helper", nil},
	{"Stage Hand", nil},
	{"Technician", []string{"Tech"}},
	{"Carpenter", nil},
	{"Head Carpenter", nil},
	{"Master Carpenter", nil},
	{"Production Assistant", nil},
	{"Production Manager", nil},
	{"Company Manager", nil},
	{"Front of House", nil},
	{"Welfare", []string{"Welfare Officer", "Welfare Rep"}},
	{"Education", []string{"Education Officer", "Education Team"}},
	{"Selection Committee", []string{"Film Selection Committee", "Film Selection"}},
	{"Unknown", nil},
}

// nonRoleTokens are character names that turn up in the role field.
var nonRoleTokens = map[string]struct{}{
	"john": {},
	"mary": {},
	"sam": {},
	"romeo": {},
	"macbeth": {},
	"ko-ko": {},
	"koko": {},
}

var aliases = buildAliases()

func buildAliases() map[string]string {
	m := make(map[string]string, 400)
	for _, g := range aliasGroups {
		m[normalizeKey(g.canonical)] = g.canonical
		for _, a := range g.aliases {
			m[normalizeKey(a)] = g.canonical
		}
	}
	return m
}
