package roles

import "strings"

// Department categories a canonical role can fall into.
const (
	CategoryPerformance     = "Performance"
	CategoryWriting         = "Writing"
	CategoryDirecting       = "Directing & Creative Leadership"
	CategoryProducing       = "Producing & Production Management"
	CategoryStageManagement = "Stage Management"
	CategorySound           = "Sound"
	CategoryLighting        = "Lighting"
	CategoryDesign          = "Design (Set/Costume/Props/Projection)"
	CategoryTechnical       = "Technical (General / Crew / Build)"
	CategoryMusic           = "Music (Orchestra & Music Dept)"
	CategoryMedia           = "Media (Photo/Video)"
	CategoryMarketing       = "Marketing (Publicity/Graphics)"
	CategoryWelfare         = "Welfare & Student Support"
	CategoryFrontOfHouse    = "Front of House"
	CategoryAdmin           = "Admin / Committees"
	CategoryUnknown         = "Unknown / Unclassified"
)

// Main groups, the coarse bucket above a category.
const (
	GroupTech = "Tech"
	GroupProd = "Prod"
	GroupCast = "Cast"
	GroupBand = "Band"
)

// GroupOrder is the display order of main groups.
var GroupOrder = map[string]int{
	GroupTech: 0,
	GroupProd: 1,
	GroupCast: 2,
	GroupBand: 3,
}

var explicitCategories = map[string]string{
	"Actor":                      CategoryPerformance,
	"Cast":                       CategoryPerformance,
	"Chorus":                     CategoryPerformance,
	"Compere":                    CategoryPerformance,
	"Ensemble":                   CategoryPerformance,
	"Narrator":                   CategoryPerformance,
	"Performer":                  CategoryPerformance,
	"Singer":                     CategoryPerformance,
	"Soloist":                    CategoryPerformance,
	"Writer":                     CategoryWriting,
	"Script Editor":              CategoryWriting,
	"Writer/Director":            CategoryDirecting,
	"Writer/Performer":           CategoryWriting,
	"Director":                   CategoryDirecting,
	"Assistant Director":         CategoryDirecting,
	"Associate Director":         CategoryDirecting,
	"Director/Producer":          CategoryDirecting,
	"Producer":                   CategoryProducing,
	"Assistant Producer":         CategoryProducing,
	"Associate Producer":         CategoryProducing,
	"Executive Producer":         CategoryProducing,
	"Production Assistant":       CategoryProducing,
	"Production Manager":         CategoryProducing,
	"Company Manager":            CategoryProducing,
	"Assistant Stage Manager":    CategoryStageManagement,
	"Deputy Stage Manager":       CategoryStageManagement,
	"Stage Manager":              CategoryStageManagement,
	"Sound Operator":             CategorySound,
	"Sound Technician":           CategorySound,
	"Sound Assistant":            CategorySound,
	"Sound Designer":             CategorySound,
	"Assistant Sound Designer":   CategorySound,
	"Associate Sound Designer":   CategorySound,
	"Sound Design":               CategorySound,
	"Sound Engineer":             CategorySound,
	"Mic Runner":                 CategorySound,
	"Lighting (General)":         CategoryLighting,
	"Chief Electrician":          CategoryLighting,
	"Production Electrician":     CategoryLighting,
	"Lighting Operator":          CategoryLighting,
	"Followspot Operator":        CategoryLighting,
	"Lighting Designer":          CategoryLighting,
	"Lighting Design":            CategoryLighting,
	"Lighting Crew":              CategoryLighting,
	"Lighting & Sound Designer":  CategoryLighting,
	"Set Designer":               CategoryDesign,
	"Set Construction":           CategoryTechnical,
	"Set Builder":                CategoryTechnical,
	"Scenic Artist":              CategoryDesign,
	"Props":                      CategoryDesign,
	"Props Manager":              CategoryDesign,
	"Props Assistant":            CategoryDesign,
	"Costume (General)":          CategoryDesign,
	"Costume Designer":           CategoryDesign,
	"Makeup (General)":           CategoryDesign,
	"Makeup Artist":              CategoryDesign,
	"Hair & Makeup Designer":     CategoryDesign,
	"Musical Director":           CategoryMusic,
	"Assistant Musical Director": CategoryMusic,
	"Associate Musical Director": CategoryMusic,
	"Conductor":                  CategoryMusic,
	"Répétiteur":                 CategoryMusic,
	"Orchestrator":               CategoryMusic,
	"Arranger":                   CategoryMusic,
	"Composer":                   CategoryMusic,
	"Lyricist":                   CategoryMusic,
	"Librettist":                 CategoryMusic,
	"Photographer":               CategoryMedia,
	"Videographer":               CategoryMedia,
	"Camera Operator":            CategoryMedia,
	"Cinematographer":            CategoryMedia,
	"Video Director":             CategoryMedia,
	"Video Editor":               CategoryMedia,
	"Graphic Designer":           CategoryMarketing,
	"Poster Designer":            CategoryMarketing,
	"Programme Designer":         CategoryMarketing,
	"Web Designer":               CategoryMarketing,
	"Publicity (General)":        CategoryMarketing,
	"Publicity Designer":         CategoryMarketing,
	"Publicity Design":           CategoryMarketing,
	"Publicity Manager":          CategoryMarketing,
	"Publicity Officer":          CategoryMarketing,
	"Welfare":                    CategoryWelfare,
	"Education":                  CategoryWelfare,
	"Front of House":             CategoryFrontOfHouse,
	"Selection Committee":        CategoryAdmin,
	"Unknown":                    CategoryUnknown,
}

var (
	lightingWords   = []string{"light", "lx", "followspot"}
	marketingWords  = []string{"publicity", "graphic", "poster", "programme", "web"}
	crewWords       = []string{"operator", "technician", "assistant"}
	musicWords      = []string{"violin", "trumpet", "keys", "keyboard", "piano", "orchestra", "band", "choir"}
	mediaWords      = []string{"photo", "video", "camera", "cinematograph"}
	techGroupLabels = map[string]struct{}{
		CategorySound:           {},
		CategoryLighting:        {},
		CategoryStageManagement: {},
		CategoryTechnical:       {},
		CategoryDesign:          {},
		CategoryMedia:           {},
	}
)

// Categorize maps a canonical role name to its department. The explicit table
// is consulted first, then keyword heuristics in a fixed order: designer,
// crew, music, media.
func Categorize(role string) string {
	if role == "" {
		role = "Unknown"
	}
	if c, ok := explicitCategories[role]; ok {
		return c
	}

	lower := Fold(role)
	if strings.Contains(lower, "designer") {
		switch {
		case strings.Contains(lower, "sound"):
			return CategorySound
		case containsAny(lower, lightingWords):
			return CategoryLighting
		case containsAny(lower, marketingWords):
			return CategoryMarketing
		}
		return CategoryDesign
	}
	if containsAny(lower, crewWords) {
		switch {
		case strings.Contains(lower, "sound"):
			return CategorySound
		case containsAny(lower, lightingWords):
			return CategoryLighting
		case strings.Contains(lower, "stage manager"):
			return CategoryStageManagement
		}
		return CategoryTechnical
	}
	if containsAny(lower, musicWords) {
		return CategoryMusic
	}
	if containsAny(lower, mediaWords) {
		return CategoryMedia
	}
	return CategoryUnknown
}

// MainGroup buckets a category into Tech, Prod, Cast or Band.
func MainGroup(category string) string {
	switch category {
	case CategoryMusic:
		return GroupBand
	case CategoryPerformance:
		return GroupCast
	}
	if _, ok := techGroupLabels[category]; ok {
		return GroupTech
	}
	return GroupProd
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
