package roles

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

var (
	// Decoded entities such as &nbsp; produce Unicode spaces, hence \p{Z}.
	whitespaceRE   = regexp.MustCompile(`[\s\v\p{Z}]+`)
	spacedSlashRE  = regexp.MustCompile(`[\s\v\p{Z}]*/[\s\v\p{Z}]*`)
	dateSuffixRE   = regexp.MustCompile(`^(.*?)(?:[\s\v\p{Z}]+\d{1,2}[/-]\d{1,2})$`)
	standaloneAndR = regexp.MustCompile(`(?i)\band\b`)
)

var romanNumerals = map[string]string{
	"i":    "1",
	"ii":   "2",
	"iii":  "3",
	"iv":   "4",
	"v":    "5",
	"vi":   "6",
	"vii":  "7",
	"viii": "8",
	"ix":   "9",
	"x":    "10",
}

// Fold returns the Unicode case-folded form of s, used for every
// case-insensitive comparison of role names.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func normalizeSpaces(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// maxUnescape bounds how many layers of HTML escaping are undone.
const maxUnescape = 8

// unescape decodes HTML entities until the text stops changing, so
// "&amp;amp;" and "&amp;" both become "&".
func unescape(s string) string {
	for range maxUnescape {
		u := html.UnescapeString(s)
		if u == s {
			break
		}
		s = u
	}
	return s
}

// stripDateSuffix removes every trailing " 3/4" or " 12-1" style suffix.
func stripDateSuffix(s string) string {
	for {
		m := dateSuffixRE.FindStringSubmatch(s)
		if m == nil {
			return s
		}
		s = strings.TrimSpace(m[1])
	}
}

// normalizeNumbering rewrites whole-token roman numerals I..X as digits.
func normalizeNumbering(s string) string {
	parts := strings.Split(s, " ")
	for i, part := range parts {
		if n, ok := romanNumerals[Fold(strings.TrimSpace(part))]; ok {
			parts[i] = n
		}
	}
	return strings.Join(parts, " ")
}

// clean applies the display-preserving part of the pipeline.
func clean(s string) string {
	return normalizeNumbering(normalizeSpaces(stripDateSuffix(s)))
}

// normalizeKey builds the alias-table comparison key.
func normalizeKey(s string) string {
	x := unescape(s)
	x = normalizeSpaces(x)
	x = stripDateSuffix(x)
	x = normalizeNumbering(x)
	x = strings.ReplaceAll(x, "&", "/")
	x = standaloneAndR.ReplaceAllString(x, "/")
	x = spacedSlashRE.ReplaceAllString(x, "/")
	x = normalizeSpaces(x)
	return Fold(x)
}

// singularize merges simple plurals: "ies" becomes "y" and a trailing "s"
// is dropped unless the word ends in "ss". Slash-joined titles are left alone.
func singularize(s string) string {
	x := strings.TrimSpace(s)
	if x == "" || strings.Contains(x, "/") {
		return x
	}
	n := utf8.RuneCountInString(x)
	if strings.HasSuffix(x, "ies") && n > 4 {
		return x[:len(x)-3] + "y"
	}
	if strings.HasSuffix(x, "s") && !strings.HasSuffix(x, "ss") && n > 3 {
		return x[:len(x)-1]
	}
	return x
}
