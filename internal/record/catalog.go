package record

import "strings"

// Languages offered by the practice CLI.
var Languages = []string{
	"Python",
	"Java",
	"Java (BlueJ)",
	"JavaScript",
	"PHP",
	"HTML5",
	"CSS",
	"XHTML",
}

// Difficulties offered by the practice CLI.
var Difficulties = []string{
	"Easy",
	"Medium",
	"Hard (DSA)",
}

// CanonicalLanguage returns the catalog spelling of name, matched
// case-insensitively.
func CanonicalLanguage(name string) (string, bool) {
	return lookup(Languages, name)
}

// CanonicalDifficulty returns the catalog spelling of name. "hard" matches
// "Hard (DSA)".
func CanonicalDifficulty(name string) (string, bool) {
	if strings.EqualFold(strings.TrimSpace(name), "hard") {
		return "Hard (DSA)", true
	}
	return lookup(Difficulties, name)
}

func lookup(list []string, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return v, true
		}
	}
	return "", false
}
