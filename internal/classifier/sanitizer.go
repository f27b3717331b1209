package classifier

import "regexp"

// Bracketed annotations that bill exports append to merchant names,
// e.g. "【超市】大米(5kg)".
var (
	fullWidthBracketPattern = regexp.MustCompile(`【[^】]*】`)
	parenthesisPattern      = regexp.MustCompile(`\([^)]*\)`)
)

// Sanitize removes every 【...】 and (...) annotation from a raw name.
// The result may be empty. Sanitize is idempotent.
func Sanitize(name string) string {
	name = fullWidthBracketPattern.ReplaceAllString(name, "")
	return parenthesisPattern.ReplaceAllString(name, "")
}
