package validation

import "regexp"

// Attribute name rules (also used as column names in the profile table):
// - Lowercase only.
// - Start with [a-z_], then [a-z0-9_].
// - Length 1..63 (Postgres identifier limit).
//
// Examples valid: user_type, first_name, school_id, _legacy
// Examples invalid: "", FirstName, 1st, first-name, bad space, name";--
var attributeNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidAttributeName returns true if the provided attribute name matches the allowed pattern.
func ValidAttributeName(name string) bool {
	return attributeNameRe.MatchString(name)
}
