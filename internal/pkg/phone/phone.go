// Package phone canonicalizes raw phone numbers into the national format the
// SMS gateway accepts. It targets a single-country deployment: the only
// accepted final form is a 10-digit number starting with "0".
package phone

import "strings"

const (
	countryCode    = "33"
	nationalLength = 10
)

// Normalize strips all non-digit characters from raw and rewrites the
// international "33" prefix into the national leading "0". It reports false
// when the result is not a valid 10-digit national number, so callers never
// consume partial output.
func Normalize(raw string) (string, bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, countryCode) && len(digits) == len(countryCode)+nationalLength-1 {
		digits = "0" + digits[len(countryCode):]
	}

	if len(digits) != nationalLength || digits[0] != '0' {
		return "", false
	}
	return digits, true
}
