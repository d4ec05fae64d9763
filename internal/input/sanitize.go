// Package input provides the sanitizer, the per-field validators, and
// the prompt loops that gather operator input for the menu actions.
//
// Sanitizing is input shaping only. Every value still binds to the
// store through query parameters; stripping the blacklist is never the
// injection defense.
package input

import "strings"

// forbidden is the character blacklist stripped from every operator
// input before validation or storage.
const forbidden = ";':><?$%*\"+=|{}[]#@!,_\\/&^().~"

// Sanitize removes every blacklisted character from raw. It never
// rejects input, only strips, and is idempotent.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return -1
		}
		return r
	}, raw)
}

// SanitizeNumber strips the blacklist but keeps the decimal point.
// Currency and date prompts use this so "50.00" survives shaping.
func SanitizeNumber(raw string) string {
	return strings.Map(func(r rune) rune {
		if r != '.' && strings.ContainsRune(forbidden, r) {
			return -1
		}
		return r
	}, raw)
}
