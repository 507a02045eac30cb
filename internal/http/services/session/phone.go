package session

import "strings"

// NormalizePhone turns a loosely formatted number into E.164 (+ and 7 to 15
// digits). Spaces, dashes, dots, slashes and parentheses are dropped. It
// reports false for anything else, including a '+' that is not leading.
func NormalizePhone(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
		case strings.ContainsRune(" \t-()./", r):
		default:
			return "", false
		}
	}
	d := b.String()
	if len(d) < 7 || len(d) > 15 {
		return "", false
	}
	return "+" + d, true
}
