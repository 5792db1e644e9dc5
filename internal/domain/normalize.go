package domain

import "strings"

// NormalizePosition canonicalizes a mount position name: trimmed, lowered,
// inner whitespace and dashes collapsed to single underscores.
// "Front Wheel", "front-wheel" and "front_wheel" all normalize identically.
func NormalizePosition(raw string) Position {
	s := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			pendingSep = true
		default:
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}
	return Position(b.String())
}
