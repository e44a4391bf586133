package wizard

import "strings"

// FormatPhone reformats raw input into (ddd) ddd-dddd as digits accumulate.
// Fewer than four digits are returned bare; extra digits past ten are dropped.
func FormatPhone(raw string) string {
	if raw == "" {
		return raw
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) < 4:
		return digits
	case len(digits) < 7:
		return "(" + digits[:3] + ") " + digits[3:]
	}
	if len(digits) > 10 {
		digits = digits[:10]
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}
