package chat

import (
	"fmt"
	"strings"
)

// SanitizeName trims and truncates a free-text name so it can be safely
// interpolated into later script text. Newlines collapse to spaces.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)
	if len([]rune(name)) > 40 {
		name = string([]rune(name)[:40])
	}
	return name
}

// FormatPrice renders an amount of minor currency units as a Brazilian
// price string, e.g. 990 -> "R$9,90".
func FormatPrice(amountCents int64) string {
	return fmt.Sprintf("R$%d,%02d", amountCents/100, amountCents%100)
}

// Interpolate substitutes script placeholders with captured session values.
// Supported placeholders: {name}, {price}.
func Interpolate(text string, state *SessionState, nameKey string, priceCents int64) string {
	if strings.Contains(text, "{name}") {
		text = strings.ReplaceAll(text, "{name}", state.GetString(nameKey))
	}
	if strings.Contains(text, "{price}") {
		text = strings.ReplaceAll(text, "{price}", FormatPrice(priceCents))
	}
	return text
}
