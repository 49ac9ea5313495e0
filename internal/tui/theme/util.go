package theme

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// Blend mixes two #RRGGBB colors, pos 0 giving a and 1 giving b.
func Blend(a, b string, pos float64) string {
	if pos < 0 {
		pos = 0
	} else if pos > 1 {
		pos = 1
	}
	r1, g1, b1 := ParseHexColor(a)
	r2, g2, b2 := ParseHexColor(b)
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-pos) + float64(y)*pos)
	}
	return FormatHexColor(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}

// Gradient returns n colors stepping evenly from a to b.
func Gradient(a, b string, n int) []string {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []string{a}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = Blend(a, b, float64(i)/float64(n-1))
	}
	return out
}

// ApplyGradient colors each rune of text along a gradient from a to b.
func ApplyGradient(text, a, b string) string {
	runes := []rune(text)
	colors := Gradient(a, b, len(runes))
	var sb strings.Builder
	for i, r := range runes {
		if r == ' ' {
			sb.WriteRune(r)
			continue
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i])).Render(string(r)))
	}
	return sb.String()
}

// ParseHexColor extracts RGB values from a hex color string. Malformed
// input yields black.
func ParseHexColor(hex string) (uint8, uint8, uint8) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var r, g, b uint8
	if len(hex) == 6 {
		_, _ = fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	}
	return r, g, b
}

// FormatHexColor converts RGB values to a hex color string.
func FormatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
