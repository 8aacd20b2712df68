package style

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Blend mixes a and b at t in [0,1] in Luv space, which keeps the midpoint of
// a purple to cyan gradient from going grey.
func Blend(a, b color.Color, t float64) color.Color {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	return lipgloss.Color(ca.BlendLuv(cb, t).Clamped().Hex())
}

// Gradient renders text left to right from one color to the other, a rune
// at a time.
func Gradient(text string, from, to color.Color, bold bool) string {
	runes := []rune(text)
	base := lipgloss.NewStyle().Bold(bold)
	switch len(runes) {
	case 0:
		return ""
	case 1:
		return base.Foreground(from).Render(text)
	}

	var sb strings.Builder
	last := float64(len(runes) - 1)
	for i, r := range runes {
		sb.WriteString(base.Foreground(Blend(from, to, float64(i)/last)).Render(string(r)))
	}
	return sb.String()
}

// ApplyBoldForegroundGrad renders s in bold along the theme gradient.
func ApplyBoldForegroundGrad(s string) string {
	return Gradient(s, GradFrom, GradTo, true)
}
