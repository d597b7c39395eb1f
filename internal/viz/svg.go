package viz

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/lyricfield/internal/engine"
)

// FrameSVG draws a frame's bubbles at world scale on a width x height field.
func FrameSVG(f engine.Frame, width, height float64, th Theme) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, b := range f.Bubbles {
		color := b.Color
		if color == "" {
			color = string(th.Text)
		}
		fmt.Fprintf(&sb, `<g opacity="%.2f">
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.25" stroke="%s" stroke-width="2"/>
<text x="%.1f" y="%.1f" fill="%s" font-family="sans-serif" font-size="%.0f" text-anchor="middle">%s</text>
</g>
`, b.Opacity, b.X, b.Y, b.Radius, color, color,
			b.X, b.Y+b.Radius*0.12, string(th.Text), max(10, b.Radius*0.35), html.EscapeString(b.Name))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
