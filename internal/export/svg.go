package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
)

const background = "#ffffff"

// SceneToSVG renders one scene as a standalone SVG document. bounds is the
// world rectangle to fit, normally scene.Bounds of the trace.
func SceneToSVG(sc scene.Scene, width, height int, bounds geom.Rect) string {
	vp := geom.NewViewport(bounds, width, height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	for i, slot := range sc.Slots() {
		if slot.IsPlaceholder() || slot.Drawable.Paths.Empty() {
			continue
		}
		writePath(&sb, i, slot.Drawable, vp)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func writePath(sb *strings.Builder, i int, d scene.Drawable, vp geom.Viewport) {
	fill := "none"
	if d.Style.Fill != "" {
		fill = d.Style.Fill
		if d.Style.Pattern != "" {
			id := fmt.Sprintf("hatch%d", i)
			sb.WriteString(fmt.Sprintf(`<defs><pattern id="%s" patternUnits="userSpaceOnUse" width="6" height="6">`+
				`<rect width="6" height="6" fill="%s"/><path d="M0,0L6,6M6,0L0,6" stroke="%s" stroke-width="1"/></pattern></defs>
`, id, d.Style.Fill, d.Style.Line))
			fill = "url(#" + id + ")"
		}
	}

	stroke := "none"
	extra := ""
	if d.Style.Mode == scene.ModeOutline {
		stroke = d.Style.Line
		extra = ` stroke-width="1.5"`
		if d.Style.Dash == scene.DashDot {
			extra += ` stroke-dasharray="2,3"`
		}
	}

	sb.WriteString(fmt.Sprintf(`<path fill="%s" fill-rule="evenodd" stroke="%s"%s opacity="%.2f" d="`,
		fill, stroke, extra, d.Style.Opacity))
	for _, sp := range d.Paths {
		for j, p := range sp {
			x, y := vp.ToPixel(p)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(" Z ")
	}
	sb.WriteString(`"><title>` + d.Name + "</title></path>\n")
}
