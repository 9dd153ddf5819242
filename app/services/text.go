package services

import "strings"

// Text overlay rendering. Overlays sit at fixed pixel offsets from the
// frame edges, independent of text length; long titles may overflow the
// frame, which is accepted rather than silently re-laid-out.

const (
	titleFontSize     = 110
	titleMarginLeft   = 120
	titleMarginTop    = 120
	watermarkFontSize = 54
	watermarkMargin   = 60
	textBorderWidth   = 4
)

// escapeDrawtext escapes the characters the drawtext filter treats
// specially inside a text= value.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}

// TitleLayer draws the track title at the top-left of the frame.
func TitleLayer(title string, z int) LayerSpec {
	return LayerSpec{
		Kind: LayerOverlayText,
		Z:    z,
		InPlace: func(spec FormatSpec, in, out string) []Chain {
			return []Chain{{
				Inputs: []string{in},
				Filters: []Filter{drawtextFilter(
					title, "white", itoa(titleMarginLeft), itoa(titleMarginTop), titleFontSize)},
				Outputs: []string{out},
			}}
		},
	}
}

// WatermarkLayer draws the channel handle in the bottom-right corner,
// lifted above the visualization strip, in semi-transparent white.
func WatermarkLayer(mark string, z int) LayerSpec {
	return LayerSpec{
		Kind: LayerOverlayText,
		Z:    z,
		InPlace: func(spec FormatSpec, in, out string) []Chain {
			y := "h-text_h-" + itoa(spec.StripHeight+watermarkMargin)
			return []Chain{{
				Inputs: []string{in},
				Filters: []Filter{drawtextFilter(
					mark, "white@0.7", "w-text_w-"+itoa(watermarkMargin), y, watermarkFontSize)},
				Outputs: []string{out},
			}}
		},
	}
}

func drawtextFilter(text, color, x, y string, size int) Filter {
	return Filter{Name: "drawtext", Args: []string{
		"text='" + escapeDrawtext(text) + "'",
		"fontcolor=" + color,
		"fontsize=" + itoa(size),
		"borderw=" + itoa(textBorderWidth),
		"bordercolor=black@0.6",
		"x=" + x,
		"y=" + y,
	}}
}
