package services

import (
	"vizbot/app"
	"vizbot/app/config"
)

// FormatSpec is the resolved target geometry and policy for a format class.
type FormatSpec struct {
	Class       app.FormatClass
	Width       int
	Height      int
	AllowsText  bool
	StripHeight int
	// FullAudio selects the duration policy: render until the audio ends
	// (long form) vs. a fixed window (shorts).
	FullAudio bool
}

// ResolveFormat maps a format class to its canvas and policy. The long-form
// canvas is always 4K here; the 1080p constrained-device substitution is an
// encode-parameter decision made by the planner, not by this resolver.
func ResolveFormat(class app.FormatClass) (FormatSpec, error) {
	switch class {
	case app.FormatMain:
		return FormatSpec{
			Class:       app.FormatMain,
			Width:       config.MainWidth,
			Height:      config.MainHeight,
			AllowsText:  true,
			StripHeight: config.MainStripHeight,
			FullAudio:   true,
		}, nil
	case app.FormatShort:
		return FormatSpec{
			Class:       app.FormatShort,
			Width:       config.ShortWidth,
			Height:      config.ShortHeight,
			AllowsText:  false,
			StripHeight: config.ShortStripHeight,
			FullAudio:   false,
		}, nil
	default:
		return FormatSpec{}, app.Errorf(app.ErrInvalidInput, "unknown format class: %q", class)
	}
}

// CoverFit computes the dimensions of the source after cover-fit scaling:
// the source is scaled, preserving aspect ratio, until both dimensions reach
// or exceed the canvas; the excess is then center-cropped away. The returned
// dimensions are the pre-crop scaled size.
func CoverFit(srcW, srcH, dstW, dstH int) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, app.Errorf(app.ErrInvalidInput, "degenerate image dimensions %dx%d", srcW, srcH)
	}
	if dstW <= 0 || dstH <= 0 {
		return 0, 0, app.Errorf(app.ErrInvalidInput, "degenerate canvas dimensions %dx%d", dstW, dstH)
	}

	// Scale by whichever axis needs the larger factor so both cover.
	sw := float64(dstW) / float64(srcW)
	sh := float64(dstH) / float64(srcH)
	scale := sw
	if sh > scale {
		scale = sh
	}

	w := int(float64(srcW)*scale + 0.5)
	h := int(float64(srcH)*scale + 0.5)
	if w < dstW {
		w = dstW
	}
	if h < dstH {
		h = dstH
	}
	return w, h, nil
}

// coverFitFilters returns the scale+crop filter pair that implements
// cover-fit for the given canvas. Output is always exactly the canvas size,
// never letterboxed.
func coverFitFilters(spec FormatSpec) []Filter {
	return []Filter{
		{Name: "scale", Args: []string{
			itoa(spec.Width), itoa(spec.Height),
			"force_original_aspect_ratio=increase",
		}},
		{Name: "crop", Args: []string{itoa(spec.Width), itoa(spec.Height)}},
	}
}
