package services

import (
	"vizbot/app"
	"vizbot/app/config"
)

// MotionProfile describes the slow camera motion applied to the background
// image. Expressions are in the engine's per-frame expression language with
// `on` as the output frame counter.
type MotionProfile struct {
	Name string
	// ZoomExpr yields the zoom factor for each output frame.
	ZoomExpr string
	// MinZoom is the smallest zoom the expression can reach; coverage is
	// validated against it so motion never exposes the frame edge.
	MinZoom float64
}

const (
	MotionDrift = "drift"
	MotionPulse = "pulse"
	MotionNone  = "none"
)

// motionProfiles holds the built-in camera motions. Drift is a slow Ken
// Burns push-in; pulse breathes around a 2% base zoom on a 4-second cycle.
var motionProfiles = map[string]MotionProfile{
	MotionDrift: {
		Name:     MotionDrift,
		ZoomExpr: "1+0.0001*on",
		MinZoom:  1.0,
	},
	MotionPulse: {
		Name:     MotionPulse,
		ZoomExpr: "1.02+0.015*sin(2*PI*on/120)",
		MinZoom:  1.005,
	},
	MotionNone: {
		Name:     MotionNone,
		ZoomExpr: "1",
		MinZoom:  1.0,
	},
}

// MotionForFormat selects the camera motion for a format class: an
// imperceptible Ken Burns drift for long-form renders, a breathing pulse
// for shorts.
func MotionForFormat(spec FormatSpec) MotionProfile {
	if spec.Class == app.FormatShort {
		return motionProfiles[MotionPulse]
	}
	return motionProfiles[MotionDrift]
}

// ResolveMotion looks up a motion profile by name.
func ResolveMotion(name string) (MotionProfile, error) {
	p, ok := motionProfiles[name]
	if !ok {
		return MotionProfile{}, app.Errorf(app.ErrInvalidInput, "unknown motion profile: %q", name)
	}
	return p, nil
}

// Filters returns the zoompan chain for this profile targeting the given
// canvas. The crop window stays centered so motion never drifts off-frame.
func (p MotionProfile) Filters(spec FormatSpec) []Filter {
	if p.Name == MotionNone {
		return nil
	}
	return []Filter{{Name: "zoompan", Args: []string{
		"z='" + p.ZoomExpr + "'",
		"x='iw/2-(iw/zoom/2)'",
		"y='ih/2-(ih/zoom/2)'",
		"d=1",
		"s=" + itoa(spec.Width) + "x" + itoa(spec.Height),
		"fps=" + itoa(config.VideoFPS),
	}}}
}

// ValidateCoverage checks that the cover-fit scaled source still covers the
// full canvas at the profile's minimum zoom. Cover-fit guarantees coverage
// at zoom 1, so this only fails for degenerate inputs, but it keeps the
// invariant explicit where motion profiles with zoom-out are added.
func (p MotionProfile) ValidateCoverage(scaledW, scaledH int, spec FormatSpec) error {
	w := float64(scaledW) * p.MinZoom
	h := float64(scaledH) * p.MinZoom
	if w < float64(spec.Width) || h < float64(spec.Height) {
		return app.Errorf(app.ErrInsufficientSourceResolution,
			"scaled source %dx%d cannot cover %dx%d at minimum zoom %.3f",
			scaledW, scaledH, spec.Width, spec.Height, p.MinZoom)
	}
	return nil
}
