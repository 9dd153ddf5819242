package services

import (
	"sort"

	"vizbot/app"
	"vizbot/app/config"
)

// Effect preset registry. A preset is the single place that decides which
// layers a render gets; nothing downstream branches on the preset name.
// Camera motion is not a preset concern: it follows the format class.

const (
	PresetSpectrum = "spectrum"
	PresetWaves    = "waves"
	PresetZoom     = "zoom"
	PresetVintage  = "vintage"
)

// Layer z bands. Background sits at the bottom, text above everything.
const (
	zBackground = 0
	zViz        = 10
	zGrade      = 30
	zFade       = 40
	zTitle      = 50
	zWatermark  = 51
)

const spectrumGlowSigma = 8

type presetDef struct {
	build func(spec FormatSpec) []LayerSpec
}

var presets = map[string]presetDef{
	// Glow-spectrum strip with a soft vignette.
	PresetSpectrum: {
		build: func(spec FormatSpec) []LayerSpec {
			return []LayerSpec{SpectrumLayer(zViz, spectrumGlowSigma), vignetteLayer(zGrade)}
		},
	},
	// Thin full-frame waveform, no glow.
	PresetWaves: {
		build: func(spec FormatSpec) []LayerSpec {
			return []LayerSpec{WaveformLayer(zViz)}
		},
	},
	// Motion only, no visualization layer. For emotional/soulful tracks.
	PresetZoom: {
		build: func(spec FormatSpec) []LayerSpec {
			return nil
		},
	},
	// Film grain, vignette and a warm color shift.
	PresetVintage: {
		build: func(spec FormatSpec) []LayerSpec {
			return []LayerSpec{vintageGradeLayer(zGrade)}
		},
	},
}

// PresetNames returns the registered preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidatePreset checks that a preset is registered. It is a pure lookup so
// callers can reject bad requests before touching the sources.
func ValidatePreset(name string) error {
	if _, ok := presets[name]; !ok {
		return app.Errorf(app.ErrUnknownPreset, "unknown preset: %q", name)
	}
	return nil
}

// BuildLayers resolves a preset into the complete ordered layer stack for
// one render: background with format-selected motion, the preset's layers,
// the timeline fades, and (for formats that allow it) the text overlays.
// duration is the final timeline length in seconds, needed to place the
// fade-out.
func BuildLayers(name string, spec FormatSpec, title, watermark string, duration float64) ([]LayerSpec, error) {
	def, ok := presets[name]
	if !ok {
		return nil, app.Errorf(app.ErrUnknownPreset, "unknown preset: %q", name)
	}

	layers := []LayerSpec{backgroundLayer(MotionForFormat(spec), zBackground)}
	layers = append(layers, def.build(spec)...)
	layers = append(layers, fadeLayer(duration, zFade))

	if spec.AllowsText {
		if title != "" {
			layers = append(layers, TitleLayer(title, zTitle))
		}
		if watermark != "" {
			layers = append(layers, WatermarkLayer(watermark, zWatermark))
		}
	}
	return layers, nil
}

// backgroundLayer cover-fits the artwork (input 1) onto the canvas and
// applies the camera motion.
func backgroundLayer(motion MotionProfile, z int) LayerSpec {
	return LayerSpec{
		Kind: LayerBackground,
		Z:    z,
		Build: func(spec FormatSpec, out string) []Chain {
			filters := coverFitFilters(spec)
			filters = append(filters, Filter{Name: "setsar", Args: []string{"1"}})
			filters = append(filters, motion.Filters(spec)...)
			filters = append(filters, Filter{Name: "fps", Args: []string{itoa(config.VideoFPS)}})
			return []Chain{{
				Inputs:  []string{"1:v"},
				Filters: filters,
				Outputs: []string{out},
			}}
		},
	}
}

// vignetteLayer darkens the frame corners at the default PI/5 angle.
func vignetteLayer(z int) LayerSpec {
	return LayerSpec{
		Kind: LayerVisualization,
		Z:    z,
		InPlace: func(spec FormatSpec, in, out string) []Chain {
			return []Chain{{
				Inputs:  []string{in},
				Filters: []Filter{{Name: "vignette", Args: []string{"angle=PI/5"}}},
				Outputs: []string{out},
			}}
		},
	}
}

// vintageGradeLayer applies film grain, a vignette and a warm color shift
// to the whole stack, in that order.
func vintageGradeLayer(z int) LayerSpec {
	return LayerSpec{
		Kind: LayerVisualization,
		Z:    z,
		InPlace: func(spec FormatSpec, in, out string) []Chain {
			return []Chain{{
				Inputs: []string{in},
				Filters: []Filter{
					{Name: "noise", Args: []string{"alls=15", "allf=t+u"}},
					{Name: "vignette"},
					{Name: "colorbalance", Args: []string{"rs=0.1", "gs=0.02", "bs=-0.1"}},
				},
				Outputs: []string{out},
			}}
		},
	}
}

// fadeLayer applies the fade-in and fade-out every render gets, placed
// below the text overlays so titles stay readable through the fade.
func fadeLayer(duration float64, z int) LayerSpec {
	return LayerSpec{
		Kind: LayerVisualization,
		Z:    z,
		InPlace: func(spec FormatSpec, in, out string) []Chain {
			filters := []Filter{{Name: "fade", Args: []string{
				"t=in", "st=0", "d=" + ftoa(config.FadeDuration),
			}}}
			if duration > config.FadeDuration {
				filters = append(filters, Filter{Name: "fade", Args: []string{
					"t=out",
					"st=" + ftoa(duration-config.FadeDuration),
					"d=" + ftoa(config.FadeDuration),
				}})
			}
			return []Chain{{
				Inputs:  []string{in},
				Filters: filters,
				Outputs: []string{out},
			}}
		},
	}
}
