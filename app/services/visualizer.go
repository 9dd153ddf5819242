package services

import "vizbot/app/config"

// Audio visualization layer builders, all driven by the audio stream
// (input 0).

const (
	// Warm amber-to-red ramp for the bar spectrum.
	spectrumColors = "0xFFAA00|0xFF6600|0xFF3300"
	glowOpacity    = 0.9
	waveformColor  = "white@0.3"
)

// SpectrumLayer renders a log-scaled bar spectrum strip anchored to the
// bottom edge, post-processed with a glow pass and a vertical alpha fade so
// the strip melts into the artwork instead of ending at a hard edge. The
// glow blur sigma comes from the preset.
func SpectrumLayer(z, sigma int) LayerSpec {
	return LayerSpec{
		Kind:  LayerVisualization,
		Z:     z,
		Blend: BlendNormal,
		Build: func(spec FormatSpec, out string) []Chain {
			raw := out + "raw"
			glow := out + "glow"
			chains := []Chain{{
				Inputs: []string{"0:a"},
				Filters: []Filter{
					{Name: "showfreqs", Args: []string{
						"mode=bar",
						"fscale=log",
						"win_size=2048",
						"colors=" + spectrumColors,
						"s=" + itoa(spec.Width) + "x" + itoa(spec.StripHeight),
					}},
					{Name: "format", Args: []string{"rgba"}},
				},
				Outputs: []string{raw},
			}}
			chains = append(chains, glowChains(raw, glow, sigma)...)
			chains = append(chains, alphaFadeChain(spec, glow, out))
			return chains
		},
	}
}

// WaveformLayer renders a thin amplitude trace across the full canvas at
// low opacity, as ambient texture rather than a primary visual. No glow.
func WaveformLayer(z int) LayerSpec {
	return LayerSpec{
		Kind:      LayerVisualization,
		Z:         z,
		Blend:     BlendNormal,
		FullFrame: true,
		Build: func(spec FormatSpec, out string) []Chain {
			return []Chain{{
				Inputs: []string{"0:a"},
				Filters: []Filter{
					{Name: "showwaves", Args: []string{
						"mode=line",
						"colors=" + waveformColor,
						"s=" + itoa(spec.Width) + "x" + itoa(spec.Height),
						"r=" + itoa(config.VideoFPS),
					}},
					{Name: "format", Args: []string{"rgba"}},
				},
				Outputs: []string{out},
			}}
		},
	}
}

// SparkleLayer generates drifting bright specks from thresholded temporal
// noise and screens them over the stack.
func SparkleLayer(z int) LayerSpec {
	return LayerSpec{
		Kind:  LayerSparkle,
		Z:     z,
		Blend: BlendScreen,
		Build: func(spec FormatSpec, out string) []Chain {
			return []Chain{{
				Filters: []Filter{
					{Name: "color", Args: []string{
						"c=black",
						"s=" + itoa(spec.Width) + "x" + itoa(spec.Height),
						"r=" + itoa(config.VideoFPS),
					}},
					{Name: "noise", Args: []string{"alls=100", "allf=t"}},
					{Name: "lutrgb", Args: []string{
						"r='if(gt(val,245),255,0)'",
						"g='if(gt(val,245),255,0)'",
						"b='if(gt(val,245),255,0)'",
					}},
					{Name: "gblur", Args: []string{"sigma=1"}},
				},
				Outputs: []string{out},
			}}
		},
	}
}

// glowChains splits the strip, blurs one copy, and screens it back over the
// original so bright regions bloom.
func glowChains(in, out string, sigma int) []Chain {
	a := in + "a"
	b := in + "b"
	return []Chain{
		{
			Inputs:  []string{in},
			Filters: []Filter{{Name: "split"}},
			Outputs: []string{a, b},
		},
		{
			Inputs:  []string{b},
			Filters: []Filter{{Name: "gblur", Args: []string{"sigma=" + itoa(sigma)}}},
			Outputs: []string{b + "g"},
		},
		{
			Inputs: []string{a, b + "g"},
			Filters: []Filter{{Name: "blend", Args: []string{
				"all_mode=screen",
				"all_opacity=" + ftoa(glowOpacity),
			}}},
			Outputs: []string{out},
		},
	}
}

// alphaFadeChain ramps the strip's alpha from opaque at the bottom edge to
// transparent towards the top, over roughly two thirds of the strip height.
func alphaFadeChain(spec FormatSpec, in, out string) Chain {
	strip := itoa(spec.StripHeight)
	return Chain{
		Inputs: []string{in},
		Filters: []Filter{{Name: "geq", Args: []string{
			"r='r(X,Y)'",
			"g='g(X,Y)'",
			"b='b(X,Y)'",
			"a='alpha(X,Y)*min(1,(" + strip + "-Y)/" + strip + "*1.5)'",
		}}},
		Outputs: []string{out},
	}
}
