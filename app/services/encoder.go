package services

import (
	"vizbot/app"
	"vizbot/app/config"
)

// EncoderStrategy is one concrete way to encode the planned video: the
// codec to hand the engine plus its quality arguments.
type EncoderStrategy struct {
	Name     string
	Codec    string
	Args     []string
	Hardware bool
}

// softwareStrategy is the baseline x264 encode every render can fall back to.
func softwareStrategy() EncoderStrategy {
	return EncoderStrategy{
		Name:  config.VideoCodec,
		Codec: config.VideoCodec,
		Args: []string{
			"-preset", config.VideoPreset,
			"-crf", config.VideoCRF,
		},
	}
}

// EncoderStrategies returns the ranked strategy list for this host: the
// configured hardware encoder first when one is set, then software. The
// renderer tries them in order and moves down the list exactly once, on
// engine invocation failure only.
func EncoderStrategies() []EncoderStrategy {
	sw := softwareStrategy()
	hw := config.GetHardwareEncoder()
	if hw == "" {
		return []EncoderStrategy{sw}
	}
	return []EncoderStrategy{
		{
			Name:     hw,
			Codec:    hw,
			Args:     []string{"-b:v", "12M"},
			Hardware: true,
		},
		sw,
	}
}

// EncodeCanvas returns the canvas the encode policy actually targets for a
// format. Constrained devices substitute 1080p for the long-form 4K canvas;
// the planner's geometry is rebuilt against the substituted spec.
func EncodeCanvas(spec FormatSpec) FormatSpec {
	if spec.Class == app.FormatMain && config.ConstrainedDevice() {
		spec.Width = config.MainFallbackWidth
		spec.Height = config.MainFallbackHeight
	}
	return spec
}
