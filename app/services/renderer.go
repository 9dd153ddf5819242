package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"vizbot/app"
	"vizbot/app/config"
)

// durationTolerance is the allowed drift between the planned timeline and
// the probed output duration, in seconds.
const durationTolerance = 2.0

// EngineRunner invokes the rendering engine with the given arguments and
// returns its captured stderr.
type EngineRunner func(ctx context.Context, args []string) (string, error)

// Prober returns the engine's JSON probe report for a media file.
type Prober func(path string) (string, error)

// Renderer turns render requests into validated video files. The engine
// runner and prober are injectable so planning and retry behavior can be
// tested without ffmpeg installed.
type Renderer struct {
	run     EngineRunner
	probe   Prober
	timeout time.Duration
}

func NewRenderer() *Renderer {
	return &Renderer{
		run: runFFmpeg,
		probe: func(path string) (string, error) {
			return ffmpeg.Probe(path)
		},
		timeout: config.GetRenderTimeout(),
	}
}

// RenderPlan is the fully resolved, immutable description of one render.
type RenderPlan struct {
	Request     app.RenderRequest
	Spec        FormatSpec
	Composition *CompositionPlan
	// Duration is the planned timeline length in seconds.
	Duration float64
	// StartOffset and Window trim the audio input for short-form renders.
	// Window is zero for full-track renders.
	StartOffset float64
	Window      float64
}

// Plan validates a request and resolves it into a render plan. All request
// and source problems surface here, before any encode is attempted.
func (r *Renderer) Plan(req app.RenderRequest) (*RenderPlan, error) {
	if req.AudioPath == "" || req.ImagePath == "" || req.OutputPath == "" {
		return nil, app.NewError(app.ErrInvalidInput, "audio, image and output paths are required")
	}

	spec, err := ResolveFormat(req.Format)
	if err != nil {
		return nil, err
	}
	spec = EncodeCanvas(spec)

	// Preset validation is a pure lookup; it must fail before the sources
	// are even touched.
	if err := ValidatePreset(req.Preset); err != nil {
		return nil, err
	}
	motion := MotionForFormat(spec)

	if err := checkReadable(req.AudioPath); err != nil {
		return nil, err
	}
	if err := checkReadable(req.ImagePath); err != nil {
		return nil, err
	}

	audioDur, err := r.audioDuration(req.AudioPath)
	if err != nil {
		return nil, err
	}
	imgW, imgH, err := r.imageDimensions(req.ImagePath)
	if err != nil {
		return nil, err
	}

	scaledW, scaledH, err := CoverFit(imgW, imgH, spec.Width, spec.Height)
	if err != nil {
		return nil, err
	}
	if err := motion.ValidateCoverage(scaledW, scaledH, spec); err != nil {
		return nil, err
	}

	plan := &RenderPlan{Request: req, Spec: spec}
	if spec.FullAudio {
		plan.Duration = audioDur
	} else {
		// An explicitly requested window below the default bound is
		// honored as-is; the [min,max] bound only shapes the default.
		window := req.MaxDuration
		if window <= 0 {
			window = config.ShortDefaultDuration
		} else if window > config.ShortMaxDuration {
			window = config.ShortMaxDuration
		}
		if window > audioDur {
			window = audioDur
		}
		offset := req.StartOffset
		if offset < 0 {
			offset = 0
		}
		if offset+window > audioDur {
			offset = audioDur - window
		}
		plan.StartOffset = offset
		plan.Window = window
		plan.Duration = window
	}

	layers, err := BuildLayers(req.Preset, spec, req.Title, req.Watermark, plan.Duration)
	if err != nil {
		return nil, err
	}
	comp, err := Compose(spec, layers)
	if err != nil {
		return nil, err
	}
	plan.Composition = comp
	return plan, nil
}

// Render executes a plan. The ranked encoder strategies are tried in order;
// the renderer moves down the list exactly once, on engine invocation
// failure only. A successful encode whose output fails validation is
// terminal and is never retried.
func (r *Renderer) Render(ctx context.Context, plan *RenderPlan) (*app.RenderResult, error) {
	strategies := EncoderStrategies()
	var lastErr error
	for i, strat := range strategies {
		args := buildArgs(plan, strat)
		log.Printf("🎬 encoding %s with %s (%dx%d, %.1fs)",
			plan.Request.OutputPath, strat.Name, plan.Spec.Width, plan.Spec.Height, plan.Duration)

		runCtx, cancel := context.WithTimeout(ctx, r.timeout)
		stderr, err := r.run(runCtx, args)
		cancel()
		if err != nil {
			removePartial(plan.Request.OutputPath)
			lastErr = app.WrapError(err, app.ErrEngineInvocationFailed,
				fmt.Sprintf("%s invocation failed", strat.Name)).
				WithDiagnostic(tail(stderr, 2000))
			if strat.Hardware && i+1 < len(strategies) {
				log.Printf("⚠️ %s failed, falling back to %s", strat.Name, strategies[i+1].Name)
				continue
			}
			break
		}

		if err := r.validateOutput(plan); err != nil {
			// Output files from failed renders are never left behind.
			removePartial(plan.Request.OutputPath)
			return nil, err
		}
		log.Printf("✅ rendered %s", plan.Request.OutputPath)
		return &app.RenderResult{
			Status:     app.StatusSuccess,
			OutputPath: plan.Request.OutputPath,
			Duration:   plan.Duration,
			Width:      plan.Spec.Width,
			Height:     plan.Spec.Height,
			Encoder:    strat.Name,
		}, nil
	}

	return nil, app.WrapError(lastErr, app.ErrRenderFailed, "all encoder strategies exhausted").
		WithDiagnostic(app.DiagnosticOf(lastErr))
}

// buildArgs serializes a plan into the engine's command line. This is the
// only place the structured graph becomes filter_complex syntax.
func buildArgs(plan *RenderPlan, strat EncoderStrategy) []string {
	args := []string{"-y", "-hide_banner"}
	if plan.Window > 0 {
		args = append(args, "-ss", ftoa(plan.StartOffset), "-t", ftoa(plan.Window))
	}
	args = append(args, "-i", plan.Request.AudioPath)
	args = append(args, "-loop", "1", "-i", plan.Request.ImagePath)
	args = append(args, "-filter_complex", plan.Composition.Graph.String())
	args = append(args, "-map", "["+plan.Composition.Graph.Output+"]", "-map", "0:a")
	args = append(args, "-c:v", strat.Codec)
	args = append(args, strat.Args...)
	args = append(args,
		"-c:a", config.AudioCodec,
		"-b:a", config.AudioBitrate,
		"-pix_fmt", config.PixelFormat,
		"-r", itoa(config.VideoFPS),
		"-shortest",
		"-movflags", "+faststart",
		plan.Request.OutputPath,
	)
	return args
}

// validateOutput probes the finished file and checks it against the plan.
func (r *Renderer) validateOutput(plan *RenderPlan) error {
	info, err := r.probeFile(plan.Request.OutputPath)
	if err != nil {
		return app.WrapError(err, app.ErrOutputValidationFailed, "output is not probeable")
	}
	w, h, ok := videoStreamDims(info)
	if !ok {
		return app.NewError(app.ErrOutputValidationFailed, "output has no video stream")
	}
	if w != plan.Spec.Width || h != plan.Spec.Height {
		return app.Errorf(app.ErrOutputValidationFailed,
			"output is %dx%d, want %dx%d", w, h, plan.Spec.Width, plan.Spec.Height)
	}
	dur, err := formatDuration(info)
	if err != nil {
		return app.WrapError(err, app.ErrOutputValidationFailed, "output duration unreadable")
	}
	drift := dur - plan.Duration
	if drift < -durationTolerance || drift > durationTolerance {
		return app.Errorf(app.ErrOutputValidationFailed,
			"output duration %.2fs, want %.2fs (±%.0fs)", dur, plan.Duration, durationTolerance)
	}
	return nil
}

// probeInfo mirrors the fields of the probe JSON the pipeline reads.
type probeInfo struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (r *Renderer) probeFile(path string) (probeInfo, error) {
	var info probeInfo
	raw, err := r.probe(path)
	if err != nil {
		return info, fmt.Errorf("probe %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return info, fmt.Errorf("parse probe report for %s: %w", path, err)
	}
	return info, nil
}

func (r *Renderer) audioDuration(path string) (float64, error) {
	info, err := r.probeFile(path)
	if err != nil {
		return 0, app.WrapError(err, app.ErrInvalidInput, "audio source unreadable")
	}
	hasAudio := false
	for _, s := range info.Streams {
		if s.CodecType == "audio" {
			hasAudio = true
		}
	}
	if !hasAudio {
		return 0, app.Errorf(app.ErrInvalidInput, "no audio stream in %s", path)
	}
	dur, err := formatDuration(info)
	if err != nil || dur <= 0 {
		return 0, app.Errorf(app.ErrInvalidInput, "audio duration unreadable in %s", path)
	}
	return dur, nil
}

func (r *Renderer) imageDimensions(path string) (int, int, error) {
	info, err := r.probeFile(path)
	if err != nil {
		return 0, 0, app.WrapError(err, app.ErrInvalidInput, "image source unreadable")
	}
	w, h, ok := videoStreamDims(info)
	if !ok {
		return 0, 0, app.Errorf(app.ErrInvalidInput, "no image stream in %s", path)
	}
	return w, h, nil
}

func videoStreamDims(info probeInfo) (int, int, bool) {
	for _, s := range info.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			return s.Width, s.Height, true
		}
	}
	return 0, 0, false
}

func formatDuration(info probeInfo) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(info.Format.Duration), 64)
}

func checkReadable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return app.WrapError(err, app.ErrInvalidInput, "source not accessible")
	}
	if fi.Size() == 0 {
		return app.Errorf(app.ErrInvalidInput, "source is empty: %s", path)
	}
	return nil
}

// runFFmpeg is the production engine runner.
func runFFmpeg(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return stderr.String(), fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
	}
	if err != nil {
		return stderr.String(), fmt.Errorf("ffmpeg: %w", err)
	}
	return stderr.String(), nil
}

func removePartial(path string) {
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		if err := os.Remove(path); err != nil {
			log.Printf("⚠️ could not remove partial output %s: %v", path, err)
		}
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
