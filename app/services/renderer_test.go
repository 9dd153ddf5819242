package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"vizbot/app"
)

// fakeEngine stands in for ffmpeg: it records every invocation and fails
// the first failN calls.
type fakeEngine struct {
	calls [][]string
	failN int
}

func (f *fakeEngine) run(ctx context.Context, args []string) (string, error) {
	f.calls = append(f.calls, args)
	if len(f.calls) <= f.failN {
		return "Conversion failed!", fmt.Errorf("exit status 1")
	}
	return "", nil
}

// fakeProber serves canned probe reports keyed by path and counts lookups.
type fakeProber struct {
	reports map[string]string
	calls   int
}

func (f *fakeProber) probe(path string) (string, error) {
	f.calls++
	report, ok := f.reports[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return report, nil
}

func audioReport(duration float64) string {
	return fmt.Sprintf(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"%.2f"}}`, duration)
}

func imageReport(w, h int) string {
	return fmt.Sprintf(`{"streams":[{"codec_type":"video","width":%d,"height":%d}],"format":{}}`, w, h)
}

func videoReport(w, h int, duration float64) string {
	return fmt.Sprintf(
		`{"streams":[{"codec_type":"video","width":%d,"height":%d},{"codec_type":"audio"}],"format":{"duration":"%.2f"}}`,
		w, h, duration)
}

// testFixture lays out real (non-empty) source files plus a renderer wired
// to fakes.
type testFixture struct {
	renderer *Renderer
	engine   *fakeEngine
	prober   *fakeProber
	req      app.RenderRequest
}

func newFixture(t *testing.T, audioDur float64) *testFixture {
	t.Helper()
	t.Setenv("VIZBOT_HW_ENCODER", "")
	t.Setenv("VIZBOT_CONSTRAINED", "")
	dir := t.TempDir()
	audio := filepath.Join(dir, "track.mp3")
	image := filepath.Join(dir, "cover.png")
	output := filepath.Join(dir, "out.mp4")
	for _, p := range []string{audio, image} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	engine := &fakeEngine{}
	prober := &fakeProber{reports: map[string]string{
		audio:  audioReport(audioDur),
		image:  imageReport(4000, 4000),
		output: videoReport(3840, 2160, audioDur),
	}}
	return &testFixture{
		renderer: &Renderer{run: engine.run, probe: prober.probe, timeout: time.Minute},
		engine:   engine,
		prober:   prober,
		req: app.RenderRequest{
			AudioPath:  audio,
			ImagePath:  image,
			OutputPath: output,
			Title:      "Night Drive",
			Watermark:  "@LatentFlow",
			Format:     app.FormatMain,
			Preset:     PresetSpectrum,
		},
	}
}

func TestPlanMainUsesFullAudio(t *testing.T) {
	fx := newFixture(t, 213.5)
	plan, err := fx.renderer.Plan(fx.req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Duration != 213.5 {
		t.Errorf("duration = %.2f, want 213.50", plan.Duration)
	}
	if plan.Window != 0 {
		t.Errorf("main render should not trim the audio, window = %.2f", plan.Window)
	}
}

func TestPlanShortWindowClamping(t *testing.T) {
	tests := []struct {
		name       string
		audioDur   float64
		maxDur     float64
		offset     float64
		wantWindow float64
		wantOffset float64
	}{
		{"default window", 200, 0, 0, 55, 0},
		{"explicit lower window honored", 200, 30, 0, 30, 0},
		{"above maximum clamps down", 200, 120, 0, 60, 0},
		{"short track shrinks window", 40, 0, 0, 40, 0},
		{"offset pulled back to fit", 100, 55, 80, 55, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.audioDur)
			fx.req.Format = app.FormatShort
			fx.req.MaxDuration = tt.maxDur
			fx.req.StartOffset = tt.offset
			plan, err := fx.renderer.Plan(fx.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.Window != tt.wantWindow {
				t.Errorf("window = %.2f, want %.2f", plan.Window, tt.wantWindow)
			}
			if plan.StartOffset != tt.wantOffset {
				t.Errorf("offset = %.2f, want %.2f", plan.StartOffset, tt.wantOffset)
			}
			if plan.Duration != tt.wantWindow {
				t.Errorf("duration = %.2f, want %.2f", plan.Duration, tt.wantWindow)
			}
		})
	}
}

func TestPlanUnknownPresetBeforeProbe(t *testing.T) {
	fx := newFixture(t, 180)
	fx.req.Preset = "glitter"
	_, err := fx.renderer.Plan(fx.req)
	if app.KindOf(err) != app.ErrUnknownPreset {
		t.Fatalf("error kind = %s, want %s", app.KindOf(err), app.ErrUnknownPreset)
	}
	if fx.prober.calls != 0 {
		t.Errorf("preset lookup must fail before probing, got %d probe calls", fx.prober.calls)
	}
	if len(fx.engine.calls) != 0 {
		t.Error("engine must not be invoked for an unknown preset")
	}
}

func TestPlanMissingSource(t *testing.T) {
	fx := newFixture(t, 180)
	fx.req.AudioPath = filepath.Join(t.TempDir(), "missing.mp3")
	_, err := fx.renderer.Plan(fx.req)
	if app.KindOf(err) != app.ErrInvalidInput {
		t.Fatalf("error kind = %s, want %s", app.KindOf(err), app.ErrInvalidInput)
	}
	if len(fx.engine.calls) != 0 {
		t.Error("engine must not be invoked for a missing source")
	}
}

func TestPlanAudioWithoutAudioStream(t *testing.T) {
	fx := newFixture(t, 180)
	fx.prober.reports[fx.req.AudioPath] = `{"streams":[{"codec_type":"video","width":10,"height":10}],"format":{"duration":"5"}}`
	_, err := fx.renderer.Plan(fx.req)
	if app.KindOf(err) != app.ErrInvalidInput {
		t.Errorf("error kind = %s, want %s", app.KindOf(err), app.ErrInvalidInput)
	}
}

func TestRenderSuccess(t *testing.T) {
	fx := newFixture(t, 180)
	plan, err := fx.renderer.Plan(fx.req)
	if err != nil {
		t.Fatalf("planning: %v", err)
	}
	result, err := fx.renderer.Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != app.StatusSuccess {
		t.Errorf("status = %s, want success", result.Status)
	}
	if result.Encoder != "libx264" {
		t.Errorf("encoder = %s, want libx264", result.Encoder)
	}
	if len(fx.engine.calls) != 1 {
		t.Errorf("engine calls = %d, want 1", len(fx.engine.calls))
	}

	args := fx.engine.calls[0]
	if !slices.Contains(args, "-filter_complex") {
		t.Error("engine args missing -filter_complex")
	}
	if !slices.Contains(args, "[v]") {
		t.Error("engine args missing -map [v]")
	}
	if !slices.Contains(args, "-shortest") {
		t.Error("engine args missing -shortest")
	}
}

func TestRenderShortTrimsAudioInput(t *testing.T) {
	fx := newFixture(t, 200)
	fx.req.Format = app.FormatShort
	fx.prober.reports[fx.req.OutputPath] = videoReport(1080, 1920, 55)
	plan, err := fx.renderer.Plan(fx.req)
	if err != nil {
		t.Fatalf("planning: %v", err)
	}
	if _, err := fx.renderer.Render(context.Background(), plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := fx.engine.calls[0]
	ss := slices.Index(args, "-ss")
	in := slices.Index(args, "-i")
	if ss < 0 || in < 0 || ss > in {
		t.Errorf("-ss must trim the audio input (before -i): %v", args)
	}
	if !slices.Contains(args, "-t") {
		t.Errorf("short render must bound the window with -t: %v", args)
	}
}

func TestRenderHardwareFallback(t *testing.T) {
	fx := newFixture(t, 180)
	t.Setenv("VIZBOT_HW_ENCODER", "h264_v4l2m2m")
	fx.engine.failN = 1

	plan, err := fx.renderer.Plan(fx.req)
	if err != nil {
		t.Fatalf("planning: %v", err)
	}
	result, err := fx.renderer.Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.engine.calls) != 2 {
		t.Fatalf("engine calls = %d, want hardware attempt plus one fallback", len(fx.engine.calls))
	}
	if !slices.Contains(fx.engine.calls[0], "h264_v4l2m2m") {
		t.Error("first attempt should use the hardware encoder")
	}
	if result.Encoder != "libx264" {
		t.Errorf("fallback encoder = %s, want libx264", result.Encoder)
	}
}

func TestRenderSoftwareFailureIsTerminal(t *testing.T) {
	fx := newFixture(t, 180)
	fx.engine.failN = 10

	plan, err := fx.renderer.Plan(fx.req)
	if err != nil {
		t.Fatalf("planning: %v", err)
	}
	_, err = fx.renderer.Render(context.Background(), plan)
	if app.KindOf(err) != app.ErrRenderFailed {
		t.Errorf("error kind = %s, want %s", app.KindOf(err), app.ErrRenderFailed)
	}
	if len(fx.engine.calls) != 1 {
		t.Errorf("software failure must not retry, got %d calls", len(fx.engine.calls))
	}
	if app.DiagnosticOf(err) == "" {
		t.Error("terminal error should carry the engine diagnostic")
	}
}

func TestRenderValidationFailureNoRetry(t *testing.T) {
	fx := newFixture(t, 180)
	fx.prober.reports[fx.req.OutputPath] = videoReport(1920, 1080, 180)
	if err := os.WriteFile(fx.req.OutputPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	plan, err := fx.renderer.Plan(fx.req)
	if err != nil {
		t.Fatalf("planning: %v", err)
	}
	_, err = fx.renderer.Render(context.Background(), plan)
	if app.KindOf(err) != app.ErrOutputValidationFailed {
		t.Errorf("error kind = %s, want %s", app.KindOf(err), app.ErrOutputValidationFailed)
	}
	if len(fx.engine.calls) != 1 {
		t.Errorf("validation failure must never retry, got %d engine calls", len(fx.engine.calls))
	}
	// Output files from failed renders are never left behind.
	if _, statErr := os.Stat(fx.req.OutputPath); !os.IsNotExist(statErr) {
		t.Error("validation-failed output should have been removed")
	}
}

func TestRenderValidationDurationDrift(t *testing.T) {
	fx := newFixture(t, 180)
	fx.prober.reports[fx.req.OutputPath] = videoReport(3840, 2160, 150)

	plan, err := fx.renderer.Plan(fx.req)
	if err != nil {
		t.Fatalf("planning: %v", err)
	}
	_, err = fx.renderer.Render(context.Background(), plan)
	if app.KindOf(err) != app.ErrOutputValidationFailed {
		t.Errorf("error kind = %s, want %s", app.KindOf(err), app.ErrOutputValidationFailed)
	}
}
