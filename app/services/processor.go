package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"vizbot/app"
	"vizbot/app/config"
)

// VideoProcessor runs the full per-track pipeline: render the video, then
// upload and archive the result. Upload and archive are both optional and
// degrade to render-only mode when their credentials are absent.
type VideoProcessor struct {
	renderer   *Renderer
	uploader   *Uploader
	archiver   *Archiver
	history    *History
	skipUpload bool
}

// NewVideoProcessor wires the pipeline from the environment.
func NewVideoProcessor(ctx context.Context) (*VideoProcessor, error) {
	p := &VideoProcessor{renderer: NewRenderer()}

	if saFile := config.GetServiceAccountFile(); saFile != "" {
		uploader, err := NewUploader(saFile)
		if err != nil {
			log.Printf("⚠️ YouTube uploader not initialized: %v", err)
			p.skipUpload = true
		} else {
			log.Println("✅ YouTube client initialized")
			p.uploader = uploader
		}
	} else {
		log.Println("📹 Running in RENDER-ONLY mode (no upload credentials)")
		p.skipUpload = true
	}

	archiver, err := NewArchiver(ctx)
	if err != nil {
		log.Printf("⚠️ Archiver not initialized: %v", err)
	} else if archiver != nil {
		log.Println("✅ S3 archiver initialized")
		p.archiver = archiver
	}

	history, err := NewHistory(ctx)
	if err != nil {
		log.Printf("⚠️ History ledger not initialized: %v", err)
	} else if history != nil {
		log.Println("✅ Redis history ledger connected")
		p.history = history
	}

	return p, nil
}

// ProcessRequest renders one request and runs the post-render steps. The
// returned result always reflects the render outcome; post-render failures
// are logged but do not fail a finished video.
func (p *VideoProcessor) ProcessRequest(ctx context.Context, req app.RenderRequest) (*app.RenderResult, error) {
	if seen, err := p.history.Seen(ctx, req); err != nil {
		log.Printf("⚠️ History check failed, rendering anyway: %v", err)
	} else if seen {
		log.Printf("⏭️ Already rendered, skipping: %s", filepath.Base(req.OutputPath))
		return &app.RenderResult{Status: app.StatusSuccess, OutputPath: req.OutputPath}, nil
	}

	plan, err := p.renderer.Plan(req)
	if err != nil {
		return failedResult(err), err
	}
	result, err := p.renderer.Render(ctx, plan)
	if err != nil {
		return failedResult(err), err
	}

	if !p.skipUpload && p.uploader != nil {
		meta := UploadMetadata(TrackInfo{Title: req.Title}, req.Format)
		if videoID, err := p.uploader.UploadVideo(result.OutputPath, meta); err != nil {
			log.Printf("⚠️ Upload failed for %s: %v", result.OutputPath, err)
		} else {
			log.Printf("🎉 Published video %s", videoID)
		}
	}

	if p.archiver != nil {
		if _, err := p.archiver.Archive(ctx, result.OutputPath); err != nil {
			log.Printf("⚠️ Archive failed for %s: %v", result.OutputPath, err)
		}
	}

	if err := p.history.MarkDone(ctx, req, result.OutputPath); err != nil {
		log.Printf("⚠️ Could not record history: %v", err)
	}

	return result, nil
}

// ProcessTrack fetches a generated track, downloads its media, and renders
// both formats: the full-length main video and a hook-window short.
func (p *VideoProcessor) ProcessTrack(ctx context.Context, client *SunoClient, trackID string) error {
	track, err := client.FetchTrack(ctx, trackID)
	if err != nil {
		return fmt.Errorf("fetching track %s: %w", trackID, err)
	}
	log.Printf("🎵 Track: %s (%.0fs)", track.Title, track.Duration)

	audioPath, err := client.Download(ctx, track.AudioURL, config.InputDir)
	if err != nil {
		return fmt.Errorf("downloading audio: %w", err)
	}
	imagePath, err := client.Download(ctx, track.ImageURL, config.InputDir)
	if err != nil {
		return fmt.Errorf("downloading artwork: %w", err)
	}

	mood := DetectMood(track.Title, track.Tags)
	preset := PresetForMood(mood)
	slug := Slug(track.Title)
	log.Printf("🎨 Mood %s → preset %s", mood, preset)

	main := app.RenderRequest{
		AudioPath:  audioPath,
		ImagePath:  imagePath,
		OutputPath: filepath.Join(config.OutputDir, slug+".mp4"),
		Title:      track.Title,
		Watermark:  "@" + config.GetChannelName(),
		Format:     app.FormatMain,
		Preset:     preset,
	}
	if _, err := p.ProcessRequest(ctx, main); err != nil {
		return fmt.Errorf("main render: %w", err)
	}

	short := app.RenderRequest{
		AudioPath:   audioPath,
		ImagePath:   imagePath,
		OutputPath:  filepath.Join(config.OutputDir, slug+"-short.mp4"),
		Title:       track.Title,
		Format:      app.FormatShort,
		Preset:      preset,
		StartOffset: HookOffset(track.Duration, config.ShortDefaultDuration),
	}
	if _, err := p.ProcessRequest(ctx, short); err != nil {
		return fmt.Errorf("short render: %w", err)
	}
	return nil
}

// Close releases pipeline resources.
func (p *VideoProcessor) Close() {
	if err := p.history.Close(); err != nil {
		log.Printf("⚠️ Closing history: %v", err)
	}
}

func failedResult(err error) *app.RenderResult {
	return &app.RenderResult{Status: app.StatusFailed, ErrorKind: app.KindOf(err)}
}
