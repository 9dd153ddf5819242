package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// FormatClass selects the target output format.
type FormatClass string

const (
	// FormatMain is the long-form 16:9 format (full track length).
	FormatMain FormatClass = "main"
	// FormatShort is the vertical 9:16 format (fixed 50-60s window).
	FormatShort FormatClass = "short"
)

// RenderRequest describes one visualizer video to produce. The caller owns
// the request for its whole lifetime; the pipeline consumes it once and
// never persists it.
type RenderRequest struct {
	AudioPath   string      `json:"audio_path"`
	ImagePath   string      `json:"image_path"`
	OutputPath  string      `json:"output_path"`
	Title       string      `json:"title,omitempty"`
	Watermark   string      `json:"watermark,omitempty"`
	Format      FormatClass `json:"format"`
	Preset      string      `json:"preset"`
	StartOffset float64     `json:"start_offset,omitempty"`
	MaxDuration float64     `json:"max_duration,omitempty"`
}

// Key returns a stable identifier for batch bookkeeping (history ledger,
// duplicate detection). Two requests for the same output are the same job.
func (r RenderRequest) Key() string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%.2f|%.2f",
		r.AudioPath, r.ImagePath, r.Format, r.Preset, r.StartOffset, r.MaxDuration))
	return hex.EncodeToString(sum[:16])
}

// RenderStatus is the terminal state of a render.
type RenderStatus string

const (
	StatusSuccess RenderStatus = "success"
	StatusFailed  RenderStatus = "failed"
)

// RenderResult reports the outcome of one render back to the caller.
type RenderResult struct {
	Status     RenderStatus `json:"status"`
	OutputPath string       `json:"output_path,omitempty"`
	ErrorKind  ErrorKind    `json:"error_kind,omitempty"`
	Duration   float64      `json:"duration,omitempty"`
	Width      int          `json:"width,omitempty"`
	Height     int          `json:"height,omitempty"`
	Encoder    string       `json:"encoder,omitempty"`
}

// VideoMetadata holds the upload-facing metadata for a finished video.
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Playlist    string
}

// RenderVideoRequest is the HTTP API request body.
type RenderVideoRequest struct {
	RenderRequest
}

// RenderVideoResponse is the HTTP API response body.
type RenderVideoResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Result  *RenderResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}
