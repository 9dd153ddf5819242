package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Canvas dimensions
	MainWidth            = 3840
	MainHeight           = 2160
	MainFallbackWidth    = 1920 // constrained-device substitution, encode policy only
	MainFallbackHeight   = 1080
	ShortWidth           = 1080
	ShortHeight          = 1920

	// Frame and encode settings
	VideoFPS     = 30
	VideoCodec   = "libx264"
	VideoPreset  = "medium"
	VideoCRF     = "23"
	AudioCodec   = "aac"
	AudioBitrate = "192k"
	PixelFormat  = "yuv420p"

	// Timeline
	FadeDuration         = 2.0
	ShortDefaultDuration = 55.0
	ShortMinDuration     = 50.0
	ShortMaxDuration     = 60.0

	// Visualization strips (pixels, anchored to the bottom edge)
	MainStripHeight  = 270
	ShortStripHeight = 240

	// Directory paths
	OutputDir = "output"
	InputDir  = "input"

	// Processing
	DefaultRenderTimeout = 30 * time.Minute
	RenderBatchDelay     = 2 * time.Second

	// Title generation
	MaxTitleLength = 100
)

// GetEnvOrDefault returns the environment variable value or a default.
func GetEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetHardwareEncoder returns the configured hardware video encoder name
// (e.g. "h264_v4l2m2m" on ARM boards, "h264_videotoolbox" on macOS).
// Empty means software encoding only.
func GetHardwareEncoder() string {
	return os.Getenv("VIZBOT_HW_ENCODER")
}

// ConstrainedDevice reports whether the encode policy should substitute the
// 1080p canvas for long-form renders. The geometry resolver itself always
// targets the full 4K canvas.
func ConstrainedDevice() bool {
	return os.Getenv("VIZBOT_CONSTRAINED") == "1"
}

// GetMaxConcurrentRenders returns the batch concurrency ceiling. Rendering
// is CPU/GPU- and memory-bound, so the default is a single render at a time.
func GetMaxConcurrentRenders() int {
	if v := os.Getenv("VIZBOT_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// GetRenderTimeout returns the per-render engine timeout.
func GetRenderTimeout() time.Duration {
	if v := os.Getenv("VIZBOT_RENDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return DefaultRenderTimeout
}

// GetChannelName returns the channel watermark/handle used in overlays and
// upload descriptions.
func GetChannelName() string {
	return GetEnvOrDefault("VIZBOT_CHANNEL_NAME", "LatentFlow")
}

// GetServiceAccountFile returns the path to the YouTube service account
// credentials. Empty disables uploading.
func GetServiceAccountFile() string {
	return os.Getenv("VIZBOT_SERVICE_ACCOUNT_FILE")
}

// GetRedisAddr returns the Redis address for the batch history ledger.
// Empty disables history tracking.
func GetRedisAddr() string {
	return os.Getenv("VIZBOT_REDIS_ADDR")
}

// GetArchiveBucket returns the S3 bucket for archiving finished renders.
// Empty disables archiving.
func GetArchiveBucket() string {
	return os.Getenv("VIZBOT_ARCHIVE_BUCKET")
}

// GetArchivePrefix returns the S3 key prefix for archived renders.
func GetArchivePrefix() string {
	return GetEnvOrDefault("VIZBOT_ARCHIVE_PREFIX", "renders")
}

// GetSunoBaseURL returns the base URL of the music-generation service.
func GetSunoBaseURL() string {
	return GetEnvOrDefault("VIZBOT_SUNO_BASE_URL", "https://suno.com")
}
