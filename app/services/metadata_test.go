package services

import (
	"strings"
	"testing"

	"vizbot/app"
)

func TestDetectMood(t *testing.T) {
	tests := []struct {
		title string
		tags  []string
		want  Mood
	}{
		{"Midnight Study Session", []string{"lofi", "chill"}, MoodChill},
		{"Festival Anthem", []string{"edm", "dance"}, MoodParty},
		{"Warehouse", []string{"dark techno", "minimal"}, MoodDeep},
		{"Untitled", nil, MoodFusion},
		{"Saxophone Dreams", []string{"jazz", "funk"}, MoodFusion},
	}
	for _, tt := range tests {
		if got := DetectMood(tt.title, tt.tags); got != tt.want {
			t.Errorf("DetectMood(%q, %v) = %s, want %s", tt.title, tt.tags, got, tt.want)
		}
	}
}

func TestPresetForMood(t *testing.T) {
	tests := []struct {
		mood Mood
		want string
	}{
		{MoodChill, PresetVintage},
		{MoodParty, PresetSpectrum},
		{MoodDeep, PresetZoom},
		{MoodFusion, PresetWaves},
	}
	for _, tt := range tests {
		if got := PresetForMood(tt.mood); got != tt.want {
			t.Errorf("PresetForMood(%s) = %s, want %s", tt.mood, got, tt.want)
		}
	}
}

func TestHookOffset(t *testing.T) {
	if got := HookOffset(200, 55); got != 30 {
		t.Errorf("HookOffset(200, 55) = %.2f, want 30", got)
	}
	// Offset near the end gets pulled back so the window fits.
	if got := HookOffset(60, 55); got != 5 {
		t.Errorf("HookOffset(60, 55) = %.2f, want 5", got)
	}
	if got := HookOffset(30, 55); got != 0 {
		t.Errorf("HookOffset(30, 55) = %.2f, want 0", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Night Drive", "night-drive"},
		{"It's 5:00 (Remix)", "it-s-5-00-remix"},
		{"---", "untitled"},
		{"", "untitled"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractBPM(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"lofi hiphop 85 BPM mellow", 85},
		{"techno 128bpm", 128},
		{"no tempo here", 0},
		{"9999 bpm", 0},
	}
	for _, tt := range tests {
		if got := ExtractBPM(tt.in); got != tt.want {
			t.Errorf("ExtractBPM(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatTrackDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{187.4, "3:07"},
		{59.6, "1:00"},
		{5, "0:05"},
		{0, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTrackDuration(tt.in); got != tt.want {
			t.Errorf("FormatTrackDuration(%.1f) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUploadMetadata(t *testing.T) {
	track := TrackInfo{Title: "Midnight Study Session", Tags: []string{"lofi", "chill"}}

	meta := UploadMetadata(track, app.FormatMain)
	if len(meta.Title) > 100 {
		t.Errorf("title too long: %d chars", len(meta.Title))
	}
	if meta.CategoryID != "10" {
		t.Errorf("category = %s, want 10 (Music)", meta.CategoryID)
	}
	if meta.Playlist != "Chill & Study" {
		t.Errorf("playlist = %q, want Chill & Study", meta.Playlist)
	}

	short := UploadMetadata(track, app.FormatShort)
	if !strings.Contains(short.Title, "#shorts") {
		t.Errorf("short title missing #shorts tag: %q", short.Title)
	}
}
