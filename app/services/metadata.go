package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"vizbot/app"
	"vizbot/app/config"
)

// Track metadata services: mood classification of generated tracks and the
// mapping from mood to preset, playlist and upload metadata.

// Mood buckets a track by energy and tone.
type Mood string

const (
	MoodChill  Mood = "chill"
	MoodParty  Mood = "party"
	MoodDeep   Mood = "deep"
	MoodFusion Mood = "fusion"
)

// moodKeywords scores style tags and titles. The highest scoring mood wins;
// ties and no-hits fall back to fusion.
var moodKeywords = map[Mood][]string{
	MoodChill:  {"chill", "lofi", "lo-fi", "ambient", "calm", "sleep", "study", "relax", "mellow", "acoustic"},
	MoodParty:  {"edm", "dance", "party", "club", "festival", "bounce", "hype", "banger", "electro", "house"},
	MoodDeep:   {"deep", "techno", "minimal", "dark", "hypnotic", "dub", "bass", "trance", "drone"},
	MoodFusion: {"fusion", "world", "jazz", "funk", "blend", "eclectic", "experimental"},
}

// moodPresets routes each mood to its visual treatment.
var moodPresets = map[Mood]string{
	MoodChill:  PresetVintage,
	MoodParty:  PresetSpectrum,
	MoodDeep:   PresetZoom,
	MoodFusion: PresetWaves,
}

// moodPlaylists routes each mood to its upload playlist.
var moodPlaylists = map[Mood]string{
	MoodChill:  "Chill & Study",
	MoodParty:  "High Energy",
	MoodDeep:   "Deep Sessions",
	MoodFusion: "Genre Fusion",
}

// DetectMood classifies a track from its title and style tags.
func DetectMood(title string, tags []string) Mood {
	text := strings.ToLower(title + " " + strings.Join(tags, " "))
	best := MoodFusion
	bestScore := 0
	// Stable order so ties resolve deterministically.
	for _, mood := range []Mood{MoodChill, MoodParty, MoodDeep, MoodFusion} {
		score := 0
		for _, kw := range moodKeywords[mood] {
			score += strings.Count(text, kw)
		}
		if score > bestScore {
			best = mood
			bestScore = score
		}
	}
	return best
}

// PresetForMood returns the visual preset a mood maps to.
func PresetForMood(m Mood) string {
	if p, ok := moodPresets[m]; ok {
		return p
	}
	return PresetWaves
}

// PlaylistForMood returns the upload playlist a mood maps to.
func PlaylistForMood(m Mood) string {
	if p, ok := moodPlaylists[m]; ok {
		return p
	}
	return moodPlaylists[MoodFusion]
}

// HookOffset picks where a short-form clip should start: 15% into the
// track, pulled back so the window still fits before the end.
func HookOffset(trackDuration, window float64) float64 {
	off := trackDuration * 0.15
	if off+window > trackDuration {
		off = trackDuration - window
	}
	if off < 0 {
		off = 0
	}
	return off
}

var bpmPattern = regexp.MustCompile(`(?i)\b(\d{2,3})\s*bpm\b`)

// ExtractBPM pulls a tempo like "120 BPM" out of free-form style text.
// Returns 0 when no tempo is mentioned.
func ExtractBPM(text string) int {
	m := bpmPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	bpm, err := strconv.Atoi(m[1])
	if err != nil || bpm < 40 || bpm > 300 {
		return 0
	}
	return bpm
}

// FormatTrackDuration renders seconds as m:ss for descriptions.
func FormatTrackDuration(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Slug turns a track title into a filesystem-safe name.
func Slug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "untitled"
	}
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

// UploadMetadata builds the upload-facing metadata for a finished video.
func UploadMetadata(track TrackInfo, format app.FormatClass) app.VideoMetadata {
	mood := DetectMood(track.Title, track.Tags)
	channel := config.GetChannelName()

	title := track.Title
	if format == app.FormatShort {
		title = fmt.Sprintf("%s #shorts", title)
	} else {
		title = fmt.Sprintf("%s | %s", title, channel)
	}
	if len(title) > config.MaxTitleLength {
		title = title[:config.MaxTitleLength]
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "%s\n\n", track.Title)
	if len(track.Tags) > 0 {
		fmt.Fprintf(&desc, "Style: %s\n", strings.Join(track.Tags, ", "))
	}
	if track.Duration > 0 {
		fmt.Fprintf(&desc, "Length: %s\n", FormatTrackDuration(track.Duration))
	}
	if bpm := ExtractBPM(strings.Join(track.Tags, " ")); bpm > 0 {
		fmt.Fprintf(&desc, "Tempo: %d BPM\n", bpm)
	}
	fmt.Fprintf(&desc, "\nAI-generated music, visualized by %s.\n", channel)

	tags := append([]string{"music", "visualizer", string(mood)}, track.Tags...)
	return app.VideoMetadata{
		Title:       title,
		Description: desc.String(),
		Tags:        tags,
		CategoryID:  "10",
		Playlist:    PlaylistForMood(mood),
	}
}
