package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vizbot/app/config"
)

// TrackInfo is the metadata the pipeline needs about a generated track.
type TrackInfo struct {
	ID       string
	Title    string
	Tags     []string
	AudioURL string
	ImageURL string
	Duration float64
}

// SunoClient fetches track metadata and media from the music-generation
// service. The public song page embeds its data as a JSON blob in a
// __NEXT_DATA__ script tag; there is no stable public API.
type SunoClient struct {
	baseURL string
	http    *http.Client
}

func NewSunoClient() *SunoClient {
	return &SunoClient{
		baseURL: config.GetSunoBaseURL(),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// nextData mirrors the slice of the embedded page state we read.
type nextData struct {
	Props struct {
		PageProps struct {
			Song struct {
				ID       string `json:"id"`
				Title    string `json:"title"`
				AudioURL string `json:"audio_url"`
				ImageURL string `json:"image_large_url"`
				Metadata struct {
					Tags     string  `json:"tags"`
					Duration float64 `json:"duration"`
				} `json:"metadata"`
			} `json:"song"`
		} `json:"pageProps"`
	} `json:"props"`
}

// FetchTrack loads the public song page and extracts the track metadata.
func (c *SunoClient) FetchTrack(ctx context.Context, id string) (*TrackInfo, error) {
	url := fmt.Sprintf("%s/song/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; vizbot/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching song page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("song page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("reading song page: %w", err)
	}

	raw, err := extractNextData(string(body))
	if err != nil {
		return nil, err
	}
	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parsing page data: %w", err)
	}

	song := data.Props.PageProps.Song
	if song.ID == "" || song.AudioURL == "" {
		return nil, fmt.Errorf("song %s has no playable audio in page data", id)
	}

	var tags []string
	for _, t := range strings.Split(song.Metadata.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return &TrackInfo{
		ID:       song.ID,
		Title:    strings.TrimSpace(song.Title),
		Tags:     tags,
		AudioURL: song.AudioURL,
		ImageURL: song.ImageURL,
		Duration: song.Metadata.Duration,
	}, nil
}

// extractNextData pulls the JSON payload out of the __NEXT_DATA__ script tag.
func extractNextData(html string) (string, error) {
	const marker = `id="__NEXT_DATA__"`
	i := strings.Index(html, marker)
	if i < 0 {
		return "", fmt.Errorf("page has no __NEXT_DATA__ payload")
	}
	start := strings.Index(html[i:], ">")
	if start < 0 {
		return "", fmt.Errorf("malformed __NEXT_DATA__ script tag")
	}
	start += i + 1
	end := strings.Index(html[start:], "</script>")
	if end < 0 {
		return "", fmt.Errorf("unterminated __NEXT_DATA__ script tag")
	}
	return html[start : start+end], nil
}

// Download fetches a media URL into dir, returning the local path. The
// filename is derived from the URL.
func (c *SunoClient) Download(ctx context.Context, url, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s returned status %d", url, resp.StatusCode)
	}

	name := filepath.Base(strings.SplitN(url, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "download"
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
