package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"vizbot/app"
)

// Uploader publishes finished videos to YouTube and files them into the
// mood playlists.
type Uploader struct {
	service *youtube.Service
}

func NewUploader(serviceAccountFile string) (*Uploader, error) {
	ctx := context.Background()

	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope, youtube.YoutubeScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	client := config.Client(ctx)

	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &Uploader{service: service}, nil
}

// UploadVideo uploads the file with the given metadata and returns the
// video ID. If the metadata names a playlist the video is added to it; a
// playlist failure does not fail the upload.
func (u *Uploader) UploadVideo(videoPath string, metadata app.VideoMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	log.Printf("📤 Uploading: %s (%.2f MB)", videoPath, float64(fileInfo.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.Media(file)

	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	videoID := response.Id
	log.Printf("✅ Uploaded! https://youtube.com/watch?v=%s", videoID)

	if metadata.Playlist != "" {
		if err := u.addToPlaylist(videoID, metadata.Playlist); err != nil {
			log.Printf("⚠️ Could not add %s to playlist %q: %v", videoID, metadata.Playlist, err)
		}
	}

	return videoID, nil
}

// addToPlaylist finds the named playlist on the channel and appends the
// video to it.
func (u *Uploader) addToPlaylist(videoID, playlistName string) error {
	list, err := u.service.Playlists.List([]string{"snippet"}).Mine(true).MaxResults(50).Do()
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	var playlistID string
	for _, p := range list.Items {
		if p.Snippet.Title == playlistName {
			playlistID = p.Id
			break
		}
	}
	if playlistID == "" {
		return fmt.Errorf("playlist %q not found", playlistName)
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}
	if _, err := u.service.PlaylistItems.Insert([]string{"snippet"}, item).Do(); err != nil {
		return fmt.Errorf("failed to insert playlist item: %w", err)
	}
	log.Printf("🎵 Added %s to playlist %q", videoID, playlistName)
	return nil
}
