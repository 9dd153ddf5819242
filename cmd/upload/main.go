package main

import (
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"vizbot/app"
	"vizbot/app/config"
	"vizbot/app/services"
)

// Standalone uploader for videos rendered earlier, e.g. after fixing upload
// credentials or re-running a failed publish.
func main() {
	_ = godotenv.Load()

	videoPath := flag.String("video", "", "Path to the rendered video")
	title := flag.String("title", "", "Track title")
	tags := flag.String("tags", "", "Comma-separated style tags")
	short := flag.Bool("short", false, "Upload as a short")
	flag.Parse()

	if *videoPath == "" || *title == "" {
		log.Fatal("❌ -video and -title are required")
	}

	saFile := config.GetServiceAccountFile()
	if saFile == "" {
		log.Fatal("❌ VIZBOT_SERVICE_ACCOUNT_FILE is not set")
	}

	uploader, err := services.NewUploader(saFile)
	if err != nil {
		log.Fatalf("❌ Could not initialize uploader: %v", err)
	}

	track := services.TrackInfo{Title: *title}
	for _, t := range strings.Split(*tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			track.Tags = append(track.Tags, t)
		}
	}

	format := app.FormatMain
	if *short {
		format = app.FormatShort
	}
	meta := services.UploadMetadata(track, format)

	videoID, err := uploader.UploadVideo(*videoPath, meta)
	if err != nil {
		log.Fatalf("❌ Upload failed: %v", err)
	}
	log.Printf("🎉 Published %s to playlist %q", videoID, meta.Playlist)
}
