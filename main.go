package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"vizbot/app"
	"vizbot/app/api"
	"vizbot/app/config"
	"vizbot/app/kafka"
	"vizbot/app/services"
	"vizbot/tui"
)

const DefaultAPIPort = "8082"

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	batchMode := flag.Bool("batch", false, "Run in batch mode (render all request files from input/)")
	monitor := flag.Bool("tui", false, "Show the interactive batch monitor (batch mode only)")
	kafkaMode := flag.Bool("kafka", false, "Run in Kafka consumer mode (consume render requests)")
	apiPort := flag.String("port", DefaultAPIPort, "API server port")
	trackID := flag.String("track", "", "Fetch one generated track by ID and render both formats")

	audioPath := flag.String("audio", "", "Audio file for a one-shot render")
	imagePath := flag.String("image", "", "Artwork image for a one-shot render")
	outputPath := flag.String("output", "", "Output video path for a one-shot render")
	preset := flag.String("preset", services.PresetWaves, "Effect preset")
	format := flag.String("format", string(app.FormatMain), "Output format: main or short")
	title := flag.String("title", "", "Title overlay text")
	start := flag.Float64("start", 0, "Audio start offset in seconds (short format)")
	duration := flag.Float64("duration", 0, "Clip window in seconds (short format)")
	flag.Parse()

	log.Println("🎬 vizbot - Starting...")

	ctx := context.Background()
	proc, err := services.NewVideoProcessor(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to initialize processor: %v", err)
	}
	defer proc.Close()

	switch {
	case *audioPath != "":
		if *imagePath == "" || *outputPath == "" {
			log.Fatal("❌ One-shot renders need -audio, -image and -output")
		}
		req := app.RenderRequest{
			AudioPath:   *audioPath,
			ImagePath:   *imagePath,
			OutputPath:  *outputPath,
			Title:       *title,
			Watermark:   "@" + config.GetChannelName(),
			Format:      app.FormatClass(*format),
			Preset:      *preset,
			StartOffset: *start,
			MaxDuration: *duration,
		}
		result, err := proc.ProcessRequest(ctx, req)
		if err != nil {
			log.Fatalf("❌ Render failed (%s): %v", result.ErrorKind, err)
		}
		log.Printf("🎉 Done: %s (%dx%d, %s)", result.OutputPath, result.Width, result.Height, result.Encoder)

	case *trackID != "":
		log.Printf("🎵 Fetching track %s", *trackID)
		if err := proc.ProcessTrack(ctx, services.NewSunoClient(), *trackID); err != nil {
			log.Fatalf("❌ Track processing failed: %v", err)
		}

	case *batchMode:
		log.Println("📁 Running in BATCH mode")
		reqs, err := services.LoadRequests(config.InputDir)
		if err != nil {
			log.Fatalf("❌ Could not load batch: %v", err)
		}
		scheduler := services.NewBatchScheduler(proc)
		if *monitor {
			runBatchWithMonitor(ctx, scheduler, reqs)
		} else {
			scheduler.Run(ctx, reqs)
		}

	case *kafkaMode:
		log.Println("📨 Running in KAFKA consumer mode")
		kafkaConfig := kafka.ConsumerConfig{
			Brokers:   kafka.GetKafkaBrokers(),
			Topic:     kafka.GetKafkaTopic(),
			GroupID:   kafka.GetKafkaGroupID(),
			Processor: proc,
		}
		log.Printf("🔗 Kafka Brokers: %v", kafkaConfig.Brokers)
		log.Printf("📋 Topic: %s", kafkaConfig.Topic)
		log.Printf("👥 Consumer Group: %s", kafkaConfig.GroupID)
		if err := kafka.StartConsumerWithGracefulShutdown(kafkaConfig); err != nil {
			log.Fatalf("❌ Kafka consumer failed: %v", err)
		}

	default:
		log.Println("🌐 Running in API mode")
		server := api.NewServer(proc)
		log.Println("📌 Endpoints:")
		log.Println("   POST /api/render   - Render a video from JSON (?wait=1 to block)")
		log.Println("   GET  /api/presets  - List effect presets")
		log.Println("   GET  /health       - Health check")
		if err := server.Run(*apiPort); err != nil {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}

	os.Exit(0)
}

// runBatchWithMonitor runs the scheduler in the background and mirrors its
// events into the terminal UI.
func runBatchWithMonitor(ctx context.Context, scheduler *services.BatchScheduler, reqs []app.RenderRequest) {
	events := make(chan services.BatchEvent, len(reqs)*4)
	scheduler.Events = events

	go func() {
		scheduler.Run(ctx, reqs)
		close(events)
	}()

	if err := tui.Run(events, len(reqs)); err != nil {
		log.Fatalf("❌ Batch monitor failed: %v", err)
	}
}
