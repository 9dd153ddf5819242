package kafka

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vizbot/app"
	"vizbot/app/services"
	sharedkafka "vizbot/shared/kafka"
)

// ConsumerConfig holds the render-request consumer configuration.
type ConsumerConfig struct {
	Brokers   []string
	Topic     string
	GroupID   string
	Processor *services.VideoProcessor
}

// NewConsumer builds a consumer that renders each incoming request.
// Malformed requests are marked and dropped; render failures leave the
// offset unmarked so the request is retried.
func NewConsumer(cfg ConsumerConfig) (*sharedkafka.Consumer, error) {
	handler := &sharedkafka.JSONHandler[app.RenderRequest]{
		Validate: func(req *app.RenderRequest) bool {
			if req.AudioPath == "" || req.ImagePath == "" || req.OutputPath == "" {
				log.Printf("❌ Render request missing paths, skipping")
				return false
			}
			if req.Format == "" {
				req.Format = app.FormatMain
			}
			if req.Preset == "" {
				req.Preset = services.PresetWaves
			}
			return true
		},
		Process: func(ctx context.Context, req *app.RenderRequest) error {
			log.Printf("🎬 Rendering request: %s", req.Key())
			if _, err := cfg.Processor.ProcessRequest(ctx, *req); err != nil {
				log.Printf("❌ Render failed for %s: %v", req.Key(), err)
				return err
			}
			log.Printf("✅ Rendered request: %s", req.Key())
			return nil
		},
		MarkInvalid: true,
	}

	return sharedkafka.NewConsumer(sharedkafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		Handler: handler,
	})
}

// StartConsumerWithGracefulShutdown runs the consumer until SIGINT/SIGTERM,
// then drains briefly and closes.
func StartConsumerWithGracefulShutdown(cfg ConsumerConfig) error {
	consumer, err := NewConsumer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigterm:
		log.Println("Received termination signal")
	case <-ctx.Done():
		log.Println("Context canceled")
	}

	cancel()
	time.Sleep(2 * time.Second)
	return consumer.Close()
}

// GetKafkaBrokers parses the broker list from the environment.
func GetKafkaBrokers() []string {
	brokers := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if brokers == "" {
		brokers = "localhost:9093"
	}
	return strings.Split(brokers, ",")
}

// GetKafkaTopic returns the render-request topic name.
func GetKafkaTopic() string {
	topic := os.Getenv("KAFKA_TOPIC_RENDER_REQUESTS")
	if topic == "" {
		topic = "render-requests"
	}
	return topic
}

// GetKafkaGroupID returns the consumer group ID.
func GetKafkaGroupID() string {
	groupID := os.Getenv("KAFKA_CONSUMER_GROUP_ID")
	if groupID == "" {
		groupID = "vizbot-render-consumer"
	}
	return groupID
}
