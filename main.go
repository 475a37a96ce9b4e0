package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"stickerbot/api"
	"stickerbot/config"
	"stickerbot/genai"
	"stickerbot/kafka"
	"stickerbot/sticker"
	"stickerbot/storage"
	"stickerbot/taskstore"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	kafkaMode := flag.Bool("kafka", false, "Consume sticker jobs from Kafka instead of serving HTTP")
	flag.Parse()

	pipeline := buildPipeline()

	if *kafkaMode {
		runConsumer(pipeline)
		return
	}

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var video genai.VideoGenerator
	if rw, err := genai.NewRunwareVideo(); err != nil {
		log.Printf("⚠️  Video generation disabled: %v", err)
	} else {
		video = rw
	}

	// Interface must stay nil when S3 is unconfigured; a typed nil pointer
	// would read as configured.
	var artifacts api.ArtifactStore
	if store := initArtifactStore(); store != nil {
		artifacts = store
	}

	server := api.NewServer(pipeline, video, taskstore.NewDefaultStore(), artifacts, config.OutputDir)

	log.Printf("Starting sticker API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /health")
	log.Println("  GET  /api/generate-sticker")
	log.Println("  GET  /api/generate-animation")
	log.Println("  POST /api/animate-upload")
	log.Println("  POST /api/generate-video-animation")
	log.Println("  GET  /api/tasks/:id")
	log.Println("  GET  /api/tasks/:id/result")

	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildPipeline wires the generation adapters from the environment.
func buildPipeline() *sticker.Pipeline {
	expander, err := genai.NewCoherePrompts()
	if err != nil {
		log.Fatalf("Failed to initialize prompt expansion: %v", err)
	}

	var codec sticker.Codec = sticker.WebPCodec{}
	if strings.EqualFold(os.Getenv("STICKER_FORMAT"), "gif") {
		codec = sticker.GIFCodec{}
	}

	return sticker.NewPipeline(expander, genai.NewPollinationsImages(), codec)
}

// runConsumer processes sticker jobs from a Kafka topic until interrupted.
func runConsumer(pipeline *sticker.Pipeline) {
	brokers := strings.Split(getEnvOrDefault("KAFKA_BROKERS", "localhost:9092"), ",")

	processor := &kafka.Processor{
		Pipeline:  pipeline,
		Artifacts: initArtifactStore(),
		OutputDir: config.OutputDir,
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: brokers,
		Topic:   getEnvOrDefault("KAFKA_TOPIC", "sticker-jobs"),
		GroupID: getEnvOrDefault("KAFKA_GROUP", "stickerbot"),
	}, processor.Process)
	if err != nil {
		log.Fatalf("Failed to create Kafka consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start Kafka consumer: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	cancel()
	if err := consumer.Close(); err != nil {
		log.Printf("Error closing consumer: %v", err)
	}
}

// initArtifactStore returns an S3-backed artifact store if configured via env.
// Required: S3_BUCKET. Optional: S3_REGION, S3_PROFILE, S3_PREFIX, S3_USE_PATH_STYLE=true
func initArtifactStore() *storage.ArtifactStore {
	bucket := strings.TrimSpace(os.Getenv("S3_BUCKET"))
	if bucket == "" {
		log.Printf("S3 not configured; artifacts stay local")
		return nil
	}

	cfg := storage.S3Config{
		Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
	}
	client, err := storage.NewS3(context.Background(), cfg)
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (uploads disabled)", err)
		return nil
	}

	return storage.NewArtifactStore(client, bucket, strings.TrimSpace(os.Getenv("S3_PREFIX")))
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
