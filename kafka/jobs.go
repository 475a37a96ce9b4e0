package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"stickerbot/config"
	"stickerbot/sticker"
	"stickerbot/storage"
)

// Job kinds accepted on the topic.
const (
	JobKindSticker   = "sticker"   // single generated still + synthetic motion
	JobKindAnimation = "animation" // prompt expansion + per-frame generation
)

// StickerJob is the message schema for queued sticker generation.
type StickerJob struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Concept string `json:"concept"`
	Motion  string `json:"motion,omitempty"`
	Frames  int    `json:"frames,omitempty"`
	FPS     int    `json:"fps,omitempty"`
}

// Valid reports whether the job carries enough information to process.
func (j *StickerJob) Valid() bool {
	if strings.TrimSpace(j.Concept) == "" {
		return false
	}
	switch j.Kind {
	case JobKindSticker, JobKindAnimation:
		return true
	default:
		return false
	}
}

// Processor runs queued jobs through the pipeline and publishes results to
// object storage.
type Processor struct {
	Pipeline  *sticker.Pipeline
	Artifacts *storage.ArtifactStore // nil disables upload, artifacts stay local
	OutputDir string
}

// Process generates the sticker for one job. Over-budget artifacts are still
// published; the overrun is logged rather than failing the job.
func (p *Processor) Process(ctx context.Context, job *StickerJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	outputPath := filepath.Join(p.OutputDir, job.ID+p.Pipeline.Codec.Extension())

	log.Printf("🎬 Processing %s job %q: %q", job.Kind, job.ID, job.Concept)

	artifact, err := p.generate(ctx, job, outputPath)
	if err != nil {
		var budgetErr *sticker.BudgetExceededError
		if !errors.As(err, &budgetErr) {
			return err
		}
		log.Printf("⚠️  Job %q artifact over budget: %v", job.ID, budgetErr)
	}

	if p.Artifacts != nil {
		key, err := p.Artifacts.Upload(ctx, artifact, p.Pipeline.Codec.ContentType())
		if err != nil {
			return err
		}
		_ = os.Remove(artifact.Path)
		log.Printf("✅ Job %q published as %s", job.ID, key)
		return nil
	}

	log.Printf("✅ Job %q finished: %s", job.ID, artifact.Path)
	return nil
}

func (p *Processor) generate(ctx context.Context, job *StickerJob, outputPath string) (sticker.EncodedArtifact, error) {
	switch job.Kind {
	case JobKindAnimation:
		frames := job.Frames
		if frames == 0 {
			frames = 4
		}
		fps := job.FPS
		if fps == 0 {
			fps = config.DefaultFPS
		}
		return p.Pipeline.GenerateAnimation(ctx, job.Concept, frames, fps, outputPath)

	case JobKindSticker:
		motion := job.Motion
		if motion == "" {
			motion = "float"
		}
		kind, err := sticker.ParseMotionKind(motion)
		if err != nil {
			return sticker.EncodedArtifact{}, err
		}
		still, err := p.Pipeline.Images.Generate(ctx, job.Concept,
			config.StickerSize, config.StickerSize, rand.Int63n(99999)+1)
		if err != nil {
			return sticker.EncodedArtifact{}, err
		}
		return p.Pipeline.AnimateStill(ctx, still, kind, outputPath)

	default:
		return sticker.EncodedArtifact{}, &sticker.ConfigurationError{
			Param:  "kind",
			Detail: fmt.Sprintf("unknown job kind %q", job.Kind),
		}
	}
}
