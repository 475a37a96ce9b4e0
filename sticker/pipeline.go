package sticker

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"math/rand"

	"stickerbot/config"
)

// PromptExpander turns a short concept into n ordered frame descriptions.
// Implementations must return exactly n descriptions or fail.
type PromptExpander interface {
	Expand(ctx context.Context, concept string, n int) ([]string, error)
}

// ImageGenerator turns a text prompt into a single raster image. Given the
// same seed, prompt and dimensions the result should be stable (best effort;
// free-tier backends make no hard guarantee).
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, width, height int, seed int64) (image.Image, error)
}

// Pipeline wires the generation adapters to the frame assembler. One Pipeline
// is safe for concurrent requests: all per-request state (frames, temp files,
// output path) is created inside each call.
type Pipeline struct {
	Expander PromptExpander
	Images   ImageGenerator

	// FrameIsolator is applied to every generated or extracted frame.
	FrameIsolator Isolator
	// StillIsolator is applied once to a single still before synthetic motion
	// duplicates it, so a cheap local strategy is acceptable here.
	StillIsolator Isolator

	Codec  Codec
	Budget int64
}

// NewPipeline builds a pipeline with the default isolation strategies and the
// platform byte budget.
func NewPipeline(expander PromptExpander, images ImageGenerator, codec Codec) *Pipeline {
	return &Pipeline{
		Expander:      expander,
		Images:        images,
		FrameIsolator: NewDefaultIsolator(),
		StillIsolator: &ColorKeyIsolator{Threshold: config.ColorKeyThreshold},
		Codec:         codec,
		Budget:        config.MaxStickerBytes,
	}
}

// GenerateAnimation runs the multi-frame flow: concept → frame prompts → one
// generated image per prompt → per-frame isolation → loop assembly. The
// requested frame count is clamped to the supported range before expansion.
func (p *Pipeline) GenerateAnimation(ctx context.Context, concept string, frameCount, fps int, outputPath string) (EncodedArtifact, error) {
	if frameCount < config.MinGeneratedFrames {
		frameCount = config.MinGeneratedFrames
	}
	if frameCount > config.MaxGeneratedFrames {
		frameCount = config.MaxGeneratedFrames
	}

	log.Printf("📝 Generating %d frame prompts for %q...", frameCount, concept)
	prompts, err := p.Expander.Expand(ctx, concept, frameCount)
	if err != nil {
		return EncodedArtifact{}, err
	}
	if len(prompts) != frameCount {
		return EncodedArtifact{}, &ContractViolationError{
			Service: "prompt expansion",
			Detail:  fmt.Sprintf("expected %d prompts, got %d", frameCount, len(prompts)),
		}
	}

	baseSeed := randomSeed()
	raws := make([]image.Image, 0, frameCount)
	for i, prompt := range prompts {
		log.Printf("🎨 Generating frame %d/%d (seed %d)...", i+1, frameCount, baseSeed+int64(i))
		img, err := p.Images.Generate(ctx, prompt, config.StickerSize, config.StickerSize, baseSeed+int64(i))
		if err != nil {
			return EncodedArtifact{}, err
		}
		raws = append(raws, img)
	}

	return p.AnimateFrames(ctx, raws, fps, outputPath)
}

// AnimateFrames normalizes and isolates an ordered frame set, then assembles
// the loop. Used by both the generated-frames flow and the video flow.
func (p *Pipeline) AnimateFrames(ctx context.Context, raws []image.Image, fps int, outputPath string) (EncodedArtifact, error) {
	frames := make([]*image.NRGBA, 0, len(raws))
	for i, raw := range raws {
		frame, err := NormalizeSticker(raw)
		if err != nil {
			return EncodedArtifact{}, err
		}
		log.Printf("🔧 Removing background from frame %d/%d...", i+1, len(raws))
		frame, err = p.FrameIsolator.Isolate(ctx, frame)
		if err != nil {
			return EncodedArtifact{}, err
		}
		frames = append(frames, frame)
	}

	return p.assemble(FrameSequence{Frames: frames, Rate: fps}, outputPath)
}

// AnimateStill runs the single-still flow: normalize, color-key the
// background once, then synthesize motion frames.
func (p *Pipeline) AnimateStill(ctx context.Context, still image.Image, kind MotionKind, outputPath string) (EncodedArtifact, error) {
	frame, err := NormalizeSticker(still)
	if err != nil {
		return EncodedArtifact{}, err
	}
	frame, err = p.StillIsolator.Isolate(ctx, frame)
	if err != nil {
		return EncodedArtifact{}, err
	}

	seq, err := Synthesize(frame, kind, config.MotionFrameCount)
	if err != nil {
		return EncodedArtifact{}, err
	}
	seq.Rate = config.MotionFPS

	return p.assemble(seq, outputPath)
}

// assemble is the shared tail of every flow: loop folding, size negotiation,
// tier resampling, and the budget-checked encode.
func (p *Pipeline) assemble(seq FrameSequence, outputPath string) (EncodedArtifact, error) {
	log.Printf("🎬 Building loop from %d frames at %d fps...", len(seq.Frames), seq.Rate)
	loop, err := BuildLoop(seq.Frames, seq.Rate)
	if err != nil {
		return EncodedArtifact{}, err
	}

	adjusted, tier, err := Negotiate(FrameSequence{Frames: loop.Frames, Rate: seq.Rate}, p.Budget)
	if err != nil {
		return EncodedArtifact{}, err
	}
	if tier.Name != "full" {
		log.Printf("📉 Size negotiation selected %q tier (%dpx, stride %d, quality %d)", tier.Name, tier.Size, tier.Stride, tier.Quality)
	}

	adjusted, err = NormalizeAll(adjusted, tier.Size)
	if err != nil {
		return EncodedArtifact{}, err
	}

	loop.Frames = adjusted.Frames
	loop.DurationMS = int(math.Round(1000 / float64(adjusted.Rate)))

	return EncodeSticker(p.Codec, loop, outputPath, tier.Quality, config.RetryQuality, p.Budget)
}

// randomSeed picks a base seed for style consistency across an animation's
// frames; frame i uses baseSeed+i.
func randomSeed() int64 {
	return rand.Int63n(99999) + 1
}
