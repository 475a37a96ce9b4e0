package kafka

import (
	"context"
	"fmt"
	"image"
	"os"
	"testing"

	"stickerbot/sticker"
)

type fakeExpander struct{}

func (fakeExpander) Expand(_ context.Context, _ string, n int) ([]string, error) {
	prompts := make([]string, n)
	for i := range prompts {
		prompts[i] = fmt.Sprintf("frame %d", i+1)
	}
	return prompts, nil
}

type fakeImages struct{}

func (fakeImages) Generate(_ context.Context, _ string, width, height int, _ int64) (image.Image, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 80
		img.Pix[i+1] = 80
		img.Pix[i+2] = 160
		img.Pix[i+3] = 255
	}
	return img, nil
}

func TestStickerJobValid(t *testing.T) {
	cases := []struct {
		name string
		job  StickerJob
		want bool
	}{
		{"animation job", StickerJob{Kind: JobKindAnimation, Concept: "cat"}, true},
		{"sticker job", StickerJob{Kind: JobKindSticker, Concept: "dog", Motion: "pulse"}, true},
		{"missing concept", StickerJob{Kind: JobKindAnimation}, false},
		{"blank concept", StickerJob{Kind: JobKindSticker, Concept: "   "}, false},
		{"unknown kind", StickerJob{Kind: "video", Concept: "cat"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.job.Valid(); got != c.want {
				t.Fatalf("Valid() = %v; want %v", got, c.want)
			}
		})
	}
}

func TestProcessorRunsAnimationJob(t *testing.T) {
	proc := &Processor{
		Pipeline: &sticker.Pipeline{
			Expander:      fakeExpander{},
			Images:        fakeImages{},
			FrameIsolator: &sticker.ColorKeyIsolator{Threshold: 240},
			StillIsolator: &sticker.ColorKeyIsolator{Threshold: 240},
			Codec:         sticker.GIFCodec{},
			Budget:        500 * 1024,
		},
		OutputDir: t.TempDir(),
	}

	job := &StickerJob{ID: "job-1", Kind: JobKindAnimation, Concept: "dancing robot", Frames: 3}
	if err := proc.Process(context.Background(), job); err != nil {
		t.Fatalf("Process error: %v", err)
	}

	// No uploader configured: the artifact stays local under the job ID.
	if _, err := os.Stat(proc.OutputDir + "/job-1.gif"); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestProcessorRejectsUnknownKind(t *testing.T) {
	proc := &Processor{
		Pipeline: &sticker.Pipeline{
			Codec:  sticker.GIFCodec{},
			Budget: 500 * 1024,
		},
		OutputDir: t.TempDir(),
	}

	job := &StickerJob{ID: "job-2", Kind: "hologram", Concept: "cat"}
	if err := proc.Process(context.Background(), job); err == nil {
		t.Fatal("expected error for unknown job kind")
	}
}
