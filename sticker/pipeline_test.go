package sticker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
)

type stubExpander struct {
	prompts []string
	err     error
	lastN   int
}

func (s *stubExpander) Expand(_ context.Context, _ string, n int) ([]string, error) {
	s.lastN = n
	if s.err != nil {
		return nil, s.err
	}
	return s.prompts, nil
}

type stubGenerator struct {
	calls int
	err   error
}

func (s *stubGenerator) Generate(_ context.Context, _ string, width, height int, _ int64) (image.Image, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 40
		img.Pix[i+1] = 90
		img.Pix[i+2] = 200
		img.Pix[i+3] = 255
	}
	return img, nil
}

func prompts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("frame %d of a dancing robot", i+1)
	}
	return out
}

func testPipeline(expander PromptExpander, images ImageGenerator) *Pipeline {
	return &Pipeline{
		Expander:      expander,
		Images:        images,
		FrameIsolator: &ColorKeyIsolator{Threshold: 240},
		StillIsolator: &ColorKeyIsolator{Threshold: 240},
		Codec:         GIFCodec{},
		Budget:        500 * 1024,
	}
}

func TestGenerateAnimationHappyPath(t *testing.T) {
	expander := &stubExpander{prompts: prompts(3)}
	generator := &stubGenerator{}
	p := testPipeline(expander, generator)
	path := filepath.Join(t.TempDir(), "robot.gif")

	artifact, err := p.GenerateAnimation(context.Background(), "dancing robot", 3, 4, path)
	if err != nil {
		t.Fatalf("GenerateAnimation error: %v", err)
	}
	if generator.calls != 3 {
		t.Fatalf("generator called %d times; want 3", generator.calls)
	}
	if artifact.Path != path {
		t.Fatalf("artifact path = %q; want %q", artifact.Path, path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	decoded, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	// 3 source frames fold into a 4-frame ping-pong loop.
	if len(decoded.Image) != 4 {
		t.Fatalf("encoded frame count = %d; want 4", len(decoded.Image))
	}
}

func TestGenerateAnimationClampsFrameCount(t *testing.T) {
	expander := &stubExpander{prompts: prompts(6)}
	p := testPipeline(expander, &stubGenerator{})
	path := filepath.Join(t.TempDir(), "clamped.gif")

	if _, err := p.GenerateAnimation(context.Background(), "rocket", 12, 4, path); err != nil {
		t.Fatalf("GenerateAnimation error: %v", err)
	}
	if expander.lastN != 6 {
		t.Fatalf("expander asked for %d prompts; want 6 (clamped)", expander.lastN)
	}
}

func TestGenerateAnimationRejectsShortExpansion(t *testing.T) {
	// The expander answers with 4 prompts when 5 were requested: the request
	// fails with a contract violation and no partial artifact is written.
	expander := &stubExpander{prompts: prompts(4)}
	generator := &stubGenerator{}
	p := testPipeline(expander, generator)
	path := filepath.Join(t.TempDir(), "short.gif")

	_, err := p.GenerateAnimation(context.Background(), "cat", 5, 4, path)
	var contractErr *ContractViolationError
	if !errors.As(err, &contractErr) {
		t.Fatalf("got %v; want ContractViolationError", err)
	}
	if generator.calls != 0 {
		t.Fatalf("generator called %d times after failed expansion; want 0", generator.calls)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("partial artifact written after failed expansion")
	}
}

func TestGenerateAnimationPropagatesGeneratorFailure(t *testing.T) {
	expander := &stubExpander{prompts: prompts(3)}
	generator := &stubGenerator{err: &UpstreamServiceError{Service: "image generation", Err: errors.New("503")}}
	p := testPipeline(expander, generator)
	path := filepath.Join(t.TempDir(), "fail.gif")

	_, err := p.GenerateAnimation(context.Background(), "dog", 3, 4, path)
	var upstreamErr *UpstreamServiceError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("got %v; want UpstreamServiceError", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("partial artifact written after failed generation")
	}
}

func TestAnimateStill(t *testing.T) {
	still := image.NewNRGBA(image.Rect(0, 0, 512, 512))
	for y := 200; y < 312; y++ {
		for x := 200; x < 312; x++ {
			still.SetNRGBA(x, y, color.NRGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}

	p := testPipeline(nil, nil)
	path := filepath.Join(t.TempDir(), "pulse.gif")

	artifact, err := p.AnimateStill(context.Background(), still, MotionPulse, path)
	if err != nil {
		t.Fatalf("AnimateStill error: %v", err)
	}
	if artifact.ByteSize == 0 {
		t.Fatal("artifact has zero size")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	decoded, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	// 20 motion frames fold into a 38-frame loop; size negotiation may
	// decimate, so only a lower bound is asserted.
	if len(decoded.Image) < 2 {
		t.Fatalf("encoded frame count = %d; want at least 2", len(decoded.Image))
	}
	if decoded.LoopCount != 0 {
		t.Fatalf("loop count = %d; want 0", decoded.LoopCount)
	}
}

func TestAnimateStillRejectsUnknownMotion(t *testing.T) {
	still := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	p := testPipeline(nil, nil)
	path := filepath.Join(t.TempDir(), "bad.gif")

	_, err := p.AnimateStill(context.Background(), still, MotionKind("zoom"), path)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v; want ConfigurationError", err)
	}
}
