package sticker

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func makeStill(size int) *image.NRGBA {
	f := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := size / 4; y < 3*size/4; y++ {
		for x := size / 4; x < 3*size/4; x++ {
			f.SetNRGBA(x, y, color.NRGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	return f
}

func TestSynthesizeCanvasInvariance(t *testing.T) {
	kinds := []MotionKind{MotionFloat, MotionBounce, MotionPulse, MotionWiggle, MotionStatic}
	src := makeStill(64)

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			seq, err := Synthesize(src, kind, 10)
			if err != nil {
				t.Fatalf("Synthesize error: %v", err)
			}
			if len(seq.Frames) != 10 {
				t.Fatalf("got %d frames; want 10", len(seq.Frames))
			}
			for i, f := range seq.Frames {
				if f.Bounds().Dx() != 64 || f.Bounds().Dy() != 64 {
					t.Fatalf("frame %d is %dx%d; want 64x64", i, f.Bounds().Dx(), f.Bounds().Dy())
				}
			}
		})
	}
}

func TestSynthesizePulseAtStickerSize(t *testing.T) {
	src := makeStill(512)
	seq, err := Synthesize(src, MotionPulse, 20)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if len(seq.Frames) != 20 {
		t.Fatalf("got %d frames; want 20", len(seq.Frames))
	}
	for i, f := range seq.Frames {
		if f.Bounds().Dx() != 512 || f.Bounds().Dy() != 512 {
			t.Fatalf("frame %d is %dx%d; want 512x512", i, f.Bounds().Dx(), f.Bounds().Dy())
		}
	}
}

func TestSynthesizeStaticFramesIdentical(t *testing.T) {
	src := makeStill(32)
	seq, err := Synthesize(src, MotionStatic, 5)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	first := seq.Frames[0].Pix
	for i, f := range seq.Frames[1:] {
		for j := range first {
			if f.Pix[j] != first[j] {
				t.Fatalf("static frame %d differs from frame 0 at byte %d", i+1, j)
			}
		}
	}
}

func TestSynthesizeUnknownKind(t *testing.T) {
	_, err := Synthesize(makeStill(32), MotionKind("spin"), 5)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v; want ConfigurationError", err)
	}
}

func TestParseMotionKind(t *testing.T) {
	for _, valid := range []string{"float", "bounce", "pulse", "wiggle", "static"} {
		if _, err := ParseMotionKind(valid); err != nil {
			t.Fatalf("ParseMotionKind(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseMotionKind("shake"); err == nil {
		t.Fatal("expected error for unknown motion kind")
	}
}
