package sticker

import (
	"testing"

	"stickerbot/config"
)

// framesForRatio builds a 512px frame set whose size estimate is
// ratio x budget. With perFrameBytes=30KiB and a 500KiB budget, one frame is
// 0.06 of the budget.
func framesForRatio(ratio float64) FrameSequence {
	n := int(ratio * float64(config.MaxStickerBytes) / perFrameBytes)
	return FrameSequence{Frames: makeFrames(n, config.StickerSize), Rate: 10}
}

func TestNegotiateTierBands(t *testing.T) {
	cases := []struct {
		name       string
		ratio      float64
		wantTier   string
		wantStride int
	}{
		{"under budget", 0.5, "full", 1},
		{"slightly over", 1.5, "large", 1},
		{"three times budget", 3, "medium", 1},
		{"six times budget", 6, "compact", 2},
		{"ten times budget", 10, "minimum", 3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			seq := framesForRatio(c.ratio)
			adjusted, tier, err := Negotiate(seq, config.MaxStickerBytes)
			if err != nil {
				t.Fatalf("Negotiate error: %v", err)
			}
			if tier.Name != c.wantTier {
				t.Fatalf("got tier %q; want %q", tier.Name, c.wantTier)
			}
			if tier.Stride != c.wantStride {
				t.Fatalf("got stride %d; want %d", tier.Stride, c.wantStride)
			}
			if c.wantStride == 1 {
				if len(adjusted.Frames) != len(seq.Frames) {
					t.Fatalf("frames decimated at stride 1: %d -> %d", len(seq.Frames), len(adjusted.Frames))
				}
				if adjusted.Rate != seq.Rate {
					t.Fatalf("rate changed at stride 1: %d -> %d", seq.Rate, adjusted.Rate)
				}
			} else {
				want := (len(seq.Frames) + c.wantStride - 1) / c.wantStride
				if len(adjusted.Frames) != want {
					t.Fatalf("got %d frames after stride %d; want %d", len(adjusted.Frames), c.wantStride, want)
				}
			}
		})
	}
}

func TestNegotiateMonotonic(t *testing.T) {
	ratios := []float64{0.3, 0.9, 1.2, 1.9, 2.5, 3.9, 4.5, 7.9, 9, 12, 20}

	prevSize := config.StickerSize + 1
	prevStride := 0
	prevQuality := 101
	for _, r := range ratios {
		_, tier, err := Negotiate(framesForRatio(r), config.MaxStickerBytes)
		if err != nil {
			t.Fatalf("Negotiate(ratio %.1f) error: %v", r, err)
		}
		if tier.Size > prevSize {
			t.Fatalf("ratio %.1f increased resolution: %d > %d", r, tier.Size, prevSize)
		}
		if tier.Stride < prevStride {
			t.Fatalf("ratio %.1f decreased stride: %d < %d", r, tier.Stride, prevStride)
		}
		if tier.Quality > prevQuality {
			t.Fatalf("ratio %.1f increased quality: %d > %d", r, tier.Quality, prevQuality)
		}
		prevSize, prevStride, prevQuality = tier.Size, tier.Stride, tier.Quality
	}
}

func TestNegotiateRateFloor(t *testing.T) {
	seq := framesForRatio(10)
	seq.Rate = 6
	adjusted, tier, err := Negotiate(seq, config.MaxStickerBytes)
	if err != nil {
		t.Fatalf("Negotiate error: %v", err)
	}
	if tier.Stride < 3 {
		t.Fatalf("got stride %d for 10x budget; want >= 3", tier.Stride)
	}
	if adjusted.Rate != config.MinFPS {
		t.Fatalf("got rate %d; want floor %d", adjusted.Rate, config.MinFPS)
	}
}

func TestNegotiateRejectsBadInput(t *testing.T) {
	if _, _, err := Negotiate(FrameSequence{}, config.MaxStickerBytes); err == nil {
		t.Fatal("expected error for empty sequence")
	}
	if _, _, err := Negotiate(framesForRatio(1), 0); err == nil {
		t.Fatal("expected error for non-positive budget")
	}
}
