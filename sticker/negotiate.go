package sticker

import (
	"image"
	"math"

	"stickerbot/config"
)

// EncodingTier is a named compression policy: target square resolution, frame
// keep-stride, and encoder quality. Tiers are ordered by aggressiveness; a
// more aggressive tier never increases resolution or quality.
type EncodingTier struct {
	Name    string
	Size    int
	Stride  int
	Quality int
}

var (
	tierFull    = EncodingTier{Name: "full", Size: config.StickerSize, Stride: 1, Quality: config.DefaultQuality}
	tierLarge   = EncodingTier{Name: "large", Size: 384, Stride: 1, Quality: 80}
	tierMedium  = EncodingTier{Name: "medium", Size: 320, Stride: 1, Quality: 75}
	tierCompact = EncodingTier{Name: "compact", Size: 256, Stride: 2, Quality: 70}
	tierMinimum = EncodingTier{Name: "minimum", Size: 256, Stride: 3, Quality: 65}
)

// perFrameBytes is an empirical estimate of the encoded size of one
// full-resolution frame at default quality. It is a tuning starting point for
// one encoder's behavior, not a measured constant.
const perFrameBytes = 30 * 1024

// Negotiate pre-selects an encoding tier from a single upfront size estimate
// so the worst case stays at two encode passes: the estimate is
// frameCount x (width/512)^2 x perFrameBytes, and the ratio of estimate to
// budget picks the tier from monotonic, non-overlapping bands. Frames are
// decimated by the tier's stride with the playback rate reduced to match,
// floored at config.MinFPS. The caller resamples the kept frames to the tier
// resolution before encoding.
func Negotiate(seq FrameSequence, budgetBytes int64) (FrameSequence, EncodingTier, error) {
	if len(seq.Frames) == 0 {
		return FrameSequence{}, EncodingTier{}, &ConfigurationError{Param: "frames", Detail: "sequence is empty"}
	}
	if budgetBytes <= 0 {
		return FrameSequence{}, EncodingTier{}, &ConfigurationError{Param: "budget", Detail: "must be positive"}
	}

	width := seq.Frames[0].Bounds().Dx()
	scale := float64(width) / float64(config.StickerSize)
	estimate := float64(len(seq.Frames)) * scale * scale * perFrameBytes
	ratio := estimate / float64(budgetBytes)

	tier := selectTier(ratio)

	adjusted := seq
	if tier.Stride > 1 {
		adjusted.Frames = decimate(seq.Frames, tier.Stride)
		rate := seq.Rate / tier.Stride
		if rate < config.MinFPS {
			rate = config.MinFPS
		}
		adjusted.Rate = rate
	}

	return adjusted, tier, nil
}

func selectTier(ratio float64) EncodingTier {
	switch {
	case ratio <= 1:
		return tierFull
	case ratio <= 2:
		return tierLarge
	case ratio <= 4:
		return tierMedium
	case ratio <= 8:
		return tierCompact
	default:
		t := tierMinimum
		if stride := int(math.Ceil(ratio / 4)); stride > t.Stride {
			t.Stride = stride
		}
		return t
	}
}

func decimate(frames []*image.NRGBA, stride int) []*image.NRGBA {
	kept := make([]*image.NRGBA, 0, (len(frames)+stride-1)/stride)
	for i := 0; i < len(frames); i += stride {
		kept = append(kept, frames[i])
	}
	return kept
}
