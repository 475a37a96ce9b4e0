package sticker

import (
	"image"
	"math"

	"stickerbot/config"
)

// LoopSpec is a closed animation loop: the frame order to encode, a uniform
// per-frame duration in milliseconds, and a loop count (0 = forever).
type LoopSpec struct {
	Frames     []*image.NRGBA
	DurationMS int
	LoopCount  int
}

// BuildLoop folds an ordered frame sequence into a smooth ping-pong loop.
// For n >= 3 frames the result is frames[0..n-1] + reverse(frames[1..n-2]),
// which plays there-and-back without holding the first or last frame twice.
// Shorter sequences are used as-is; ping-pong folding needs an interior frame.
func BuildLoop(frames []*image.NRGBA, targetRate int) (LoopSpec, error) {
	if len(frames) == 0 {
		return LoopSpec{}, &ConfigurationError{Param: "frames", Detail: "sequence is empty"}
	}
	if targetRate <= 0 {
		return LoopSpec{}, &ConfigurationError{Param: "rate", Detail: "must be positive"}
	}

	looped := make([]*image.NRGBA, 0, 2*len(frames)-2)
	looped = append(looped, frames...)
	if len(frames) >= 3 {
		for i := len(frames) - 2; i >= 1; i-- {
			looped = append(looped, frames[i])
		}
	}

	return LoopSpec{
		Frames:     looped,
		DurationMS: int(math.Round(1000 / float64(targetRate))),
		LoopCount:  config.LoopForever,
	}, nil
}
