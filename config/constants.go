package config

import "time"

// Sticker Output Constants
const (
	// StickerSize is the canonical square canvas resolution in pixels
	StickerSize = 512

	// MaxStickerBytes is the hard byte ceiling imposed by the messaging platform (500 KiB)
	MaxStickerBytes = 500 * 1024

	// DefaultQuality is the encoder quality used on the first pass
	DefaultQuality = 85

	// RetryQuality is the encoder quality used for the single corrective re-encode
	RetryQuality = 60

	// LoopForever is the loop-count sentinel for an infinitely repeating animation
	LoopForever = 0
)

// Animation Constants
const (
	// DefaultFPS is the playback rate for generated-frame animations
	DefaultFPS = 4

	// MinFPS is the rate floor enforced during frame decimation
	MinFPS = 4

	// MotionFPS is the playback rate for synthetic-motion animations
	MotionFPS = 15

	// MotionFrameCount is the number of frames synthesized from a single still
	MotionFrameCount = 20

	// MinGeneratedFrames and MaxGeneratedFrames clamp the caller-requested frame count
	MinGeneratedFrames = 2
	MaxGeneratedFrames = 6
)

// Isolation Constants
const (
	// ColorKeyThreshold is the brightness above which a pixel counts as background
	ColorKeyThreshold = 240
)

// Video Generation Constants
const (
	// VideoPollAttempts bounds the number of status polls for a remote video job
	VideoPollAttempts = 120

	// VideoPollDelay is the fixed wait between status polls
	VideoPollDelay = 5 * time.Second

	// VideoWidth and VideoHeight are the dimensions requested from the video backend
	VideoWidth  = 640
	VideoHeight = 640

	// VideoSourceFPS is the frame rate the video backend renders at
	VideoSourceFPS = 24

	// VideoExtractFPS is the rate frames are sampled from the downloaded video
	VideoExtractFPS = 10

	// MaxVideoDuration caps the requested clip length in seconds
	MaxVideoDuration = 10
)

// Directory Constants
const (
	// OutputDir is the directory for finished sticker artifacts
	OutputDir = "output"
)
