package sticker

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ExtractVideoFrames samples a downloaded video at the given frame rate and
// returns the decoded frames in playback order. Frames are staged as PNG
// files in a per-call temp directory; cleanup is best-effort.
func ExtractVideoFrames(videoPath string, fps int) ([]*image.NRGBA, error) {
	if fps <= 0 {
		return nil, &ConfigurationError{Param: "fps", Detail: "must be positive"}
	}

	tmpDir, err := os.MkdirTemp("", "sticker_extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create extract dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	err = ffmpeg.Input(videoPath).
		Output(filepath.Join(tmpDir, "frame_%04d.png"), ffmpeg.KwArgs{
			"vf": fmt.Sprintf("fps=%d", fps),
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction failed: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(tmpDir, "frame_*.png"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, &UpstreamServiceError{Service: "video", Err: fmt.Errorf("no frames extracted from %s", videoPath)}
	}

	frames := make([]*image.NRGBA, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode extracted frame %s: %w", p, err)
		}
		frames = append(frames, toNRGBA(img))
	}
	return frames, nil
}
