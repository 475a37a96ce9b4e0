package sticker

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// WebPCodec muxes frames into an animated WebP through ffmpeg's libwebp_anim
// encoder. Frames are staged as PNG files in a per-call temp directory;
// cleanup is best-effort.
type WebPCodec struct{}

func (WebPCodec) Extension() string { return ".webp" }

func (WebPCodec) ContentType() string { return "image/webp" }

func (WebPCodec) Encode(loop LoopSpec, path string, quality int) error {
	tmpDir, err := os.MkdirTemp("", "sticker_frames_")
	if err != nil {
		return fmt.Errorf("failed to create frame dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for i, frame := range loop.Frames {
		framePath := filepath.Join(tmpDir, fmt.Sprintf("frame_%04d.png", i))
		if err := writePNG(framePath, frame); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
	}

	framerate := fmt.Sprintf("%g", 1000/float64(loop.DurationMS))

	err = ffmpeg.Input(filepath.Join(tmpDir, "frame_%04d.png"), ffmpeg.KwArgs{
		"framerate": framerate,
	}).Output(path, ffmpeg.KwArgs{
		"c:v":               "libwebp_anim",
		"lossless":          "0",
		"quality":           strconv.Itoa(quality),
		"compression_level": "6",
		"loop":              strconv.Itoa(loop.LoopCount),
		"pix_fmt":           "yuva420p",
		"an":                "",
	}).OverWriteOutput().Run()

	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

func writePNG(path string, frame *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, frame)
}
