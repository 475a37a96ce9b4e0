// Package sticker assembles ordered raster frames into a messaging-app
// compliant animated sticker: background isolation, geometric normalization,
// loop construction, and a two-stage size/quality negotiation against a hard
// byte budget.
package sticker

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"stickerbot/config"
)

// FrameSequence is an ordered list of frames plus a nominal playback rate in
// frames per second. All frames share identical dimensions and pixel format.
type FrameSequence struct {
	Frames []*image.NRGBA
	Rate   int
}

// Normalize resamples img to a targetSize x targetSize RGBA frame using
// Catmull-Rom filtering. It is a pure transform.
func Normalize(img image.Image, targetSize int) (*image.NRGBA, error) {
	if targetSize <= 0 {
		return nil, &ConfigurationError{Param: "target size", Detail: "must be positive"}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetSize, targetSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// NormalizeAll resamples every frame in seq to targetSize, returning a new
// sequence with the same rate. Frames already at targetSize are reused as-is.
func NormalizeAll(seq FrameSequence, targetSize int) (FrameSequence, error) {
	out := FrameSequence{Frames: make([]*image.NRGBA, 0, len(seq.Frames)), Rate: seq.Rate}
	for _, f := range seq.Frames {
		if f.Bounds().Dx() == targetSize && f.Bounds().Dy() == targetSize {
			out.Frames = append(out.Frames, f)
			continue
		}
		n, err := Normalize(f, targetSize)
		if err != nil {
			return FrameSequence{}, err
		}
		out.Frames = append(out.Frames, n)
	}
	return out, nil
}

// NormalizeSticker resamples img to the canonical sticker resolution.
func NormalizeSticker(img image.Image) (*image.NRGBA, error) {
	return Normalize(img, config.StickerSize)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	dst := image.NewNRGBA(img.Bounds())
	xdraw.Copy(dst, img.Bounds().Min, img, img.Bounds(), xdraw.Src, nil)
	return dst
}
