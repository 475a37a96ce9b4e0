package sticker

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"os"
)

// GIFCodec encodes the loop as an animated GIF with the standard library.
// It needs no external tooling, which also makes it the container used for
// in-process round-trip verification. Quality maps to palette size: GIF has
// no quantizer knob, so lower quality means fewer colors.
type GIFCodec struct{}

func (GIFCodec) Extension() string { return ".gif" }

func (GIFCodec) ContentType() string { return "image/gif" }

func (GIFCodec) Encode(loop LoopSpec, path string, quality int) error {
	pal := stickerPalette(quality)
	// GIF delays are in centiseconds; round to the nearest so rates that do
	// not divide 1000 evenly (67ms at 15fps) keep their timing.
	delay := (loop.DurationMS + 5) / 10

	out := &gif.GIF{
		LoopCount: loop.LoopCount,
		Config: image.Config{
			Width:  loop.Frames[0].Bounds().Dx(),
			Height: loop.Frames[0].Bounds().Dy(),
		},
	}

	for _, frame := range loop.Frames {
		out.Image = append(out.Image, palettize(frame, pal))
		out.Delay = append(out.Delay, delay)
		out.Disposal = append(out.Disposal, gif.DisposalBackground)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create gif: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, out); err != nil {
		return fmt.Errorf("gif encode failed: %w", err)
	}
	return nil
}

// stickerPalette builds a palette with index 0 reserved for full transparency.
func stickerPalette(quality int) color.Palette {
	pal := make(color.Palette, 0, 256)
	pal = append(pal, color.NRGBA{})

	if quality >= 75 {
		pal = append(pal, palette.WebSafe...)
		return pal
	}

	// Coarse 4x4x4 cube for aggressive size reduction.
	for r := 0; r < 4; r++ {
		for g := 0; g < 4; g++ {
			for b := 0; b < 4; b++ {
				pal = append(pal, color.NRGBA{
					R: uint8(r * 85),
					G: uint8(g * 85),
					B: uint8(b * 85),
					A: 255,
				})
			}
		}
	}
	return pal
}

// palettize converts an RGBA frame to an indexed frame, mapping mostly
// transparent pixels to the reserved transparent slot. GIF alpha is binary.
func palettize(frame *image.NRGBA, pal color.Palette) *image.Paletted {
	dst := image.NewPaletted(frame.Bounds(), pal)
	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := frame.NRGBAAt(x, y)
			if c.A < 128 {
				dst.SetColorIndex(x, y, 0)
				continue
			}
			c.A = 255
			dst.SetColorIndex(x, y, uint8(pal.Index(c)))
		}
	}
	return dst
}
