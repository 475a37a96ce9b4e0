package sticker

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// MotionKind selects the parametric transform applied when synthesizing an
// animation from a single still frame.
type MotionKind string

const (
	MotionFloat  MotionKind = "float"
	MotionBounce MotionKind = "bounce"
	MotionPulse  MotionKind = "pulse"
	MotionWiggle MotionKind = "wiggle"
	MotionStatic MotionKind = "static"
)

// ParseMotionKind validates a caller-supplied motion name. Unknown names fail.
func ParseMotionKind(s string) (MotionKind, error) {
	switch MotionKind(s) {
	case MotionFloat, MotionBounce, MotionPulse, MotionWiggle, MotionStatic:
		return MotionKind(s), nil
	}
	return "", &ConfigurationError{Param: "animation", Detail: "unknown kind " + s}
}

// Synthesize derives frameCount frames from a single source frame by applying
// the motion transform over a normalized time axis t = i/frameCount. Every
// output frame has the same canvas size as the source regardless of the
// internal scaling or rotation of a particular kind.
func Synthesize(src *image.NRGBA, kind MotionKind, frameCount int) (FrameSequence, error) {
	if frameCount <= 0 {
		return FrameSequence{}, &ConfigurationError{Param: "frame count", Detail: "must be positive"}
	}
	if _, err := ParseMotionKind(string(kind)); err != nil {
		return FrameSequence{}, err
	}

	size := src.Bounds().Dx()
	frames := make([]*image.NRGBA, 0, frameCount)

	for i := 0; i < frameCount; i++ {
		t := float64(i) / float64(frameCount)
		canvas := image.NewNRGBA(image.Rect(0, 0, size, size))

		switch kind {
		case MotionFloat:
			offsetY := int(math.Round(15 * math.Sin(t*2*math.Pi)))
			pasteCentered(canvas, src, 0, offsetY)

		case MotionBounce:
			offsetY := int(math.Round(25 * math.Abs(math.Sin(t*2*math.Pi))))
			pasteCentered(canvas, src, 0, -offsetY)

		case MotionPulse:
			scale := 0.9 + 0.1*math.Sin(t*2*math.Pi)
			scaledSize := int(float64(size) * scale)
			scaled := image.NewNRGBA(image.Rect(0, 0, scaledSize, scaledSize))
			xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)
			pasteCentered(canvas, scaled, 0, 0)

		case MotionWiggle:
			angle := 8 * math.Sin(t*2*math.Pi) * math.Pi / 180
			rotateAboutCenter(canvas, src, angle)

		case MotionStatic:
			pasteCentered(canvas, src, 0, 0)
		}

		frames = append(frames, canvas)
	}

	return FrameSequence{Frames: frames}, nil
}

// pasteCentered alpha-composites src onto the center of canvas, shifted by
// (dx, dy).
func pasteCentered(canvas, src *image.NRGBA, dx, dy int) {
	cw, ch := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	origin := image.Pt((cw-sw)/2+dx, (ch-sh)/2+dy)
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(sw, sh))}
	draw.Draw(canvas, rect, src, src.Bounds().Min, draw.Over)
}

// rotateAboutCenter composites src rotated by angle radians about its center
// onto canvas without expanding the canvas; corners that rotate out are
// clipped, matching the fixed-canvas invariant.
func rotateAboutCenter(canvas, src *image.NRGBA, angle float64) {
	cx := float64(src.Bounds().Dx()) / 2
	cy := float64(src.Bounds().Dy()) / 2
	sin, cos := math.Sincos(angle)

	// Maps src coords to canvas coords: translate to origin, rotate, translate back.
	m := f64.Aff3{
		cos, -sin, cx - cx*cos + cy*sin,
		sin, cos, cy - cx*sin - cy*cos,
	}
	xdraw.BiLinear.Transform(canvas, m, src, src.Bounds(), xdraw.Over, nil)
}
