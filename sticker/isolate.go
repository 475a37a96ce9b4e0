package sticker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"

	"stickerbot/config"
)

// Isolator separates the subject of a frame from its background, producing a
// frame whose background pixels are fully transparent. Implementations must
// be consistent across the frames of one animation; mixing strategies inside
// a loop produces visibly broken transparency.
type Isolator interface {
	Isolate(ctx context.Context, frame *image.NRGBA) (*image.NRGBA, error)
}

// NewDefaultIsolator returns the remote isolation service when configured via
// REMBG_URL, falling back to the local color-key strategy otherwise.
func NewDefaultIsolator() Isolator {
	if url := os.Getenv("REMBG_URL"); url != "" {
		return NewRemoteIsolator(url)
	}
	return &ColorKeyIsolator{Threshold: config.ColorKeyThreshold}
}

// ColorKeyIsolator makes near-white pixels fully transparent: any pixel whose
// R, G and B all exceed Threshold is cleared. Deterministic and local, meant
// for single-still pipelines that isolate once before synthetic motion
// duplicates the frame.
type ColorKeyIsolator struct {
	Threshold uint8
}

func (c *ColorKeyIsolator) Isolate(_ context.Context, frame *image.NRGBA) (*image.NRGBA, error) {
	out := image.NewNRGBA(frame.Bounds())
	copy(out.Pix, frame.Pix)

	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
		if r > c.Threshold && g > c.Threshold && b > c.Threshold {
			out.Pix[i+3] = 0
		}
	}
	return out, nil
}

// RemoteIsolator delegates subject isolation to an external background-removal
// service: PNG in, PNG with alpha out. Any transport or decode failure is an
// upstream error; the pipeline aborts rather than substituting a degraded
// frame.
type RemoteIsolator struct {
	endpoint string
	client   *http.Client
}

// NewRemoteIsolator creates a client for a rembg-style HTTP removal endpoint.
func NewRemoteIsolator(endpoint string) *RemoteIsolator {
	return &RemoteIsolator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (r *RemoteIsolator) Isolate(ctx context.Context, frame *image.NRGBA) (*image.NRGBA, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, &UpstreamServiceError{Service: "isolation", Err: fmt.Errorf("encode request frame: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &buf)
	if err != nil {
		return nil, &UpstreamServiceError{Service: "isolation", Err: err}
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "image/png")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &UpstreamServiceError{Service: "isolation", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamServiceError{
			Service: "isolation",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		return nil, &UpstreamServiceError{Service: "isolation", Err: fmt.Errorf("decode response: %w", err)}
	}
	return toNRGBA(img), nil
}
