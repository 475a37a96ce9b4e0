package genai

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"stickerbot/sticker"
)

const defaultPollinationsBase = "https://image.pollinations.ai"

// promptSuffix nudges the free image backend toward usable sticker frames.
const promptSuffix = ", high quality illustration, clean artwork, professional sticker design, centered subject, full body visible, no cropping"

// PollinationsImages generates frames through the free Pollinations image
// API. No key is required; the endpoint is a GET with the prompt in the path.
type PollinationsImages struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewPollinationsImages reads POLLINATIONS_URL (optional override, used in
// tests) and IMAGE_MODEL from the environment.
func NewPollinationsImages() *PollinationsImages {
	base := os.Getenv("POLLINATIONS_URL")
	if base == "" {
		base = defaultPollinationsBase
	}
	model := os.Getenv("IMAGE_MODEL")
	if model == "" {
		model = "flux"
	}
	return &PollinationsImages{
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *PollinationsImages) Generate(ctx context.Context, prompt string, width, height int, seed int64) (image.Image, error) {
	q := url.Values{}
	q.Set("width", fmt.Sprint(width))
	q.Set("height", fmt.Sprint(height))
	q.Set("seed", fmt.Sprint(seed))
	q.Set("model", p.model)
	q.Set("enhance", "true")
	q.Set("nologo", "true")

	endpoint := fmt.Sprintf("%s/prompt/%s?%s", p.baseURL, url.PathEscape(prompt+promptSuffix), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &sticker.UpstreamServiceError{Service: "image generation", Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &sticker.UpstreamServiceError{Service: "image generation", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &sticker.UpstreamServiceError{
			Service: "image generation",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, &sticker.UpstreamServiceError{Service: "image generation", Err: fmt.Errorf("decode image: %w", err)}
	}
	return img, nil
}
