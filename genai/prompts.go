package genai

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"stickerbot/sticker"
)

const framePromptPreamble = `You are an expert animation prompt generator for AI image generation. Given a concept, generate highly detailed sequential frame descriptions for a short animation or transformation.

Rules:
- Output ONLY the prompts, one per line, numbered
- Each prompt must be VERY DETAILED (50-100 words) describing exact pose, expression, colors, lighting, effects, and the stage of the transformation
- Keep CONSISTENT elements across all frames: same character design, same art style, same colors
- Always end every prompt with: "kawaii chibi style, cute cartoon sticker, bold black outlines, cel-shaded, vibrant colors, simple clean design, centered composition, solid white background, no text"
- Show clear progression between frames
- If it's a character, keep the character design IDENTICAL across frames, only change pose/expression/effects`

// CoherePrompts expands a sticker concept into per-frame image prompts using
// the Cohere Chat API.
type CoherePrompts struct {
	client *cohereclient.Client
	model  string
}

// NewCoherePrompts reads COHERE_API_KEY and COHERE_CHAT_MODEL from the
// environment. Returns an error rather than a half-configured client when the
// key is missing.
func NewCoherePrompts() (*CoherePrompts, error) {
	key := os.Getenv("COHERE_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("COHERE_API_KEY is not set")
	}
	model := os.Getenv("COHERE_CHAT_MODEL")
	if model == "" {
		model = "command-r-08-2024"
	}

	// Force HTTP/1.1 to avoid HTTP/2 protocol errors against the Cohere edge.
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(key),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CoherePrompts{client: client, model: model}, nil
}

func (c *CoherePrompts) Expand(ctx context.Context, concept string, n int) ([]string, error) {
	preamble := framePromptPreamble
	temperature := 0.7

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     fmt.Sprintf("Generate %d highly detailed frame prompts for: %s", n, concept),
		Model:       &c.model,
		Preamble:    &preamble,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, &sticker.UpstreamServiceError{Service: "prompt expansion", Err: err}
	}
	if resp == nil || resp.Text == "" {
		return nil, &sticker.UpstreamServiceError{Service: "prompt expansion", Err: fmt.Errorf("empty chat response")}
	}

	prompts := ParseNumberedPrompts(resp.Text)
	if len(prompts) != n {
		return nil, &sticker.ContractViolationError{
			Service: "prompt expansion",
			Detail:  fmt.Sprintf("asked for %d prompts, parsed %d", n, len(prompts)),
		}
	}
	return prompts, nil
}

// ParseNumberedPrompts extracts one prompt per non-empty line, stripping a
// leading "1." / "1)" style ordinal when present. Lines without an ordinal are
// kept verbatim so plain-list model output still parses.
func ParseNumberedPrompts(text string) []string {
	var prompts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		prompts = append(prompts, stripOrdinal(line))
	}
	return prompts
}

func stripOrdinal(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return line
	}
	if line[i] != '.' && line[i] != ')' {
		return line
	}
	return strings.TrimSpace(line[i+1:])
}
