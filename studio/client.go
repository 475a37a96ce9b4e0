package studio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GenerationResult describes a downloaded sticker artifact.
type GenerationResult struct {
	Path       string
	ByteSize   int64
	OverBudget bool
}

// StickerClient is a thin HTTP client for the sticker service API.
type StickerClient struct {
	baseURL string
	saveDir string
	client  *http.Client
}

// NewStickerClient creates a client that downloads artifacts into saveDir.
// Generation timeouts are generous: a full expansion flow makes several
// upstream model calls.
func NewStickerClient(baseURL, saveDir string) *StickerClient {
	return &StickerClient{
		baseURL: baseURL,
		saveDir: saveDir,
		client: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// Healthy probes the service health endpoint.
func (c *StickerClient) Healthy() bool {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GenerateSticker requests the single-still flow.
func (c *StickerClient) GenerateSticker(prompt, motion string) (*GenerationResult, error) {
	q := url.Values{}
	q.Set("prompt", prompt)
	q.Set("animation", motion)
	return c.download(c.baseURL + "/api/generate-sticker?" + q.Encode())
}

// GenerateAnimation requests the multi-frame expansion flow.
func (c *StickerClient) GenerateAnimation(concept string, frames int) (*GenerationResult, error) {
	q := url.Values{}
	q.Set("concept", concept)
	q.Set("frames", strconv.Itoa(frames))
	return c.download(c.baseURL + "/api/generate-animation?" + q.Encode())
}

// SubmitVideo queues the async text-to-video flow and returns the task ID.
func (c *StickerClient) SubmitVideo(prompt string, durationSec int) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"prompt":   prompt,
		"duration": durationSec,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.client.Post(c.baseURL+"/api/generate-video-animation", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var queued struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&queued); err != nil {
		return "", fmt.Errorf("failed to decode queue response: %w", err)
	}
	if queued.TaskID == "" {
		queued.TaskID = resp.Header.Get("X-Task-ID")
	}
	return queued.TaskID, nil
}

// TaskStatus reports the state of an async task, plus its error detail when
// the task failed.
func (c *StickerClient) TaskStatus(taskID string) (string, string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(c.baseURL + "/api/tasks/" + taskID)
	if err != nil {
		return "", "", fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var task struct {
		State string `json:"state"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return "", "", fmt.Errorf("failed to decode task status: %w", err)
	}
	return task.State, task.Error, nil
}

// DownloadTaskResult fetches the artifact of a finished task.
func (c *StickerClient) DownloadTaskResult(taskID string) (*GenerationResult, error) {
	return c.download(c.baseURL + "/api/tasks/" + taskID + "/result")
}

func (c *StickerClient) download(requestURL string) (*GenerationResult, error) {
	resp, err := c.client.Get(requestURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	if err := os.MkdirAll(c.saveDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save dir: %w", err)
	}

	ext := extensionFor(resp.Header.Get("Content-Type"))
	path := filepath.Join(c.saveDir, "studio_"+uuid.NewString()+ext)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to save artifact: %w", err)
	}

	return &GenerationResult{
		Path:       path,
		ByteSize:   n,
		OverBudget: resp.Header.Get("X-Sticker-Over-Budget") == "true",
	}, nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".webp"
	}
	switch mediaType {
	case "image/gif":
		return ".gif"
	default:
		return ".webp"
	}
}
