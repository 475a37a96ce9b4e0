package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"stickerbot/config"
	"stickerbot/sticker"
)

const defaultRunwareBase = "https://api.runware.ai/v1"

// VideoJobStatus is the lifecycle of a submitted video generation task.
type VideoJobStatus string

const (
	VideoJobPending   VideoJobStatus = "pending"
	VideoJobSucceeded VideoJobStatus = "success"
	VideoJobFailed    VideoJobStatus = "error"
)

// VideoGenerator submits text-to-video jobs and polls for their result URL.
type VideoGenerator interface {
	Submit(ctx context.Context, prompt string, durationSec int) (string, error)
	Poll(ctx context.Context, taskID string) (VideoJobStatus, string, error)
}

// RunwareVideo drives the Runware task API over REST: every call is a POST of
// a one-element task array, and results are fetched with getResponse tasks
// keyed by the submitted task UUID.
type RunwareVideo struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewRunwareVideo reads RUNWARE_API_KEY (required), RUNWARE_URL and
// VIDEO_MODEL from the environment.
func NewRunwareVideo() (*RunwareVideo, error) {
	key := os.Getenv("RUNWARE_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("RUNWARE_API_KEY is not set")
	}
	base := os.Getenv("RUNWARE_URL")
	if base == "" {
		base = defaultRunwareBase
	}
	model := os.Getenv("VIDEO_MODEL")
	if model == "" {
		model = "bytedance:2@2"
	}
	return &RunwareVideo{
		baseURL: base,
		apiKey:  key,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type runwareTaskResult struct {
	TaskType string `json:"taskType"`
	TaskUUID string `json:"taskUUID"`
	Status   string `json:"status"`
	VideoURL string `json:"videoURL"`
}

type runwareResponse struct {
	Data   []runwareTaskResult `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (r *RunwareVideo) Submit(ctx context.Context, prompt string, durationSec int) (string, error) {
	if durationSec <= 0 || durationSec > config.MaxVideoDuration {
		return "", &sticker.ConfigurationError{
			Param:  "duration",
			Detail: fmt.Sprintf("must be 1-%d seconds, got %d", config.MaxVideoDuration, durationSec),
		}
	}

	taskID := uuid.NewString()
	task := map[string]any{
		"taskType":       "videoInference",
		"taskUUID":       taskID,
		"positivePrompt": prompt,
		"model":          r.model,
		"duration":       durationSec,
		"width":          config.VideoWidth,
		"height":         config.VideoHeight,
		"fps":            config.VideoSourceFPS,
		"deliveryMethod": "async",
	}

	if _, err := r.post(ctx, task); err != nil {
		return "", err
	}
	return taskID, nil
}

func (r *RunwareVideo) Poll(ctx context.Context, taskID string) (VideoJobStatus, string, error) {
	resp, err := r.post(ctx, map[string]any{
		"taskType": "getResponse",
		"taskUUID": taskID,
	})
	if err != nil {
		return VideoJobFailed, "", err
	}

	for _, result := range resp.Data {
		if result.TaskUUID != taskID {
			continue
		}
		switch {
		case result.Status == string(VideoJobFailed):
			return VideoJobFailed, "", &sticker.UpstreamServiceError{
				Service: "video generation",
				Err:     fmt.Errorf("task %s failed", taskID),
			}
		case result.VideoURL != "":
			return VideoJobSucceeded, result.VideoURL, nil
		}
	}
	return VideoJobPending, "", nil
}

// AwaitVideo polls a submitted task until it produces a download URL, the
// attempt budget runs out, or ctx is cancelled.
func AwaitVideo(ctx context.Context, gen VideoGenerator, taskID string) (string, error) {
	for attempt := 1; attempt <= config.VideoPollAttempts; attempt++ {
		status, videoURL, err := gen.Poll(ctx, taskID)
		if err != nil {
			return "", err
		}
		if status == VideoJobSucceeded {
			return videoURL, nil
		}

		select {
		case <-ctx.Done():
			return "", &sticker.UpstreamServiceError{Service: "video generation", Err: ctx.Err()}
		case <-time.After(config.VideoPollDelay):
		}
	}
	return "", &sticker.UpstreamServiceError{
		Service: "video generation",
		Err:     fmt.Errorf("timed out after %d polls", config.VideoPollAttempts),
	}
}

// DownloadVideo fetches a finished video to destPath.
func DownloadVideo(ctx context.Context, videoURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return &sticker.UpstreamServiceError{Service: "video download", Err: err}
	}

	client := &http.Client{Timeout: 600 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return &sticker.UpstreamServiceError{Service: "video download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &sticker.UpstreamServiceError{
			Service: "video download",
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create video file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write video file: %w", err)
	}
	return nil
}

func (r *RunwareVideo) post(ctx context.Context, task map[string]any) (*runwareResponse, error) {
	body, err := json.Marshal([]map[string]any{task})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &sticker.UpstreamServiceError{Service: "video generation", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &sticker.UpstreamServiceError{Service: "video generation", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &sticker.UpstreamServiceError{
			Service: "video generation",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(raw)),
		}
	}

	var parsed runwareResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &sticker.UpstreamServiceError{Service: "video generation", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Errors) > 0 {
		return nil, &sticker.UpstreamServiceError{
			Service: "video generation",
			Err:     fmt.Errorf("api error: %s", parsed.Errors[0].Message),
		}
	}
	return &parsed, nil
}
