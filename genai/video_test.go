package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stickerbot/sticker"
)

type scriptedVideoGen struct {
	statuses []VideoJobStatus
	url      string
	err      error
	polls    int
}

func (s *scriptedVideoGen) Submit(context.Context, string, int) (string, error) {
	return "task-1", nil
}

func (s *scriptedVideoGen) Poll(context.Context, string) (VideoJobStatus, string, error) {
	if s.err != nil {
		return VideoJobFailed, "", s.err
	}
	status := s.statuses[s.polls]
	s.polls++
	if status == VideoJobSucceeded {
		return status, s.url, nil
	}
	return status, "", nil
}

func TestAwaitVideoImmediateSuccess(t *testing.T) {
	gen := &scriptedVideoGen{
		statuses: []VideoJobStatus{VideoJobSucceeded},
		url:      "https://cdn.example/video.mp4",
	}
	got, err := AwaitVideo(context.Background(), gen, "task-1")
	if err != nil {
		t.Fatalf("AwaitVideo error: %v", err)
	}
	if got != gen.url {
		t.Fatalf("url = %q; want %q", got, gen.url)
	}
	if gen.polls != 1 {
		t.Fatalf("polls = %d; want 1", gen.polls)
	}
}

func TestAwaitVideoPropagatesFailure(t *testing.T) {
	gen := &scriptedVideoGen{
		err: &sticker.UpstreamServiceError{Service: "video generation", Err: errors.New("task failed")},
	}
	_, err := AwaitVideo(context.Background(), gen, "task-1")
	var upstreamErr *sticker.UpstreamServiceError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("got %v; want UpstreamServiceError", err)
	}
}

func TestAwaitVideoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedVideoGen{statuses: []VideoJobStatus{VideoJobPending}}
	_, err := AwaitVideo(ctx, gen, "task-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v; want wrapped context.Canceled", err)
	}
}

func TestRunwareSubmitAndPoll(t *testing.T) {
	var submitted struct {
		TaskType string `json:"taskType"`
		TaskUUID string `json:"taskUUID"`
		Prompt   string `json:"positivePrompt"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var tasks []json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&tasks); err != nil || len(tasks) != 1 {
			t.Errorf("bad task payload: %v", err)
			return
		}

		var probe struct {
			TaskType string `json:"taskType"`
			TaskUUID string `json:"taskUUID"`
		}
		_ = json.Unmarshal(tasks[0], &probe)

		switch probe.TaskType {
		case "videoInference":
			_ = json.Unmarshal(tasks[0], &submitted)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"taskType": "videoInference", "taskUUID": probe.TaskUUID}},
			})
		case "getResponse":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{
					"taskType": "videoInference",
					"taskUUID": probe.TaskUUID,
					"status":   "success",
					"videoURL": "https://cdn.example/out.mp4",
				}},
			})
		default:
			t.Errorf("unexpected taskType %q", probe.TaskType)
		}
	}))
	defer srv.Close()

	t.Setenv("RUNWARE_API_KEY", "test-key")
	t.Setenv("RUNWARE_URL", srv.URL)

	gen, err := NewRunwareVideo()
	if err != nil {
		t.Fatalf("NewRunwareVideo error: %v", err)
	}

	taskID, err := gen.Submit(context.Background(), "a cat freezing into ice", 3)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if submitted.TaskUUID != taskID {
		t.Fatalf("submitted task UUID %q != returned %q", submitted.TaskUUID, taskID)
	}
	if submitted.Prompt != "a cat freezing into ice" {
		t.Fatalf("submitted prompt = %q", submitted.Prompt)
	}
	if submitted.Width != 640 || submitted.Height != 640 {
		t.Fatalf("submitted size = %dx%d; want 640x640", submitted.Width, submitted.Height)
	}

	status, videoURL, err := gen.Poll(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	if status != VideoJobSucceeded || videoURL != "https://cdn.example/out.mp4" {
		t.Fatalf("status %q url %q", status, videoURL)
	}
}

func TestRunwareSubmitRejectsBadDuration(t *testing.T) {
	t.Setenv("RUNWARE_API_KEY", "test-key")
	gen, err := NewRunwareVideo()
	if err != nil {
		t.Fatalf("NewRunwareVideo error: %v", err)
	}

	for _, d := range []int{0, -1, 60} {
		_, err := gen.Submit(context.Background(), "prompt", d)
		var cfgErr *sticker.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("duration %d: got %v; want ConfigurationError", d, err)
		}
	}
}
