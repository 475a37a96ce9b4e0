package studio

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// checkHealth probes the sticker service once at startup.
func checkHealth(client *StickerClient) tea.Cmd {
	return func() tea.Msg {
		return HealthCheckMsg{Connected: client.Healthy()}
	}
}

// generateSticker runs the single-still flow in the background.
func generateSticker(client *StickerClient, prompt, motion string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.GenerateSticker(prompt, motion)
		return GenerationCompleteMsg{Result: result, Err: err}
	}
}

// generateAnimation runs the multi-frame flow in the background.
func generateAnimation(client *StickerClient, concept string, frames int) tea.Cmd {
	return func() tea.Msg {
		result, err := client.GenerateAnimation(concept, frames)
		return GenerationCompleteMsg{Result: result, Err: err}
	}
}

// submitVideo queues the async video flow.
func submitVideo(client *StickerClient, prompt string, durationSec int) tea.Cmd {
	return func() tea.Msg {
		taskID, err := client.SubmitVideo(prompt, durationSec)
		return VideoQueuedMsg{TaskID: taskID, Err: err}
	}
}

// pollTask checks the task state after a short pause. Video jobs take
// minutes, so the interval stays coarse.
func pollTask(client *StickerClient, taskID string) tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		state, detail, err := client.TaskStatus(taskID)
		return TaskStatusMsg{TaskID: taskID, State: state, Detail: detail, Err: err}
	})
}

// fetchTaskResult downloads the artifact of a finished task.
func fetchTaskResult(client *StickerClient, taskID string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.DownloadTaskResult(taskID)
		return GenerationCompleteMsg{Result: result, Err: err}
	}
}
