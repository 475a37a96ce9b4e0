package studio

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case HealthCheckMsg:
		return m.handleHealthCheck(msg)
	case GenerationCompleteMsg:
		return m.handleGenerationComplete(msg)
	case VideoQueuedMsg:
		return m.handleVideoQueued(msg)
	case TaskStatusMsg:
		return m.handleTaskStatus(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		if m.State == StateEditing {
			switch m.Mode {
			case ModeSticker:
				m.Mode = ModeAnimation
			case ModeAnimation:
				m.Mode = ModeVideo
			default:
				m.Mode = ModeSticker
			}
		}
		return m, nil

	case "left":
		if m.State == StateEditing {
			switch m.Mode {
			case ModeSticker:
				m.MotionIndex = (m.MotionIndex + len(Motions) - 1) % len(Motions)
			case ModeAnimation:
				if m.Frames > 2 {
					m.Frames--
				}
			case ModeVideo:
				if m.Duration > 1 {
					m.Duration--
				}
			}
		}
		return m, nil

	case "right":
		if m.State == StateEditing {
			switch m.Mode {
			case ModeSticker:
				m.MotionIndex = (m.MotionIndex + 1) % len(Motions)
			case ModeAnimation:
				if m.Frames < 6 {
					m.Frames++
				}
			case ModeVideo:
				if m.Duration < 10 {
					m.Duration++
				}
			}
		}
		return m, nil

	case "enter":
		if m.State != StateEditing && m.State != StateComplete && m.State != StateError {
			return m, nil
		}
		if m.Input == "" {
			return m, nil
		}
		m.State = StateGenerating
		m.Result = nil
		m.Err = nil
		m.TaskID = ""
		m.TaskState = ""
		switch m.Mode {
		case ModeSticker:
			m = m.AddLog(fmt.Sprintf("Generating %s sticker: %q", m.Motion(), m.Input))
			return m, generateSticker(m.Client, m.Input, m.Motion())
		case ModeVideo:
			m = m.AddLog(fmt.Sprintf("Submitting %ds video job: %q", m.Duration, m.Input))
			return m, submitVideo(m.Client, m.Input, m.Duration)
		default:
			m = m.AddLog(fmt.Sprintf("Generating %d-frame animation: %q", m.Frames, m.Input))
			return m, generateAnimation(m.Client, m.Input, m.Frames)
		}

	case "backspace":
		if m.State != StateGenerating && len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
			m.State = StateEditing
		}
		return m, nil

	default:
		if m.State == StateGenerating {
			return m, nil
		}
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.Input += string(msg.Runes)
			if msg.Type == tea.KeySpace {
				m.Input += " "
			}
			m.State = StateEditing
		}
		return m, nil
	}
}

func (m Model) handleHealthCheck(msg HealthCheckMsg) (tea.Model, tea.Cmd) {
	m.Connected = msg.Connected
	if msg.Connected {
		m = m.AddLog("Connected to sticker service")
	} else {
		m = m.AddLog("Sticker service is not reachable")
	}
	return m, nil
}

func (m Model) handleVideoQueued(msg VideoQueuedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		m = m.AddLog(fmt.Sprintf("Video submission failed: %v", msg.Err))
		return m, nil
	}
	m.TaskID = msg.TaskID
	m.TaskState = "queued"
	m = m.AddLog("Video job queued: " + msg.TaskID)
	return m, pollTask(m.Client, msg.TaskID)
}

func (m Model) handleTaskStatus(msg TaskStatusMsg) (tea.Model, tea.Cmd) {
	// A stale poll can arrive after the user started a new request.
	if msg.TaskID != m.TaskID || m.State != StateGenerating {
		return m, nil
	}
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		m = m.AddLog(fmt.Sprintf("Task poll failed: %v", msg.Err))
		return m, nil
	}

	if msg.State != m.TaskState {
		m.TaskState = msg.State
		m = m.AddLog("Task " + msg.TaskID + " is " + msg.State)
	}

	switch msg.State {
	case "succeeded":
		m = m.AddLog("Downloading result")
		return m, fetchTaskResult(m.Client, msg.TaskID)
	case "failed":
		m.State = StateError
		m.Err = fmt.Errorf("video job failed: %s", msg.Detail)
		return m, nil
	default:
		return m, pollTask(m.Client, msg.TaskID)
	}
}

func (m Model) handleGenerationComplete(msg GenerationCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		m = m.AddLog(fmt.Sprintf("Generation failed: %v", msg.Err))
		return m, nil
	}
	m.State = StateComplete
	m.Result = msg.Result
	m = m.AddLog(fmt.Sprintf("Saved %s (%.1f KB)", msg.Result.Path, float64(msg.Result.ByteSize)/1024))
	if msg.Result.OverBudget {
		m = m.AddLog("Warning: sticker exceeds the 500 KB platform budget")
	}
	return m, nil
}
