package studio

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎨 Sticker Studio"))
	b.WriteString("\n\n")

	if !m.Connected {
		b.WriteString(ErrorStyle.Render("❌ Not connected to sticker service"))
		b.WriteString("\n\n")
	}

	// Mode line
	switch m.Mode {
	case ModeSticker:
		b.WriteString(HighlightStyle.Render("Sticker"))
		b.WriteString(InfoStyle.Render("  motion: ◀ " + m.Motion() + " ▶"))
	case ModeAnimation:
		b.WriteString(HighlightStyle.Render("Animation"))
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  frames: ◀ %d ▶", m.Frames)))
	case ModeVideo:
		b.WriteString(HighlightStyle.Render("Video"))
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  duration: ◀ %ds ▶", m.Duration)))
	}
	b.WriteString("\n\n")

	// Concept input
	b.WriteString(InfoStyle.Render("Concept:"))
	b.WriteString("\n")
	b.WriteString(PromptStyle.Render("> " + m.Input + "▌"))
	b.WriteString("\n\n")

	// State
	switch m.State {
	case StateGenerating:
		status := "⏳ Generating..."
		if m.TaskID != "" {
			status = fmt.Sprintf("⏳ Task %s: %s", m.TaskID, m.TaskState)
		}
		b.WriteString(StatusStyle.Render(status))
		b.WriteString("\n\n")
	case StateComplete:
		if m.Result != nil {
			result := fmt.Sprintf("✅ %s\n%.1f KB", m.Result.Path, float64(m.Result.ByteSize)/1024)
			if m.Result.OverBudget {
				result += "\n" + ErrorStyle.Render("⚠️  over the 500 KB budget")
			}
			b.WriteString(BoxStyle.Render(result))
			b.WriteString("\n\n")
		}
	case StateError:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("❌ Error: %v", m.Err)))
		b.WriteString("\n\n")
	}

	// Logs
	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, logMsg := range m.Logs {
			b.WriteString(InfoStyle.Render("   " + logMsg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Help
	b.WriteString(InfoStyle.Render("tab: mode | ◀▶: adjust | enter: generate | esc: quit"))

	return b.String()
}
