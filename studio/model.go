package studio

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State represents the studio state machine
type State string

const (
	StateEditing    State = "editing"
	StateGenerating State = "generating"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// Mode selects which generation flow Enter triggers.
type Mode string

const (
	ModeSticker   Mode = "sticker"   // one image + synthetic motion
	ModeAnimation Mode = "animation" // frame prompts + one image per frame
	ModeVideo     Mode = "video"     // async text-to-video, polled by task ID
)

// Motions cycled with left/right in sticker mode.
var Motions = []string{"float", "bounce", "pulse", "wiggle", "static"}

// Model is the studio TUI state.
type Model struct {
	Client *StickerClient

	State       State
	Mode        Mode
	Input       string
	MotionIndex int
	Frames      int
	Duration    int
	TaskID      string
	TaskState   string
	Result      *GenerationResult
	Err         error
	Connected   bool
	Logs        []string
}

// NewModel creates the initial studio model.
func NewModel(client *StickerClient) Model {
	return Model{
		Client:   client,
		State:    StateEditing,
		Mode:     ModeSticker,
		Frames:   4,
		Duration: 3,
		Logs:     make([]string, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return checkHealth(m.Client)
}

// AddLog appends a timestamped line to the activity log, keeping the last 10.
func (m Model) AddLog(msg string) Model {
	m.Logs = append(m.Logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg))
	if len(m.Logs) > 10 {
		m.Logs = m.Logs[len(m.Logs)-10:]
	}
	return m
}

// Motion returns the currently selected motion kind.
func (m Model) Motion() string {
	return Motions[m.MotionIndex]
}
