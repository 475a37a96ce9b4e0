package studio

// Messages for the tea program

// HealthCheckMsg reports whether the sticker service answered the health probe.
type HealthCheckMsg struct {
	Connected bool
}

// GenerationCompleteMsg is sent when a generation request finished.
type GenerationCompleteMsg struct {
	Result *GenerationResult
	Err    error
}

// VideoQueuedMsg reports the task ID of a freshly submitted video job.
type VideoQueuedMsg struct {
	TaskID string
	Err    error
}

// TaskStatusMsg carries one poll of an async task's state.
type TaskStatusMsg struct {
	TaskID string
	State  string
	Detail string
	Err    error
}
