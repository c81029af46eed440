package app

// RecordingState is the dispatcher's lifecycle position. Transitions are
// Idle -> Recording -> Processing -> Idle; failures at any point return to
// Idle.
type RecordingState int

const (
	StateIdle RecordingState = iota
	StateRecording
	StateProcessing
)

func (s RecordingState) String() string {
	switch s {
	case StateRecording:
		return "Recording"
	case StateProcessing:
		return "Processing"
	default:
		return "Idle"
	}
}
