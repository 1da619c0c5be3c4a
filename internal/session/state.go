package session

// State is the activity of a session.
// A session runs at most one activity at a time.
type State int

const (
	Idle State = iota
	Recording
	Training
	Predicting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Training:
		return "training"
	case Predicting:
		return "predicting"
	}
	return "unknown"
}
