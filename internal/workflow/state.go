package workflow

// State is the lifecycle position of a submitted document.
type State string

const (
	// StateDraft is a submission that has not been staged yet.
	StateDraft State = "draft"
	// StateStaged is persisted under a temp id, pending a decision.
	StateStaged State = "staged"
	// StateCommitted is numbered, stored and indexed. Terminal.
	StateCommitted State = "committed"
	// StateDiscarded was cancelled by the user. Terminal.
	StateDiscarded State = "discarded"
	// StateAbandoned lost its session before a decision and is reclaimed by
	// the staging sweep. Terminal.
	StateAbandoned State = "abandoned"
)

// Event types published on transitions.
const (
	EventStaged    = "staged.created"
	EventEdited    = "staged.updated"
	EventDiscarded = "staged.discarded"
	EventCommitted = "entry.committed"
	EventSwept     = "staged.swept"
)
