package payment

// State is a step of one submission run.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateUploading  State = "uploading"
	StatePersisting State = "persisting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateSucceeded || s == StateFailed
}
