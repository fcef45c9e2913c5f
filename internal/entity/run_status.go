package entity

import "time"

// RunState is a stage of a scrape run.
type RunState string

const (
	StateNavigating       RunState = "navigating"
	StateAwaitingOperator RunState = "awaiting_operator"
	StateLoading          RunState = "loading"
	StateExtracting       RunState = "extracting"
	StateExporting        RunState = "exporting"
	StateDone             RunState = "done"
	StateAborted          RunState = "aborted"
)

// AllStates lists every state in pipeline order.
var AllStates = []RunState{
	StateNavigating,
	StateAwaitingOperator,
	StateLoading,
	StateExtracting,
	StateExporting,
	StateDone,
	StateAborted,
}

var transitions = map[RunState][]RunState{
	StateNavigating:       {StateAwaitingOperator, StateLoading},
	StateAwaitingOperator: {StateLoading},
	StateLoading:          {StateExtracting},
	StateExtracting:       {StateExporting},
	StateExporting:        {StateDone},
}

// Terminal reports whether no further transitions are possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// CanTransition reports whether s -> next is allowed. Every non-terminal
// state may abort.
func (s RunState) CanTransition(next RunState) bool {
	if s.Terminal() {
		return false
	}
	if next == StateAborted {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RunStatus is a snapshot of one run.
type RunStatus struct {
	RunID        string     `json:"run_id"`
	Profile      string     `json:"profile"`
	State        RunState   `json:"state"`
	ItemsFound   int        `json:"items_found"`
	Extracted    int        `json:"extracted"`
	Failed       int        `json:"failed"`
	Skipped      int        `json:"skipped"`
	LoadComplete bool       `json:"load_complete"`
	Outputs      []string   `json:"outputs,omitempty"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
