package response

import (
	"time"

	"github.com/user/pane-scraper/internal/entity"
)

// RunStatusResponse is a DTO for run status, mirroring entity.RunStatus.
type RunStatusResponse struct {
	RunID        string     `json:"run_id"`
	Profile      string     `json:"profile"`
	State        string     `json:"state"` // "navigating", "awaiting_operator", "loading", "extracting", "exporting", "done", "aborted"
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

func FromRunStatus(s *entity.RunStatus) RunStatusResponse {
	return RunStatusResponse{
		RunID:        s.RunID,
		Profile:      s.Profile,
		State:        string(s.State),
		ItemsFound:   s.ItemsFound,
		Extracted:    s.Extracted,
		Failed:       s.Failed,
		Skipped:      s.Skipped,
		LoadComplete: s.LoadComplete,
		Outputs:      s.Outputs,
		Error:        s.Error,
		StartedAt:    s.StartedAt,
		UpdatedAt:    s.UpdatedAt,
		FinishedAt:   s.FinishedAt,
	}
}

type ResumeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
