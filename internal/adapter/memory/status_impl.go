package memory

import (
	"context"
	"sync"

	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
)

// StatusRepoImpl keeps run snapshots in process memory.
type StatusRepoImpl struct {
	mu     sync.RWMutex
	runs   map[string]entity.RunStatus
	latest string
}

var _ repository.StatusRepository = (*StatusRepoImpl)(nil)

func NewStatusRepo() *StatusRepoImpl {
	return &StatusRepoImpl{runs: make(map[string]entity.RunStatus)}
}

func (r *StatusRepoImpl) Save(_ context.Context, status *entity.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *status
	s.Outputs = append([]string(nil), status.Outputs...)
	r.runs[s.RunID] = s
	r.latest = s.RunID
	return nil
}

func (r *StatusRepoImpl) Get(_ context.Context, runID string) (*entity.RunStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.runs[runID]
	if !ok {
		return nil, repository.ErrStatusNotFound
	}
	return &s, nil
}

func (r *StatusRepoImpl) Latest(ctx context.Context) (*entity.RunStatus, error) {
	r.mu.RLock()
	latest := r.latest
	r.mu.RUnlock()
	if latest == "" {
		return nil, repository.ErrStatusNotFound
	}
	return r.Get(ctx, latest)
}
