package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
)

const (
	runKeyPrefix = "scraper:run:"
	latestRunKey = "scraper:run:latest"
)

// StatusRepoImpl keeps run snapshots as JSON strings with an expiry.
type StatusRepoImpl struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.StatusRepository = (*StatusRepoImpl)(nil)

// NewStatusRepo creates a new instance of StatusRepoImpl. ttl <= 0 keeps snapshots forever.
func NewStatusRepo(client *redis.Client, ttl time.Duration) *StatusRepoImpl {
	return &StatusRepoImpl{client: client, ttl: ttl}
}

func (r *StatusRepoImpl) generateKey(runID string) string {
	return fmt.Sprintf("%s%s", runKeyPrefix, runID)
}

// Save writes the snapshot and the latest-run pointer atomically.
func (r *StatusRepoImpl) Save(ctx context.Context, status *entity.RunStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.generateKey(status.RunID), data, ttl)
		pipe.Set(ctx, latestRunKey, status.RunID, ttl)
		return nil
	})
	return err
}

func (r *StatusRepoImpl) Get(ctx context.Context, runID string) (*entity.RunStatus, error) {
	data, err := r.client.Get(ctx, r.generateKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrStatusNotFound
	}
	if err != nil {
		return nil, err
	}
	var status entity.RunStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *StatusRepoImpl) Latest(ctx context.Context) (*entity.RunStatus, error) {
	runID, err := r.client.Get(ctx, latestRunKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrStatusNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, runID)
}
