package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/pane-scraper/internal/repository"
	"go.uber.org/zap"
)

// pollInterval bounds each blocking pop so cancellation is noticed promptly.
const pollInterval = 5 * time.Second

// GateImpl resumes a run when any value is pushed onto a Redis list, e.g.
// `redis-cli LPUSH scraper:resume go`.
type GateImpl struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

var _ repository.OperatorGate = (*GateImpl)(nil)

// NewGate creates a new instance of GateImpl.
func NewGate(client *redis.Client, key string, logger *zap.Logger) *GateImpl {
	return &GateImpl{client: client, key: key, logger: logger}
}

// Await drops stale signals, then blocks until a new one is pushed.
func (g *GateImpl) Await(ctx context.Context, prompt string) error {
	if err := g.client.Del(ctx, g.key).Err(); err != nil {
		return err
	}
	g.logger.Info("waiting for redis resume signal", zap.String("key", g.key), zap.String("prompt", prompt))

	for {
		res, err := g.client.BRPop(ctx, pollInterval, g.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		// BRPOP returns [key, value].
		g.logger.Info("received resume signal", zap.String("key", g.key), zap.String("value", res[1]))
		return nil
	}
}
