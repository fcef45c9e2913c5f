package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLoader(budget ScrollBudget) *ScrollLoader {
	l := NewScrollLoader(time.Second, budget, zap.NewNop())
	l.sleep = noSleep
	return l
}

func TestScrollLoader_StopsWhenHeightSettles(t *testing.T) {
	target := &heightTarget{heights: []int64{100, 250, 250}}

	res, err := newTestLoader(ScrollBudget{}).Load(context.Background(), target)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Scrolls)
	assert.Equal(t, 3, res.Reads)
	assert.Equal(t, 2, target.scrolls)
	assert.Equal(t, 3, target.reads)
	assert.Equal(t, int64(250), res.Height)
	assert.True(t, res.Complete)
}

func TestScrollLoader_StaticContentScrollsOnce(t *testing.T) {
	target := &heightTarget{heights: []int64{400}}

	res, err := newTestLoader(ScrollBudget{}).Load(context.Background(), target)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Scrolls)
	assert.Equal(t, 2, res.Reads)
	assert.True(t, res.Complete)
}

func TestScrollLoader_IterationBudget(t *testing.T) {
	target := &heightTarget{heights: []int64{100, 200, 300, 400, 500, 600}}

	res, err := newTestLoader(ScrollBudget{MaxIterations: 3}).Load(context.Background(), target)

	require.ErrorIs(t, err, ErrIncompleteLoad)
	assert.Equal(t, 3, res.Scrolls)
	assert.Equal(t, int64(400), res.Height)
	assert.False(t, res.Complete)
}

func TestScrollLoader_TimeBudget(t *testing.T) {
	target := &heightTarget{heights: []int64{100, 200, 300, 400, 500, 600}}
	l := newTestLoader(ScrollBudget{MaxDuration: 10 * time.Second})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		clock = clock.Add(4 * time.Second)
		return nil
	}

	res, err := l.Load(context.Background(), target)

	require.ErrorIs(t, err, ErrIncompleteLoad)
	// 0s, 4s and 8s are within budget; the check at 12s stops the loop.
	assert.Equal(t, 3, res.Scrolls)
	assert.False(t, res.Complete)
}

func TestScrollLoader_ReadError(t *testing.T) {
	target := &heightTarget{readErr: errors.New("node detached")}

	_, err := newTestLoader(ScrollBudget{}).Load(context.Background(), target)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncompleteLoad)
	assert.Equal(t, 0, target.scrolls)
}

func TestScrollLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	target := &heightTarget{heights: []int64{100, 200}}

	_, err := newTestLoader(ScrollBudget{}).Load(ctx, target)

	assert.ErrorIs(t, err, context.Canceled)
}
