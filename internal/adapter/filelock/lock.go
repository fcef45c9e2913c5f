package filelock

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrRunLocked means another run already owns the output.
var ErrRunLocked = errors.New("another run holds the output lock")

// Lock is an exclusive advisory lock held for the duration of a run.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at "<output>.lock" without blocking.
func Acquire(output string) (*Lock, error) {
	fl := flock.New(output + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunLocked, fl.Path())
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Path() string { return l.fl.Path() }

func (l *Lock) Release() error {
	return l.fl.Unlock()
}
