package repository

import "context"

// OperatorGate blocks a run until an external party signals that it may resume.
type OperatorGate interface {
	// Await returns nil once the signal arrives, or an error if ctx ends first.
	Await(ctx context.Context, prompt string) error
}
