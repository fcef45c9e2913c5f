package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to RunState
		want     bool
	}{
		{StateNavigating, StateLoading, true},
		{StateNavigating, StateAwaitingOperator, true},
		{StateAwaitingOperator, StateLoading, true},
		{StateLoading, StateExtracting, true},
		{StateExtracting, StateExporting, true},
		{StateExporting, StateDone, true},
		{StateLoading, StateAborted, true},
		{StateAwaitingOperator, StateAborted, true},

		{StateNavigating, StateExtracting, false},
		{StateLoading, StateAwaitingOperator, false},
		{StateExporting, StateExtracting, false},
		{StateDone, StateAborted, false},
		{StateAborted, StateNavigating, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestRunState_Terminal(t *testing.T) {
	for _, s := range AllStates {
		assert.Equal(t, s == StateDone || s == StateAborted, s.Terminal(), s)
	}
}
