package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusCreated.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusExpired.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusCreated, StatusRunning, true},
		{StatusCreated, StatusCancelled, true},
		{StatusCreated, StatusCompleted, false},
		{StatusRunning, StatusCompleted, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusExpired, true},
		{StatusRunning, StatusCancelled, true},
		{StatusRunning, StatusCreated, false},
		{StatusCompleted, StatusRunning, false},
		{StatusFailed, StatusCancelled, false},
		{StatusExpired, StatusRunning, false},
		{StatusCancelled, StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to))
		})
	}
}

func TestEmptyConclusion(t *testing.T) {
	c := EmptyConclusion()
	assert.NotNil(t, c.ConsensusPoints)
	assert.NotNil(t, c.DivergentViews)
	assert.NotNil(t, c.KeyArguments)
	assert.NotNil(t, c.PreliminaryInsights)
	assert.Empty(t, c.FinalConclusion)
	assert.Zero(t, c.ConfidenceScore)
}
