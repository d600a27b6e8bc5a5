package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/symposium/internal/domain"
)

func TestCurrentRound(t *testing.T) {
	tests := []struct {
		progress float64
		rounds   int
		want     int
	}{
		{0, 3, 1},
		{30, 3, 2},
		{60, 3, 3},
		{90, 3, 3},
		{100, 3, 3},
		{45, 10, 6},
		{0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, currentRound(tt.progress, tt.rounds),
			"progress=%v rounds=%d", tt.progress, tt.rounds)
	}
}

func TestReport(t *testing.T) {
	sink := NewMemorySink()
	created := time.Now().Add(-time.Minute)
	require.NoError(t, sink.CreateSession(context.Background(), &domain.Session{
		ID:        "s1",
		Rounds:    3,
		Status:    domain.StatusCreated,
		CreatedAt: created,
	}))
	require.NoError(t, sink.UpdateStatus(context.Background(), "s1", domain.StatusRunning))
	require.NoError(t, sink.UpdateProgress(context.Background(), "s1", 30))

	now := time.Now()
	r, err := Report(context.Background(), sink, "s1", 2, now)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRunning, r.Status)
	assert.Equal(t, 2, r.CurrentRound)
	assert.Equal(t, 3, r.TotalRounds)
	assert.Equal(t, 2, r.MessageCount)
	// 30% took about a minute, so completion lands roughly 140s out.
	assert.True(t, r.EstimatedCompletion.After(now))
}

func TestReportTerminalHasNoEstimate(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.CreateSession(context.Background(), &domain.Session{
		ID:     "s1",
		Rounds: 3,
		Status: domain.StatusCompleted,
	}))

	r, err := Report(context.Background(), sink, "s1", -1, time.Now())
	require.NoError(t, err)
	assert.True(t, r.EstimatedCompletion.IsZero())
	assert.Zero(t, r.MessageCount)
}

func TestReportUnknownSession(t *testing.T) {
	_, err := Report(context.Background(), NewMemorySink(), "missing", -1, time.Now())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
