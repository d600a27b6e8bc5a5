package engine

import (
	"context"
	"math"
	"time"

	"github.com/arbiterlabs/symposium/internal/domain"
)

// StatusReport is a point-in-time view of a session, with the current round
// and a completion estimate derived from progress so far.
type StatusReport struct {
	SessionID    string        `json:"session_id"`
	Status       domain.Status `json:"status"`
	Progress     float64       `json:"progress"`
	CurrentRound int           `json:"current_round"`
	TotalRounds  int           `json:"total_rounds"`
	MessageCount int           `json:"message_count"`

	// EstimatedCompletion extrapolates elapsed time over the remaining
	// progress. Zero for terminal or not-yet-started sessions.
	EstimatedCompletion time.Time `json:"estimated_completion,omitzero"`
}

// Report builds a status report for a session. messageCount is supplied by
// the caller since sinks vary in how they count; pass a negative value to
// omit it.
func Report(ctx context.Context, sink Sink, sessionID string, messageCount int, now time.Time) (*StatusReport, error) {
	session, err := sink.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	r := &StatusReport{
		SessionID:    session.ID,
		Status:       session.Status,
		Progress:     session.Progress,
		CurrentRound: currentRound(session.Progress, session.Rounds),
		TotalRounds:  session.Rounds,
	}
	if messageCount >= 0 {
		r.MessageCount = messageCount
	}
	if session.Status == domain.StatusRunning && session.Progress > 0 {
		elapsed := now.Sub(session.CreatedAt)
		remaining := time.Duration(float64(elapsed) * (ProgressComplete - session.Progress) / session.Progress)
		r.EstimatedCompletion = now.Add(remaining)
	}
	return r, nil
}

// currentRound inverts RoundProgress: the round currently in flight given
// the last committed progress value.
func currentRound(progress float64, totalRounds int) int {
	if totalRounds <= 0 || progress >= ProgressComplete {
		return totalRounds
	}
	done := int(math.Floor(progress / roundShare * float64(totalRounds)))
	if done >= totalRounds {
		return totalRounds
	}
	return done + 1
}
