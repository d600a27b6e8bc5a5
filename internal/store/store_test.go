package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/engine"
	"github.com/arbiterlabs/symposium/internal/logging"
)

var _ engine.Sink = (*DebateStore)(nil)

func openTestStore(t *testing.T) *DebateStore {
	t.Helper()
	db, err := Open(":memory:", logging.Silent())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDebateStore(db)
}

func storedSession(id string) *domain.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Session{
		ID:              id,
		Topic:           "remote work",
		Rounds:          3,
		MaxDurationMins: 30,
		Status:          domain.StatusCreated,
		ParticipantIDs:  []string{"advocate", "skeptic"},
		ModeratorID:     "host",
		ModeratorPrompt: "stay neutral",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := storedSession("s1")
	require.NoError(t, s.CreateSession(ctx, want))

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, want.Topic, got.Topic)
	assert.Equal(t, want.Rounds, got.Rounds)
	assert.Equal(t, want.MaxDurationMins, got.MaxDurationMins)
	assert.Equal(t, domain.StatusCreated, got.Status)
	assert.Equal(t, []string{"advocate", "skeptic"}, got.ParticipantIDs)
	assert.Equal(t, "host", got.ModeratorID)
	assert.Equal(t, "stay neutral", got.ModeratorPrompt)
	assert.Nil(t, got.Conclusion)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestGetSessionNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

func TestUpdateStatusAndProgress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, storedSession("s1")))

	require.NoError(t, s.UpdateStatus(ctx, "s1", domain.StatusRunning))
	require.NoError(t, s.UpdateProgress(ctx, "s1", 60))

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	assert.Equal(t, 60.0, got.Progress)
}

func TestUpdateStatusRejectsTerminalExit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, storedSession("s1")))
	require.NoError(t, s.UpdateStatus(ctx, "s1", domain.StatusRunning))
	require.NoError(t, s.UpdateStatus(ctx, "s1", domain.StatusCompleted))

	err := s.UpdateStatus(ctx, "s1", domain.StatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidStateTransition)

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestUpdateUnknownSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", domain.StatusRunning), engine.ErrSessionNotFound)
	assert.ErrorIs(t, s.UpdateProgress(ctx, "missing", 50), engine.ErrSessionNotFound)
	assert.ErrorIs(t, s.SaveConclusion(ctx, "missing", domain.EmptyConclusion()), engine.ErrSessionNotFound)
}

func TestConclusionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, storedSession("s1")))

	c := domain.EmptyConclusion()
	c.FinalConclusion = "we agreed"
	c.ConfidenceScore = 0.75
	c.ConsensusPoints = []string{"p1"}
	c.KeyArguments["advocate"] = []string{"a1", "a2"}
	require.NoError(t, s.SaveConclusion(ctx, "s1", c))

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.Conclusion)
	assert.Equal(t, "we agreed", got.Conclusion.FinalConclusion)
	assert.InDelta(t, 0.75, got.Conclusion.ConfidenceScore, 1e-9)
	assert.Equal(t, []string{"p1"}, got.Conclusion.ConsensusPoints)
	assert.Equal(t, []string{"a1", "a2"}, got.Conclusion.KeyArguments["advocate"])
}

func TestMessagesKeepCommitOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, storedSession("s1")))

	speakers := []string{"advocate", "skeptic", "host", "advocate"}
	for i, sp := range speakers {
		require.NoError(t, s.AppendMessage(ctx, domain.Message{
			SessionID:   "s1",
			SpeakerID:   sp,
			SpeakerName: sp,
			Round:       i/3 + 1,
			Content:     "statement",
			Timestamp:   time.Now().UTC(),
		}))
	}

	msgs, err := s.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i, m := range msgs {
		assert.Equal(t, speakers[i], m.SpeakerID)
	}

	n, err := s.MessageCount(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestListSessionsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := storedSession("old")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateSession(ctx, older))
	require.NoError(t, s.CreateSession(ctx, storedSession("new")))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)
}

func TestOrchestratorRunsAgainstSQLite(t *testing.T) {
	s := openTestStore(t)

	// The sink contract the engine relies on also holds for the SQLite
	// implementation, so a full debate can run against it directly.
	msg := domain.Message{SessionID: "s1", SpeakerID: "a", SpeakerName: "a", Round: 1, Timestamp: time.Now()}
	require.NoError(t, s.CreateSession(context.Background(), storedSession("s1")))
	require.NoError(t, s.AppendMessage(context.Background(), msg))
	require.NoError(t, s.UpdateProgress(context.Background(), "s1", engine.RoundProgress(1, 3)))

	got, err := s.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, engine.RoundProgress(1, 3), got.Progress)
}
