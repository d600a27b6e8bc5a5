package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/llm"
	"github.com/arbiterlabs/symposium/internal/logging"
)

// echoClient replies with the speaker's instruction-free identity so tests
// can tell turns apart. Summaries are detectable by the absence of named
// history turns.
func echoClient() *llm.MockClient {
	return &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: fmt.Sprintf("reply(%d msgs)", len(req.Messages))}, nil
		},
	}
}

func testSession(t *testing.T, sink Sink, rounds int) *domain.Session {
	t.Helper()
	s := &domain.Session{
		ID:     "sess-1",
		Topic:  "universal basic income",
		Rounds: rounds,
		Status: domain.StatusRunning,
	}
	require.NoError(t, sink.CreateSession(context.Background(), s))
	return s
}

func TestRunRoundCommitsInSpeakingOrder(t *testing.T) {
	sink := NewMemorySink()
	session := testSession(t, sink, 3)
	exec := NewTurnExecutor(echoClient(), llm.GenOptions{}, logging.Silent())

	var observed []string
	observer := func(m domain.Message) { observed = append(observed, m.SpeakerID) }
	runner := NewRoundRunner(exec, sink, nil, nil, observer, logging.Silent())

	participants := []domain.Participant{
		{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"},
	}

	msgs, err := runner.RunRound(context.Background(), session, participants, nil, nil, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, []string{"a", "b", "c"}, observed)
	stored := sink.Messages(session.ID)
	require.Len(t, stored, 3)
	for i, m := range stored {
		assert.Equal(t, participants[i].ID, m.SpeakerID)
		assert.Equal(t, session.ID, m.SessionID)
		assert.Equal(t, 1, m.Round)
	}

	assert.Equal(t, []float64{RoundProgress(1, 3)}, sink.ProgressHistory(session.ID))
}

func TestRunRoundModeratorSpeaksLast(t *testing.T) {
	sink := NewMemorySink()
	session := testSession(t, sink, 2)
	exec := NewTurnExecutor(echoClient(), llm.GenOptions{}, logging.Silent())
	runner := NewRoundRunner(exec, sink, nil, nil, nil, logging.Silent())

	participants := []domain.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	moderator := &domain.Participant{ID: "mod", Name: "Mod"}

	msgs, err := runner.RunRound(context.Background(), session, participants, moderator, nil, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	last := msgs[2]
	assert.Equal(t, "mod", last.SpeakerID)
	assert.Equal(t, domain.RoleModerator, last.SpeakerRole)
}

func TestRunRoundUsesStrategies(t *testing.T) {
	sink := NewMemorySink()
	session := testSession(t, sink, 2)

	// CompleteFunc runs on the per-turn goroutines, so the capture is locked.
	var mu sync.Mutex
	var instructions []string
	client := &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			mu.Lock()
			instructions = append(instructions, req.Messages[len(req.Messages)-1].Content)
			mu.Unlock()
			return &llm.CompletionResponse{Content: "ok"}, nil
		},
	}
	exec := NewTurnExecutor(client, llm.GenOptions{}, logging.Silent())

	topics := FocusedTopicAssigner{SubTopics: []string{"costs", "benefits"}}
	order := RoleLeadOrderPolicy{Leads: map[string]string{"costs": "skeptic"}}
	runner := NewRoundRunner(exec, sink, topics, order, nil, logging.Silent())

	participants := []domain.Participant{
		{ID: "a", Name: "A", Role: "advocate"},
		{ID: "b", Name: "B", Role: "skeptic"},
	}

	msgs, err := runner.RunRound(context.Background(), session, participants, nil, nil, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// Round 1 focuses on "costs" so the skeptic leads.
	assert.Equal(t, "b", msgs[0].SpeakerID)
	assert.Equal(t, "a", msgs[1].SpeakerID)
	for _, in := range instructions {
		assert.Contains(t, in, "costs")
	}
}

func TestRunRoundContainsTurnFailures(t *testing.T) {
	sink := NewMemorySink()
	session := testSession(t, sink, 1)

	client := &llm.MockClient{
		CompleteFunc: func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("model offline")
		},
	}
	exec := NewTurnExecutor(client, llm.GenOptions{}, logging.Silent())
	runner := NewRoundRunner(exec, sink, nil, nil, nil, logging.Silent())

	participants := []domain.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	msgs, err := runner.RunRound(context.Background(), session, participants, nil, nil, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.True(t, IsTurnError(m.Content))
	}
	// The failed round still advances progress.
	assert.Equal(t, []float64{RoundProgress(1, 1)}, sink.ProgressHistory(session.ID))
}

// failingSink wraps MemorySink and fails selected operations.
type failingSink struct {
	*MemorySink
	failAppend   bool
	failProgress bool
}

func (f *failingSink) AppendMessage(ctx context.Context, msg domain.Message) error {
	if f.failAppend {
		return errors.New("disk full")
	}
	return f.MemorySink.AppendMessage(ctx, msg)
}

func (f *failingSink) UpdateProgress(ctx context.Context, id string, p float64) error {
	if f.failProgress {
		return errors.New("disk full")
	}
	return f.MemorySink.UpdateProgress(ctx, id, p)
}

func TestRunRoundSinkFailureIsFatal(t *testing.T) {
	sink := &failingSink{MemorySink: NewMemorySink(), failAppend: true}
	session := testSession(t, sink.MemorySink, 1)
	exec := NewTurnExecutor(echoClient(), llm.GenOptions{}, logging.Silent())
	runner := NewRoundRunner(exec, sink, nil, nil, nil, logging.Silent())

	participants := []domain.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	msgs, err := runner.RunRound(context.Background(), session, participants, nil, nil, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, msgs)
}

func TestRunRoundProgressFailureIsFatal(t *testing.T) {
	sink := &failingSink{MemorySink: NewMemorySink(), failProgress: true}
	session := testSession(t, sink.MemorySink, 1)
	exec := NewTurnExecutor(echoClient(), llm.GenOptions{}, logging.Silent())
	runner := NewRoundRunner(exec, sink, nil, nil, nil, logging.Silent())

	participants := []domain.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	msgs, err := runner.RunRound(context.Background(), session, participants, nil, nil, 1)
	require.Error(t, err)
	// Messages committed before the failure are still returned.
	assert.Len(t, msgs, 2)
}
