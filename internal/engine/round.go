package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/logging"
)

// TurnObserver is called with each message as it is committed to the round,
// in speaking order. The CLI uses it to echo the debate as it happens.
type TurnObserver func(msg domain.Message)

// RoundRunner executes one full round: every participant speaks once, the
// moderator (if any) summarizes, and the round's progress is pushed to the
// sink.
type RoundRunner struct {
	exec     *TurnExecutor
	sink     Sink
	topics   RoundTopicAssigner
	order    SpeakingOrderPolicy
	observer TurnObserver
	log      *logging.Logger
}

// NewRoundRunner creates a round runner. Nil strategies default to the
// identity behaviors; a nil observer is allowed.
func NewRoundRunner(exec *TurnExecutor, sink Sink, topics RoundTopicAssigner, order SpeakingOrderPolicy, observer TurnObserver, log *logging.Logger) *RoundRunner {
	if topics == nil {
		topics = IdentityAssigner{}
	}
	if order == nil {
		order = ConfiguredOrder{}
	}
	return &RoundRunner{
		exec:     exec,
		sink:     sink,
		topics:   topics,
		order:    order,
		observer: observer,
		log:      log.Sub("round"),
	}
}

// RunRound executes round number round and returns the messages it
// produced, already persisted. history must hold all committed messages from
// earlier rounds. The only error returned is a sink failure, which is fatal
// for the session; turn failures are contained as error-tagged messages.
//
// Turns fan out concurrently: the visible history excludes the current
// round, so participants cannot observe each other and the results are
// independent of execution interleaving. Messages are then committed in
// speaking order so persistence stays deterministic.
func (r *RoundRunner) RunRound(ctx context.Context, session *domain.Session, participants []domain.Participant, moderator *domain.Participant, history []domain.Message, round int) ([]domain.Message, error) {
	subTopic := r.topics.SubTopic(round)
	ordered := r.order.Order(subTopic, participants)

	r.log.Info().
		Str("sessionId", session.ID).
		Int("round", round).
		Int("totalRounds", session.Rounds).
		Str("subTopic", subTopic).
		Msg("round started")

	results := make([]domain.Message, len(ordered))
	var wg sync.WaitGroup
	for i, p := range ordered {
		wg.Add(1)
		go func(i int, p domain.Participant) {
			defer wg.Done()
			results[i] = r.exec.Execute(ctx, p, session.Topic, subTopic, history, round)
		}(i, p)
	}
	wg.Wait()

	var committed []domain.Message
	for _, msg := range results {
		msg.SessionID = session.ID
		if err := r.commit(ctx, msg); err != nil {
			return committed, err
		}
		committed = append(committed, msg)
	}

	if moderator != nil {
		msg := r.exec.Summarize(ctx, *moderator, session.Topic, committed, round)
		msg.SessionID = session.ID
		if err := r.commit(ctx, msg); err != nil {
			return committed, err
		}
		committed = append(committed, msg)
	}

	if err := r.sink.UpdateProgress(ctx, session.ID, RoundProgress(round, session.Rounds)); err != nil {
		return committed, fmt.Errorf("updating progress after round %d: %w", round, err)
	}

	return committed, nil
}

func (r *RoundRunner) commit(ctx context.Context, msg domain.Message) error {
	if err := r.sink.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("persisting message from %s in round %d: %w", msg.SpeakerName, msg.Round, err)
	}
	if r.observer != nil {
		r.observer(msg)
	}
	r.log.Info().
		Str("speaker", msg.SpeakerName).
		Str("role", msg.SpeakerRole).
		Int("round", msg.Round).
		Int("chars", len(msg.Content)).
		Msg("turn committed")
	return nil
}
