// Package engine implements the debate orchestration core: the round/turn
// scheduler, per-turn failure containment, progress accounting, moderator
// summarization, and conclusion synthesis with structured-output recovery.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/llm"
	"github.com/arbiterlabs/symposium/internal/logging"
)

// Request limits.
const (
	minParticipants     = 2
	defaultMaxDebaters  = 8
	minRounds           = 1
	maxRounds           = 10
	minDurationMins     = 5
	maxDurationMins     = 120
	defaultRounds       = 3
	defaultDurationMins = 30
)

// errCancelled aborts the run loop when the session was cancelled through
// Cancel. The session already carries its terminal status at that point.
var errCancelled = errors.New("session cancelled")

// StartRequest describes a debate to run.
type StartRequest struct {
	Topic                  string
	ParticipantIDs         []string
	ModeratorID            string
	ModeratorPrompt        string
	Rounds                 int
	MaxDurationMins        int
	ConclusionRequirements string
	Generation             llm.GenOptions
}

// Deps is the orchestrator's dependency set. Clients plus ClientConfig
// select the generation capability; Sink is the persistence boundary;
// Directory resolves participant ids. Topics, Order, and Observer are
// optional.
type Deps struct {
	Clients      *llm.Cache
	ClientConfig llm.ClientConfig
	Directory    Directory
	Sink         Sink
	Topics       RoundTopicAssigner
	Order        SpeakingOrderPolicy
	Observer     TurnObserver

	// MaxParticipants overrides the default participant cap when > 0.
	MaxParticipants int

	Log *logging.Logger
}

// Orchestrator owns the debate session lifecycle: it validates start
// requests, drives the rounds and the conclusion synthesis, and maps
// failures onto terminal states.
type Orchestrator struct {
	deps            Deps
	maxParticipants int
	log             *logging.Logger
}

// New creates an orchestrator.
func New(deps Deps) *Orchestrator {
	maxP := deps.MaxParticipants
	if maxP <= 0 {
		maxP = defaultMaxDebaters
	}
	return &Orchestrator{
		deps:            deps,
		maxParticipants: maxP,
		log:             deps.Log.Sub("orchestrator"),
	}
}

// Start validates the request, creates the session, and runs it to a
// terminal state. Validation failures return before any session is created.
// Once a session exists, execution errors are absorbed into the session's
// terminal status (failed, expired, or cancelled) and the session id is
// still returned.
func (o *Orchestrator) Start(ctx context.Context, req StartRequest) (string, error) {
	applyRequestDefaults(&req)

	participants, moderator, err := o.resolve(req)
	if err != nil {
		return "", err
	}

	client, err := o.deps.Clients.Get(o.deps.ClientConfig)
	if err != nil {
		return "", fmt.Errorf("resolving generation client: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:              uuid.NewString(),
		Topic:           req.Topic,
		Rounds:          req.Rounds,
		MaxDurationMins: req.MaxDurationMins,
		Status:          domain.StatusCreated,
		ParticipantIDs:  req.ParticipantIDs,
		ModeratorID:     req.ModeratorID,
		ModeratorPrompt: req.ModeratorPrompt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := o.deps.Sink.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	o.log.Info().
		Str("sessionId", session.ID).
		Str("topic", session.Topic).
		Int("rounds", session.Rounds).
		Int("participants", len(participants)).
		Bool("moderated", moderator != nil).
		Msg("session created")

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(req.MaxDurationMins)*time.Minute)
	defer cancel()

	if err := o.run(runCtx, client, session, participants, moderator, req); err != nil {
		switch {
		case errors.Is(err, errCancelled):
			o.log.Info().Str("sessionId", session.ID).Msg("session cancelled")
		case errors.Is(err, context.DeadlineExceeded):
			o.log.Warn().Str("sessionId", session.ID).Msg("session exceeded max duration")
			o.forceStatus(ctx, session.ID, domain.StatusExpired)
		default:
			o.log.Error().Err(err).Str("sessionId", session.ID).Msg("session failed")
			o.forceStatus(ctx, session.ID, domain.StatusFailed)
		}
	}

	return session.ID, nil
}

// Cancel moves a non-terminal session to cancelled. Cancellation is
// cooperative: an in-flight generation call is not interrupted, and the run
// loop observes the status at the next round boundary. The sink rejects the
// write with ErrInvalidStateTransition when the session is already terminal,
// so a concurrent completion cannot be overwritten.
func (o *Orchestrator) Cancel(ctx context.Context, sessionID string) error {
	return o.deps.Sink.UpdateStatus(ctx, sessionID, domain.StatusCancelled)
}

// run executes the rounds and the conclusion synthesis. Every error it
// returns escapes per-turn containment and is fatal for the session.
func (o *Orchestrator) run(ctx context.Context, client llm.Client, session *domain.Session, participants []domain.Participant, moderator *domain.Participant, req StartRequest) error {
	if err := o.deps.Sink.UpdateStatus(ctx, session.ID, domain.StatusRunning); err != nil {
		return fmt.Errorf("transitioning to running: %w", err)
	}
	session.Status = domain.StatusRunning

	exec := NewTurnExecutor(client, req.Generation, o.log)
	runner := NewRoundRunner(exec, o.deps.Sink, o.deps.Topics, o.deps.Order, o.deps.Observer, o.log)

	var history []domain.Message
	for round := 1; round <= session.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.checkCancelled(ctx, session.ID); err != nil {
			return err
		}

		msgs, err := runner.RunRound(ctx, session, participants, moderator, history, round)
		history = append(history, msgs...)
		if err != nil {
			return err
		}
	}

	conclusion := NewSynthesizer(client, o.log).
		Synthesize(ctx, session.Topic, participants, history, req.ConclusionRequirements)

	if err := o.deps.Sink.SaveConclusion(ctx, session.ID, conclusion); err != nil {
		return fmt.Errorf("saving conclusion: %w", err)
	}
	if err := o.deps.Sink.UpdateProgress(ctx, session.ID, ProgressComplete); err != nil {
		return fmt.Errorf("finalizing progress: %w", err)
	}
	if err := o.deps.Sink.UpdateStatus(ctx, session.ID, domain.StatusCompleted); err != nil {
		return fmt.Errorf("transitioning to completed: %w", err)
	}

	o.log.Info().
		Str("sessionId", session.ID).
		Int("messages", len(history)).
		Bool("degradedConclusion", conclusion.Degraded).
		Msg("session completed")
	return nil
}

func (o *Orchestrator) checkCancelled(ctx context.Context, sessionID string) error {
	current, err := o.deps.Sink.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("checking session status: %w", err)
	}
	if current.Status == domain.StatusCancelled {
		return errCancelled
	}
	return nil
}

// forceStatus records a terminal status outside the (possibly expired) run
// context. Best effort: if the sink itself is down there is nothing left to
// do but log.
func (o *Orchestrator) forceStatus(ctx context.Context, sessionID string, status domain.Status) {
	if err := o.deps.Sink.UpdateStatus(context.WithoutCancel(ctx), sessionID, status); err != nil {
		o.log.Error().Err(err).Str("sessionId", sessionID).Str("status", string(status)).Msg("failed to record terminal status")
	}
}

// resolve validates the request and looks up all speaker identities.
func (o *Orchestrator) resolve(req StartRequest) ([]domain.Participant, *domain.Participant, error) {
	if err := o.validate(req); err != nil {
		return nil, nil, err
	}

	participants := make([]domain.Participant, len(req.ParticipantIDs))
	for i, id := range req.ParticipantIDs {
		p, err := o.deps.Directory.Lookup(id)
		if err != nil {
			return nil, nil, err
		}
		participants[i] = p
	}

	var moderator *domain.Participant
	if req.ModeratorID != "" {
		m, err := o.deps.Directory.Lookup(req.ModeratorID)
		if err != nil {
			return nil, nil, err
		}
		if req.ModeratorPrompt != "" {
			m.SystemPrompt = req.ModeratorPrompt
		}
		moderator = &m
	}

	return participants, moderator, nil
}

func (o *Orchestrator) validate(req StartRequest) error {
	if strings.TrimSpace(req.Topic) == "" {
		return validationErr("topic", "must not be empty")
	}
	if len(req.ParticipantIDs) < minParticipants {
		return validationErr("participant_ids", "need at least %d participants, got %d", minParticipants, len(req.ParticipantIDs))
	}
	if len(req.ParticipantIDs) > o.maxParticipants {
		return validationErr("participant_ids", "at most %d participants allowed, got %d", o.maxParticipants, len(req.ParticipantIDs))
	}

	seen := make(map[string]struct{}, len(req.ParticipantIDs))
	for _, id := range req.ParticipantIDs {
		if _, dup := seen[id]; dup {
			return validationErr("participant_ids", "duplicate participant %q", id)
		}
		seen[id] = struct{}{}
	}
	if req.ModeratorID != "" {
		if _, clash := seen[req.ModeratorID]; clash {
			return validationErr("moderator_id", "moderator %q is also a participant", req.ModeratorID)
		}
	}

	if req.Rounds < minRounds || req.Rounds > maxRounds {
		return validationErr("rounds", "must be in [%d, %d], got %d", minRounds, maxRounds, req.Rounds)
	}
	if req.MaxDurationMins < minDurationMins || req.MaxDurationMins > maxDurationMins {
		return validationErr("max_duration_minutes", "must be in [%d, %d], got %d", minDurationMins, maxDurationMins, req.MaxDurationMins)
	}
	if err := req.Generation.Validate(); err != nil {
		return &ValidationError{Field: "llm_config", Message: err.Error()}
	}
	return nil
}

func applyRequestDefaults(req *StartRequest) {
	if req.Rounds == 0 {
		req.Rounds = defaultRounds
	}
	if req.MaxDurationMins == 0 {
		req.MaxDurationMins = defaultDurationMins
	}
}
