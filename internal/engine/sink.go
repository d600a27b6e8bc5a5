package engine

import (
	"context"

	"github.com/arbiterlabs/symposium/internal/domain"
)

// Sink is the persistence boundary the engine writes through. A sink failure
// is the one error class that escapes per-turn containment and fails the
// session.
type Sink interface {
	// CreateSession persists a new session record.
	CreateSession(ctx context.Context, s *domain.Session) error

	// AppendMessage persists one turn.
	AppendMessage(ctx context.Context, msg domain.Message) error

	// UpdateProgress sets the session's progress percentage (0..100).
	UpdateProgress(ctx context.Context, sessionID string, percent float64) error

	// UpdateStatus sets the session's lifecycle status.
	UpdateStatus(ctx context.Context, sessionID string, status domain.Status) error

	// SaveConclusion stores the synthesized conclusion fields.
	SaveConclusion(ctx context.Context, sessionID string, c domain.ConclusionResult) error

	// GetSession returns the current session record, or ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Directory resolves participant ids to identities. Agent definitions are
// owned by the caller; the engine only looks them up.
type Directory interface {
	Lookup(id string) (domain.Participant, error)
}

// StaticDirectory is a Directory backed by a fixed participant list.
type StaticDirectory map[string]domain.Participant

// NewStaticDirectory builds a directory from a participant slice.
func NewStaticDirectory(participants []domain.Participant) StaticDirectory {
	d := make(StaticDirectory, len(participants))
	for _, p := range participants {
		d[p.ID] = p
	}
	return d
}

func (d StaticDirectory) Lookup(id string) (domain.Participant, error) {
	p, ok := d[id]
	if !ok {
		return domain.Participant{}, validationErr("participant_ids", "unknown participant %q", id)
	}
	return p, nil
}
