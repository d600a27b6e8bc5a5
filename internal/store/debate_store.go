package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/engine"
)

// timeFormat is the canonical timestamp encoding. RFC3339Nano keeps UTC and
// sub-second ordering across restarts.
const timeFormat = time.RFC3339Nano

// DebateStore implements engine.Sink backed by SQLite, plus the read-side
// queries the CLI needs.
type DebateStore struct {
	db *DB
}

// NewDebateStore creates a debate store using the given database.
func NewDebateStore(db *DB) *DebateStore {
	return &DebateStore{db: db}
}

func (s *DebateStore) CreateSession(ctx context.Context, sess *domain.Session) error {
	ids, err := json.Marshal(sess.ParticipantIDs)
	if err != nil {
		return fmt.Errorf("encoding participant ids: %w", err)
	}

	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO sessions (id, topic, rounds, max_duration_mins, status, progress,
			participant_ids, moderator_id, moderator_prompt, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Topic, sess.Rounds, sess.MaxDurationMins, string(sess.Status), sess.Progress,
		string(ids), sess.ModeratorID, sess.ModeratorPrompt,
		sess.CreatedAt.UTC().Format(timeFormat), sess.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (s *DebateStore) AppendMessage(ctx context.Context, msg domain.Message) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO messages (session_id, speaker_id, speaker_name, speaker_role, round, content, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.SessionID, msg.SpeakerID, msg.SpeakerName, msg.SpeakerRole,
		msg.Round, msg.Content, msg.Timestamp.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *DebateStore) UpdateProgress(ctx context.Context, sessionID string, percent float64) error {
	return s.updateSession(ctx, sessionID,
		"UPDATE sessions SET progress = ?, updated_at = ? WHERE id = ?",
		percent, now(), sessionID)
}

// UpdateStatus writes the new status with the terminal guard inside the
// UPDATE itself, so a concurrent writer can never resurrect a finished
// session.
func (s *DebateStore) UpdateStatus(ctx context.Context, sessionID string, status domain.Status) error {
	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?
		 AND status NOT IN ('completed', 'failed', 'expired', 'cancelled')`,
		string(status), now(), sessionID)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		current, err := s.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s", engine.ErrInvalidStateTransition, current.Status, status)
	}
	return nil
}

func (s *DebateStore) SaveConclusion(ctx context.Context, sessionID string, c domain.ConclusionResult) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding conclusion: %w", err)
	}
	return s.updateSession(ctx, sessionID,
		"UPDATE sessions SET conclusion = ?, updated_at = ? WHERE id = ?",
		string(data), now(), sessionID)
}

func (s *DebateStore) updateSession(ctx context.Context, sessionID, query string, args ...any) error {
	res, err := s.db.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrSessionNotFound
	}
	return nil
}

func (s *DebateStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.sql.QueryRowContext(ctx,
		`SELECT id, topic, rounds, max_duration_mins, status, progress,
			participant_ids, moderator_id, moderator_prompt, conclusion, created_at, updated_at
		 FROM sessions WHERE id = ?`, sessionID)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrSessionNotFound
	}
	return sess, err
}

// ListSessions returns all sessions, newest first, without messages.
func (s *DebateStore) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, topic, rounds, max_duration_mins, status, progress,
			participant_ids, moderator_id, moderator_prompt, conclusion, created_at, updated_at
		 FROM sessions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Messages returns a session's messages in commit order.
func (s *DebateStore) Messages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT session_id, speaker_id, speaker_name, speaker_role, round, content, timestamp
		 FROM messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var ts string
		if err := rows.Scan(&m.SessionID, &m.SpeakerID, &m.SpeakerName, &m.SpeakerRole,
			&m.Round, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if m.Timestamp, err = time.Parse(timeFormat, ts); err != nil {
			return nil, fmt.Errorf("parsing message timestamp: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MessageCount returns the number of messages persisted for a session.
func (s *DebateStore) MessageCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE session_id = ?", sessionID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var sess domain.Session
	var status, ids, createdAt, updatedAt string
	var conclusion sql.NullString

	err := row.Scan(&sess.ID, &sess.Topic, &sess.Rounds, &sess.MaxDurationMins,
		&status, &sess.Progress, &ids, &sess.ModeratorID, &sess.ModeratorPrompt,
		&conclusion, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	sess.Status = domain.Status(status)
	if err := json.Unmarshal([]byte(ids), &sess.ParticipantIDs); err != nil {
		return nil, fmt.Errorf("decoding participant ids: %w", err)
	}
	if conclusion.Valid {
		var c domain.ConclusionResult
		if err := json.Unmarshal([]byte(conclusion.String), &c); err != nil {
			return nil, fmt.Errorf("decoding conclusion: %w", err)
		}
		sess.Conclusion = &c
	}
	if sess.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if sess.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &sess, nil
}

func now() string {
	return time.Now().UTC().Format(timeFormat)
}
