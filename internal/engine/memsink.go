package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arbiterlabs/symposium/internal/domain"
)

// MemorySink is an in-memory Sink implementation. It records the full
// progress and status histories, which makes it the natural test double, and
// serves as the store when no database path is configured.
type MemorySink struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	messages map[string][]domain.Message
	progress map[string][]float64
	statuses map[string][]domain.Status
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		sessions: make(map[string]*domain.Session),
		messages: make(map[string][]domain.Message),
		progress: make(map[string][]float64),
		statuses: make(map[string][]domain.Status),
	}
}

func (m *MemorySink) CreateSession(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.sessions[s.ID] = &clone
	m.statuses[s.ID] = append(m.statuses[s.ID], s.Status)
	return nil
}

func (m *MemorySink) AppendMessage(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], msg)
	return nil
}

func (m *MemorySink) UpdateProgress(_ context.Context, id string, percent float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Progress = percent
	s.UpdatedAt = time.Now()
	m.progress[id] = append(m.progress[id], percent)
	return nil
}

func (m *MemorySink) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if !s.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, s.Status, status)
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	m.statuses[id] = append(m.statuses[id], status)
	return nil
}

func (m *MemorySink) SaveConclusion(_ context.Context, id string, c domain.ConclusionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Conclusion = &c
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MemorySink) GetSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

// Messages returns all persisted messages for a session in append order.
func (m *MemorySink) Messages(id string) []domain.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Message, len(m.messages[id]))
	copy(out, m.messages[id])
	return out
}

// ProgressHistory returns every progress value pushed for a session.
func (m *MemorySink) ProgressHistory(id string) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, len(m.progress[id]))
	copy(out, m.progress[id])
	return out
}

// StatusHistory returns every status the session has held, in order.
func (m *MemorySink) StatusHistory(id string) []domain.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Status, len(m.statuses[id]))
	copy(out, m.statuses[id])
	return out
}

// Sessions returns the ids of all stored sessions.
func (m *MemorySink) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
