// Package domain holds the core types shared across the debate engine:
// sessions, participants, messages, and conclusion records.
package domain

import "time"

// RoleModerator is the reserved speaker role for per-round moderator
// summaries. A moderator is never a member of the participant set.
const RoleModerator = "moderator"

// Participant is the identity of one debate speaker.
type Participant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// Session is one debate: a topic argued over a fixed number of rounds by an
// ordered set of participants, optionally moderated, ending in a synthesized
// conclusion.
type Session struct {
	ID              string   `json:"id"`
	Topic           string   `json:"topic"`
	Rounds          int      `json:"rounds"`
	MaxDurationMins int      `json:"maxDurationMinutes"`
	Status          Status   `json:"status"`
	Progress        float64  `json:"progress"` // 0..100
	ParticipantIDs  []string `json:"participantIds"`
	ModeratorID     string   `json:"moderatorId,omitempty"`
	ModeratorPrompt string   `json:"moderatorPrompt,omitempty"`

	// Conclusion is nil until the session completes. Completed sessions
	// always carry a fully populated (possibly degraded) conclusion.
	Conclusion *ConclusionResult `json:"conclusion,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is a single utterance: one participant's (or the moderator's) turn
// within a round. A failed turn still produces a message carrying an
// error-tagged content string.
type Message struct {
	SessionID   string    `json:"sessionId"`
	SpeakerID   string    `json:"speakerId"`
	SpeakerName string    `json:"speakerName"`
	SpeakerRole string    `json:"speakerRole"`
	Round       int       `json:"round"` // 1-based
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}
