package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/llm"
	"github.com/arbiterlabs/symposium/internal/logging"
)

// turnErrorPrefix tags messages produced by a failed turn. The turn is kept
// in the history instead of being dropped or retried.
const turnErrorPrefix = "[error] unable to get response: "

// maxErrorLen bounds the error text carried in a failed turn's message.
const maxErrorLen = 500

// TurnExecutor produces exactly one message for one speaker in one round.
// Any generation failure is converted into an error-tagged message; it never
// returns an error.
type TurnExecutor struct {
	client llm.Client
	opts   llm.GenOptions
	log    *logging.Logger
}

// NewTurnExecutor creates a turn executor bound to one generation client.
func NewTurnExecutor(client llm.Client, opts llm.GenOptions, log *logging.Logger) *TurnExecutor {
	return &TurnExecutor{client: client, opts: opts, log: log.Sub("turn")}
}

// Execute runs one participant's turn. The assembled context contains only
// messages from rounds before round: participants within a round never see
// each other, which keeps them context-equivalent and safe to run
// concurrently.
func (e *TurnExecutor) Execute(ctx context.Context, p domain.Participant, topic, subTopic string, history []domain.Message, round int) domain.Message {
	req := llm.CompletionRequest{
		System:   p.SystemPrompt,
		Messages: append(visibleHistory(history, round), instructionTurn(topic, subTopic)),
	}
	e.opts.Apply(&req)

	content := e.complete(ctx, req)
	return domain.Message{
		SpeakerID:   p.ID,
		SpeakerName: p.Name,
		SpeakerRole: p.Role,
		Round:       round,
		Content:     content,
		Timestamp:   time.Now().UTC(),
	}
}

// Summarize runs the moderator's per-round summary turn. Failures are
// contained exactly like participant turns.
func (e *TurnExecutor) Summarize(ctx context.Context, moderator domain.Participant, topic string, roundMsgs []domain.Message, round int) domain.Message {
	var b strings.Builder
	for _, m := range roundMsgs {
		fmt.Fprintf(&b, "[%s]: %s\n", m.SpeakerName, m.Content)
	}

	prompt := fmt.Sprintf(
		"This is round %d of the debate.\nTopic: %s\nStatements this round:\n%s\nSummarize the key points, agreements, and disagreements of this round.",
		round, topic, b.String(),
	)

	req := llm.CompletionRequest{
		System:   moderator.SystemPrompt,
		Messages: []llm.Message{{Role: llm.RoleSystem, Content: prompt}},
	}
	e.opts.Apply(&req)

	content := e.complete(ctx, req)
	return domain.Message{
		SpeakerID:   moderator.ID,
		SpeakerName: moderator.Name,
		SpeakerRole: domain.RoleModerator,
		Round:       round,
		Content:     content,
		Timestamp:   time.Now().UTC(),
	}
}

// complete issues the generation call and normalizes the reply, converting
// any failure into a bounded error string.
func (e *TurnExecutor) complete(ctx context.Context, req llm.CompletionRequest) string {
	resp, err := e.client.Complete(ctx, req)
	if err != nil {
		e.log.Warn().Err(err).Msg("turn failed, recording error message")
		return turnErrorContent(err)
	}
	return normalizeReply(resp.Content)
}

// turnErrorContent truncates on a rune boundary so a multi-byte error
// message never yields invalid UTF-8.
func turnErrorContent(err error) string {
	text := err.Error()
	if runes := []rune(text); len(runes) > maxErrorLen {
		text = string(runes[:maxErrorLen])
	}
	return turnErrorPrefix + text
}

// IsTurnError reports whether a message content was produced by a failed
// turn.
func IsTurnError(content string) bool {
	return strings.HasPrefix(content, turnErrorPrefix)
}

// visibleHistory converts all messages from rounds before round into
// role-tagged conversation turns. Prior speakers appear as named user turns.
func visibleHistory(history []domain.Message, round int) []llm.Message {
	var msgs []llm.Message
	for _, m := range history {
		if m.Round >= round {
			continue
		}
		msgs = append(msgs, llm.Message{
			Role:    llm.RoleUser,
			Name:    m.SpeakerName,
			Content: m.Content,
		})
	}
	return msgs
}

// instructionTurn is the synthetic system turn carrying the topic and
// round guidance for the current turn.
func instructionTurn(topic, subTopic string) llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "The debate topic is: %s\n", topic)
	if subTopic != "" {
		fmt.Fprintf(&b, "This round focuses on: %s\n", subTopic)
	}
	b.WriteString("\nSpeak from your assigned role and position. Respond to the earlier discussion where there is any, keep your statement concise, and make your key points explicit.")
	return llm.Message{Role: llm.RoleSystem, Content: b.String()}
}

// normalizeReply extracts usable text from a reply. Providers occasionally
// wrap the text in a JSON object; the conventional content keys are checked
// in order before falling back to the raw text.
func normalizeReply(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "{") {
		return text
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return text
	}

	for _, key := range []string{"content", "text", "message", "response"} {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return text
}
