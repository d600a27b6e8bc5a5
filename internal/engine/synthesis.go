package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/llm"
	"github.com/arbiterlabs/symposium/internal/logging"
)

// conclusionPlaceholder is the final_conclusion default used when the
// synthesis reply parses but omits the field.
const conclusionPlaceholder = "unable to generate a conclusion"

// excerptRunes bounds each message excerpt in the history digest, keeping
// the synthesis prompt size independent of debate length.
const excerptRunes = 200

// synthesisSystemPrompt frames the capability as a neutral analyst.
const synthesisSystemPrompt = "You are a professional debate analyst, skilled at summarizing and analyzing multi-round debates."

// Synthesizer turns the accumulated debate history into a structured
// conclusion. It issues exactly one generation call and always returns a
// fully populated ConclusionResult, degrading instead of failing.
type Synthesizer struct {
	client llm.Client
	log    *logging.Logger
}

// NewSynthesizer creates a conclusion synthesizer.
func NewSynthesizer(client llm.Client, log *logging.Logger) *Synthesizer {
	return &Synthesizer{client: client, log: log.Sub("synthesis")}
}

// Synthesize builds the history digest, requests a structured conclusion,
// and recovers a well-formed result from the reply. requirements is
// optional caller guidance appended to the prompt.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, participants []domain.Participant, history []domain.Message, requirements string) domain.ConclusionResult {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}

	req := llm.CompletionRequest{
		System: synthesisSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: conclusionPrompt(topic, names, historyDigest(history), requirements),
		}},
		// Low randomness: the reply must parse as JSON.
		Temperature: llm.Float64(0.3),
		MaxTokens:   2000,
	}

	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Msg("synthesis call failed, returning degraded conclusion")
		c := domain.EmptyConclusion()
		c.FinalConclusion = "conclusion generation failed: " + err.Error()
		c.Degraded = true
		return c
	}

	obj, ok := recoverJSON(resp.Content)
	if !ok {
		s.log.Warn().Int("replyChars", len(resp.Content)).Msg("synthesis reply unparseable, keeping raw text")
		c := domain.EmptyConclusion()
		c.FinalConclusion = strings.TrimSpace(resp.Content)
		c.Degraded = true
		return c
	}

	return fillConclusion(obj)
}

// historyDigest renders the debate grouped by round with bounded excerpts.
func historyDigest(history []domain.Message) string {
	byRound := make(map[int][]domain.Message)
	for _, m := range history {
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	slices.Sort(rounds)

	var sections []string
	for _, r := range rounds {
		var b strings.Builder
		fmt.Fprintf(&b, "Round %d:", r)
		for _, m := range byRound[r] {
			fmt.Fprintf(&b, "\n  - [%s]: %s", m.SpeakerName, excerpt(m.Content))
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n")
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptRunes {
		return s
	}
	return string(runes[:excerptRunes]) + "..."
}

func conclusionPrompt(topic string, names []string, digest, requirements string) string {
	var b strings.Builder
	b.WriteString("You are a professional debate analyst. Produce a comprehensive analysis report based on the debate below.\n\n")
	fmt.Fprintf(&b, "Debate topic: %s\n\n", topic)
	fmt.Fprintf(&b, "Participants: %s\n\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "Debate history summary:\n%s\n\n", digest)
	b.WriteString(`Generate a structured analysis report with the following fields:
1. final_conclusion: a synthesized final conclusion covering the main points and consensus
2. confidence_score: a confidence score for the conclusion (0.0-1.0)
3. consensus_points: a list of points the participants agreed on
4. divergent_views: a list of views the participants disagreed on
5. key_arguments: a mapping from role to its list of key arguments
6. preliminary_insights: a list of preliminary insights drawn from the debate
`)
	if requirements != "" {
		fmt.Fprintf(&b, "\nAdditional requirements for the conclusion:\n%s\n", requirements)
	}
	b.WriteString("\nReturn the result as a single JSON object. Make sure the JSON is well formed.")
	return b.String()
}
