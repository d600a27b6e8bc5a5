package engine

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/arbiterlabs/symposium/internal/domain"
)

// Fenced code block patterns. The labeled form wins over the generic one so
// a reply that mixes prose and a ```json block parses cleanly.
var (
	jsonFenceRe = regexp.MustCompile("(?s)```\\s*json\\s*(.*?)\\s*```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// recoverJSON extracts a JSON object from a possibly malformed synthesis
// reply. The cascade: strip a json-labeled fence, else any fence, else use
// the raw text; parse directly; retry after light repairs (BOM, leading
// whitespace, curly quotes); finally retry with embedded newlines collapsed,
// which tolerates pretty-printed JSON carrying literal newlines inside
// string values.
func recoverJSON(raw string) (map[string]any, bool) {
	text := raw
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if m := anyFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	text = strings.TrimSpace(text)

	if obj, ok := parseObject(text); ok {
		return obj, true
	}

	repaired := repairJSON(text)
	if obj, ok := parseObject(repaired); ok {
		return obj, true
	}

	collapsed := collapseNewlines(repaired)
	if obj, ok := parseObject(collapsed); ok {
		return obj, true
	}

	return nil, false
}

func parseObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// repairJSON applies the light fixes that rescue most near-valid replies.
func repairJSON(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.TrimLeft(text, "\n\r \t")
	replacer := strings.NewReplacer(
		"“", `"`, // left double curly quote
		"”", `"`, // right double curly quote
	)
	return replacer.Replace(text)
}

var newlineRunRe = regexp.MustCompile(`[\r\n]\s*`)

func collapseNewlines(text string) string {
	return newlineRunRe.ReplaceAllString(text, " ")
}

// fillConclusion maps a parsed object onto a ConclusionResult with explicit
// per-field defaults; missing or mistyped keys never propagate as nulls.
func fillConclusion(obj map[string]any) domain.ConclusionResult {
	c := domain.EmptyConclusion()

	c.FinalConclusion = stringField(obj, "final_conclusion", conclusionPlaceholder)
	c.ConfidenceScore = clamp01(floatField(obj, "confidence_score"))
	c.ConsensusPoints = stringListField(obj, "consensus_points")
	c.DivergentViews = stringListField(obj, "divergent_views")
	c.PreliminaryInsights = stringListField(obj, "preliminary_insights")

	if m, ok := obj["key_arguments"].(map[string]any); ok {
		for role, v := range m {
			c.KeyArguments[role] = toStringList(v)
		}
	}

	return c
}

func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func floatField(obj map[string]any, key string) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

func stringListField(obj map[string]any, key string) []string {
	if v, ok := obj[key]; ok {
		return toStringList(v)
	}
	return []string{}
}

func toStringList(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		if list != "" {
			out = append(out, list)
		}
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
