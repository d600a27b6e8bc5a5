package domain

// ConclusionResult is the structured outcome of conclusion synthesis.
// Every field always has a value: when synthesis degrades, the fields take
// their zero-value defaults rather than being absent.
type ConclusionResult struct {
	FinalConclusion     string              `json:"final_conclusion"`
	ConfidenceScore     float64             `json:"confidence_score"` // 0..1
	ConsensusPoints     []string            `json:"consensus_points"`
	DivergentViews      []string            `json:"divergent_views"`
	KeyArguments        map[string][]string `json:"key_arguments"`
	PreliminaryInsights []string            `json:"preliminary_insights"`

	// Degraded marks a conclusion recovered from an unparseable synthesis
	// reply. Not serialized.
	Degraded bool `json:"-"`
}

// EmptyConclusion returns a ConclusionResult with all fields at their
// defaults (empty collections, never nil).
func EmptyConclusion() ConclusionResult {
	return ConclusionResult{
		ConsensusPoints:     []string{},
		DivergentViews:      []string{},
		KeyArguments:        map[string][]string{},
		PreliminaryInsights: []string{},
	}
}
