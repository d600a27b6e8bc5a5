package engine

import (
	"strings"

	"github.com/arbiterlabs/symposium/internal/domain"
)

// RoundTopicAssigner maps a round number to a sub-topic. The sub-topic is
// injected into each participant's instruction turn for that round; an empty
// string means the round sticks to the session topic.
type RoundTopicAssigner interface {
	SubTopic(round int) string
}

// SpeakingOrderPolicy orders the participants for one round given its
// sub-topic.
type SpeakingOrderPolicy interface {
	Order(subTopic string, participants []domain.Participant) []domain.Participant
}

// IdentityAssigner leaves every round on the session topic.
type IdentityAssigner struct{}

func (IdentityAssigner) SubTopic(int) string { return "" }

// ConfiguredOrder keeps the configured participant order for every round.
type ConfiguredOrder struct{}

func (ConfiguredOrder) Order(_ string, participants []domain.Participant) []domain.Participant {
	return participants
}

// FocusedTopicAssigner cycles each round through a fixed sub-topic list.
// Rounds beyond the list fall back to the session topic.
type FocusedTopicAssigner struct {
	SubTopics []string
}

func (a FocusedTopicAssigner) SubTopic(round int) string {
	if len(a.SubTopics) == 0 {
		return ""
	}
	return a.SubTopics[(round-1)%len(a.SubTopics)]
}

// RoleLeadOrderPolicy moves participants whose role contains the round's
// lead keyword to the front, keeping relative order otherwise stable. Leads
// maps a sub-topic to the role keyword that should open that round.
type RoleLeadOrderPolicy struct {
	Leads map[string]string
}

func (p RoleLeadOrderPolicy) Order(subTopic string, participants []domain.Participant) []domain.Participant {
	keyword, ok := p.Leads[subTopic]
	if !ok || keyword == "" {
		return participants
	}

	ordered := make([]domain.Participant, 0, len(participants))
	var rest []domain.Participant
	for _, part := range participants {
		if strings.Contains(strings.ToLower(part.Role), strings.ToLower(keyword)) {
			ordered = append(ordered, part)
		} else {
			rest = append(rest, part)
		}
	}
	return append(ordered, rest...)
}
