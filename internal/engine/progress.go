package engine

// ProgressComplete is the progress value of a completed session. The last
// 10% is reserved for conclusion synthesis: rounds alone never reach it.
const ProgressComplete = 100.0

// roundShare is the portion of total progress covered by the debate rounds.
const roundShare = 90.0

// RoundProgress maps a completed round to a progress percentage.
// round is 1-based. The result is clamped to [0, 100].
func RoundProgress(round, totalRounds int) float64 {
	if totalRounds <= 0 {
		return 0
	}
	p := float64(round) / float64(totalRounds) * roundShare
	if p < 0 {
		return 0
	}
	if p > ProgressComplete {
		return ProgressComplete
	}
	return p
}
