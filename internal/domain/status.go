package domain

// Status is the lifecycle state of a debate session.
type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal transition.
// Terminal states have no outgoing transitions. Cancellation is allowed from
// any non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StatusCreated:
		return next == StatusRunning || next == StatusFailed || next == StatusCancelled
	case StatusRunning:
		switch next {
		case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled:
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
