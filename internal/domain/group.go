package domain

import "time"

// Group capacity bounds. Requested capacities are clamped into this range.
const (
	MinGroupMembers     = 3
	MaxGroupMembers     = 10
	DefaultGroupMembers = 5
)

// Group represents a study group
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CourseName  string    `json:"course_name"`
	CourseCode  string    `json:"course_code"`
	Description string    `json:"description"`
	Topics      []string  `json:"topics"`
	MaxMembers  int       `json:"max_members"`
	Schedule    string    `json:"schedule"`
	Location    string    `json:"location"`
	IsPrivate   bool      `json:"is_private"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Derived views over the store relations.
	Members         []string `json:"members"`
	PendingRequests []string `json:"pending_requests"`
	Sessions        []string `json:"sessions"`
}

// IsFull reports whether the group has reached its capacity.
func (g *Group) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

// ClampMaxMembers applies the default for missing or non-positive values and
// bounds the result to [MinGroupMembers, MaxGroupMembers].
func ClampMaxMembers(n int) int {
	if n <= 0 {
		n = DefaultGroupMembers
	}
	return max(MinGroupMembers, min(MaxGroupMembers, n))
}

// JoinOutcome describes the effect of a successful join call
type JoinOutcome string

const (
	JoinJoined           JoinOutcome = "JOINED"
	JoinRequested        JoinOutcome = "REQUEST_SENT"
	JoinAlreadyRequested JoinOutcome = "REQUEST_ALREADY_SENT"
)

// Message returns a human readable description of the outcome.
func (o JoinOutcome) Message() string {
	switch o {
	case JoinJoined:
		return "Joined group"
	case JoinRequested:
		return "Request sent (private group)"
	case JoinAlreadyRequested:
		return "Request already sent"
	}
	return string(o)
}
