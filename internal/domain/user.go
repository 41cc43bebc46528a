package domain

import "time"

// DefaultAvatarURL is assigned to users registering without an avatar.
const DefaultAvatarURL = "https://source.unsplash.com/200x200/?face"

// User represents a registered student
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Department       string    `json:"department"`
	Semester         string    `json:"semester"`
	AvatarURL        string    `json:"avatar_url"`
	SessionsAttended int       `json:"sessions_attended"`
	CreatedAt        time.Time `json:"created_at"`

	// Derived from the membership relation; never written directly.
	JoinedGroups []string `json:"joined_groups"`
}

// UserStats is the dashboard summary for a user
type UserStats struct {
	GroupsJoined     int `json:"groups_joined"`
	SessionsAttended int `json:"sessions_attended"`
}
