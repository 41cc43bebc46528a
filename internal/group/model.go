package group

import "github.com/fkhayef/studyhub/internal/domain"

// Group represents a study group
type Group = domain.Group

// JoinOutcome describes what a successful join did
type JoinOutcome = domain.JoinOutcome

// Member is a user as seen from a group roster
type Member = domain.User

// SearchQuery filters groups by free text and course
type SearchQuery struct {
	Query  string
	Course string
}
