package user

import "github.com/fkhayef/studyhub/internal/domain"

// User represents a registered student (alias of domain.User)
type User = domain.User

// Stats is the dashboard summary for a user (alias of domain.UserStats)
type Stats = domain.UserStats
