package session

import "github.com/fkhayef/studyhub/internal/domain"

// Session represents a scheduled study session
type Session = domain.Session

// RSVPStatus is a user's declared attendance intent
type RSVPStatus = domain.RSVPStatus

// DefaultUpcomingLimit is how many sessions the dashboard shows
const DefaultUpcomingLimit = 6
