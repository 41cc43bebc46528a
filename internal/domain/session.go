package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSessionDuration is used when a session is created without a valid
// positive duration.
const DefaultSessionDuration = 60

// Layouts of the free-form date and time fields.
const (
	SessionDateLayout = "2006-01-02"
	SessionTimeLayout = "15:04"
)

// RSVPStatus is a user's declared attendance intent for a session
type RSVPStatus string

const (
	RSVPAttending RSVPStatus = "Attending"
	RSVPMaybe     RSVPStatus = "Maybe"
	RSVPCannot    RSVPStatus = "Cannot"
)

// ParseRSVPStatus validates s against the closed set of statuses. Matching is
// case-insensitive; the canonical spelling is returned.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	for _, st := range []RSVPStatus{RSVPAttending, RSVPMaybe, RSVPCannot} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Session represents a scheduled study session of a group
type Session struct {
	ID           string                `json:"id"`
	GroupID      string                `json:"group_id"`
	Title        string                `json:"title"`
	Topic        string                `json:"topic"`
	Date         string                `json:"date"`
	Time         string                `json:"time"`
	DurationMins int                   `json:"duration_mins"`
	Agenda       string                `json:"agenda"`
	CreatorID    string                `json:"creator_id"`
	Canceled     bool                  `json:"canceled"`
	RSVPs        map[string]RSVPStatus `json:"rsvps"`
	CreatedAt    time.Time             `json:"created_at"`
}

// StartsAt parses Date and Time in loc. ok is false when Date is not a valid
// calendar date; a missing or malformed Time is treated as midnight.
func (s *Session) StartsAt(loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(SessionDateLayout, strings.TrimSpace(s.Date), loc)
	if err != nil {
		return time.Time{}, false
	}
	if clock, err := time.Parse(SessionTimeLayout, strings.TrimSpace(s.Time)); err == nil {
		day = day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	}
	return day, true
}
