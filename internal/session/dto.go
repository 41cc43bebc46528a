package session

import "github.com/fkhayef/studyhub/internal/domain"

// CreateSessionRequest represents the request to schedule a session
type CreateSessionRequest struct {
	Title        string `json:"title" validate:"required"`
	Topic        string `json:"topic"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time" validate:"required"`
	DurationMins int    `json:"duration_mins"`
	Agenda       string `json:"agenda"`
}

// RSVPRequest represents the request to declare attendance
type RSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=Attending Maybe Cannot"`
}

// SessionResponse represents the response for a session
type SessionResponse struct {
	ID           string            `json:"id"`
	GroupID      string            `json:"group_id"`
	Title        string            `json:"title"`
	Topic        string            `json:"topic"`
	Date         string            `json:"date"`
	Time         string            `json:"time"`
	DurationMins int               `json:"duration_mins"`
	Agenda       string            `json:"agenda"`
	CreatorID    string            `json:"creator_id"`
	Canceled     bool              `json:"canceled"`
	RSVPs        map[string]string `json:"rsvps"`
	Attending    int               `json:"attending"`
	CreatedAt    string            `json:"created_at"`
}

// ToResponse converts a Session to a SessionResponse DTO
func ToResponse(s *Session) *SessionResponse {
	rsvps := make(map[string]string, len(s.RSVPs))
	attending := 0
	for uid, st := range s.RSVPs {
		rsvps[uid] = string(st)
		if st == domain.RSVPAttending {
			attending++
		}
	}
	return &SessionResponse{
		ID:           s.ID,
		GroupID:      s.GroupID,
		Title:        s.Title,
		Topic:        s.Topic,
		Date:         s.Date,
		Time:         s.Time,
		DurationMins: s.DurationMins,
		Agenda:       s.Agenda,
		CreatorID:    s.CreatorID,
		Canceled:     s.Canceled,
		RSVPs:        rsvps,
		Attending:    attending,
		CreatedAt:    s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
