package session

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/normalize"
	"github.com/fkhayef/studyhub/internal/notification"
	"github.com/fkhayef/studyhub/internal/store"
)

// Common errors
var (
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrGroupNotFound   = domain.ErrGroupNotFound
	ErrSessionCanceled = domain.ErrSessionCanceled
	ErrNotAuthorized   = domain.ErrNotAuthorized
)

// Service handles session business logic
type Service struct {
	repo     *Repository
	notifier *notification.Service
	logger   *zap.Logger
}

// NewService creates a new session service
func NewService(repo *Repository, notifier *notification.Service, logger *zap.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Create schedules a session in a group the actor belongs to and notifies
// the other members.
func (s *Service) Create(ctx context.Context, actorID, groupID string, req *CreateSessionRequest) (*Session, error) {
	var created Session
	err := s.repo.store.RunInTransaction(ctx, "session.create", func(tx *store.Tx) error {
		if _, ok := tx.FindUser(actorID); !ok || actorID == "" {
			return domain.ErrNotAuthenticated
		}
		g, ok := tx.FindGroup(groupID)
		if !ok {
			return ErrGroupNotFound
		}
		if !tx.IsMember(groupID, actorID) {
			return ErrNotAuthorized
		}

		title := normalize.Text(req.Title)
		date := normalize.Text(req.Date)
		clock := normalize.Text(req.Time)
		switch {
		case title == "":
			return domain.Invalid("title is required")
		case date == "":
			return domain.Invalid("date is required")
		case clock == "":
			return domain.Invalid("time is required")
		}

		var err error
		created, err = tx.CreateSession(domain.Session{
			GroupID:      groupID,
			Title:        title,
			Topic:        normalize.Text(req.Topic),
			Date:         date,
			Time:         clock,
			DurationMins: req.DurationMins,
			Agenda:       normalize.Text(req.Agenda),
			CreatorID:    actorID,
		})
		if err != nil {
			return err
		}

		recipients := slices.DeleteFunc(slices.Clone(g.Members), func(id string) bool { return id == actorID })
		return s.notifier.NotifySessionScheduled(tx, g, created, recipients)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session scheduled",
		zap.String("session_id", created.ID),
		zap.String("group_id", groupID))
	return &created, nil
}

// RSVP records the actor's attendance intent, replacing any earlier answer
func (s *Service) RSVP(ctx context.Context, actorID, sessionID, status string) (*Session, error) {
	var updated Session
	err := s.repo.store.RunInTransaction(ctx, "session.rsvp", func(tx *store.Tx) error {
		if _, ok := tx.FindUser(actorID); !ok || actorID == "" {
			return domain.ErrNotAuthenticated
		}
		current, ok := tx.FindSession(sessionID)
		if !ok {
			return ErrSessionNotFound
		}
		st, err := domain.ParseRSVPStatus(status)
		if err != nil {
			return err
		}
		if current.Canceled {
			return ErrSessionCanceled
		}

		updated, err = tx.UpdateSession(sessionID, func(sess *domain.Session) error {
			sess.RSVPs[actorID] = st
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Cancel marks a session canceled and notifies everyone who answered the
// RSVP. The session creator and the group creator may cancel; canceling
// twice is a no-op.
func (s *Service) Cancel(ctx context.Context, actorID, sessionID string) (*Session, error) {
	var canceled Session
	err := s.repo.store.RunInTransaction(ctx, "session.cancel", func(tx *store.Tx) error {
		current, ok := tx.FindSession(sessionID)
		if !ok {
			return ErrSessionNotFound
		}
		if _, ok := tx.FindUser(actorID); !ok || actorID == "" {
			return domain.ErrNotAuthenticated
		}
		g, _ := tx.FindGroup(current.GroupID)
		if actorID != current.CreatorID && actorID != g.CreatorID {
			return ErrNotAuthorized
		}
		if current.Canceled {
			canceled = current
			return nil
		}

		var err error
		canceled, err = tx.UpdateSession(sessionID, func(sess *domain.Session) error {
			sess.Canceled = true
			return nil
		})
		if err != nil {
			return err
		}

		var recipients []string
		for uid := range canceled.RSVPs {
			if uid != actorID {
				recipients = append(recipients, uid)
			}
		}
		slices.Sort(recipients)
		return s.notifier.NotifySessionCanceled(tx, canceled, recipients)
	})
	if err != nil {
		return nil, err
	}
	return &canceled, nil
}

// GetByID retrieves a session by its ID. Canceled sessions stay retrievable.
func (s *Service) GetByID(ctx context.Context, id string) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// ListByGroupID retrieves a group's sessions, newest first
func (s *Service) ListByGroupID(ctx context.Context, groupID string) ([]*Session, error) {
	return s.repo.ListByGroupID(ctx, groupID)
}

// Upcoming returns active sessions dated today or later by the store clock,
// earliest first. Sessions whose date cannot be parsed are kept and listed
// after the dated ones. A non-positive limit selects DefaultUpcomingLimit.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.repo.store.Clock().Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	type dated struct {
		sess  *Session
		at    time.Time
		valid bool
	}
	var keep []dated
	for _, sess := range active {
		at, ok := sess.StartsAt(time.UTC)
		if ok && at.Before(today) {
			continue
		}
		keep = append(keep, dated{sess: sess, at: at, valid: ok})
	}
	slices.SortStableFunc(keep, func(a, b dated) int {
		switch {
		case a.valid && !b.valid:
			return -1
		case !a.valid && b.valid:
			return 1
		}
		return a.at.Compare(b.at)
	})

	out := make([]*Session, 0, min(limit, len(keep)))
	for _, d := range keep {
		if len(out) == limit {
			break
		}
		out = append(out, d.sess)
	}
	return out, nil
}
