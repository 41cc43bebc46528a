package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/normalize"
	"github.com/fkhayef/studyhub/internal/store"
)

// Common errors
var (
	ErrUserNotFound       = domain.ErrUserNotFound
	ErrEmailAlreadyInUse  = domain.ErrDuplicateEmail
	ErrInvalidCredentials = domain.ErrInvalidCredentials
)

// Service handles account and profile business logic
type Service struct {
	repo       *Repository
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new user service with repository dependency injected.
// A non-positive bcryptCost selects bcrypt.DefaultCost.
func NewService(repo *Repository, bcryptCost int, logger *zap.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// Register creates a new account. The email must be unused, ignoring case.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	name := normalize.Text(req.Name)
	email := strings.TrimSpace(req.Email)
	switch {
	case name == "":
		return nil, domain.Invalid("name is required")
	case email == "":
		return nil, domain.Invalid("email is required")
	case req.Password == "":
		return nil, domain.Invalid("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.Invalid("password is too long")
		}
		return nil, err
	}

	avatar := strings.TrimSpace(req.AvatarURL)
	if avatar == "" {
		avatar = domain.DefaultAvatarURL
	}

	var created User
	err = s.repo.store.RunInTransaction(ctx, "user.register", func(tx *store.Tx) error {
		var err error
		created, err = tx.CreateUser(domain.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Department:   normalize.Text(req.Department),
			Semester:     normalize.Text(req.Semester),
			AvatarURL:    avatar,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", created.ID))
	return &created, nil
}

// Login verifies credentials: the email matches ignoring case and the
// password matches exactly.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// List retrieves all users with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// UpdateProfile shallow-merges the permitted profile fields. Only the user
// themself may edit a profile, and a new email must not belong to anyone else.
func (s *Service) UpdateProfile(ctx context.Context, actorID, id string, req *UpdateProfileRequest) (*User, error) {
	if actorID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	var updated User
	err := s.repo.store.RunInTransaction(ctx, "user.update_profile", func(tx *store.Tx) error {
		if _, ok := tx.FindUser(actorID); !ok {
			return domain.ErrNotAuthenticated
		}
		if _, ok := tx.FindUser(id); !ok {
			return ErrUserNotFound
		}
		if actorID != id {
			return domain.ErrNotAuthorized
		}

		var err error
		updated, err = tx.UpdateUser(id, func(u *domain.User) error {
			if req.Name != nil {
				name := normalize.Text(*req.Name)
				if name == "" {
					return domain.Invalid("name cannot be empty")
				}
				u.Name = name
			}
			if req.Email != nil {
				email := strings.TrimSpace(*req.Email)
				if email == "" {
					return domain.Invalid("email cannot be empty")
				}
				u.Email = email
			}
			if req.Department != nil {
				u.Department = normalize.Text(*req.Department)
			}
			if req.Semester != nil {
				u.Semester = normalize.Text(*req.Semester)
			}
			if req.AvatarURL != nil {
				u.AvatarURL = strings.TrimSpace(*req.AvatarURL)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Stats returns the dashboard summary for a user
func (s *Service) Stats(ctx context.Context, id string) (*Stats, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Stats{
		GroupsJoined:     len(u.JoinedGroups),
		SessionsAttended: u.SessionsAttended,
	}, nil
}
