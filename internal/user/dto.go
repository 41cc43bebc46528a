package user

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Department string `json:"department"`
	Semester   string `json:"semester"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents the request body for editing a profile.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
	Semester   *string `json:"semester,omitempty"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Department       string   `json:"department"`
	Semester         string   `json:"semester"`
	AvatarURL        string   `json:"avatar_url"`
	JoinedGroups     []string `json:"joined_groups"`
	SessionsAttended int      `json:"sessions_attended"`
	CreatedAt        string   `json:"created_at"`
}

// ToResponse converts a User to a UserResponse DTO
func ToResponse(u *User) *UserResponse {
	joined := u.JoinedGroups
	if joined == nil {
		joined = []string{}
	}
	return &UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Department:       u.Department,
		Semester:         u.Semester,
		AvatarURL:        u.AvatarURL,
		JoinedGroups:     joined,
		SessionsAttended: u.SessionsAttended,
		CreatedAt:        u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
