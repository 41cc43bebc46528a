package group

import "github.com/fkhayef/studyhub/internal/domain"

// CreateGroupRequest represents the request to create a new group.
// Topics is free text; entries are separated by commas.
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	CourseName  string `json:"course_name"`
	CourseCode  string `json:"course_code"`
	Description string `json:"description"`
	Topics      string `json:"topics"`
	MaxMembers  int    `json:"max_members"`
	Schedule    string `json:"schedule"`
	Location    string `json:"location"`
	IsPrivate   bool   `json:"is_private"`
}

// UpdateGroupRequest represents the request to update a group. Nil fields are
// left unchanged.
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	CourseName  *string `json:"course_name,omitempty"`
	CourseCode  *string `json:"course_code,omitempty"`
	Description *string `json:"description,omitempty"`
	Topics      *string `json:"topics,omitempty"`
	MaxMembers  *int    `json:"max_members,omitempty"`
	Schedule    *string `json:"schedule,omitempty"`
	Location    *string `json:"location,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	CourseName      string   `json:"course_name"`
	CourseCode      string   `json:"course_code"`
	Description     string   `json:"description"`
	Topics          []string `json:"topics"`
	MaxMembers      int      `json:"max_members"`
	MemberCount     int      `json:"member_count"`
	Schedule        string   `json:"schedule"`
	Location        string   `json:"location"`
	IsPrivate       bool     `json:"is_private"`
	CreatorID       string   `json:"creator_id"`
	Members         []string `json:"members"`
	PendingRequests []string `json:"pending_requests,omitempty"`
	Sessions        []string `json:"sessions"`
	CreatedAt       string   `json:"created_at"`
}

// MemberResponse represents a member in a group roster
type MemberResponse struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	AvatarURL  string `json:"avatar_url"`
	IsCreator  bool   `json:"is_creator"`
}

// JoinResponse reports the outcome of a join call
type JoinResponse struct {
	Outcome JoinOutcome `json:"outcome"`
	Message string      `json:"message"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ToResponse converts a Group to a GroupResponse DTO. Pending requests are
// only disclosed when showPending is set.
func ToResponse(g *Group, showPending bool) *GroupResponse {
	resp := &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		CourseName:  g.CourseName,
		CourseCode:  g.CourseCode,
		Description: g.Description,
		Topics:      orEmpty(g.Topics),
		MaxMembers:  g.MaxMembers,
		MemberCount: len(g.Members),
		Schedule:    g.Schedule,
		Location:    g.Location,
		IsPrivate:   g.IsPrivate,
		CreatorID:   g.CreatorID,
		Members:     orEmpty(g.Members),
		Sessions:    orEmpty(g.Sessions),
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if showPending {
		resp.PendingRequests = orEmpty(g.PendingRequests)
	}
	return resp
}

// ToMemberResponse converts a roster entry to a MemberResponse DTO
func ToMemberResponse(u *domain.User, creatorID string) *MemberResponse {
	return &MemberResponse{
		UserID:     u.ID,
		Name:       u.Name,
		Department: u.Department,
		AvatarURL:  u.AvatarURL,
		IsCreator:  u.ID == creatorID,
	}
}
