package group

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/studyhub/internal/apierror"
	"github.com/fkhayef/studyhub/pkg/middleware"
	"github.com/fkhayef/studyhub/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/members", h.GetMembers)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)

		// Membership
		r.Post("/{id}/join", h.Join)
		r.Post("/{id}/leave", h.Leave)
		r.Get("/{id}/requests", h.GetPendingRequests)
		r.Post("/{id}/requests/{userId}/approve", h.Approve)
		r.Post("/{id}/requests/{userId}/reject", h.Reject)
	})

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a study group; the creator becomes its first member
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())
	g, err := h.service.Create(r.Context(), actorID, &req)
	if err != nil {
		apierror.Write(w, err, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, ToResponse(g, true))
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Description  Get a single group; pending requests are shown to its creator only
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to get group")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())
	response.JSON(w, http.StatusOK, ToResponse(g, actorID == g.CreatorID))
}

// List handles GET /groups
// @Summary      Search groups
// @Description  List groups newest first, optionally filtered by text and course
// @Tags         groups
// @Produce      json
// @Param        q query string false "Matches name, course name, course code or description"
// @Param        course query string false "Course name filter"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	q := SearchQuery{
		Query:  r.URL.Query().Get("q"),
		Course: r.URL.Query().Get("course"),
	}
	groups, total, err := h.service.Search(r.Context(), q, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())
	groupResponses := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		groupResponses[i] = ToResponse(g, actorID == g.CreatorID)
	}

	response.JSONWithMeta(w, http.StatusOK, groupResponses, response.NewMeta(page, perPage, total))
}

// ListMine handles GET /groups/mine
// @Summary      My groups
// @Description  Groups the signed-in user belongs to, in join order
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /groups/mine [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	groups, err := h.service.ListByUserID(r.Context(), actorID)
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	groupResponses := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		groupResponses[i] = ToResponse(g, actorID == g.CreatorID)
	}
	response.JSON(w, http.StatusOK, groupResponses)
}

// Update handles PUT /groups/{id}
// @Summary      Update a group
// @Description  Edit group details; creator only
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())
	g, err := h.service.Update(r.Context(), actorID, chi.URLParam(r, "id"), &req)
	if err != nil {
		apierror.Write(w, err, "Failed to update group")
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(g, true))
}

// Delete handles DELETE /groups/{id}
// @Summary      Delete a group
// @Description  Delete a group and its sessions; creator only
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		apierror.Write(w, err, "Failed to delete group")
		return
	}

	response.Message(w, http.StatusOK, "Group deleted successfully")
}

// Join handles POST /groups/{id}/join
// @Summary      Join a group
// @Description  Join a public group or request to join a private one
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=JoinResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	outcome, err := h.service.Join(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to join group")
		return
	}

	response.JSON(w, http.StatusOK, JoinResponse{Outcome: outcome, Message: outcome.Message()})
}

// Leave handles POST /groups/{id}/leave
// @Summary      Leave a group
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/leave [post]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	if err := h.service.Leave(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		apierror.Write(w, err, "Failed to leave group")
		return
	}

	response.Message(w, http.StatusOK, "Left group")
}

// GetMembers handles GET /groups/{id}/members
// @Summary      Get group members
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members [get]
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	g, err := h.service.GetByID(r.Context(), groupID)
	if err != nil {
		apierror.Write(w, err, "Failed to get members")
		return
	}
	members, err := h.service.GetMembers(r.Context(), groupID)
	if err != nil {
		apierror.Write(w, err, "Failed to get members")
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = ToMemberResponse(m, g.CreatorID)
	}
	response.JSON(w, http.StatusOK, memberResponses)
}

// GetPendingRequests handles GET /groups/{id}/requests
// @Summary      Pending join requests
// @Description  Users waiting for approval; creator only
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/requests [get]
func (h *Handler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	pending, err := h.service.PendingRequests(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to get requests")
		return
	}

	resp := make([]*MemberResponse, len(pending))
	for i, u := range pending {
		resp[i] = ToMemberResponse(u, "")
	}
	response.JSON(w, http.StatusOK, resp)
}

// Approve handles POST /groups/{id}/requests/{userId}/approve
// @Summary      Approve a join request
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        userId path string true "Requesting user ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/requests/{userId}/approve [post]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	if err := h.service.Approve(r.Context(), actorID, chi.URLParam(r, "id"), chi.URLParam(r, "userId")); err != nil {
		apierror.Write(w, err, "Failed to approve request")
		return
	}

	response.Message(w, http.StatusOK, "Request approved")
}

// Reject handles POST /groups/{id}/requests/{userId}/reject
// @Summary      Reject a join request
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        userId path string true "Requesting user ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/requests/{userId}/reject [post]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	if err := h.service.Reject(r.Context(), actorID, chi.URLParam(r, "id"), chi.URLParam(r, "userId")); err != nil {
		apierror.Write(w, err, "Failed to reject request")
		return
	}

	response.Message(w, http.StatusOK, "Request rejected")
}
