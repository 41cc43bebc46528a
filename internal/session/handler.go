package session

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/studyhub/internal/apierror"
	"github.com/fkhayef/studyhub/pkg/middleware"
	"github.com/fkhayef/studyhub/pkg/response"
)

// Handler handles HTTP requests for session operations
type Handler struct {
	service *Service
}

// NewHandler creates a new session handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for session endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/upcoming", h.Upcoming)
	r.Get("/{id}", h.GetByID)
	r.With(middleware.RequireUser).Post("/{id}/rsvp", h.RSVP)
	r.With(middleware.RequireUser).Post("/{id}/cancel", h.Cancel)

	return r
}

// GroupRoutes returns the router for a group's sessions. It is mounted under
// a path carrying the group id as {id}.
func (h *Handler) GroupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListByGroup)
	r.With(middleware.RequireUser).Post("/", h.Create)

	return r
}

func toResponses(sessions []*Session) []*SessionResponse {
	out := make([]*SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = ToResponse(s)
	}
	return out
}

// Create handles POST /groups/{id}/sessions
// @Summary      Schedule a session
// @Description  Schedule a study session in a group the caller belongs to
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body CreateSessionRequest true "Session request"
// @Success      201 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/sessions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())
	sess, err := h.service.Create(r.Context(), actorID, chi.URLParam(r, "id"), &req)
	if err != nil {
		apierror.Write(w, err, "Failed to create session")
		return
	}

	response.JSON(w, http.StatusCreated, ToResponse(sess))
}

// ListByGroup handles GET /groups/{id}/sessions
// @Summary      List a group's sessions
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]SessionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/sessions [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListByGroupID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to list sessions")
		return
	}
	response.JSON(w, http.StatusOK, toResponses(sessions))
}

// GetByID handles GET /sessions/{id}
// @Summary      Get session by ID
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /sessions/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to get session")
		return
	}
	response.JSON(w, http.StatusOK, ToResponse(sess))
}

// Upcoming handles GET /sessions/upcoming
// @Summary      Upcoming sessions
// @Description  Active sessions from today onwards, earliest first
// @Tags         sessions
// @Produce      json
// @Param        limit query int false "Maximum number of sessions" default(6)
// @Success      200 {object} response.APIResponse{data=[]SessionResponse}
// @Router       /sessions/upcoming [get]
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := h.service.Upcoming(r.Context(), limit)
	if err != nil {
		response.InternalError(w, "Failed to list upcoming sessions")
		return
	}
	response.JSON(w, http.StatusOK, toResponses(sessions))
}

// RSVP handles POST /sessions/{id}/rsvp
// @Summary      RSVP to a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body RSVPRequest true "RSVP status"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /sessions/{id}/rsvp [post]
func (h *Handler) RSVP(w http.ResponseWriter, r *http.Request) {
	var req RSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())
	sess, err := h.service.RSVP(r.Context(), actorID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		apierror.Write(w, err, "Failed to record RSVP")
		return
	}
	response.JSON(w, http.StatusOK, ToResponse(sess))
}

// Cancel handles POST /sessions/{id}/cancel
// @Summary      Cancel a session
// @Description  Session creator or group creator only
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /sessions/{id}/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	sess, err := h.service.Cancel(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to cancel session")
		return
	}
	response.JSON(w, http.StatusOK, ToResponse(sess))
}
