package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/studyhub/internal/apierror"
	"github.com/fkhayef/studyhub/pkg/middleware"
	"github.com/fkhayef/studyhub/pkg/response"
)

// Handler handles HTTP requests for account and profile operations
type Handler struct {
	service *Service
	auth    *middleware.SessionAuth
	logger  *zap.Logger
}

// NewHandler creates a new user handler with its dependencies injected
func NewHandler(service *Service, auth *middleware.SessionAuth, logger *zap.Logger) *Handler {
	return &Handler{service: service, auth: auth, logger: logger}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/stats", h.Stats)
	r.With(middleware.RequireUser).Put("/{id}", h.UpdateProfile)

	return r
}

// AuthRoutes returns the router for sign-up and sign-in endpoints
func (h *Handler) AuthRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.With(middleware.RequireUser).Get("/me", h.Me)

	return r
}

// Register handles POST /auth/register
// @Summary      Create an account
// @Description  Register a new user and sign them in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), &req)
	if err != nil {
		apierror.Write(w, err, "Failed to register")
		return
	}
	if err := h.auth.SignIn(w, r, u.ID); err != nil {
		h.logger.Error("saving session", zap.Error(err))
		response.InternalError(w, "Failed to sign in")
		return
	}

	response.JSON(w, http.StatusCreated, ToResponse(u))
}

// Login handles POST /auth/login
// @Summary      Sign in
// @Description  Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.Login(r.Context(), &req)
	if err != nil {
		apierror.Write(w, err, "Failed to sign in")
		return
	}
	if err := h.auth.SignIn(w, r, u.ID); err != nil {
		h.logger.Error("saving session", zap.Error(err))
		response.InternalError(w, "Failed to sign in")
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(u))
}

// Logout handles POST /auth/logout
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(w, r); err != nil {
		h.logger.Error("clearing session", zap.Error(err))
		response.InternalError(w, "Failed to sign out")
		return
	}
	response.Message(w, http.StatusOK, "Signed out")
}

// Me handles GET /auth/me
// @Summary      Current user
// @Description  Get the signed-in user
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetUserID(r.Context())
	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		// A cookie naming a vanished user is not a valid sign-in.
		response.Unauthorized(w, "Sign in required")
		return
	}
	response.JSON(w, http.StatusOK, ToResponse(u))
}

// GetByID handles GET /users/{id}
// @Summary      Get user by ID
// @Description  Get a single user by their ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to get user")
		return
	}
	response.JSON(w, http.StatusOK, ToResponse(u))
}

// List handles GET /users
// @Summary      List all users
// @Description  Get a paginated list of all users, newest first
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]UserResponse}
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	users, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	userResponses := make([]*UserResponse, len(users))
	for i, u := range users {
		userResponses[i] = ToResponse(u)
	}

	response.JSONWithMeta(w, http.StatusOK, userResponses, response.NewMeta(page, perPage, total))
}

// UpdateProfile handles PUT /users/{id}
// @Summary      Edit a profile
// @Description  Update the signed-in user's own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateProfileRequest true "Profile update request"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /users/{id} [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	actorID, _ := middleware.GetUserID(r.Context())
	u, err := h.service.UpdateProfile(r.Context(), actorID, chi.URLParam(r, "id"), &req)
	if err != nil {
		apierror.Write(w, err, "Failed to update profile")
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(u))
}

// Stats handles GET /users/{id}/stats
// @Summary      Dashboard statistics
// @Description  Number of joined groups and attended sessions
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse{data=Stats}
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id}/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err, "Failed to load stats")
		return
	}
	response.JSON(w, http.StatusOK, stats)
}
