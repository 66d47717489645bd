package userhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	authhandlers "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/handlers"
	userservice "github.com/Black-And-White-Club/gamezone-api/app/modules/user/application"
	"github.com/Black-And-White-Club/gamezone-api/internal/httpjson"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// UserHandlers serves the account, stats and admin user endpoints.
type UserHandlers struct {
	service userservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewUserHandlers creates a new UserHandlers instance.
func NewUserHandlers(
	service userservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) *UserHandlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type authResponse struct {
	Message string `json:"message"`
	*userservice.AuthResult
}

type profileResponse struct {
	User *userservice.Profile `json:"user"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

type recordGameResponse struct {
	Message string             `json:"message"`
	Stats   *userservice.Stats `json:"stats"`
}

type listUsersResponse struct {
	Users []userservice.UserSummary `json:"users"`
}

// HandleSignup handles POST /api/signup.
func (h *UserHandlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req userservice.SignupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, authResponse{Message: "account created", AuthResult: res})
}

// HandleLogin handles POST /api/login.
func (h *UserHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req userservice.LoginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, authResponse{Message: "login successful", AuthResult: res})
}

// HandleLogout handles POST /api/logout.
func (h *UserHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.service.Logout(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// HandleGetProfile handles GET /api/profile.
func (h *UserHandlers) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, profileResponse{User: profile})
}

// HandleUpdateProfile handles PUT /api/profile.
func (h *UserHandlers) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), userID, req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, profileResponse{User: profile})
}

// HandleDeleteProfile handles DELETE /api/profile.
func (h *UserHandlers) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{Message: "account deleted"})
}

// HandleUpdateStats handles POST /api/update-stats.
func (h *UserHandlers) HandleUpdateStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req userservice.RecordGameRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.service.RecordGame(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, recordGameResponse{Message: "stats updated", Stats: stats})
}

// HandleGetStats handles GET /api/user-stats.
func (h *UserHandlers) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, stats)
}

// HandleListUsers handles GET /api/admin/users.
func (h *UserHandlers) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, listUsersResponse{Users: users})
}

// HandleDeleteUser handles DELETE /api/admin/users/{userID}.
func (h *UserHandlers) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		httpjson.Error(w, http.StatusBadRequest, "user id is required")
		return
	}
	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, messageResponse{Message: "user deleted"})
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := authhandlers.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID, true
}

var validationErrors = []error{
	userservice.ErrEmptyUserID,
	userservice.ErrUserIDTooLong,
	userservice.ErrEmptyUsername,
	userservice.ErrUsernameTooLong,
	userservice.ErrPasswordTooShort,
	userservice.ErrEmptyGameType,
	userservice.ErrNegativeReward,
	userservice.ErrInvalidReward,
}

func (h *UserHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, userservice.ErrUserExists):
		httpjson.Error(w, http.StatusConflict, userservice.ErrUserExists.Error())
	case errors.Is(err, userservice.ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, userservice.ErrInvalidCredentials.Error())
	case errors.Is(err, userservice.ErrUserNotFound):
		httpjson.Error(w, http.StatusNotFound, userservice.ErrUserNotFound.Error())
	case errors.Is(err, userservice.ErrInvalidInput):
		msg := userservice.ErrInvalidInput.Error()
		for _, v := range validationErrors {
			if errors.Is(err, v) {
				msg = v.Error()
				break
			}
		}
		httpjson.Error(w, http.StatusBadRequest, msg)
	default:
		h.logger.ErrorContext(r.Context(), "User request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
