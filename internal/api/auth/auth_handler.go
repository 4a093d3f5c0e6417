package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/bet-user-api/internal/api"
	"github.com/FACorreiaa/bet-user-api/internal/api/user"
)

type Handler struct {
	userService user.Service
	logger      *slog.Logger
}

func NewHandler(userService user.Service, logger *slog.Logger) *Handler {
	return &Handler{
		userService: userService,
		logger:      logger,
	}
}

// Login godoc
// @Summary      Login
// @Description  Verifies explicit credentials against the stored password hash
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()
	r = r.WithContext(ctx)

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.userService.AuthenticateUser(ctx, req.Username, req.Password)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to authenticate")
		return
	}
	if !ok {
		span.SetStatus(codes.Ok, "Invalid credentials")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authorized. Invalid credentials.")
		return
	}

	span.SetStatus(codes.Ok, "Login succeeded")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "Login succeeded",
	})
}

// ResetPassword godoc
// @Summary      Reset Password
// @Description  Replaces the user's password after checking the current one. An unknown username and a wrong current password both return 401.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        username path string true "Username"
// @Param        request body user.ResetPasswordParams true "Current and new password"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Router       /auth/{username}/password [patch]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "ResetPassword")
	defer span.End()
	r = r.WithContext(ctx)

	username := chi.URLParam(r, "username")

	var params user.ResetPasswordParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.userService.ResetPassword(ctx, username, params)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if !ok {
		span.SetStatus(codes.Ok, "Reset refused")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authorized. Invalid credentials.")
		return
	}

	span.SetStatus(codes.Ok, "Password reset")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "Password updated successfully.",
	})
}
