package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/bet-user-api/internal/api"
)

type Handler struct {
	userService Service
	logger      *slog.Logger
}

func NewHandler(userService Service, logger *slog.Logger) *Handler {
	return &Handler{
		userService: userService,
		logger:      logger,
	}
}

func parseUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListUsers godoc
// @Summary      List Users
// @Description  Returns every registered user ordered by id
// @Tags         Users
// @Produce      json
// @Success      200 {array} User
// @Router       /api/v1/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "ListUsers")
	defer span.End()
	r = r.WithContext(ctx)

	users, err := h.userService.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list users")
		return
	}
	if users == nil {
		users = []User{}
	}

	span.SetStatus(codes.Ok, "Users listed")
	api.WriteJSONResponse(w, r, http.StatusOK, users)
}

// GetUser godoc
// @Summary      Get User
// @Description  Returns a single user by id
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} User
// @Failure      404 {object} api.Response
// @Router       /api/v1/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "GetUser")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	u, err := h.userService.SearchForID(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	span.SetStatus(codes.Ok, "User fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, u)
}

// CreateUser godoc
// @Summary      Create User
// @Description  Registers a new user; the password is hashed before storage
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserParams true "New user payload"
// @Success      201 {object} User
// @Failure      409 {object} api.Response
// @Failure      422 {object} api.Response
// @Router       /api/v1/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "CreateUser")
	defer span.End()
	r = r.WithContext(ctx)

	var params CreateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.userService.CreateUser(ctx, params)
	if err != nil {
		if verr, ok := api.AsValidationError(err); ok {
			api.ValidationErrorResponse(w, r, verr)
			return
		}
		if errors.Is(err, api.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "Username already exists")
			return
		}
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	span.SetStatus(codes.Ok, "User created")
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// UpdateUser godoc
// @Summary      Update User
// @Description  Merges the provided fields into the stored user; omitted fields are untouched. PUT and PATCH behave identically.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserParams true "Fields to update"
// @Success      200 {object} User
// @Failure      404 {object} api.Response
// @Failure      422 {object} api.Response
// @Router       /api/v1/users/{id} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "UpdateUser")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	var params UpdateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateUser(ctx, id, params)
	if err != nil {
		if verr, ok := api.AsValidationError(err); ok {
			api.ValidationErrorResponse(w, r, verr)
			return
		}
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update user")
		return
	}

	span.SetStatus(codes.Ok, "User updated")
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary      Delete User
// @Description  Removes a user; deleting an unknown id still returns 204
// @Tags         Users
// @Param        id path int true "User ID"
// @Success      204
// @Router       /api/v1/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "DeleteUser")
	defer span.End()
	r = r.WithContext(ctx)

	id, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	if err := h.userService.Delete(ctx, id); err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	span.SetStatus(codes.Ok, "User deleted")
	w.WriteHeader(http.StatusNoContent)
}
