package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/bet-user-api/app/observability/metrics"
	"github.com/FACorreiaa/bet-user-api/internal/api"
	"github.com/FACorreiaa/bet-user-api/internal/api/activitylog"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service orchestrates user account operations: validation, password
// hashing, persistence and activity logging.
type Service interface {
	ListAll(ctx context.Context) ([]User, error)
	// SearchForID returns api.ErrNotFound when no user has the id.
	SearchForID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	UpdateUser(ctx context.Context, id int64, params UpdateUserParams) (*User, error)
	Delete(ctx context.Context, id int64) error
	// AuthenticateUser reports whether the password matches the stored hash.
	// An unknown username is api.ErrNotFound, not a false result.
	AuthenticateUser(ctx context.Context, username, password string) (bool, error)
	// ResetPassword swaps the password when currentPassword matches. It
	// returns (false, nil) both when the user does not exist and when the
	// current password is wrong; callers cannot tell the two apart.
	ResetPassword(ctx context.Context, username string, params ResetPasswordParams) (bool, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	activity activitylog.Service
}

func NewServiceImpl(repo Repository, activity activitylog.Service, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		activity: activity,
	}
}

func (s *ServiceImpl) ListAll(ctx context.Context) ([]User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ListAll")
	defer span.End()

	users, err := s.repo.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	span.SetStatus(codes.Ok, "Users listed")
	return users, nil
}

func (s *ServiceImpl) SearchForID(ctx context.Context, id int64) (*User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "SearchForID", trace.WithAttributes(
		attribute.Int64("user.id", id),
	))
	defer span.End()

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			span.RecordError(err)
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "User found")
	return u, nil
}

// CreateUser validates the payload, hashes the password and records the
// operation in the activity log before persisting.
func (s *ServiceImpl) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "CreateUser")
	defer span.End()

	if verr := params.Validate(); verr != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, verr
	}

	l := s.logger.With(
		slog.String("method", "CreateUser"),
		slog.String("username", params.Username.Value()),
	)

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password.Value()), bcrypt.DefaultCost)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Password hashing failed")
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	u := &User{
		ClientName:   params.ClientName,
		Email:        params.Email.Value(),
		RegisterDate: time.Now(),
		BetMaxValue:  params.BetMaxValue,
		Username:     params.Username.Value(),
		PasswordHash: string(hash),
		UserPixKey:   params.UserPixKey,
	}

	// Recorded before the insert, matching the audit semantics: the log
	// captures the attempt, not just the outcome.
	s.activity.AddLog("INFO", "Creating user: "+u.Username)

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			l.WarnContext(ctx, "Username already taken")
			span.SetStatus(codes.Error, "Username conflict")
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		return nil, err
	}

	metrics.Get().UsersCreatedTotal.Add(ctx, 1)
	l.InfoContext(ctx, "User created", slog.Int64("userID", created.ID))
	span.SetStatus(codes.Ok, "User created")
	return created, nil
}

// UpdateUser merges the provided fields into the stored record. Username,
// password and register date are never touched here.
func (s *ServiceImpl) UpdateUser(ctx context.Context, id int64, params UpdateUserParams) (*User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateUser", trace.WithAttributes(
		attribute.Int64("user.id", id),
	))
	defer span.End()

	if verr := params.Validate(); verr != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, verr
	}

	l := s.logger.With(slog.String("method", "UpdateUser"), slog.Int64("userID", id))

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "User not found")
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to update user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return nil, err
	}

	s.activity.AddLog("INFO", "Updating user: "+updated.Username)
	l.InfoContext(ctx, "User updated")
	span.SetStatus(codes.Ok, "User updated")
	return updated, nil
}

// Delete removes the user if present. A missing id is not an error.
func (s *ServiceImpl) Delete(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Delete", trace.WithAttributes(
		attribute.Int64("user.id", id),
	))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		return err
	}

	s.logger.InfoContext(ctx, "User deleted", slog.Int64("userID", id))
	span.SetStatus(codes.Ok, "User deleted")
	return nil
}

func (s *ServiceImpl) AuthenticateUser(ctx context.Context, username, password string) (bool, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "AuthenticateUser")
	defer span.End()

	l := s.logger.With(slog.String("method", "AuthenticateUser"), slog.String("username", username))

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Ok, "Unknown username")
			return false, err
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		span.RecordError(err)
		return false, err
	}

	ok := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
	metrics.Get().AuthAttemptsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("success", ok)))
	if !ok {
		l.WarnContext(ctx, "Password mismatch")
	}

	span.SetAttributes(attribute.Bool("auth.success", ok))
	span.SetStatus(codes.Ok, "Authentication evaluated")
	return ok, nil
}

func (s *ServiceImpl) ResetPassword(ctx context.Context, username string, params ResetPasswordParams) (bool, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ResetPassword")
	defer span.End()

	l := s.logger.With(slog.String("method", "ResetPassword"), slog.String("username", username))

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Ok, "Unknown username")
			return false, nil
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		span.RecordError(err)
		return false, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(params.CurrentPassword)) != nil {
		l.WarnContext(ctx, "Current password mismatch")
		span.SetStatus(codes.Ok, "Current password mismatch")
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash new password", slog.Any("error", err))
		span.RecordError(err)
		return false, fmt.Errorf("failed to process password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		l.ErrorContext(ctx, "Failed to store new password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Password update failed")
		return false, err
	}

	s.activity.AddLog("INFO", "Password reset for user: "+username)
	l.InfoContext(ctx, "Password reset")
	span.SetStatus(codes.Ok, "Password reset")
	return true, nil
}
