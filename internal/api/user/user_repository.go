package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/bet-user-api/app/observability/metrics"
	"github.com/FACorreiaa/bet-user-api/internal/api"
)

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresUserRepo)(nil)

// Repository is the keyed record store contract for users. Username
// uniqueness is enforced by the store (UNIQUE constraint), not here.
type Repository interface {
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, id int64, params UpdateUserParams) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// PGXPool is the subset of pgxpool.Pool this repository needs. pgxmock's
// pool satisfies it too, which is what the repository tests run against.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresUserRepo(pgpool PGXPool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, client_name, email, register_date, bet_max_value, username, password_hash, user_pix_key`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.ClientName, &u.Email, &u.RegisterDate, &u.BetMaxValue, &u.Username, &u.PasswordHash, &u.UserPixKey)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAll returns every user ordered by id. No pagination by design.
func (r *PostgresUserRepo) GetAll(ctx context.Context) ([]User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetAll"))

	rows, err := r.pgpool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query users", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.ClientName, &u.Email, &u.RegisterDate, &u.BetMaxValue, &u.Username, &u.PasswordHash, &u.UserPixKey)
		if err != nil {
			l.ErrorContext(ctx, "Failed to scan user row", slog.Any("error", err))
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning user: %w", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		l.ErrorContext(ctx, "Error iterating user rows", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading users: %w", err)
	}

	span.SetStatus(codes.Ok, "Users fetched")
	return users, nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "User not found")
			return nil, api.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return u, nil
}

func (r *PostgresUserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetByUsername", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "User not found")
			return nil, api.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("database error fetching user by username: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return u, nil
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "User not found")
			return nil, api.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return u, nil
}

// Create inserts the user and returns it with the store-assigned id. A
// username collision surfaces as api.ErrConflict.
func (r *PostgresUserRepo) Create(ctx context.Context, u *User) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("username", u.Username))

	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (client_name, email, register_date, bet_max_value, username, password_hash, user_pix_key)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING id`,
		u.ClientName, u.Email, u.RegisterDate, u.BetMaxValue, u.Username, u.PasswordHash, u.UserPixKey,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			l.WarnContext(ctx, "Username already taken", slog.Any("error", err))
			span.SetStatus(codes.Error, "Unique violation")
			return nil, fmt.Errorf("username %q already exists: %w", u.Username, api.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	span.SetStatus(codes.Ok, "User created")
	return u, nil
}

// Update applies a partial merge: only the fields present in params make it
// into the SET clause, so absent fields keep their stored values.
func (r *PostgresUserRepo) Update(ctx context.Context, id int64, params UpdateUserParams) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Update"), slog.Int64("userID", id))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.ClientName != nil {
		setClauses = append(setClauses, fmt.Sprintf("client_name = $%d", argID))
		args = append(args, *params.ClientName)
		argID++
		span.SetAttributes(attribute.Bool("update.client_name", true))
	}
	if params.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, params.Email.Value())
		argID++
		span.SetAttributes(attribute.Bool("update.email", true))
	}
	if params.BetMaxValue != nil {
		setClauses = append(setClauses, fmt.Sprintf("bet_max_value = $%d", argID))
		args = append(args, *params.BetMaxValue)
		argID++
		span.SetAttributes(attribute.Bool("update.bet_max_value", true))
	}
	if params.UserPixKey != nil {
		setClauses = append(setClauses, fmt.Sprintf("user_pix_key = $%d", argID))
		args = append(args, *params.UserPixKey)
		argID++
		span.SetAttributes(attribute.Bool("update.user_pix_key", true))
	}

	// An empty payload is still a successful merge; just return current state.
	if len(setClauses) == 0 {
		l.WarnContext(ctx, "Update called with no fields to update")
		span.SetStatus(codes.Ok, "No update fields provided")
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, userColumns)

	l.DebugContext(ctx, "Executing dynamic update query", slog.String("query", query), slog.Int("arg_count", len(args)))

	u, err := scanUser(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			l.WarnContext(ctx, "User not found for update")
			span.SetStatus(codes.Error, "User not found")
			return nil, api.ErrNotFound
		}
		l.ErrorContext(ctx, "Failed to execute update query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("database error updating user: %w", err)
	}

	span.SetStatus(codes.Ok, "User updated")
	return u, nil
}

func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdatePassword", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("database error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "User not found")
		return api.ErrNotFound
	}

	span.SetStatus(codes.Ok, "Password updated")
	return nil
}

// Delete removes the user by id. Deleting a missing id is a no-op; the
// service does not pre-check existence.
func (r *PostgresUserRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	_, err := r.pgpool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete user", slog.Int64("userID", id), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		metrics.Get().DBQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("database error deleting user: %w", err)
	}

	span.SetStatus(codes.Ok, "User deleted")
	return nil
}
