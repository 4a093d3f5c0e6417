package user

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/bet-user-api/internal/api"
	"github.com/FACorreiaa/bet-user-api/internal/api/activitylog"
	"github.com/FACorreiaa/bet-user-api/internal/api/vo"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) GetAll(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// Create echoes the input user back when the expectation returns (nil, nil),
// mimicking the real repository handing back the inserted record.
func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		if args.Error(1) == nil {
			return u, nil
		}
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, params UpdateUserParams) (*User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockActivityLog struct {
	mock.Mock
}

var _ activitylog.Service = (*MockActivityLog)(nil)

func (m *MockActivityLog) AddLog(level, message string) {
	m.Called(level, message)
}

func (m *MockActivityLog) GetSummary() []activitylog.LogEntry {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]activitylog.LogEntry)
}

func newTestService(t *testing.T) (*ServiceImpl, *MockRepository, *MockActivityLog) {
	t.Helper()
	repo := new(MockRepository)
	activity := new(MockActivityLog)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceImpl(repo, activity, logger), repo, activity
}

func mustEmail(t *testing.T, s string) *vo.Email {
	t.Helper()
	e, err := vo.NewEmail(s)
	require.NoError(t, err)
	return &e
}

func mustUsername(t *testing.T, s string) *vo.Username {
	t.Helper()
	u, err := vo.NewUsername(s)
	require.NoError(t, err)
	return &u
}

func mustPassword(t *testing.T, s string) *vo.Password {
	t.Helper()
	p, err := vo.NewPassword(s)
	require.NoError(t, err)
	return &p
}

func validCreateParams(t *testing.T) CreateUserParams {
	t.Helper()
	return CreateUserParams{
		ClientName: "Ana Souza",
		Email:      mustEmail(t, "ana@example.com"),
		Username:   mustUsername(t, "ana"),
		Password:   mustPassword(t, "abcd"),
	}
}

func TestCreateUser_HashesPasswordAndLogs(t *testing.T) {
	svc, repo, activity := newTestService(t)

	activity.On("AddLog", "INFO", "Creating user: ana").Return().Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*User).ID = 1
		}).
		Return(nil, nil).
		Once()

	created, err := svc.CreateUser(context.Background(), validCreateParams(t))
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "ana", created.Username)
	assert.False(t, created.RegisterDate.IsZero())
	assert.NotEqual(t, "abcd", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("abcd")))

	repo.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestCreateUser_MissingFieldsListedTogether(t *testing.T) {
	svc, repo, activity := newTestService(t)

	_, err := svc.CreateUser(context.Background(), CreateUserParams{})
	require.Error(t, err)

	verr, ok := api.AsValidationError(err)
	require.True(t, ok)

	fields := make([]string, 0, len(verr))
	for _, fe := range verr {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"clientName", "email", "username", "password"}, fields)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	activity.AssertNotCalled(t, "AddLog", mock.Anything, mock.Anything)
}

func TestCreateUser_DuplicateUsernamePropagatesConflict(t *testing.T) {
	svc, repo, activity := newTestService(t)

	activity.On("AddLog", "INFO", "Creating user: ana").Return().Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, api.ErrConflict).Once()

	_, err := svc.CreateUser(context.Background(), validCreateParams(t))
	assert.ErrorIs(t, err, api.ErrConflict)
	repo.AssertExpectations(t)
}

func TestUpdateUser_MergesAndLogs(t *testing.T) {
	svc, repo, activity := newTestService(t)

	name := "Ana Maria Souza"
	params := UpdateUserParams{ClientName: &name}
	repo.On("Update", mock.Anything, int64(7), params).
		Return(&User{ID: 7, ClientName: name, Username: "ana"}, nil).Once()
	activity.On("AddLog", "INFO", "Updating user: ana").Return().Once()

	updated, err := svc.UpdateUser(context.Background(), 7, params)
	require.NoError(t, err)
	assert.Equal(t, name, updated.ClientName)
	repo.AssertExpectations(t)
	activity.AssertExpectations(t)
}

func TestUpdateUser_NegativeBetMaxValueRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)

	bad := -1.0
	_, err := svc.UpdateUser(context.Background(), 7, UpdateUserParams{BetMaxValue: &bad})
	require.Error(t, err)

	verr, ok := api.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "betMaxValue", verr[0].Field)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_MissingUserIsNotFound(t *testing.T) {
	svc, repo, _ := newTestService(t)

	name := "Nobody"
	repo.On("Update", mock.Anything, int64(99), mock.Anything).Return(nil, api.ErrNotFound).Once()

	_, err := svc.UpdateUser(context.Background(), 99, UpdateUserParams{ClientName: &name})
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestDelete_DoesNotPreCheckExistence(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.On("Delete", mock.Anything, int64(99)).Return(nil).Once()

	assert.NoError(t, svc.Delete(context.Background(), 99))
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

// After a delete the id resolves to absence, not an error.
func TestDelete_ThenSearchForIDIsAbsent(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.On("Delete", mock.Anything, int64(7)).Return(nil).Once()
	repo.On("GetByID", mock.Anything, int64(7)).Return(nil, api.ErrNotFound).Once()

	require.NoError(t, svc.Delete(context.Background(), 7))

	_, err := svc.SearchForID(context.Background(), 7)
	assert.ErrorIs(t, err, api.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestAuthenticateUser_RoundTrip(t *testing.T) {
	svc, repo, _ := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("abcd"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := &User{ID: 7, Username: "ana", PasswordHash: string(hash)}

	repo.On("GetByUsername", mock.Anything, "ana").Return(stored, nil)

	ok, err := svc.AuthenticateUser(context.Background(), "ana", "abcd")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.AuthenticateUser(context.Background(), "ana", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticateUser_UnknownUsernameIsNotFound(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, api.ErrNotFound).Once()

	ok, err := svc.AuthenticateUser(context.Background(), "ghost", "abcd")
	assert.False(t, ok)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

// Absent user and wrong current password are indistinguishable to callers:
// both come back as (false, nil).
func TestResetPassword_FailureModesConflated(t *testing.T) {
	svc, repo, _ := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("abcd"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, api.ErrNotFound).Once()
	repo.On("GetByUsername", mock.Anything, "ana").
		Return(&User{ID: 7, Username: "ana", PasswordHash: string(hash)}, nil).Once()

	ok, err := svc.ResetPassword(context.Background(), "ghost", ResetPasswordParams{CurrentPassword: "abcd", NewPassword: "efgh"})
	assert.False(t, ok)
	assert.NoError(t, err)

	ok, err = svc.ResetPassword(context.Background(), "ana", ResetPasswordParams{CurrentPassword: "wrong", NewPassword: "efgh"})
	assert.False(t, ok)
	assert.NoError(t, err)

	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

// Replaying a reset with the old current password fails once the first
// reset has landed; retrying with the new password succeeds.
func TestResetPassword_SequentialResets(t *testing.T) {
	svc, repo, activity := newTestService(t)

	oldHash, err := bcrypt.GenerateFromPassword([]byte("abcd"), bcrypt.DefaultCost)
	require.NoError(t, err)
	newHash, err := bcrypt.GenerateFromPassword([]byte("efgh"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo.On("GetByUsername", mock.Anything, "ana").
		Return(&User{ID: 7, Username: "ana", PasswordHash: string(oldHash)}, nil).Once()
	repo.On("GetByUsername", mock.Anything, "ana").
		Return(&User{ID: 7, Username: "ana", PasswordHash: string(newHash)}, nil).Twice()
	repo.On("UpdatePassword", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)
	activity.On("AddLog", "INFO", "Password reset for user: ana").Return()

	ok, err := svc.ResetPassword(context.Background(), "ana", ResetPasswordParams{CurrentPassword: "abcd", NewPassword: "efgh"})
	require.NoError(t, err)
	assert.True(t, ok)

	// Old password no longer opens the door.
	ok, err = svc.ResetPassword(context.Background(), "ana", ResetPasswordParams{CurrentPassword: "abcd", NewPassword: "ijkl"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.ResetPassword(context.Background(), "ana", ResetPasswordParams{CurrentPassword: "efgh", NewPassword: "ijkl"})
	require.NoError(t, err)
	assert.True(t, ok)
}
