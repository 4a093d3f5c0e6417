package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedServer(t *testing.T) http.Handler {
	t.Helper()
	ba, err := NewBasicAuth("account", "1234", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return ba.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestBasicAuth_ValidCredentialsPass(t *testing.T) {
	srv := newProtectedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.SetBasicAuth("account", "1234")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBasicAuth_MissingHeaderIs401(t *testing.T) {
	srv := newProtectedServer(t)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, `Basic realm="restricted"`, rr.Header().Get("WWW-Authenticate"))
}

func TestBasicAuth_WrongPasswordIs401(t *testing.T) {
	srv := newProtectedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.SetBasicAuth("account", "wrong")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBasicAuth_WrongUsernameIs401(t *testing.T) {
	srv := newProtectedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.SetBasicAuth("intruder", "1234")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
