package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/bet-user-api/internal/api"
)

// BasicAuth guards routes with a single service account configured at
// startup. The account is separate from the user store: it gates access to
// the API itself, not to any particular user's data.
type BasicAuth struct {
	logger       *slog.Logger
	username     string
	passwordHash []byte
}

// NewBasicAuth hashes the configured password once so only the hash lives
// in memory for the life of the process.
func NewBasicAuth(username, password string, logger *slog.Logger) (*BasicAuth, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &BasicAuth{
		logger:       logger,
		username:     username,
		passwordHash: hash,
	}, nil
}

// Middleware rejects requests without valid Basic credentials with a 401
// and a WWW-Authenticate challenge.
func (a *BasicAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 ||
			bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
			a.logger.WarnContext(r.Context(), "Rejected request with invalid credentials",
				slog.String("path", r.URL.Path))
			w.Header().Set("WWW-Authenticate", `Basic realm="restricted"`)
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
