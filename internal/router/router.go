package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/bet-user-api/internal/api/activitylog"
	"github.com/FACorreiaa/bet-user-api/internal/api/auth"
	"github.com/FACorreiaa/bet-user-api/internal/api/user"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	UserHandler         *user.Handler
	AuthHandler         *auth.Handler
	LogHandler          *activitylog.Handler
	BasicAuthMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check stays public; everything else sits behind Basic auth.
	r.Get("/api/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API is healthy!"))
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.BasicAuthMiddleware)

		r.Route("/api/v1/users", func(r chi.Router) {
			r.Get("/", cfg.UserHandler.ListUsers)
			r.Post("/", cfg.UserHandler.CreateUser)
			r.Get("/{id}", cfg.UserHandler.GetUser)
			// PUT and PATCH share the merge semantics.
			r.Put("/{id}", cfg.UserHandler.UpdateUser)
			r.Patch("/{id}", cfg.UserHandler.UpdateUser)
			r.Delete("/{id}", cfg.UserHandler.DeleteUser)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", cfg.AuthHandler.Login)
			r.Patch("/{username}/password", cfg.AuthHandler.ResetPassword)
		})

		r.Get("/api/logs/summary", cfg.LogHandler.GetSummary)
	})

	return r
}
