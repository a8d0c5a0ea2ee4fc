package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmartin/coursehub/internal/api/handlers"
	"github.com/jmartin/coursehub/internal/api/middleware"
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/service"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.Origin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cfg.Auth, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(services.Auth)
	courseHandler := handlers.NewCourseHandler(services.Course)

	requireAuth := middleware.Auth(services.Tokens, cfg.Auth, cfg.IsProduction())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/activate", authHandler.Activate)
			r.Post("/login", authHandler.Login)
			r.Post("/social", authHandler.SocialAuth)
			r.Get("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// User profile routes
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/info", userHandler.UpdateInfo)
			r.Put("/password", userHandler.UpdatePassword)
			r.Put("/avatar", userHandler.UpdateAvatar)
		})

		// Course routes
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", courseHandler.List)
			r.Get("/{id}", courseHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/{id}/content", courseHandler.Content)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Post("/", courseHandler.Create)
				r.Put("/{id}", courseHandler.Update)
			})
		})
	})

	return r
}
