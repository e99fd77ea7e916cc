package api

import (
	"net/http"

	"github.com/aviramh/gradecast-be/internal/api/handlers"
	"github.com/aviramh/gradecast-be/internal/auth"
	"github.com/aviramh/gradecast-be/internal/services"
	"github.com/aviramh/gradecast-be/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Hub          *websocket.Hub
	UserService  services.UserServiceProvider
	Health       *handlers.HealthHandler
	PredictProxy http.Handler
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.UserService)
	userHandler := handlers.NewUserHandler(deps.UserService)
	eventHandler := handlers.NewEventHandler(deps.Hub)

	// Auth endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.With(auth.JWTMiddleware()).Post("/logout", authHandler.Logout)

	// Liveness
	r.Get("/healthz", deps.Health.Check)

	// Live presence feed for the admin panel
	r.Get("/ws", eventHandler.Serve)

	r.Route("/api", func(r chi.Router) {
		// Admin user management. Registered routes take precedence
		// over the catch-all proxy below.
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.Put("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
			})
		})

		// Everything else under /api goes to the scoring service.
		r.Handle("/*", deps.PredictProxy)
	})

	return r
}
