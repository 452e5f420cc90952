package api

import (
	"time"

	"github.com/devtrail/devtrail-be/internal/api/handlers"
	"github.com/devtrail/devtrail-be/internal/auth"
	"github.com/devtrail/devtrail-be/internal/models"
	"github.com/devtrail/devtrail-be/internal/services"
	"github.com/devtrail/devtrail-be/internal/storage"
	ws "github.com/devtrail/devtrail-be/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options carries the collaborators and settings the router wires together.
type Options struct {
	Issuer        *auth.TokenIssuer
	Users         services.UserServiceProvider
	Bootcamps     services.BootcampServiceProvider
	Events        services.EventServiceProvider
	Hub           *ws.Hub
	Photos        *storage.PhotoStore
	MaxUpload     int64
	TokenExpire   time.Duration
	AllowedOrigin string
	IsProd        bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// The resolver behind Protect must see the stored account, so a token
	// for a deleted account never authenticates.
	protect := auth.Protect(opts.Issuer, opts.Users)
	publisherOnly := auth.RequireRole(models.RolePublisher, models.RoleAdmin)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(opts.Users, opts.Issuer, opts.TokenExpire, opts.IsProd)
	bootcampHandler := handlers.NewBootcampHandler(opts.Bootcamps, opts.Photos, opts.MaxUpload)
	userHandler := handlers.NewUserHandler(opts.Users)
	eventHandler := handlers.NewEventHandler(opts.Events)
	healthHandler := handlers.NewHealthHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/logout", authHandler.Logout)
			r.Post("/forgotpassword", authHandler.ForgotPassword)
			r.Put("/resetpassword/{token}", authHandler.ResetPassword)
			r.Get("/confirmemail", authHandler.ConfirmEmail)

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Get("/me", authHandler.GetMe)
				r.Put("/updatedetails", authHandler.UpdateDetails)
				r.Put("/updatepassword", authHandler.UpdatePassword)
				r.Post("/confirmemail", authHandler.RequestEmailConfirm)
			})
		})

		r.Route("/bootcamps", func(r chi.Router) {
			r.Get("/", bootcampHandler.GetAll)
			r.Get("/radius/{zipcode}/{distance}", bootcampHandler.GetInRadius)
			r.Get("/{id}", bootcampHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(protect, publisherOnly)
				r.Post("/", bootcampHandler.Create)
				r.Put("/{id}", bootcampHandler.Update)
				r.Delete("/{id}", bootcampHandler.Delete)
				r.Put("/{id}/photo", bootcampHandler.UploadPhoto)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(protect, adminOnly)
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/events", func(r chi.Router) {
			r.Use(protect, adminOnly)
			r.Get("/", eventHandler.GetRecent)
			if opts.Hub != nil {
				wsHandler := handlers.NewWebSocketHandler(opts.Hub)
				r.Get("/ws", wsHandler.Serve)
			}
		})
	})

	return r
}
