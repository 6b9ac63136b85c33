package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltedge/renewals-backend/api/controllers"
	"github.com/voltedge/renewals-backend/api/middleware"
	"github.com/voltedge/renewals-backend/pkg/auth/session"
	"github.com/voltedge/renewals-backend/pkg/config"
	"github.com/voltedge/renewals-backend/pkg/enums"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker

	RateLimitStore middleware.RateLimiterStore

	Health        *controllers.HealthController
	Auth          *controllers.AuthController
	Users         *controllers.UsersController
	Customers     *controllers.CustomersController
	Renewals      *controllers.RenewalsController
	Attachments   *controllers.AttachmentsController
	Notifications *controllers.NotificationsController
}

// New assembles the HTTP surface: health probes, metrics, the public auth
// endpoints, and the authenticated API.
func New(deps Deps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(middleware.RequestID(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.CORS(deps.Config.HTTP))

	router.Get("/health/live", deps.Health.Live)
	router.Get("/health/ready", deps.Health.Ready)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(deps.RateLimitStore, middleware.PolicyFromConfig(deps.Config.AuthRateLimit), deps.Logger)).
				Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.With(middleware.Auth(deps.Config.JWT, deps.Sessions, deps.Logger)).
				Post("/logout", deps.Auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Config.JWT, deps.Sessions, deps.Logger))

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), deps.Logger))
				r.Get("/", deps.Users.List)
				r.Post("/", deps.Users.Create)
				r.Put("/{userID}", deps.Users.Update)
				r.Put("/{userID}/status", deps.Users.UpdateStatus)
				r.Delete("/{userID}", deps.Users.Delete)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", deps.Customers.List)
				r.Post("/", deps.Customers.Create)
				r.Put("/{customerID}", deps.Customers.Update)
				r.Delete("/{customerID}", deps.Customers.Delete)
				r.Get("/{customerID}/renewals", deps.Customers.ListRenewals)
			})

			r.Route("/renewals", func(r chi.Router) {
				r.Get("/", deps.Renewals.List)
				r.Post("/", deps.Renewals.Create)
				r.Post("/bulk-upload", deps.Renewals.BulkUpload)
				r.Get("/bulk-upload/template", deps.Renewals.BulkUploadTemplate)
				r.Get("/{renewalID}", deps.Renewals.Get)
				r.Put("/{renewalID}", deps.Renewals.Update)
				r.Delete("/{renewalID}", deps.Renewals.Delete)

				r.Post("/{renewalID}/attachments", deps.Attachments.PresignUpload)
				r.Get("/{renewalID}/attachments", deps.Attachments.ListByRenewal)
			})

			r.Route("/attachments", func(r chi.Router) {
				r.Get("/{attachmentID}/download", deps.Attachments.DownloadURL)
				r.Delete("/{attachmentID}", deps.Attachments.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", deps.Notifications.List)
				r.Get("/preferences", deps.Notifications.GetPreferences)
				r.Put("/preferences", deps.Notifications.UpdatePreferences)
			})
		})
	})

	return router
}
