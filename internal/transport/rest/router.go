package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/form"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/report"
	"github.com/frahmantamala/worktrack/internal/timeentry"
	"github.com/frahmantamala/worktrack/internal/transport/middleware"
	"github.com/frahmantamala/worktrack/internal/transport/swagger"
	"github.com/frahmantamala/worktrack/internal/user"
)

const specURL = "/openapi.yml"

type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	TimeEntry *timeentry.Handler
	Report    *report.Handler
	Form      *form.Handler
}

type Options struct {
	DB             *sqlx.DB
	Membership     middleware.MembershipResolver
	Validator      *middleware.OpenAPIValidator // nil disables request validation
	AllowedOrigins []string
	SpecPath       string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	healthHandler := NewHealthHandler(opts.DB)
	logger := opts.Logger

	// Apply global middleware
	router.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get(specURL, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.SpecPath)
	})
	router.Handle("/swagger/*", swagger.Handler(specURL))

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)

			pr.Route("/orgs/{orgID}", func(or chi.Router) {
				or.Use(middleware.Membership(opts.Membership, logger))

				or.Post("/day-sessions/open", h.TimeEntry.OpenDaySession)
				or.Post("/day-sessions/close", h.TimeEntry.CloseDaySession)
				or.Post("/tasks/{taskID}/timer/start", h.TimeEntry.StartTaskTimer)
				or.Post("/tasks/{taskID}/timer/stop", h.TimeEntry.StopTaskTimer)

				or.Route("/time-entries", func(tr chi.Router) {
					tr.Post("/", h.TimeEntry.QuickLog)
					tr.Get("/", h.TimeEntry.ListForDate)
					tr.Get("/active", h.TimeEntry.ListActive)
					tr.Delete("/{id}", h.TimeEntry.DeleteEntry)
					tr.Patch("/{id}/approve", h.TimeEntry.Approve)
					tr.Patch("/{id}/reject", h.TimeEntry.Reject)
				})

				or.Route("/reports", func(rr chi.Router) {
					rr.Get("/data", h.Report.GetReportData)
					rr.Get("/pending", h.Report.PendingReviews)
					rr.Post("/", h.Report.Submit)
					rr.Get("/", h.Report.GetHistory)
					rr.Get("/{id}", h.Report.GetDetail)
					rr.Delete("/{id}", h.Report.DeleteReport)
					rr.Patch("/{id}/approve", h.Report.Approve)
					rr.Patch("/{id}/reject", h.Report.Reject)
				})

				or.Get("/forms/visible", h.Form.GetVisibleForms)
				or.Group(func(ar chi.Router) {
					ar.Use(middleware.RequireRoles(logger, org.RoleAdmin, org.RoleOwner))
					ar.Get("/forms/{formID}/assignments", h.Form.ListAssignments)
					ar.Post("/forms/{formID}/assignments", h.Form.Assign)
					ar.Delete("/assignments/{id}", h.Form.Unassign)
				})
			})
		})
	})
}

// corsOptions allows the configured origins; "*" allows any origin.
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.TraceHeader},
		ExposedHeaders: []string{middleware.TraceHeader},
		MaxAge:         300,
	}
}
