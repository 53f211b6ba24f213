package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
)

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Attendance     AttendanceHandler
	Correction     CorrectionHandler
	Geofence       GeofenceHandler
	Reconciliation ReconciliationHandler
	Events         EventsHandler
}

// RouterOptions holds router-level settings.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Ping checks storage for /health. Nil skips the check.
	Ping func(ctx context.Context) error
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health(opts.Ping))

		// Token in query, verified by the handler
		r.Get("/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/events/token", h.Events.IssueToken)

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceClock)).Post("/check-in", h.Attendance.ClockIn)
				r.With(middleware.RequirePermission(user.PermissionAttendanceClock)).Post("/check-out", h.Attendance.ClockOut)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/my", h.Attendance.GetMyAttendance)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewTeam)).Get("/", h.Attendance.List)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/{id}", h.Attendance.Get)
			})

			r.Route("/corrections", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCorrectionSubmit))
					r.Post("/", h.Correction.Submit)
					r.Get("/my", h.Correction.ListMine)
					r.Get("/{id}", h.Correction.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCorrectionReview))
					r.Get("/pending", h.Correction.ListPending)
					r.Post("/{id}/approve", h.Correction.Approve)
					r.Post("/{id}/reject", h.Correction.Reject)
				})
			})

			r.Route("/geofence", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionGeofenceObserve))
					r.Post("/evaluate", h.Geofence.Evaluate)
					r.Post("/observations", h.Geofence.RecordObservation)
					r.Get("/observations/my", h.Geofence.ListMine)
					r.Post("/observations/{id}/request", h.Geofence.AttachReason)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionGeofenceReview))
					r.Post("/observations/{id}/approve", h.Geofence.Approve)
					r.Post("/observations/{id}/reject", h.Geofence.Reject)
				})
			})

			r.With(middleware.RequirePermission(user.PermissionReconciliationRun)).
				Post("/reconciliation/run", h.Reconciliation.Run)
		})
	})

	return r
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.ErrorContext(r.Context(), "Health check failed", "error", err)
				response.Fail(w, http.StatusServiceUnavailable, "UNAVAILABLE", "storage unreachable")
				return
			}
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
