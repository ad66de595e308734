package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-portal/internal/booking"
	"github.com/hackgods/clinic-portal/internal/directory"
	"github.com/hackgods/clinic-portal/internal/identity"
	"github.com/hackgods/clinic-portal/internal/metrics"
)

type RouterConfig struct {
	Identity  *identity.Service
	Directory *directory.Service
	Booking   *booking.Service
	Tokens    *identity.TokenManager
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Env       string
	Version   string
	Logger    zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health and metrics
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Authentication
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", signupHandler(cfg.Identity))
		r.Post("/signin", signinHandler(cfg.Identity))

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Tokens))
			r.Get("/profile", profileHandler(cfg.Identity))
			r.Put("/profile", updateProfileHandler(cfg.Identity))
			r.Put("/password", changePasswordHandler(cfg.Identity))
		})
	})

	// Patient surface
	r.Route("/patient", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))
		r.Use(RequireRole(identity.RolePatient))

		r.Get("/profile", patientProfileHandler(cfg.Directory))
		r.Get("/clinics", listClinicsHandler(cfg.Directory))
		r.Get("/clinics/{id}/providers", listClinicProvidersHandler(cfg.Directory))
		r.Get("/providers/{id}/slots", listOpenSlotsHandler(cfg.Directory, cfg.Booking))
		r.Post("/appointments", bookAppointmentHandler(cfg.Booking))
		r.Get("/appointments", listOwnAppointmentsHandler(cfg.Booking))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking))
		r.Get("/history", ownHistoryHandler(cfg.Booking))
	})

	// Provider surface
	r.Route("/provider", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))
		r.Use(RequireRole(identity.RoleProvider))

		r.Get("/slots", listOwnSlotsHandler(cfg.Booking))
		r.Post("/slots", createSlotHandler(cfg.Booking))
		r.Get("/appointments", listOwnAppointmentsHandler(cfg.Booking))
		r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/notes", addNoteHandler(cfg.Booking))
		r.Get("/recipients/{id}/history", recipientHistoryHandler(cfg.Booking))
	})

	// Admin surface
	r.Route("/admin", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))
		r.Use(RequireRole(identity.RoleAdmin))

		r.Get("/stats", adminStatsHandler(cfg.Booking))

		r.Get("/clinics", listClinicsHandler(cfg.Directory))
		r.Post("/clinics", createClinicHandler(cfg.Directory))

		r.Get("/providers", listProvidersHandler(cfg.Directory))
		r.Post("/providers", createProviderHandler(cfg.Directory))
		r.Put("/providers/{id}", updateProviderHandler(cfg.Directory))
		r.Delete("/providers/{id}", deleteProviderHandler(cfg.Directory))
		r.Post("/providers/{id}/uid", assignDoctorUIDHandler(cfg.Directory))

		r.Get("/patients", listRecipientsHandler(cfg.Directory))
		r.Post("/patients", createPatientHandler(cfg.Directory))

		r.Get("/appointments", listOwnAppointmentsHandler(cfg.Booking))
		r.Post("/appointments", adminCreateAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking))
		r.Delete("/appointments/{id}", adminDeleteAppointmentHandler(cfg.Booking))
	})

	return r
}
