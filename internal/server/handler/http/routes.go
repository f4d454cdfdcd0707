package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tcordeiro/pediatria/internal/middleware"
)

// NewRouter constructs the local API router.
//
// Routes:
//
//	POST   /api/login                                  → authHandler.Login
//	POST   /api/logout                                 → authHandler.Logout
//	GET    /api/session                                → authHandler.Session
//	GET    /api/patients                               → patientHandler.List
//	POST   /api/patients                               → patientHandler.Create
//	GET    /api/patients/{id}                          → patientHandler.Get
//	PUT    /api/patients/{id}                          → patientHandler.Update
//	DELETE /api/patients/{id}                          → patientHandler.Delete
//	GET    /api/patients/{id}/records/{namespace}      → recordHandler.Get
//	PUT    /api/patients/{id}/records/{namespace}      → recordHandler.Put
//	DELETE /api/patients/{id}/records/{namespace}      → recordHandler.Delete
//	GET    /api/backup/export                          → backupHandler.Export
//	POST   /api/backup/import                          → backupHandler.Import
//	GET    /api/reports/roster.xlsx                    → reportHandler.RosterXLSX
//
// Middleware chain (applied in order):
//  1. WithRequestLogging(logger): logs incoming requests
//  2. SessionGuard(sessions): rejects everything but login while logged out
func NewRouter(
	authHandler *AuthHandler,
	patientHandler *PatientHandler,
	recordHandler *RecordHandler,
	backupHandler *BackupHandler,
	reportHandler *ReportHandler,
	sessions middleware.SessionProvider,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.SessionGuard(sessions))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.Session)

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", patientHandler.List)
			r.Post("/", patientHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", patientHandler.Get)
				r.Put("/", patientHandler.Update)
				r.Delete("/", patientHandler.Delete)
				r.Route("/records/{namespace}", func(r chi.Router) {
					r.Get("/", recordHandler.Get)
					r.Put("/", recordHandler.Put)
					r.Delete("/", recordHandler.Delete)
				})
			})
		})

		r.Get("/backup/export", backupHandler.Export)
		r.Post("/backup/import", backupHandler.Import)
		r.Get("/reports/roster.xlsx", reportHandler.RosterXLSX)
	})

	return r
}
