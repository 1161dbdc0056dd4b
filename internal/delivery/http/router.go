package http

import (
	"net/http"

	"clinic-desk/internal/delivery/http/handler"
	"clinic-desk/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	patientHandler     *handler.PatientHandler
	reservationHandler *handler.ReservationHandler
	auditLogHandler    *handler.AuditLogHandler
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	patientHandler *handler.PatientHandler,
	reservationHandler *handler.ReservationHandler,
	auditLogHandler *handler.AuditLogHandler,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		patientHandler:     patientHandler,
		reservationHandler: reservationHandler,
		auditLogHandler:    auditLogHandler,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Patient profile management
	api.HandleFunc("/patients", r.patientHandler.ListPatients).Methods(http.MethodGet)
	api.HandleFunc("/patients", r.patientHandler.CreatePatient).Methods(http.MethodPost)
	api.HandleFunc("/patients/{id}", r.patientHandler.UpdatePatient).Methods(http.MethodPut)
	api.HandleFunc("/patients/{id}", r.patientHandler.DeletePatient).Methods(http.MethodDelete)

	// Reservation queues and lifecycle
	api.HandleFunc("/reservations", r.reservationHandler.GetQueues).Methods(http.MethodGet)
	api.HandleFunc("/reservations", r.reservationHandler.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/current/finish", r.reservationHandler.FinishTreatment).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id}/arrive", r.reservationHandler.MarkArrived).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id}/start", r.reservationHandler.StartTreatment).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id}", r.reservationHandler.DeleteReservation).Methods(http.MethodDelete)

	// Audit trail
	api.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
