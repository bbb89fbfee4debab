package handlers

import (
	"net/http"

	"github.com/ukydev/fleet-ledger/internal/middleware"
)

// Handlers groups every request handler of the API.
type Handlers struct {
	Auth        *AuthHandler
	Trips       *TripHandler
	Ledger      *LedgerHandler
	Tires       *TireHandler
	Maintenance *MaintenanceHandler
	Backup      *BackupHandler
}

// Routes registers the API on a new mux. Login is wrapped by loginLimit.
func (h Handlers) Routes(loginLimit func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", Health)

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.Handle("POST /api/auth/login", loginLimit(http.HandlerFunc(h.Auth.Login)))
	mux.HandleFunc("GET /api/auth/profile", h.Auth.GetProfile)
	mux.HandleFunc("PUT /api/auth/profile", h.Auth.UpdateProfile)
	mux.HandleFunc("POST /api/auth/change-password", h.Auth.ChangePassword)

	mux.HandleFunc("GET /api/trips", h.Trips.ListTrips)
	mux.HandleFunc("POST /api/trips", h.Trips.StartTrip)
	mux.HandleFunc("GET /api/trips/active", h.Trips.GetActiveTrip)
	mux.HandleFunc("PUT /api/trips/{id}", h.Trips.UpdateTrip)
	mux.HandleFunc("POST /api/trips/{id}/fuel", h.Trips.AddFuel)
	mux.HandleFunc("DELETE /api/trips/{id}/fuel/{index}", h.Trips.RemoveFuel)
	mux.HandleFunc("POST /api/trips/{id}/complete", h.Trips.CompleteTrip)
	mux.HandleFunc("GET /api/trips/{id}/report", h.Trips.GetTripReport)

	mux.HandleFunc("GET /api/reports", h.Trips.ListReports)
	mux.HandleFunc("GET /api/reports/export", h.Trips.ExportReports)
	mux.HandleFunc("GET /api/dashboard", h.Trips.GetDashboard)

	mux.HandleFunc("GET /api/expenses", h.Ledger.ListExpenses)
	mux.HandleFunc("POST /api/expenses", h.Ledger.AddExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", h.Ledger.DeleteExpense)
	mux.HandleFunc("GET /api/stations", h.Ledger.ListStations)
	mux.HandleFunc("POST /api/stations", h.Ledger.AddStation)
	mux.HandleFunc("DELETE /api/stations/{id}", h.Ledger.DeleteStation)
	mux.HandleFunc("GET /api/companies", h.Ledger.ListCompanies)
	mux.HandleFunc("POST /api/companies", h.Ledger.AddCompany)
	mux.HandleFunc("DELETE /api/companies/{id}", h.Ledger.DeleteCompany)

	mux.HandleFunc("GET /api/tires", h.Tires.ListTires)
	mux.HandleFunc("GET /api/tires/retired", h.Tires.ListRetired)
	mux.HandleFunc("POST /api/tires/rotate", h.Tires.RotateTire)
	mux.HandleFunc("PUT /api/tires/{position}", h.Tires.MountTire)
	mux.HandleFunc("POST /api/tires/{position}/events", h.Tires.AddTireEvent)
	mux.HandleFunc("DELETE /api/tires/{position}/events/{event}", h.Tires.RemoveTireEvent)
	mux.HandleFunc("POST /api/tires/{position}/retire", h.Tires.RetireTire)

	mux.HandleFunc("GET /api/maintenance", h.Maintenance.GetMaintenance)
	mux.HandleFunc("POST /api/maintenance/{item}", h.Maintenance.RecordService)
	mux.HandleFunc("PUT /api/maintenance/notes", h.Maintenance.UpdateNotes)

	mux.HandleFunc("GET /api/backup", h.Backup.Export)
	mux.HandleFunc("POST /api/backup", h.Backup.Import)

	return mux
}

// Handler wraps the routes with request logging and authentication.
func (h Handlers) Handler(authMiddleware *middleware.AuthMiddleware, loginLimit func(http.Handler) http.Handler) http.Handler {
	return middleware.RequestLogger(authMiddleware.Authenticate(h.Routes(loginLimit)))
}

// Health reports that the service is up.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
