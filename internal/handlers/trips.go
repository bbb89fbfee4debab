package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/maintenance"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/report"
	"github.com/ukydev/fleet-ledger/internal/store"
	"github.com/ukydev/fleet-ledger/internal/trips"
	"github.com/ukydev/fleet-ledger/internal/validation"
)

// TripHandler handles the trip lifecycle and the reports derived from it
type TripHandler struct {
	odometer
	local *store.Local
	calc  trips.Calculator
	now   func() time.Time
}

// NewTripHandler creates a new trip handler
func NewTripHandler(profiles db.ProfileCollection, tripColl db.TripCollection, local *store.Local, calc trips.Calculator) *TripHandler {
	return &TripHandler{
		odometer: odometer{profiles: profiles, trips: tripColl},
		local:    local,
		calc:     calc,
		now:      time.Now,
	}
}

// ListTrips returns every trip of the current profile, newest first
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.trips.FindTripsByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Trip{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetActiveTrip returns the trip in progress
func (h *TripHandler) GetActiveTrip(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trip, err := h.trips.FindActiveTrip(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// StartTrip opens a new trip with its outbound leg
func (h *TripHandler) StartTrip(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req trips.StartRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.profiles.FindProfileByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	existing, err := h.trips.FindTripsByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	trip, err := trips.Start(existing, *profile, req, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	trip.UserID = claims.UserID
	if err := validation.Struct(trip); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.trips.UpsertTrip(r.Context(), trip); err != nil {
		writeError(w, r, err)
		return
	}
	h.raise(r.Context(), claims.UserID, trip)

	log.WithFields(log.Fields{"user_id": claims.UserID, "trip_id": trip.ID}).Info("Trip started")
	writeJSON(w, http.StatusCreated, trip)
}

type updateTripRequest struct {
	Outbound models.Freight      `json:"outbound"`
	Inbound  models.Freight      `json:"inbound"`
	Expenses models.TripExpenses `json:"expenses"`
}

// UpdateTrip replaces the freight legs and expenses of the active trip
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var req updateTripRequest
	h.mutate(w, r, &req, func(trip *models.Trip) error {
		return trips.UpdateLegs(trip, req.Outbound, req.Inbound, req.Expenses)
	})
}

// AddFuel appends a fuel purchase to the active trip
func (h *TripHandler) AddFuel(w http.ResponseWriter, r *http.Request) {
	var purchase models.FuelPurchase
	h.mutate(w, r, &purchase, func(trip *models.Trip) error {
		return trips.AddFuel(trip, purchase)
	})
}

// RemoveFuel drops a fuel purchase by its index
func (h *TripHandler) RemoveFuel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, func(trip *models.Trip) error {
		index, err := strconv.Atoi(r.PathValue("index"))
		if err != nil {
			return validation.Fail("index", "must be a number")
		}
		return trips.RemoveFuel(trip, index)
	})
}

// mutate loads a trip by path id, optionally decodes body into req, applies
// fn and stores the result.
func (h *TripHandler) mutate(w http.ResponseWriter, r *http.Request, req interface{}, fn func(*models.Trip) error) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req != nil {
		if err := decode(r, req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := fn(trip); err != nil {
		writeError(w, r, err)
		return
	}
	trip.UpdatedAt = h.now()

	if err := h.trips.UpsertTrip(r.Context(), *trip); err != nil {
		writeError(w, r, err)
		return
	}
	h.raise(r.Context(), claims.UserID, *trip)
	writeJSON(w, http.StatusOK, trip)
}

type completeTripRequest struct {
	EndKm   int    `json:"end_km" validate:"gt=0"`
	EndDate string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// CompleteTrip closes the active trip and absorbs the pending misc expenses
func (h *TripHandler) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req completeTripRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.local.Load(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pending := st.MiscExpenses
	if err := trips.Complete(trip, req.EndKm, req.EndDate, pending, h.now()); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.trips.UpsertTrip(r.Context(), *trip); err != nil {
		writeError(w, r, err)
		return
	}

	absorbed := lo.SliceToMap(pending, func(e models.MiscExpense) (string, bool) { return e.ID, true })
	err = h.local.Update(r.Context(), claims.UserID, func(st *store.State) error {
		st.MiscExpenses = lo.Reject(st.MiscExpenses, func(e models.MiscExpense, _ int) bool { return absorbed[e.ID] })
		return nil
	})
	if err != nil {
		writeError(w, r, fmt.Errorf("clear absorbed expenses: %w", err))
		return
	}
	h.raise(r.Context(), claims.UserID, *trip)

	log.WithFields(log.Fields{
		"user_id":  claims.UserID,
		"trip_id":  trip.ID,
		"absorbed": len(pending),
	}).Info("Trip completed")
	writeJSON(w, http.StatusOK, trip)
}

type tripReportResponse struct {
	report.TripReport
	Occurrences []trips.Occurrence `json:"tire_occurrences"`
}

// GetTripReport returns the settlement, fuel segments and tire occurrences of a trip
func (h *TripHandler) GetTripReport(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := h.trips.FindTripsByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.local.Load(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	occurrences := trips.TireOccurrences(*trip, st.Tires, h.now())
	if occurrences == nil {
		occurrences = []trips.Occurrence{}
	}
	writeJSON(w, http.StatusOK, tripReportResponse{
		TripReport:  report.Build(*trip, history, h.calc),
		Occurrences: occurrences,
	})
}

type periodTotals struct {
	Freight    float64 `json:"freight"`
	Expenses   float64 `json:"expenses"`
	NetProfit  float64 `json:"net_profit"`
	Settlement float64 `json:"settlement"`
}

type reportsResponse struct {
	Period  trips.Period        `json:"period"`
	Reports []report.TripReport `json:"reports"`
	Totals  periodTotals        `json:"totals"`
}

// periodTrips returns the completed trips of the requested period and the
// full history they are scored against.
func (h *TripHandler) periodTrips(r *http.Request, userID string) (trips.Period, []models.Trip, []models.Trip, error) {
	period, err := trips.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		return "", nil, nil, validation.Fail("period", err.Error())
	}
	history, err := h.trips.FindTripsByUser(r.Context(), userID)
	if err != nil {
		return "", nil, nil, err
	}
	return period, trips.FilterByPeriod(history, period, h.now()), history, nil
}

// ListReports returns the trip reports of a period with their totals
func (h *TripHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, list, history, err := h.periodTrips(r, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := reportsResponse{Period: period, Reports: make([]report.TripReport, 0, len(list))}
	for _, trip := range list {
		rep := report.Build(trip, history, h.calc)
		resp.Reports = append(resp.Reports, rep)
		resp.Totals.Freight += rep.Summary.TotalFreight
		resp.Totals.Expenses += rep.Summary.Expenses
		resp.Totals.NetProfit += rep.Summary.NetProfit
		resp.Totals.Settlement += rep.Summary.Settlement
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportReports renders the trip reports of a period as an XLSX workbook
func (h *TripHandler) ExportReports(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, list, history, err := h.periodTrips(r, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	buf, err := report.Workbook(list, history, h.calc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("trips-%s-%s.xlsx", period, h.now().Format(models.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("Failed to write workbook")
	}
}

type dashboardResponse struct {
	Active          trips.DashboardStats `json:"active_trip"`
	CurrentOdometer int                  `json:"current_km"`
	PendingExpenses int                  `json:"pending_expenses"`
	MaintenanceDue  []models.ServiceItem `json:"maintenance_due"`
}

// GetDashboard returns the running tally of the active trip and the items
// due for service
func (h *TripHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.profiles.FindProfileByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.trips.FindTripsByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.local.Load(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	current := trips.CurrentOdometer(list, *profile)
	due := lo.FilterMap(maintenance.Overview(st.Filters, current), func(s maintenance.Status, _ int) (models.ServiceItem, bool) {
		return s.Item, s.Due
	})

	writeJSON(w, http.StatusOK, dashboardResponse{
		Active:          trips.ActiveStats(list, st.MiscExpenses),
		CurrentOdometer: current,
		PendingExpenses: len(st.MiscExpenses),
		MaintenanceDue:  due,
	})
}
