package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/maintenance"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/store"
)

// MaintenanceHandler handles the service interval tracker
type MaintenanceHandler struct {
	odometer
	local *store.Local
	now   func() time.Time
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(profiles db.ProfileCollection, tripColl db.TripCollection, local *store.Local) *MaintenanceHandler {
	return &MaintenanceHandler{
		odometer: odometer{profiles: profiles, trips: tripColl},
		local:    local,
		now:      time.Now,
	}
}

type maintenanceResponse struct {
	CurrentOdometer int                  `json:"current_km"`
	Items           []maintenance.Status `json:"items"`
	Others          string               `json:"others"`
}

func (h *MaintenanceHandler) overview(r *http.Request, userID string) (maintenanceResponse, error) {
	current, err := h.current(r.Context(), userID)
	if err != nil {
		return maintenanceResponse{}, err
	}
	st, err := h.local.Load(r.Context(), userID)
	if err != nil {
		return maintenanceResponse{}, err
	}
	return maintenanceResponse{
		CurrentOdometer: current,
		Items:           maintenance.Overview(st.Filters, current),
		Others:          st.Filters.Others,
	}, nil
}

// GetMaintenance returns the due check of every tracked item
func (h *MaintenanceHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.overview(r, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type serviceRequest struct {
	Odometer int    `json:"km" validate:"gte=0"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// RecordService registers a service of one item. A missing odometer or date
// falls back to the current reading and today.
func (h *MaintenanceHandler) RecordService(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req serviceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.Odometer == 0 {
		current, err := h.current(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Odometer = current
	}
	if req.Date == "" {
		req.Date = h.now().Format(models.DateLayout)
	}

	item := models.ServiceItem(r.PathValue("item"))
	err = h.local.Update(r.Context(), claims.UserID, func(st *store.State) error {
		return maintenance.Record(&st.Filters, item, req.Odometer, req.Date)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.overview(r, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type notesRequest struct {
	Others string `json:"others"`
}

// UpdateNotes replaces the free-text maintenance notes
func (h *MaintenanceHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req notesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	err = h.local.Update(r.Context(), claims.UserID, func(st *store.State) error {
		st.Filters.Others = req.Others
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
