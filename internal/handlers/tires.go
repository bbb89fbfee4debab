package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/store"
	"github.com/ukydev/fleet-ledger/internal/tires"
)

// TireHandler handles the tire layout, rotations and retirements
type TireHandler struct {
	odometer
	local *store.Local
	now   func() time.Time
}

// NewTireHandler creates a new tire handler
func NewTireHandler(profiles db.ProfileCollection, tripColl db.TripCollection, local *store.Local) *TireHandler {
	return &TireHandler{
		odometer: odometer{profiles: profiles, trips: tripColl},
		local:    local,
		now:      time.Now,
	}
}

type tireLayoutResponse struct {
	CurrentOdometer int                  `json:"current_km"`
	Slots           []tires.Slot         `json:"slots"`
	Retired         []models.RetiredTire `json:"retired_tires"`
}

// ListTires returns every position with the tire mounted there and its
// mileage, plus the retired archive
func (h *TireHandler) ListTires(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	current, err := h.current(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.local.Load(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fleet := st.Fleet()
	writeJSON(w, http.StatusOK, tireLayoutResponse{
		CurrentOdometer: current,
		Slots:           fleet.Slots(current),
		Retired:         fleet.Retired,
	})
}

// ListRetired returns the retired archive, newest first
func (h *TireHandler) ListRetired(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.local.Load(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.RetiredTires)
}

// MountTire creates the tire at a position or edits the one there
func (h *TireHandler) MountTire(w http.ResponseWriter, r *http.Request) {
	var req tires.MountRequest
	h.apply(w, r, &req, http.StatusOK, func(f *tires.Fleet, _ int) (interface{}, error) {
		req.Position = models.MountPosition(r.PathValue("position"))
		return f.Mount(req)
	})
}

// AddTireEvent records an occurrence on the tire at a position
func (h *TireHandler) AddTireEvent(w http.ResponseWriter, r *http.Request) {
	var ev models.TireEvent
	h.apply(w, r, &ev, http.StatusCreated, func(f *tires.Fleet, current int) (interface{}, error) {
		if ev.Odometer == 0 {
			ev.Odometer = current
		}
		if ev.Date == "" {
			ev.Date = h.now().Format(models.DateLayout)
		}
		return f.AddEvent(models.MountPosition(r.PathValue("position")), ev)
	})
}

// RemoveTireEvent deletes an occurrence from the tire at a position
func (h *TireHandler) RemoveTireEvent(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, nil, http.StatusOK, func(f *tires.Fleet, _ int) (interface{}, error) {
		pos := models.MountPosition(r.PathValue("position"))
		if err := f.RemoveEvent(pos, r.PathValue("event")); err != nil {
			return nil, err
		}
		t, _ := f.At(pos)
		return t, nil
	})
}

// RotateTire moves a tire to another position, swapping when occupied
func (h *TireHandler) RotateTire(w http.ResponseWriter, r *http.Request) {
	var req tires.RotationRequest
	h.apply(w, r, &req, http.StatusOK, func(f *tires.Fleet, current int) (interface{}, error) {
		if req.Odometer == 0 {
			req.Odometer = current
		}
		return f.Rotate(req)
	})
}

// RetireTire takes the tire at a position off the vehicle
func (h *TireHandler) RetireTire(w http.ResponseWriter, r *http.Request) {
	var req tires.RetirementRequest
	h.apply(w, r, &req, http.StatusOK, func(f *tires.Fleet, current int) (interface{}, error) {
		req.Position = models.MountPosition(r.PathValue("position"))
		req.CurrentOdometer = current
		retired, err := f.Retire(req)
		if err == nil {
			log.WithFields(log.Fields{
				"tire_id":  retired.ID,
				"position": req.Position,
				"km":       retired.TotalKmRan,
			}).Info("Tire retired")
		}
		return retired, err
	})
}

// apply runs a fleet operation against the stored ledger. The ledger is only
// written when fn succeeds.
func (h *TireHandler) apply(w http.ResponseWriter, r *http.Request, req interface{}, status int, fn func(*tires.Fleet, int) (interface{}, error)) {
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
	current, err := h.current(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var out interface{}
	err = h.local.Update(r.Context(), claims.UserID, func(st *store.State) error {
		fleet := st.Fleet()
		res, err := fn(fleet, current)
		if err != nil {
			return err
		}
		st.SetFleet(fleet)
		out = res
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, out)
}
