package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/store"
)

var ErrMalformedBackup = errors.New("malformed backup document")

// Snapshot is the full-state export document.
type Snapshot struct {
	Trips        []models.Trip             `json:"trips"`
	Expenses     []models.MiscExpense      `json:"expenses"`
	Tires        []models.Tire             `json:"tires"`
	RetiredTires []models.RetiredTire      `json:"retired_tires"`
	Filters      models.MaintenanceFilters `json:"filters"`
	ExportDate   time.Time                 `json:"exportDate"`
}

// NewSnapshot builds the export document from local state and trip history.
func NewSnapshot(st *store.State, trips []models.Trip, now time.Time) Snapshot {
	if trips == nil {
		trips = []models.Trip{}
	}
	return Snapshot{
		Trips:        trips,
		Expenses:     st.MiscExpenses,
		Tires:        st.Tires,
		RetiredTires: st.RetiredTires,
		Filters:      st.Filters,
		ExportDate:   now,
	}
}

// Parse decodes an export document. Any decode failure is ErrMalformedBackup.
func Parse(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}
	return snap, nil
}

// Apply copies the snapshot collections over st. Stations and companies are
// not part of the document and stay as they are.
func (s Snapshot) Apply(st *store.State) {
	st.MiscExpenses = s.Expenses
	st.Tires = s.Tires
	st.RetiredTires = s.RetiredTires
	st.Filters = s.Filters
}

// Service exports and imports the state of a profile.
type Service struct {
	local *store.Local
	trips db.TripCollection
	now   func() time.Time
}

// NewService creates a backup service over the local and remote stores.
func NewService(local *store.Local, trips db.TripCollection) *Service {
	return &Service{local: local, trips: trips, now: time.Now}
}

// Export returns the snapshot of a profile.
func (s *Service) Export(ctx context.Context, userID string) (Snapshot, error) {
	st, err := s.local.Load(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	trips, err := s.trips.FindTripsByUser(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load trips: %w", err)
	}
	return NewSnapshot(st, trips, s.now()), nil
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Trips        int `json:"trips"`
	Expenses     int `json:"expenses"`
	Tires        int `json:"tires"`
	RetiredTires int `json:"retired_tires"`
}

// Import parses data and replaces the state of a profile with it. Trips are
// written remotely first; local collections are only replaced once every trip
// was stored.
func (s *Service) Import(ctx context.Context, userID string, data []byte) (ImportResult, error) {
	snap, err := Parse(data)
	if err != nil {
		return ImportResult{}, err
	}

	for _, trip := range snap.Trips {
		if trip.ID == "" {
			trip.ID = uuid.NewString()
		}
		trip.UserID = userID
		if err := s.trips.UpsertTrip(ctx, trip); err != nil {
			return ImportResult{}, fmt.Errorf("import trip %s: %w", trip.ID, err)
		}
	}

	err = s.local.Update(ctx, userID, func(st *store.State) error {
		snap.Apply(st)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{
		Trips:        len(snap.Trips),
		Expenses:     len(snap.Expenses),
		Tires:        len(snap.Tires),
		RetiredTires: len(snap.RetiredTires),
	}
	log.WithFields(log.Fields{
		"user_id":  userID,
		"trips":    result.Trips,
		"expenses": result.Expenses,
		"tires":    result.Tires,
	}).Info("Backup imported")
	return result, nil
}
