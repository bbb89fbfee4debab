package trips

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/ukydev/fleet-ledger/internal/models"
)

var (
	ErrActiveTripExists   = errors.New("an active trip already exists")
	ErrTripCompleted      = errors.New("trip is completed")
	ErrInvalidEndOdometer = errors.New("end odometer must be greater than the start odometer")
	ErrMissingStation     = errors.New("fuel station is required")
	ErrNonPositiveCost    = errors.New("fuel cost must be greater than zero")
	ErrFuelNotFound       = errors.New("fuel purchase not found")
)

// StartRequest opens a trip with its outbound leg.
type StartRequest struct {
	Plate      string         `json:"plate"`
	DriverName string         `json:"driver_name"`
	Outbound   models.Freight `json:"outbound"`
}

// Start creates the active trip for a driver. Missing plate, driver and
// start odometer come from the profile.
func Start(existing []models.Trip, profile models.Profile, req StartRequest, now time.Time) (models.Trip, error) {
	if _, ok := ActiveTrip(existing); ok {
		return models.Trip{}, ErrActiveTripExists
	}

	trip := models.Trip{
		ID:         uuid.NewString(),
		UserID:     profile.ID.Hex(),
		DriverName: lo.Ternary(req.DriverName != "", req.DriverName, profile.DriverName),
		Plate:      lo.Ternary(req.Plate != "", req.Plate, profile.Truck.Plate),
		Outbound:   req.Outbound,
		Fuel:       []models.FuelPurchase{},
		Status:     models.TripActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if trip.Outbound.StartKm == 0 {
		trip.Outbound.StartKm = profile.Truck.Odometer()
	}
	if trip.Outbound.Date == "" {
		trip.Outbound.Date = now.Format(models.DateLayout)
	}
	return trip, nil
}

// ActiveTrip returns the trip still in progress, if any.
func ActiveTrip(trips []models.Trip) (models.Trip, bool) {
	return lo.Find(trips, func(t models.Trip) bool {
		return t.Status == models.TripActive
	})
}

// UpdateLegs replaces the freight legs and form expenses of an active trip.
func UpdateLegs(trip *models.Trip, outbound, inbound models.Freight, expenses models.TripExpenses) error {
	if trip.IsCompleted() {
		return ErrTripCompleted
	}
	trip.Outbound = outbound
	trip.Inbound = inbound
	trip.Expenses = expenses
	return nil
}

// AddFuel appends a fuel purchase to an active trip.
func AddFuel(trip *models.Trip, purchase models.FuelPurchase) error {
	if trip.IsCompleted() {
		return ErrTripCompleted
	}
	purchase.Station = strings.TrimSpace(purchase.Station)
	if purchase.Station == "" {
		return ErrMissingStation
	}
	if purchase.TotalCost <= 0 {
		return ErrNonPositiveCost
	}
	trip.Fuel = append(trip.Fuel, purchase)
	return nil
}

// RemoveFuel drops the purchase at index from an active trip.
func RemoveFuel(trip *models.Trip, index int) error {
	if trip.IsCompleted() {
		return ErrTripCompleted
	}
	if index < 0 || index >= len(trip.Fuel) {
		return ErrFuelNotFound
	}
	trip.Fuel = append(trip.Fuel[:index:index], trip.Fuel[index+1:]...)
	return nil
}

// Complete closes a trip, absorbing the pending misc expenses. The trip is
// immutable afterwards.
func Complete(trip *models.Trip, endKm int, endDate string, pending []models.MiscExpense, now time.Time) error {
	if trip.IsCompleted() {
		return ErrTripCompleted
	}
	if endKm <= 0 || endKm <= trip.Outbound.StartKm {
		return ErrInvalidEndOdometer
	}
	if endDate == "" {
		endDate = now.Format(models.DateLayout)
	}
	trip.EndKm = endKm
	trip.EndDate = endDate
	trip.MiscExpenses = append(append([]models.MiscExpense(nil), trip.MiscExpenses...), pending...)
	trip.Status = models.TripCompleted
	trip.UpdatedAt = now
	return nil
}

// HighestOdometer is the reading a saved trip pushes onto the truck.
func HighestOdometer(trip models.Trip) int {
	return max(trip.EndKm, trip.Outbound.StartKm)
}
