package handlers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/trips"
)

// odometer resolves the current reading of a profile's truck from the
// profile and its trip history.
type odometer struct {
	profiles db.ProfileCollection
	trips    db.TripCollection
}

func (o odometer) current(ctx context.Context, userID string) (int, error) {
	profile, err := o.profiles.FindProfileByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	list, err := o.trips.FindTripsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return trips.CurrentOdometer(list, *profile), nil
}

// raise pushes the highest reading of trip onto the profile. Failures are
// logged; the trip itself is already stored.
func (o odometer) raise(ctx context.Context, userID string, trip models.Trip) {
	km := trips.HighestOdometer(trip)
	if km <= 0 {
		return
	}
	if err := o.profiles.RaiseOdometer(ctx, userID, km); err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "km": km}).Warn("Failed to raise truck odometer")
	}
}
