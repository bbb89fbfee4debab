package db

import (
	"context"

	"github.com/ukydev/fleet-ledger/internal/models"
)

// ProfileCollection defines the interface for profile operations.
type ProfileCollection interface {
	InsertProfile(ctx context.Context, profile models.Profile) error
	FindProfileByID(ctx context.Context, id string) (*models.Profile, error)
	FindProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, profile models.Profile) error
	RaiseOdometer(ctx context.Context, id string, km int) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// TripCollection defines the interface for trip operations. Upserts are
// last-write-wins.
type TripCollection interface {
	UpsertTrip(ctx context.Context, trip models.Trip) error
	FindTripsByUser(ctx context.Context, userID string) ([]models.Trip, error)
	FindTripByID(ctx context.Context, userID, id string) (*models.Trip, error)
	FindActiveTrip(ctx context.Context, userID string) (*models.Trip, error)
}

// TripCursor defines the interface for trip cursor operations.
type TripCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
