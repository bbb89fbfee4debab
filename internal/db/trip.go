package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/fleet-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrTripOwnedElsewhere is returned when a trip ID is already stored for
// another user.
var ErrTripOwnedElsewhere = errors.New("trip belongs to another user")

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// UpsertTrip writes the trip keyed by its ID and owner, replacing any stored
// version. An ID stored under another owner is never replaced.
func (c *MongoTripCollection) UpsertTrip(ctx context.Context, trip models.Trip) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if trip.ID == "" {
		return fmt.Errorf("trip id is required")
	}
	if trip.UserID == "" {
		return fmt.Errorf("trip user id is required")
	}
	trip.UpdatedAt = time.Now()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = trip.UpdatedAt
	}
	filter := bson.M{"_id": trip.ID, "user_id": trip.UserID}
	_, err := c.Collection.ReplaceOne(ctx, filter, trip, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrTripOwnedElsewhere
	}
	return err
}

// FindTripsByUser returns every trip of a user, newest first.
func (c *MongoTripCollection) FindTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeTrips(ctx, &mongoTripCursor{cursor: cursor})
}

// FindTripByID finds a trip of a user by its ID.
func (c *MongoTripCollection) FindTripByID(ctx context.Context, userID, id string) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var trip models.Trip
	err := c.Collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&trip)
	if err != nil {
		return nil, notFound(err)
	}
	return &trip, nil
}

// FindActiveTrip returns the trip of a user still in progress.
func (c *MongoTripCollection) FindActiveTrip(ctx context.Context, userID string) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var trip models.Trip
	err := c.Collection.FindOne(ctx, bson.M{"user_id": userID, "status": models.TripActive}).Decode(&trip)
	if err != nil {
		return nil, notFound(err)
	}
	return &trip, nil
}

func decodeTrips(ctx context.Context, cursor TripCursor) ([]models.Trip, error) {
	defer cursor.Close(ctx)
	trips := []models.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// mongoTripCursor wraps a MongoDB cursor for trip queries.
type mongoTripCursor struct {
	cursor *mongo.Cursor
}

func (c *mongoTripCursor) All(ctx context.Context, out interface{}) error {
	return c.cursor.All(ctx, out)
}

func (c *mongoTripCursor) Close(ctx context.Context) error {
	return c.cursor.Close(ctx)
}
