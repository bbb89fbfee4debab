package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProfileCollection implements ProfileCollection for MongoDB
type MongoProfileCollection struct {
	Collection *mongo.Collection
}

// InsertProfile inserts a new profile into the database
func (c *MongoProfileCollection) InsertProfile(ctx context.Context, profile models.Profile) error {
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	_, err := c.Collection.InsertOne(ctx, profile)
	return err
}

// FindProfileByID finds a profile by its ID
func (c *MongoProfileCollection) FindProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var profile models.Profile
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&profile)
	if err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// FindProfileByUsername finds a profile by its username
func (c *MongoProfileCollection) FindProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	err := c.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&profile)
	if err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// UpdateProfile replaces a profile in the database
func (c *MongoProfileCollection) UpdateProfile(ctx context.Context, id string, profile models.Profile) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	profile.UpdatedAt = time.Now()
	profile.ID = objectID

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, profile)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RaiseOdometer sets the truck's current odometer to km when it is higher
// than the stored reading.
func (c *MongoProfileCollection) RaiseOdometer(ctx context.Context, id string, km int) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "truck.current_km": bson.M{"$lt": km}},
		bson.M{"$set": bson.M{"truck.current_km": km, "updated_at": time.Now()}},
	)
	return err
}

// UpdateLastLogin updates the last login time for a profile
func (c *MongoProfileCollection) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}
