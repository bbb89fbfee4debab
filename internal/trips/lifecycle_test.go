package trips

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func testProfile() models.Profile {
	return models.Profile{
		ID:         primitive.NewObjectID(),
		DriverName: "Ana",
		Truck:      models.Truck{Plate: "ABC1D23", InitialOdometer: 100000, CurrentOdometer: 150000},
	}
}

func TestStart(t *testing.T) {
	profile := testProfile()

	trip, err := Start(nil, profile, StartRequest{Outbound: models.Freight{Value: 3000}}, fixedNow)
	require.NoError(t, err)
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, profile.ID.Hex(), trip.UserID)
	assert.Equal(t, "ABC1D23", trip.Plate)
	assert.Equal(t, "Ana", trip.DriverName)
	assert.Equal(t, 150000, trip.Outbound.StartKm)
	assert.Equal(t, "2024-06-15", trip.Outbound.Date)
	assert.Equal(t, models.TripActive, trip.Status)

	_, err = Start([]models.Trip{trip}, profile, StartRequest{}, fixedNow)
	assert.ErrorIs(t, err, ErrActiveTripExists)

	t.Run("falls back to initial odometer", func(t *testing.T) {
		p := testProfile()
		p.Truck.CurrentOdometer = 0
		trip, err := Start(nil, p, StartRequest{Plate: "XYZ"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, 100000, trip.Outbound.StartKm)
		assert.Equal(t, "XYZ", trip.Plate)
	})
}

func TestFuel(t *testing.T) {
	trip, err := Start(nil, testProfile(), StartRequest{}, fixedNow)
	require.NoError(t, err)

	assert.ErrorIs(t, AddFuel(&trip, models.FuelPurchase{Station: " ", TotalCost: 10}), ErrMissingStation)
	assert.ErrorIs(t, AddFuel(&trip, models.FuelPurchase{Station: "A", TotalCost: 0}), ErrNonPositiveCost)
	require.NoError(t, AddFuel(&trip, models.FuelPurchase{Station: "A", TotalCost: 10}))
	require.NoError(t, AddFuel(&trip, models.FuelPurchase{Station: "B", TotalCost: 20}))

	assert.ErrorIs(t, RemoveFuel(&trip, 5), ErrFuelNotFound)
	require.NoError(t, RemoveFuel(&trip, 0))
	require.Len(t, trip.Fuel, 1)
	assert.Equal(t, "B", trip.Fuel[0].Station)
}

func TestComplete(t *testing.T) {
	pending := []models.MiscExpense{{ID: "e1", Value: 80}, {ID: "e2", Value: 20}}

	t.Run("invalid end odometer", func(t *testing.T) {
		trip, _ := Start(nil, testProfile(), StartRequest{}, fixedNow)
		assert.ErrorIs(t, Complete(&trip, 0, "", pending, fixedNow), ErrInvalidEndOdometer)
		assert.ErrorIs(t, Complete(&trip, 150000, "", pending, fixedNow), ErrInvalidEndOdometer)
		assert.Equal(t, models.TripActive, trip.Status)
		assert.Empty(t, trip.MiscExpenses)
	})

	t.Run("absorbs pending expenses", func(t *testing.T) {
		trip, _ := Start(nil, testProfile(), StartRequest{}, fixedNow)
		require.NoError(t, Complete(&trip, 152000, "2024-06-20", pending, fixedNow))
		assert.Equal(t, models.TripCompleted, trip.Status)
		assert.Equal(t, "2024-06-20", trip.EndDate)
		assert.Len(t, trip.MiscExpenses, 2)
		assert.Equal(t, 152000, HighestOdometer(trip))

		assert.ErrorIs(t, Complete(&trip, 160000, "", nil, fixedNow), ErrTripCompleted)
		assert.ErrorIs(t, AddFuel(&trip, models.FuelPurchase{Station: "A", TotalCost: 1}), ErrTripCompleted)
		assert.ErrorIs(t, RemoveFuel(&trip, 0), ErrTripCompleted)
		assert.ErrorIs(t, UpdateLegs(&trip, models.Freight{}, models.Freight{}, models.TripExpenses{}), ErrTripCompleted)
	})
}
