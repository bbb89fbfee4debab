package backup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/store"
)

// MockTripCollection is a mock implementation of db.TripCollection
type MockTripCollection struct {
	mock.Mock
}

func (m *MockTripCollection) UpsertTrip(ctx context.Context, trip models.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripCollection) FindTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	args := m.Called(ctx, userID)
	trips, _ := args.Get(0).([]models.Trip)
	return trips, args.Error(1)
}

func (m *MockTripCollection) FindTripByID(ctx context.Context, userID, id string) (*models.Trip, error) {
	args := m.Called(ctx, userID, id)
	trip, _ := args.Get(0).(*models.Trip)
	return trip, args.Error(1)
}

func (m *MockTripCollection) FindActiveTrip(ctx context.Context, userID string) (*models.Trip, error) {
	args := m.Called(ctx, userID)
	trip, _ := args.Get(0).(*models.Trip)
	return trip, args.Error(1)
}

func newTestService(t *testing.T) (*Service, *store.Local, *MockTripCollection) {
	t.Helper()
	local, err := store.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	trips := new(MockTripCollection)
	svc := NewService(local, trips)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc, local, trips
}

func TestParse(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		_, err := Parse([]byte(`{"trips": "nope"`))
		assert.ErrorIs(t, err, ErrMalformedBackup)
	})

	t.Run("missing collections", func(t *testing.T) {
		snap, err := Parse([]byte(`{"tires": [{"id": "t1", "position": "front_left"}]}`))
		require.NoError(t, err)
		assert.Empty(t, snap.Trips)
		require.Len(t, snap.Tires, 1)
		assert.Equal(t, models.PositionFrontLeft, snap.Tires[0].Position)
	})
}

func TestExport(t *testing.T) {
	svc, local, trips := newTestService(t)
	ctx := context.Background()

	st := store.NewState()
	st.MiscExpenses = []models.MiscExpense{{ID: "e1", Date: "2024-06-01", Category: models.CategoryFood, Value: 30}}
	st.Stations = []models.Station{{ID: "s1", Name: "Posto Norte"}}
	require.NoError(t, local.Save(ctx, "u1", st))

	trips.On("FindTripsByUser", ctx, "u1").Return([]models.Trip{{ID: "trip-1", UserID: "u1"}}, nil)

	snap, err := svc.Export(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, snap.Trips, 1)
	assert.Len(t, snap.Expenses, 1)
	assert.Equal(t, 2024, snap.ExportDate.Year())
	trips.AssertExpectations(t)
}

func TestExport_RemoteFailure(t *testing.T) {
	svc, _, trips := newTestService(t)
	ctx := context.Background()
	trips.On("FindTripsByUser", ctx, "u1").Return(nil, errors.New("offline"))

	_, err := svc.Export(ctx, "u1")
	assert.Error(t, err)
}

func TestImport_ReplacesLocalState(t *testing.T) {
	svc, local, trips := newTestService(t)
	ctx := context.Background()

	st := store.NewState()
	st.Tires = []models.Tire{{ID: "old", Position: models.PositionSpare1}}
	st.Companies = []models.Station{{ID: "c1", Name: "Acme"}}
	require.NoError(t, local.Save(ctx, "u1", st))

	doc := []byte(`{
		"trips": [{"id": "trip-1", "user_id": "someone-else", "plate": "ABC1D23"}],
		"expenses": [{"id": "e1", "date": "2024-06-01", "category": "wash", "value": 40}],
		"tires": [],
		"retired_tires": [{"id": "r1", "position": "drive1_left_outer", "total_km_ran": 80000}],
		"filters": {"engine_oil": {"install_km": 120000, "install_date": "2024-05-01"}},
		"exportDate": "2024-06-01T00:00:00Z"
	}`)

	trips.On("UpsertTrip", ctx, mock.MatchedBy(func(trip models.Trip) bool {
		return trip.ID == "trip-1" && trip.UserID == "u1"
	})).Return(nil)

	result, err := svc.Import(ctx, "u1", doc)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Trips: 1, Expenses: 1, Tires: 0, RetiredTires: 1}, result)

	loaded, err := local.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Tires)
	require.Len(t, loaded.RetiredTires, 1)
	assert.Equal(t, 80000, loaded.RetiredTires[0].TotalKmRan)
	assert.Equal(t, 120000, loaded.Filters.EngineOil.InstallOdometer)
	assert.Len(t, loaded.Companies, 1, "companies are not part of the document")
	trips.AssertExpectations(t)
}

func TestImport_RemoteFailureLeavesLocalUntouched(t *testing.T) {
	svc, local, trips := newTestService(t)
	ctx := context.Background()

	st := store.NewState()
	st.Tires = []models.Tire{{ID: "keep", Position: models.PositionFrontLeft}}
	require.NoError(t, local.Save(ctx, "u1", st))

	trips.On("UpsertTrip", ctx, mock.Anything).Return(errors.New("offline"))

	_, err := svc.Import(ctx, "u1", []byte(`{"trips": [{"id": "t1"}], "tires": []}`))
	require.Error(t, err)

	loaded, err := local.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loaded.Tires, 1)
	assert.Equal(t, "keep", loaded.Tires[0].ID)
}

func TestImport_Malformed(t *testing.T) {
	svc, _, trips := newTestService(t)

	_, err := svc.Import(context.Background(), "u1", []byte("not json"))
	assert.ErrorIs(t, err, ErrMalformedBackup)
	trips.AssertNotCalled(t, "UpsertTrip", mock.Anything, mock.Anything)
}
