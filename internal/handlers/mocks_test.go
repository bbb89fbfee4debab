package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-ledger/internal/auth"
	"github.com/ukydev/fleet-ledger/internal/backup"
	"github.com/ukydev/fleet-ledger/internal/middleware"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/store"
	"github.com/ukydev/fleet-ledger/internal/trips"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockProfileCollection is a mock implementation of ProfileCollection
type MockProfileCollection struct {
	mock.Mock
}

func (m *MockProfileCollection) InsertProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileCollection) FindProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileCollection) FindProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileCollection) UpdateProfile(ctx context.Context, id string, profile models.Profile) error {
	args := m.Called(ctx, id, profile)
	return args.Error(0)
}

func (m *MockProfileCollection) RaiseOdometer(ctx context.Context, id string, km int) error {
	args := m.Called(ctx, id, km)
	return args.Error(0)
}

func (m *MockProfileCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTripCollection is a mock implementation of TripCollection
type MockTripCollection struct {
	mock.Mock
}

func (m *MockTripCollection) UpsertTrip(ctx context.Context, trip models.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripCollection) FindTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trip), args.Error(1)
}

func (m *MockTripCollection) FindTripByID(ctx context.Context, userID, id string) (*models.Trip, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockTripCollection) FindActiveTrip(ctx context.Context, userID string) (*models.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	profiles *MockProfileCollection
	trips    *MockTripCollection
	local    *store.Local
	auth     *auth.Service
	handlers Handlers
	mux      *http.ServeMux
	profile  models.Profile
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	local, err := store.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	authService, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		profiles: new(MockProfileCollection),
		trips:    new(MockTripCollection),
		local:    local,
		auth:     authService,
		profile: models.Profile{
			ID:         primitive.NewObjectID(),
			Username:   "driver",
			DriverName: "João",
			Truck:      models.Truck{Plate: "ABC1D23", InitialOdometer: 100000, CurrentOdometer: 150000},
		},
	}

	tripHandler := NewTripHandler(env.profiles, env.trips, local, trips.NewCalculator())
	tripHandler.now = func() time.Time { return fixedNow }
	maintenanceHandler := NewMaintenanceHandler(env.profiles, env.trips, local)
	maintenanceHandler.now = func() time.Time { return fixedNow }

	ledgerHandler := NewLedgerHandler(local)
	ledgerHandler.now = func() time.Time { return fixedNow }
	tireHandler := NewTireHandler(env.profiles, env.trips, local)
	tireHandler.now = func() time.Time { return fixedNow }

	env.handlers = Handlers{
		Auth:        NewAuthHandler(authService, env.profiles),
		Trips:       tripHandler,
		Ledger:      ledgerHandler,
		Tires:       tireHandler,
		Maintenance: maintenanceHandler,
		Backup:      NewBackupHandler(backup.NewService(local, env.trips)),
	}
	env.mux = env.handlers.Routes(func(next http.Handler) http.Handler { return next })
	return env
}

func (e *testEnv) userID() string {
	return e.profile.ID.Hex()
}

// expectProfile makes a copy of the fixture profile available to lookups.
func (e *testEnv) expectProfile() {
	p := e.profile
	e.profiles.On("FindProfileByID", mock.Anything, e.userID()).Return(&p, nil)
}

func (e *testEnv) expectTrips(list ...models.Trip) {
	if list == nil {
		list = []models.Trip{}
	}
	e.trips.On("FindTripsByUser", mock.Anything, e.userID()).Return(list, nil)
}

// do serves a request as the fixture profile.
func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	claims := &models.Claims{UserID: e.userID(), Username: e.profile.Username, Plate: e.profile.Truck.Plate}
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))

	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
