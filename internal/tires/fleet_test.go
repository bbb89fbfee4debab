package tires

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-ledger/internal/models"
)

func newFleet(t *testing.T) *Fleet {
	t.Helper()
	f := &Fleet{}
	_, err := f.Mount(MountRequest{Position: models.PositionFrontLeft, Brand: "Michelin", Code: "A1", InstalledAt: "2024-01-01", InstallOdometer: 100000})
	require.NoError(t, err)
	_, err = f.Mount(MountRequest{Position: models.PositionFrontRight, Brand: "Pirelli", Code: "B2", InstalledAt: "2024-01-01", InstallOdometer: 100000})
	require.NoError(t, err)
	return f
}

func assertContiguous(t *testing.T, tire models.Tire) {
	t.Helper()
	for i := 0; i < len(tire.History)-1; i++ {
		require.NotNil(t, tire.History[i].EndKm, "segment %d is open", i)
		assert.Equal(t, *tire.History[i].EndKm, tire.History[i+1].StartKm)
	}
	assert.True(t, tire.History[len(tire.History)-1].IsOpen())
}

func TestFleet_Mount(t *testing.T) {
	t.Run("new tire opens a segment", func(t *testing.T) {
		f := &Fleet{}
		tire, err := f.Mount(MountRequest{Position: models.PositionSpare1, Brand: " Goodyear ", Code: "X9", InstallOdometer: 5000})
		require.NoError(t, err)
		assert.NotEmpty(t, tire.ID)
		assert.Equal(t, "Goodyear", tire.Brand)
		assert.Equal(t, models.ConditionNew, tire.Condition)
		require.Len(t, tire.History, 1)
		assert.Equal(t, models.PositionSpare1, tire.History[0].Position)
		assert.Equal(t, 5000, tire.History[0].StartKm)
	})

	t.Run("editing keeps the ledger", func(t *testing.T) {
		f := newFleet(t)
		before, _ := f.At(models.PositionFrontLeft)
		edited, err := f.Mount(MountRequest{Position: models.PositionFrontLeft, Brand: "Michelin", Code: "A1-R", Condition: models.ConditionRetreaded, InstallOdometer: 100000})
		require.NoError(t, err)
		assert.Equal(t, before.ID, edited.ID)
		assert.Equal(t, before.History, edited.History)
		assert.Equal(t, "A1-R", edited.Code)
		assert.Len(t, f.Active, 2)
	})

	t.Run("editing without install fields keeps them", func(t *testing.T) {
		f := newFleet(t)
		edited, err := f.Mount(MountRequest{Position: models.PositionFrontLeft, Brand: "Michelin", Code: "A1"})
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", edited.InstalledAt)
		assert.Equal(t, 100000, edited.InstallOdometer)

		edited, err = f.Mount(MountRequest{Position: models.PositionFrontLeft, Brand: "Michelin", Code: "A1", InstalledAt: "2024-02-01", InstallOdometer: 110000})
		require.NoError(t, err)
		assert.Equal(t, "2024-02-01", edited.InstalledAt)
		assert.Equal(t, 110000, edited.InstallOdometer)
	})

	t.Run("validation", func(t *testing.T) {
		f := &Fleet{}
		_, err := f.Mount(MountRequest{Position: models.PositionFrontLeft, Brand: "", Code: "A1"})
		assert.ErrorIs(t, err, ErrMissingIdentity)
		_, err = f.Mount(MountRequest{Position: "roof", Brand: "B", Code: "C"})
		assert.ErrorIs(t, err, ErrInvalidPosition)
		_, err = f.Mount(MountRequest{Position: models.PositionFrontLeft, Brand: "B", Code: "C", Condition: "bald"})
		assert.ErrorIs(t, err, ErrInvalidCondition)
		assert.Empty(t, f.Active)
	})
}

func TestFleet_Events(t *testing.T) {
	f := newFleet(t)

	ev, err := f.AddEvent(models.PositionFrontLeft, models.TireEvent{Date: "2024-02-01", Odometer: 105000, Description: "puncture"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)

	_, err = f.AddEvent(models.PositionFrontLeft, models.TireEvent{Description: "  "})
	assert.ErrorIs(t, err, ErrMissingDescription)

	_, err = f.AddEvent(models.PositionSpare2, models.TireEvent{Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	tire, _ := f.At(models.PositionFrontLeft)
	assert.Len(t, tire.Events, 1)

	assert.ErrorIs(t, f.RemoveEvent(models.PositionFrontLeft, "missing"), ErrEventNotFound)
	require.NoError(t, f.RemoveEvent(models.PositionFrontLeft, ev.ID))
	tire, _ = f.At(models.PositionFrontLeft)
	assert.Empty(t, tire.Events)
}

func TestFleet_RotateToEmpty(t *testing.T) {
	f := newFleet(t)

	res, err := f.Rotate(RotationRequest{From: models.PositionFrontLeft, To: models.PositionDrive1LeftOuter, Date: "2024-03-01", Odometer: 120000})
	require.NoError(t, err)
	assert.False(t, res.Noop)
	assert.Nil(t, res.Swapped)

	_, ok := f.At(models.PositionFrontLeft)
	assert.False(t, ok)
	moved, ok := f.At(models.PositionDrive1LeftOuter)
	require.True(t, ok)
	require.Len(t, moved.History, 2)
	assertContiguous(t, moved)
	assert.Equal(t, 20000, TotalRun(moved, 120000))
}

func TestFleet_RotateRoundTripAddsNoMileage(t *testing.T) {
	f := newFleet(t)
	tire, _ := f.At(models.PositionFrontLeft)
	before := TotalRun(tire, 120000)

	_, err := f.Rotate(RotationRequest{From: models.PositionFrontLeft, To: models.PositionDrive2RightInner, Odometer: 120000})
	require.NoError(t, err)
	_, err = f.Rotate(RotationRequest{From: models.PositionDrive2RightInner, To: models.PositionFrontLeft, Odometer: 120000})
	require.NoError(t, err)

	tire, _ = f.At(models.PositionFrontLeft)
	assert.Equal(t, before, TotalRun(tire, 120000))
	assertContiguous(t, tire)
}

func TestFleet_RotateSwap(t *testing.T) {
	f := newFleet(t)
	a, _ := f.At(models.PositionFrontLeft)
	b, _ := f.At(models.PositionFrontRight)

	res, err := f.Rotate(RotationRequest{From: models.PositionFrontLeft, To: models.PositionFrontRight, Date: "2024-03-01", Odometer: 130000})
	require.NoError(t, err)
	require.NotNil(t, res.Swapped)

	nowRight, _ := f.At(models.PositionFrontRight)
	nowLeft, _ := f.At(models.PositionFrontLeft)
	assert.Equal(t, a.ID, nowRight.ID)
	assert.Equal(t, b.ID, nowLeft.ID)
	assert.Len(t, nowRight.History, len(a.History)+1)
	assert.Len(t, nowLeft.History, len(b.History)+1)
	assertContiguous(t, nowRight)
	assertContiguous(t, nowLeft)
	assert.Len(t, f.Active, 2)
}

func TestFleet_RotateGuards(t *testing.T) {
	t.Run("same position is a no-op", func(t *testing.T) {
		f := newFleet(t)
		before, _ := f.At(models.PositionFrontLeft)
		res, err := f.Rotate(RotationRequest{From: models.PositionFrontLeft, To: models.PositionFrontLeft, Odometer: 150000})
		require.NoError(t, err)
		assert.True(t, res.Noop)
		after, _ := f.At(models.PositionFrontLeft)
		assert.Equal(t, before, after)
	})

	t.Run("empty source", func(t *testing.T) {
		f := newFleet(t)
		_, err := f.Rotate(RotationRequest{From: models.PositionSpare1, To: models.PositionFrontLeft, Odometer: 150000})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("regression on the swapped tire leaves both untouched", func(t *testing.T) {
		f := newFleet(t)
		_, err := f.Rotate(RotationRequest{From: models.PositionFrontRight, To: models.PositionSpare1, Odometer: 140000})
		require.NoError(t, err)
		_, err = f.Rotate(RotationRequest{From: models.PositionSpare1, To: models.PositionFrontRight, Odometer: 140000})
		require.NoError(t, err)

		before := append([]models.Tire(nil), f.Active...)
		_, err = f.Rotate(RotationRequest{From: models.PositionFrontLeft, To: models.PositionFrontRight, Odometer: 120000})
		assert.ErrorIs(t, err, ErrOdometerRegression)
		assert.Equal(t, before, f.Active)
	})
}

func TestFleet_Retire(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { now = time.Now }()

	f := newFleet(t)
	tire, _ := f.At(models.PositionFrontLeft)
	expected := TotalRun(tire, 160000)

	retired, err := f.Retire(RetirementRequest{Position: models.PositionFrontLeft, Odometer: 160000, SentToRetread: true})
	require.NoError(t, err)

	assert.Equal(t, expected, retired.TotalKmRan)
	assert.Equal(t, 60000, retired.TotalKmRan)
	assert.Equal(t, "2024-07-01", retired.RetiredAt)
	assert.Equal(t, 160000, retired.RetiredOdometer)
	assert.True(t, retired.SentToRetread)
	assert.Equal(t, 182, retired.DurationDays)
	assert.Equal(t, 6, retired.DurationMonths)
	last := retired.History[len(retired.History)-1]
	require.NotNil(t, last.EndKm)
	assert.Equal(t, 160000, *last.EndKm)

	_, ok := f.At(models.PositionFrontLeft)
	assert.False(t, ok)
	require.Len(t, f.Retired, 1)
	assert.Len(t, f.Active, 1)

	_, err = f.Mount(MountRequest{Position: models.PositionFrontLeft, Brand: "Bridgestone", Code: "N1", InstallOdometer: 160000})
	assert.NoError(t, err)
}

func TestFleet_RetireFallbacks(t *testing.T) {
	t.Run("zero odometer uses current reading", func(t *testing.T) {
		f := newFleet(t)
		retired, err := f.Retire(RetirementRequest{Position: models.PositionFrontRight, CurrentOdometer: 110000, Date: "2024-02-01"})
		require.NoError(t, err)
		assert.Equal(t, 110000, retired.RetiredOdometer)
		assert.Equal(t, 10000, retired.TotalKmRan)
	})

	t.Run("archive is newest first", func(t *testing.T) {
		f := newFleet(t)
		_, err := f.Retire(RetirementRequest{Position: models.PositionFrontLeft, Odometer: 110000})
		require.NoError(t, err)
		second, err := f.Retire(RetirementRequest{Position: models.PositionFrontRight, Odometer: 111000})
		require.NoError(t, err)
		assert.Equal(t, second.ID, f.Retired[0].ID)
	})

	t.Run("lower reading is rejected", func(t *testing.T) {
		f := newFleet(t)
		_, err := f.Retire(RetirementRequest{Position: models.PositionFrontLeft, Odometer: 90000})
		assert.ErrorIs(t, err, ErrOdometerRegression)
		assert.Len(t, f.Active, 2)
		assert.Empty(t, f.Retired)
	})

	t.Run("missing tire", func(t *testing.T) {
		f := &Fleet{}
		_, err := f.Retire(RetirementRequest{Position: models.PositionSpare2, Odometer: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFleet_Slots(t *testing.T) {
	f := newFleet(t)
	slots := f.Slots(125000)
	require.Len(t, slots, len(models.AllPositions))
	assert.Equal(t, models.PositionFrontLeft, slots[0].Position)
	require.NotNil(t, slots[0].Tire)
	assert.Equal(t, 25000, slots[0].KmRun)
	assert.Nil(t, slots[2].Tire)
}
