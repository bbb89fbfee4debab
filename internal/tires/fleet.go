package tires

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/ukydev/fleet-ledger/internal/models"
)

var (
	ErrNotFound           = errors.New("no tire at position")
	ErrInvalidPosition    = errors.New("invalid mount position")
	ErrInvalidCondition   = errors.New("invalid tire condition")
	ErrMissingIdentity    = errors.New("brand and code are required")
	ErrMissingDescription = errors.New("event description is required")
	ErrEventNotFound      = errors.New("tire event not found")
	ErrSegmentOpen        = errors.New("previous position segment is still open")
	ErrOdometerRegression = errors.New("odometer is lower than the segment start")
)

var now = time.Now

func today() string {
	return now().Format(models.DateLayout)
}

// Fleet holds the tires on the vehicle and the retired archive, newest first.
// Every method either applies its change completely or leaves the fleet as it was.
type Fleet struct {
	Active  []models.Tire        `json:"tires"`
	Retired []models.RetiredTire `json:"retired_tires"`
}

// Slot is one position of the vehicle layout and the tire mounted there, if any.
type Slot struct {
	Position models.MountPosition `json:"position"`
	Label    string               `json:"label"`
	Group    models.PositionGroup `json:"group"`
	Tire     *models.Tire         `json:"tire,omitempty"`
	KmRun    int                  `json:"km_run"`
}

// MountRequest creates a tire on an empty position or edits the tire there.
type MountRequest struct {
	Position        models.MountPosition `json:"position"`
	Brand           string               `json:"brand"`
	Code            string               `json:"code"`
	Condition       models.TireCondition `json:"condition"`
	InstalledAt     string               `json:"installed_at" validate:"omitempty,datetime=2006-01-02"`
	InstallOdometer int                  `json:"install_km" validate:"gte=0"`
}

// RotationRequest moves the tire at From into To.
type RotationRequest struct {
	From     models.MountPosition `json:"from"`
	To       models.MountPosition `json:"to"`
	Date     string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Odometer int                  `json:"km" validate:"gte=0"`
}

// RotationResult describes what a rotation did.
type RotationResult struct {
	Noop    bool         `json:"noop"`
	Moved   models.Tire  `json:"moved"`
	Swapped *models.Tire `json:"swapped,omitempty"`
}

// RetirementRequest takes the tire at Position off the vehicle. A zero
// Odometer falls back to CurrentOdometer.
type RetirementRequest struct {
	Position        models.MountPosition `json:"position"`
	Date            string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Odometer        int                  `json:"km" validate:"gte=0"`
	CurrentOdometer int                  `json:"-"`
	SentToRetread   bool                 `json:"sent_to_retread"`
}

func (f *Fleet) index(pos models.MountPosition) int {
	_, idx, ok := lo.FindIndexOf(f.Active, func(t models.Tire) bool {
		return t.Position == pos
	})
	if !ok {
		return -1
	}
	return idx
}

// At returns the tire mounted at pos.
func (f *Fleet) At(pos models.MountPosition) (models.Tire, bool) {
	idx := f.index(pos)
	if idx < 0 {
		return models.Tire{}, false
	}
	return f.Active[idx], true
}

// Slots returns the full layout with occupancy and mileage at currentOdometer.
func (f *Fleet) Slots(currentOdometer int) []Slot {
	return lo.Map(models.AllPositions, func(pos models.MountPosition, _ int) Slot {
		slot := Slot{Position: pos, Label: pos.Label(), Group: pos.Group()}
		if t, ok := f.At(pos); ok {
			slot.Tire = &t
			slot.KmRun = TotalRun(t, currentOdometer)
		}
		return slot
	})
}

// Mount creates a tire at an empty position or edits the identity fields of
// the tire already there. The ledger of an edited tire is kept, and so are its
// install date and odometer unless the request sets them.
func (f *Fleet) Mount(req MountRequest) (models.Tire, error) {
	if !req.Position.IsValid() {
		return models.Tire{}, ErrInvalidPosition
	}
	brand := strings.TrimSpace(req.Brand)
	code := strings.TrimSpace(req.Code)
	if brand == "" || code == "" {
		return models.Tire{}, ErrMissingIdentity
	}
	condition := req.Condition
	if condition == "" {
		condition = models.ConditionNew
	}
	if !models.IsValidCondition(condition) {
		return models.Tire{}, ErrInvalidCondition
	}

	// Omitted install fields keep the stored values on an edit.
	if idx := f.index(req.Position); idx >= 0 {
		t := f.Active[idx].Clone()
		t.Brand = brand
		t.Code = code
		t.Condition = condition
		if req.InstalledAt != "" {
			t.InstalledAt = req.InstalledAt
		}
		if req.InstallOdometer > 0 {
			t.InstallOdometer = req.InstallOdometer
		}
		ensureHistory(&t)
		f.Active[idx] = t
		return t, nil
	}

	installedAt := req.InstalledAt
	if installedAt == "" {
		installedAt = today()
	}

	t := models.Tire{
		ID:              uuid.NewString(),
		Position:        req.Position,
		Brand:           brand,
		Code:            code,
		Condition:       condition,
		InstalledAt:     installedAt,
		InstallOdometer: req.InstallOdometer,
		Events:          []models.TireEvent{},
	}
	if err := OpenSegment(&t, req.Position, req.InstallOdometer, installedAt); err != nil {
		return models.Tire{}, err
	}
	f.Active = append(f.Active, t)
	return t, nil
}

// AddEvent records an occurrence on the tire at pos.
func (f *Fleet) AddEvent(pos models.MountPosition, ev models.TireEvent) (models.TireEvent, error) {
	idx := f.index(pos)
	if idx < 0 {
		return models.TireEvent{}, ErrNotFound
	}
	if strings.TrimSpace(ev.Description) == "" {
		return models.TireEvent{}, ErrMissingDescription
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Date == "" {
		ev.Date = today()
	}
	f.Active[idx].Events = append(f.Active[idx].Events, ev)
	return ev, nil
}

// RemoveEvent deletes an occurrence from the tire at pos.
func (f *Fleet) RemoveEvent(pos models.MountPosition, eventID string) error {
	idx := f.index(pos)
	if idx < 0 {
		return ErrNotFound
	}
	events := f.Active[idx].Events
	kept := lo.Reject(events, func(ev models.TireEvent, _ int) bool {
		return ev.ID == eventID
	})
	if len(kept) == len(events) {
		return ErrEventNotFound
	}
	f.Active[idx].Events = kept
	return nil
}

// Rotate moves the tire at From into To. An occupied target swaps both tires.
// Both ledgers are rebuilt on copies and committed together.
func (f *Fleet) Rotate(req RotationRequest) (RotationResult, error) {
	if !req.From.IsValid() || !req.To.IsValid() {
		return RotationResult{}, ErrInvalidPosition
	}
	srcIdx := f.index(req.From)
	if srcIdx < 0 {
		return RotationResult{}, ErrNotFound
	}
	if req.From == req.To {
		return RotationResult{Noop: true, Moved: f.Active[srcIdx]}, nil
	}
	date := req.Date
	if date == "" {
		date = today()
	}

	moved := f.Active[srcIdx].Clone()
	if err := move(&moved, req.To, req.Odometer, date); err != nil {
		return RotationResult{}, err
	}

	dstIdx := f.index(req.To)
	if dstIdx < 0 {
		f.Active[srcIdx] = moved
		return RotationResult{Moved: moved}, nil
	}

	swapped := f.Active[dstIdx].Clone()
	if err := move(&swapped, req.From, req.Odometer, date); err != nil {
		return RotationResult{}, err
	}
	f.Active[srcIdx] = moved
	f.Active[dstIdx] = swapped
	return RotationResult{Moved: moved, Swapped: &swapped}, nil
}

func move(t *models.Tire, to models.MountPosition, odometer int, date string) error {
	ensureHistory(t)
	if err := checkClosing(t, odometer); err != nil {
		return err
	}
	CloseSegment(t, odometer)
	if err := OpenSegment(t, to, odometer, date); err != nil {
		return err
	}
	t.Position = to
	return nil
}

// Retire closes the ledger of the tire at Position, archives a snapshot and
// frees the slot.
func (f *Fleet) Retire(req RetirementRequest) (models.RetiredTire, error) {
	idx := f.index(req.Position)
	if idx < 0 {
		return models.RetiredTire{}, ErrNotFound
	}
	odometer := req.Odometer
	if odometer == 0 {
		odometer = req.CurrentOdometer
	}
	date := req.Date
	if date == "" {
		date = today()
	}

	t := f.Active[idx].Clone()
	ensureHistory(&t)
	if err := checkClosing(&t, odometer); err != nil {
		return models.RetiredTire{}, err
	}
	km := TotalRun(t, odometer)
	CloseSegment(&t, odometer)

	days := daysBetween(t.InstalledAt, date)
	retired := models.RetiredTire{
		Tire:            t,
		TotalKmRan:      km,
		RetiredAt:       date,
		RetiredOdometer: odometer,
		SentToRetread:   req.SentToRetread,
		DurationDays:    days,
		DurationMonths:  days / 30,
	}

	f.Retired = append([]models.RetiredTire{retired}, f.Retired...)
	f.Active = append(f.Active[:idx:idx], f.Active[idx+1:]...)
	return retired, nil
}

func daysBetween(from, to string) int {
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return 0
	}
	end, err := time.Parse(models.DateLayout, to)
	if err != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}
