package models

// TireCondition describes the state a tire was in when mounted.
type TireCondition string

const (
	ConditionNew       TireCondition = "new"
	ConditionRetreaded TireCondition = "retreaded"
	ConditionUsed      TireCondition = "used"
)

// IsValidCondition checks if a condition is known
func IsValidCondition(c TireCondition) bool {
	switch c {
	case ConditionNew, ConditionRetreaded, ConditionUsed:
		return true
	default:
		return false
	}
}

// TireEvent is an occurrence on a tire such as a puncture or a repair.
type TireEvent struct {
	ID          string `json:"id" bson:"id"`
	Date        string `json:"date" bson:"date" validate:"omitempty,datetime=2006-01-02"`
	Odometer    int    `json:"km" bson:"km" validate:"gte=0"`
	Description string `json:"description" bson:"description" validate:"required"`
}

// PositionSegment is an interval of odometer distance during which a tire
// occupied one mount position. EndKm is nil while the segment is open.
type PositionSegment struct {
	Position MountPosition `json:"position" bson:"position"`
	StartKm  int           `json:"start_km" bson:"start_km"`
	EndKm    *int          `json:"end_km,omitempty" bson:"end_km,omitempty"`
	Date     string        `json:"date" bson:"date"`
}

// IsOpen reports whether the segment has not been closed yet.
func (s PositionSegment) IsOpen() bool {
	return s.EndKm == nil
}

// Tire represents a physical tire currently mounted on the vehicle.
type Tire struct {
	ID              string            `json:"id" bson:"id"`
	Position        MountPosition     `json:"position" bson:"position"`
	Brand           string            `json:"brand" bson:"brand"`
	Code            string            `json:"code" bson:"code"`
	Condition       TireCondition     `json:"condition" bson:"condition"`
	InstalledAt     string            `json:"installed_at" bson:"installed_at"`
	InstallOdometer int               `json:"install_km" bson:"install_km"`
	Events          []TireEvent       `json:"events" bson:"events"`
	History         []PositionSegment `json:"position_history" bson:"position_history"`
}

// Clone returns a deep copy of the tire so ledgers can be edited off to the side.
func (t Tire) Clone() Tire {
	out := t
	out.Events = append([]TireEvent(nil), t.Events...)
	out.History = make([]PositionSegment, len(t.History))
	for i, seg := range t.History {
		out.History[i] = seg
		if seg.EndKm != nil {
			end := *seg.EndKm
			out.History[i].EndKm = &end
		}
	}
	return out
}

// RetiredTire is the immutable snapshot of a tire taken off the vehicle.
type RetiredTire struct {
	Tire            `bson:",inline"`
	TotalKmRan      int    `json:"total_km_ran" bson:"total_km_ran"`
	RetiredAt       string `json:"retired_at" bson:"retired_at"`
	RetiredOdometer int    `json:"retired_km" bson:"retired_km"`
	SentToRetread   bool   `json:"sent_to_retread" bson:"sent_to_retread"`
	DurationDays    int    `json:"duration_days" bson:"duration_days"`
	DurationMonths  int    `json:"duration_months" bson:"duration_months"`
}
