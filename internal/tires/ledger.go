package tires

import (
	"github.com/samber/lo"
	"github.com/ukydev/fleet-ledger/internal/models"
)

// OpenSegment appends an open segment at pos. The previous segment, if any,
// must already be closed.
func OpenSegment(t *models.Tire, pos models.MountPosition, odometer int, date string) error {
	if last, ok := lastSegment(t); ok && last.IsOpen() {
		return ErrSegmentOpen
	}
	t.History = append(t.History, models.PositionSegment{
		Position: pos,
		StartKm:  odometer,
		Date:     date,
	})
	return nil
}

// CloseSegment sets the end of the last segment when it is open. It reports
// whether a segment was closed. Negative readings are ignored.
func CloseSegment(t *models.Tire, odometer int) bool {
	if odometer < 0 || len(t.History) == 0 {
		return false
	}
	last := &t.History[len(t.History)-1]
	if !last.IsOpen() {
		return false
	}
	end := odometer
	last.EndKm = &end
	return true
}

// SegmentRun returns the kilometers covered by one segment. Open segments run
// up to currentOdometer.
func SegmentRun(seg models.PositionSegment, currentOdometer int) int {
	end := currentOdometer
	if seg.EndKm != nil {
		end = *seg.EndKm
	}
	return max(0, end-seg.StartKm)
}

// TotalRun sums the kilometers a tire has run outside spare slots.
func TotalRun(t models.Tire, currentOdometer int) int {
	return lo.SumBy(t.History, func(seg models.PositionSegment) int {
		if seg.Position.IsSpare() {
			return 0
		}
		return SegmentRun(seg, currentOdometer)
	})
}

func lastSegment(t *models.Tire) (models.PositionSegment, bool) {
	if len(t.History) == 0 {
		return models.PositionSegment{}, false
	}
	return t.History[len(t.History)-1], true
}

// checkClosing rejects a closing reading lower than the open segment start.
func checkClosing(t *models.Tire, odometer int) error {
	if odometer < 0 {
		return ErrOdometerRegression
	}
	if last, ok := lastSegment(t); ok && last.IsOpen() && odometer < last.StartKm {
		return ErrOdometerRegression
	}
	return nil
}

// ensureHistory seeds an open segment from installation data for tires that
// carry no ledger yet.
func ensureHistory(t *models.Tire) {
	if len(t.History) > 0 {
		return
	}
	t.History = []models.PositionSegment{{
		Position: t.Position,
		StartKm:  t.InstallOdometer,
		Date:     t.InstalledAt,
	}}
}
