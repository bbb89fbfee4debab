package trips

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/ukydev/fleet-ledger/internal/models"
)

// Period selects the window of the trip reports.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodAll     Period = "all"
)

// ParsePeriod converts raw input into a Period. Empty input means monthly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(s)); p {
	case "":
		return PeriodMonthly, nil
	case PeriodWeekly, PeriodMonthly, PeriodYearly, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// FilterByPeriod keeps completed trips whose outbound date falls in the
// period, newest first.
func FilterByPeriod(trips []models.Trip, period Period, now time.Time) []models.Trip {
	out := lo.Filter(trips, func(t models.Trip, _ int) bool {
		if !t.IsCompleted() {
			return false
		}
		if period == PeriodAll {
			return true
		}
		d, err := time.ParseInLocation(models.DateLayout, t.Outbound.Date, now.Location())
		if err != nil {
			return false
		}
		d = d.Add(12 * time.Hour)
		switch period {
		case PeriodWeekly:
			return !d.Before(now.Add(-7 * 24 * time.Hour))
		case PeriodMonthly:
			return d.Month() == now.Month() && d.Year() == now.Year()
		case PeriodYearly:
			return d.Year() == now.Year()
		}
		return false
	})
	slices.SortStableFunc(out, func(a, b models.Trip) int {
		return strings.Compare(b.Outbound.Date, a.Outbound.Date)
	})
	return out
}

// CurrentOdometer is the highest reading known for the profile's truck.
func CurrentOdometer(trips []models.Trip, profile models.Profile) int {
	highest := max(profile.Truck.CurrentOdometer, profile.Truck.InitialOdometer)
	for _, t := range trips {
		if t.Plate != profile.Truck.Plate {
			continue
		}
		fuelKm := lo.Max(lo.Map(t.Fuel, func(f models.FuelPurchase, _ int) int { return f.ArrivalKm }))
		highest = max(highest, t.Outbound.StartKm, t.Inbound.StartKm, fuelKm, t.EndKm)
	}
	return highest
}

// DashboardStats is the running tally of the active trip.
type DashboardStats struct {
	TripID          string  `json:"trip_id,omitempty"`
	Freight         float64 `json:"freight"`
	Fuel            float64 `json:"fuel"`
	Expenses        float64 `json:"expenses"`
	Net             float64 `json:"net"`
	PercentExpenses float64 `json:"percent_expenses"`
}

// ActiveStats tallies the active trip together with the pending misc
// expenses dated on or after its start.
func ActiveStats(trips []models.Trip, pending []models.MiscExpense) DashboardStats {
	trip, ok := ActiveTrip(trips)
	if !ok {
		return DashboardStats{}
	}
	since := lo.Filter(pending, func(e models.MiscExpense, _ int) bool {
		return e.Date >= trip.Outbound.Date
	})

	stats := DashboardStats{
		TripID:   trip.ID,
		Freight:  trip.Outbound.Value + trip.Inbound.Value,
		Fuel:     lo.SumBy(trip.Fuel, func(f models.FuelPurchase) float64 { return f.TotalCost }),
		Expenses: trip.Expenses.Total() + sumExpenses(since),
	}
	costs := stats.Fuel + stats.Expenses
	stats.Net = stats.Freight - costs
	if stats.Freight > 0 {
		stats.PercentExpenses = min(costs/stats.Freight*100, 100)
	}
	return stats
}

// Occurrence is a tire event that happened during a trip.
type Occurrence struct {
	models.TireEvent
	Position models.MountPosition `json:"position"`
	Brand    string               `json:"brand"`
}

// TireOccurrences lists events of the given tires dated within the trip.
// An open trip runs up to now.
func TireOccurrences(trip models.Trip, tires []models.Tire, now time.Time) []Occurrence {
	start := trip.Outbound.Date
	end := trip.EndDate
	if end == "" {
		end = now.Format(models.DateLayout)
	}
	var out []Occurrence
	for _, t := range tires {
		for _, ev := range t.Events {
			if ev.Date >= start && ev.Date <= end {
				out = append(out, Occurrence{TireEvent: ev, Position: t.Position, Brand: t.Brand})
			}
		}
	}
	return out
}
