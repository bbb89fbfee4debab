package trips

import (
	"github.com/samber/lo"
	"github.com/ukydev/fleet-ledger/internal/models"
)

// TripStart labels the origin of the first fuel segment of every trip.
const TripStart = "Trip start"

const (
	DefaultCommissionRate     = 0.13
	DefaultInefficiencyMargin = 1.0
)

// Calculator derives financial and fuel figures from trips.
type Calculator struct {
	CommissionRate     float64
	InefficiencyMargin float64
}

// NewCalculator returns a calculator with the default rate and margin.
func NewCalculator() Calculator {
	return Calculator{
		CommissionRate:     DefaultCommissionRate,
		InefficiencyMargin: DefaultInefficiencyMargin,
	}
}

// Summary is the settlement report of one trip.
type Summary struct {
	TotalFreight float64 `json:"total_freight"`
	TotalTollTag float64 `json:"total_toll_tag"`
	TotalAdvance float64 `json:"total_advances"`
	Commission   float64 `json:"commission"`
	FuelCost     float64 `json:"fuel_cost"`
	DieselLiters float64 `json:"diesel_liters"`
	UreaLiters   float64 `json:"urea_liters"`
	FormExpenses float64 `json:"form_expenses"`
	MiscExpenses float64 `json:"misc_expenses"`
	Expenses     float64 `json:"total_expenses"`
	TotalKm      int     `json:"total_km"`
	KmPerLiter   float64 `json:"km_per_liter"`
	NetProfit    float64 `json:"net_profit"`
	Settlement   float64 `json:"settlement"`
}

// Summarize computes the net result and the cash-in-hand balance of a trip.
// A negative settlement means the driver owes money back.
func (c Calculator) Summarize(trip models.Trip) Summary {
	s := Summary{
		TotalFreight: trip.Outbound.Value + trip.Inbound.Value,
		TotalTollTag: trip.Outbound.TollTag + trip.Inbound.TollTag,
		TotalAdvance: trip.Outbound.Advances() + trip.Inbound.Advances(),
		FuelCost:     lo.SumBy(trip.Fuel, func(f models.FuelPurchase) float64 { return f.TotalCost }),
		DieselLiters: lo.SumBy(trip.Fuel, func(f models.FuelPurchase) float64 { return f.DieselLiters }),
		UreaLiters:   lo.SumBy(trip.Fuel, func(f models.FuelPurchase) float64 { return f.UreaLiters }),
		FormExpenses: trip.Expenses.Total(),
		MiscExpenses: sumExpenses(trip.MiscExpenses),
	}
	s.Commission = (s.TotalFreight + s.TotalTollTag) * c.CommissionRate
	s.Expenses = s.FormExpenses + s.MiscExpenses

	if trip.EndKm > trip.Outbound.StartKm {
		s.TotalKm = trip.EndKm - trip.Outbound.StartKm
	}
	if s.DieselLiters > 0 {
		s.KmPerLiter = float64(s.TotalKm) / s.DieselLiters
	}

	s.NetProfit = s.TotalFreight - s.Commission - s.FuelCost - s.Expenses
	s.Settlement = s.TotalAdvance - s.FuelCost - s.Expenses
	return s
}

// SegmentEfficiency compares the diesel used between two stops with what
// past trips on the same route used per ton of cargo.
type SegmentEfficiency struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Actual      float64 `json:"actual_liters"`
	Target      float64 `json:"target_liters"`
	Deviation   float64 `json:"deviation_liters"`
	Inefficient bool    `json:"inefficient"`
	Matches     int     `json:"matches"`
}

// Label renders the segment as "from → to".
func (s SegmentEfficiency) Label() string {
	return s.From + " → " + s.To
}

// Segments splits a trip into station-to-station legs and scores each one
// against completed trips of the same plate. Legs with no historical match get
// no target and are never flagged.
func (c Calculator) Segments(trip models.Trip, history []models.Trip) []SegmentEfficiency {
	if len(trip.Fuel) == 0 {
		return nil
	}

	past := lo.Filter(history, func(h models.Trip, _ int) bool {
		return h.IsCompleted() && h.Plate == trip.Plate && h.ID != trip.ID
	})
	cargo := trip.CargoTons()

	out := make([]SegmentEfficiency, 0, len(trip.Fuel))
	from := TripStart
	for _, stop := range trip.Fuel {
		rates := litersPerTon(past, from, stop.Station)
		seg := SegmentEfficiency{
			From:    from,
			To:      stop.Station,
			Actual:  stop.DieselLiters,
			Matches: len(rates),
		}
		if len(rates) > 0 {
			seg.Target = lo.Sum(rates) / float64(len(rates)) * cargo
			seg.Deviation = seg.Actual - seg.Target
			seg.Inefficient = seg.Deviation > c.InefficiencyMargin
		}
		out = append(out, seg)
		from = stop.Station
	}
	return out
}

func litersPerTon(past []models.Trip, from, to string) []float64 {
	var rates []float64
	for _, h := range past {
		weight := h.CargoTons()
		if weight <= 0 {
			continue
		}
		prev := TripStart
		for _, stop := range h.Fuel {
			if prev == from && stop.Station == to {
				rates = append(rates, stop.DieselLiters/weight)
			}
			prev = stop.Station
		}
	}
	return rates
}

func sumExpenses(expenses []models.MiscExpense) float64 {
	return lo.SumBy(expenses, func(e models.MiscExpense) float64 { return e.Value })
}
