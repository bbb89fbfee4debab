package models

import (
	"time"
)

// TripStatus is the lifecycle stage of a trip.
type TripStatus string

const (
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
)

// DateLayout is the calendar date format used across records.
const DateLayout = "2006-01-02"

// Freight is one leg of a trip, outbound or inbound.
type Freight struct {
	Date               string  `json:"date" bson:"date" validate:"omitempty,datetime=2006-01-02"`
	Company            string  `json:"company" bson:"company"`
	Destinations       string  `json:"destinations" bson:"destinations"`
	Value              float64 `json:"value" bson:"value" validate:"gte=0"`
	Advance            float64 `json:"advance" bson:"advance" validate:"gte=0"`
	AdvanceMaintenance float64 `json:"advance_maintenance" bson:"advance_maintenance" validate:"gte=0"`
	AdvanceFuel        float64 `json:"advance_fuel" bson:"advance_fuel" validate:"gte=0"`
	TollTag            float64 `json:"toll_tag" bson:"toll_tag" validate:"gte=0"`
	WeightTons         float64 `json:"weight_tons" bson:"weight_tons" validate:"gte=0"`
	StartKm            int     `json:"start_km" bson:"start_km" validate:"gte=0"` // outbound only
}

// Advances sums the three advance payments of the leg.
func (f Freight) Advances() float64 {
	return f.Advance + f.AdvanceMaintenance + f.AdvanceFuel
}

// FuelPurchase is a stop at a fuel station. Purchase order defines route segments.
type FuelPurchase struct {
	Station      string  `json:"station" bson:"station" validate:"required"`
	ArrivalKm    int     `json:"arrival_km" bson:"arrival_km" validate:"gte=0"`
	DieselLiters float64 `json:"diesel_liters" bson:"diesel_liters" validate:"gte=0"`
	UreaLiters   float64 `json:"urea_liters" bson:"urea_liters" validate:"gte=0"`
	TotalCost    float64 `json:"total_cost" bson:"total_cost" validate:"gt=0"`
}

// TripExpenses are the expense fields filled in on the trip form.
type TripExpenses struct {
	TireShop    float64 `json:"tire_shop" bson:"tire_shop" validate:"gte=0"`
	Lashing     float64 `json:"lashing" bson:"lashing" validate:"gte=0"`
	Unloading   float64 `json:"unloading" bson:"unloading" validate:"gte=0"`
	Tips        float64 `json:"tips" bson:"tips" validate:"gte=0"`
	Wash        float64 `json:"wash" bson:"wash" validate:"gte=0"`
	CashToll    float64 `json:"cash_toll" bson:"cash_toll" validate:"gte=0"`
	OthersDesc  string  `json:"others_desc" bson:"others_desc"`
	OthersValue float64 `json:"others_value" bson:"others_value" validate:"gte=0"`
}

// Total sums every monetary field.
func (e TripExpenses) Total() float64 {
	return e.TireShop + e.Lashing + e.Unloading + e.Tips + e.Wash + e.CashToll + e.OthersValue
}

// Trip represents a round trip with an outbound and an inbound freight leg.
type Trip struct {
	ID           string         `json:"id" bson:"_id"`
	UserID       string         `json:"user_id" bson:"user_id"`
	DriverName   string         `json:"driver_name" bson:"driver_name"`
	Plate        string         `json:"plate" bson:"plate" validate:"required"`
	Outbound     Freight        `json:"outbound" bson:"outbound"`
	Inbound      Freight        `json:"inbound" bson:"inbound"`
	Fuel         []FuelPurchase `json:"fuel" bson:"fuel" validate:"dive"`
	Expenses     TripExpenses   `json:"expenses" bson:"expenses"`
	Status       TripStatus     `json:"status" bson:"status"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
	EndDate      string         `json:"end_date,omitempty" bson:"end_date,omitempty"`
	EndKm        int            `json:"end_km,omitempty" bson:"end_km,omitempty"`
	MiscExpenses []MiscExpense  `json:"misc_expenses,omitempty" bson:"misc_expenses,omitempty"`
}

// IsCompleted reports whether the trip has been closed.
func (t Trip) IsCompleted() bool {
	return t.Status == TripCompleted
}

// CargoTons is the combined cargo weight of both legs.
func (t Trip) CargoTons() float64 {
	return t.Outbound.WeightTons + t.Inbound.WeightTons
}
