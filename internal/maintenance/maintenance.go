package maintenance

import (
	"errors"

	"github.com/samber/lo"
	"github.com/ukydev/fleet-ledger/internal/models"
)

var ErrUnknownItem = errors.New("unknown service item")

// Thresholds are the service intervals in kilometers.
var Thresholds = map[models.ServiceItem]int{
	models.ItemAirFilter:       40000,
	models.ItemFuelWaterFilter: 10000,
	models.ItemEngineOil:       20000,
	models.ItemGearboxOil:      80000,
	models.ItemDifferentialOil: 80000,
}

// Status is the read-only due check of one item.
type Status struct {
	Item        models.ServiceItem `json:"item"`
	InstallKm   int                `json:"install_km"`
	InstallDate string             `json:"install_date"`
	UsedKm      int                `json:"used_km"`
	Threshold   int                `json:"threshold"`
	NextDueKm   int                `json:"next_due_km"`
	Percent     float64            `json:"percent"`
	Due         bool               `json:"due"`
	History     int                `json:"history_count"`
}

// RecordService rolls the current install into history, newest first, and
// stores the new one. An install at odometer zero is treated as unset.
func RecordService(rec *models.MaintenanceRecord, odometer int, date string) {
	if rec.InstallOdometer > 0 {
		entry := models.ServiceEntry{Date: rec.InstallDate, Odometer: rec.InstallOdometer}
		rec.History = append([]models.ServiceEntry{entry}, rec.History...)
	}
	rec.InstallOdometer = odometer
	rec.InstallDate = date
}

// Check computes how far an item is into its interval at currentOdometer.
func Check(item models.ServiceItem, rec models.MaintenanceRecord, currentOdometer int) (Status, error) {
	threshold, ok := Thresholds[item]
	if !ok {
		return Status{}, ErrUnknownItem
	}
	used := max(0, currentOdometer-rec.InstallOdometer)
	return Status{
		Item:        item,
		InstallKm:   rec.InstallOdometer,
		InstallDate: rec.InstallDate,
		UsedKm:      used,
		Threshold:   threshold,
		NextDueKm:   rec.InstallOdometer + threshold,
		Percent:     min(100, float64(used)/float64(threshold)*100),
		Due:         used >= threshold,
		History:     len(rec.History),
	}, nil
}

// Overview checks every tracked item.
func Overview(filters models.MaintenanceFilters, currentOdometer int) []Status {
	return lo.Map(models.ServiceItems, func(item models.ServiceItem, _ int) Status {
		st, _ := Check(item, *filters.Record(item), currentOdometer)
		return st
	})
}

// Record applies a service to the named item of filters.
func Record(filters *models.MaintenanceFilters, item models.ServiceItem, odometer int, date string) error {
	rec := filters.Record(item)
	if rec == nil {
		return ErrUnknownItem
	}
	RecordService(rec, odometer, date)
	return nil
}
