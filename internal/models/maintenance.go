package models

// ServiceItem identifies a serviceable part tracked by odometer interval.
type ServiceItem string

const (
	ItemAirFilter       ServiceItem = "air_filter"
	ItemFuelWaterFilter ServiceItem = "fuel_water_filter"
	ItemEngineOil       ServiceItem = "engine_oil"
	ItemGearboxOil      ServiceItem = "gearbox_oil"
	ItemDifferentialOil ServiceItem = "differential_oil"
)

// ServiceItems lists every tracked item in display order.
var ServiceItems = []ServiceItem{
	ItemAirFilter,
	ItemFuelWaterFilter,
	ItemEngineOil,
	ItemGearboxOil,
	ItemDifferentialOil,
}

// ServiceEntry is a past install of an item.
type ServiceEntry struct {
	Date     string `json:"date" bson:"date"`
	Odometer int    `json:"km" bson:"km"`
}

// MaintenanceRecord holds the current install of an item and prior installs,
// newest first.
type MaintenanceRecord struct {
	InstallOdometer int            `json:"install_km" bson:"install_km"`
	InstallDate     string         `json:"install_date" bson:"install_date"`
	History         []ServiceEntry `json:"history" bson:"history"`
}

// MaintenanceFilters groups the records for every tracked item.
type MaintenanceFilters struct {
	AirFilter       MaintenanceRecord `json:"air_filter" bson:"air_filter"`
	FuelWaterFilter MaintenanceRecord `json:"fuel_water_filter" bson:"fuel_water_filter"`
	EngineOil       MaintenanceRecord `json:"engine_oil" bson:"engine_oil"`
	GearboxOil      MaintenanceRecord `json:"gearbox_oil" bson:"gearbox_oil"`
	DifferentialOil MaintenanceRecord `json:"differential_oil" bson:"differential_oil"`
	Others          string            `json:"others" bson:"others"`
}

// Record returns a pointer to the record for item, or nil for an unknown item.
func (f *MaintenanceFilters) Record(item ServiceItem) *MaintenanceRecord {
	switch item {
	case ItemAirFilter:
		return &f.AirFilter
	case ItemFuelWaterFilter:
		return &f.FuelWaterFilter
	case ItemEngineOil:
		return &f.EngineOil
	case ItemGearboxOil:
		return &f.GearboxOil
	case ItemDifferentialOil:
		return &f.DifferentialOil
	default:
		return nil
	}
}
