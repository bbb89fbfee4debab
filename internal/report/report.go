package report

import (
	"bytes"
	"fmt"

	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/trips"
	"github.com/xuri/excelize/v2"
)

const (
	TripsSheet    = "Trips"
	SegmentsSheet = "Fuel Segments"
)

// TripReport is the settlement view of one trip.
type TripReport struct {
	Trip     models.Trip               `json:"trip"`
	Summary  trips.Summary             `json:"summary"`
	Segments []trips.SegmentEfficiency `json:"segments"`
}

// Build assembles the report of trip, scoring its fuel segments against history.
func Build(trip models.Trip, history []models.Trip, calc trips.Calculator) TripReport {
	segments := calc.Segments(trip, history)
	if segments == nil {
		segments = []trips.SegmentEfficiency{}
	}
	return TripReport{
		Trip:     trip,
		Summary:  calc.Summarize(trip),
		Segments: segments,
	}
}

var tripHeaders = []string{
	"Outbound date", "End date", "Plate", "Driver", "Outbound company", "Inbound company",
	"Freight", "Toll tag", "Advances", "Commission", "Fuel cost", "Diesel (L)",
	"Expenses", "Km", "Km/L", "Net profit", "Settlement",
}

var segmentHeaders = []string{
	"Outbound date", "Plate", "Segment", "Actual (L)", "Target (L)", "Deviation (L)", "Inefficient", "Matches",
}

// Workbook renders the reports of trips into an XLSX document with one row
// per trip and one row per fuel segment.
func Workbook(list []models.Trip, history []models.Trip, calc trips.Calculator) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TripsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SegmentsSheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, TripsSheet, 1, toRow(tripHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, SegmentsSheet, 1, toRow(segmentHeaders)); err != nil {
		return nil, err
	}

	tripRow, segRow := 2, 2
	for _, trip := range list {
		r := Build(trip, history, calc)
		s := r.Summary
		err := writeRow(f, TripsSheet, tripRow, []interface{}{
			trip.Outbound.Date, trip.EndDate, trip.Plate, trip.DriverName,
			trip.Outbound.Company, trip.Inbound.Company,
			s.TotalFreight, s.TotalTollTag, s.TotalAdvance, s.Commission, s.FuelCost, s.DieselLiters,
			s.Expenses, s.TotalKm, s.KmPerLiter, s.NetProfit, s.Settlement,
		})
		if err != nil {
			return nil, err
		}
		tripRow++

		for _, seg := range r.Segments {
			err := writeRow(f, SegmentsSheet, segRow, []interface{}{
				trip.Outbound.Date, trip.Plate, seg.Label(),
				seg.Actual, seg.Target, seg.Deviation, seg.Inefficient, seg.Matches,
			})
			if err != nil {
				return nil, err
			}
			segRow++
		}
	}

	f.SetColWidth(TripsSheet, "A", "F", 18)
	f.SetColWidth(TripsSheet, "G", "Q", 14)
	f.SetColWidth(SegmentsSheet, "A", "B", 14)
	f.SetColWidth(SegmentsSheet, "C", "C", 40)
	f.SetColWidth(SegmentsSheet, "D", "H", 14)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toRow(headers []string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}
