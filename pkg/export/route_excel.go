// Package export renders a route and its deliveries as an XLSX workbook.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"p9e.in/choferes/models"
)

const SheetName = "Entregas"

var routeHeaders = []string{
	"Delivery", "Client", "Invoice", "Status", "Priority",
	"Start", "Delivered", "Duration (s)", "Distance (km)",
	"Estimated duration", "Estimated distance", "Cancellation reason",
}

// RouteWorkbook builds the summary workbook for a route. Times are written in UTC.
func RouteWorkbook(route *models.Route, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(SheetName, "A1", fmt.Sprintf("FEC %d (%s)", route.Number, time.Time(route.Date).Format("2006-01-02")))
	f.SetCellStyle(SheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(SheetName, 1, 30)
	f.SetCellValue(SheetName, "A2", fmt.Sprintf("Status: %s | Generated: %s UTC", route.Status, generatedAt.UTC().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for col, header := range routeHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		f.SetCellValue(SheetName, cell, header)
		f.SetCellStyle(SheetName, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(SheetName, name, name, 18)
	}

	var totalKm float64
	finished := 0
	for i, d := range route.Deliveries {
		clientName := ""
		if d.Client != nil {
			clientName = d.Client.Name
		}
		row := []interface{}{
			d.ID, clientName, deref(d.InvoiceID), d.Status, intOrBlank(d.Priority),
			timeOrBlank(d.StartTime), timeOrBlank(d.DeliveryTime), deref(d.ActualDuration), floatOrBlank(d.Distance),
			deref(d.EstimatedDuration), deref(d.EstimatedDistance), deref(d.CancellationReason),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+5)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write delivery row: %w", err)
		}
		if d.Distance != nil {
			totalKm += *d.Distance
		}
		if d.IsTerminal() {
			finished++
		}
	}

	summaryRow := len(route.Deliveries) + 6
	summary := [][2]interface{}{
		{"Deliveries", len(route.Deliveries)},
		{"Finished", finished},
		{"Total distance (km)", totalKm},
	}
	for i, kv := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		f.SetCellValue(SheetName, keyCell, kv[0])
		f.SetCellValue(SheetName, valueCell, kv[1])
	}

	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrBlank(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func timeOrBlank(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
