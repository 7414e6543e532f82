// Package export renders bookings as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"dormitory/pkg/model"

	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Bookings"
)

var header = []any{"Booking ID", "Room No", "Room Name", "Tenant", "Contact No", "Start Date", "End Date", "Total Amount"}

// WriteBookings writes one row per booking under a bold header row. Rooms or
// tenants that no longer exist leave their columns blank.
func WriteBookings(w io.Writer, bookings []*model.BookingDetails) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := bookingRow(b)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("error writing booking %s: %w", b.ID, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "H", 18); err != nil {
		return fmt.Errorf("error sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func bookingRow(b *model.BookingDetails) []any {
	row := []any{b.ID, nil, "", "", "", b.StartDate.Format(model.DateLayout), b.EndDate.Format(model.DateLayout), b.TotalAmount.InexactFloat64()}
	if b.Room != nil {
		row[1] = int(b.Room.RoomNo)
		row[2] = b.Room.RoomName
	}
	if b.Tenant != nil {
		row[3] = b.Tenant.FullName
		row[4] = string(b.Tenant.ContactNo)
	}
	return row
}
