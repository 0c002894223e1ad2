package endpoint

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "Bookings"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportColWidth = 18
)

var exportHeader = []interface{}{
	"ID", "Booking Date", "Booking Time", "Client", "Client Email",
	"Advocate", "Advocate Email", "Service", "Service Type",
	"Status", "Payment Status", "Total Amount", "Notes", "Created At",
}

// formatHeader makes the header row bold and widens the columns up to lastCol.
func formatHeader(f *excelize.File, lastCol string) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, exportColWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return nil
}

// writeBookingsWorkbook renders bookings as a single sheet workbook with a
// bold header row. Formatting failures are logged; the data is still written.
func writeBookingsWorkbook(log *zerolog.Logger, bookings []model.BookingView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return nil, err
	}
	if err := formatHeader(f, lastCol); err != nil {
		log.Warn().Err(err).Msg("bookings export left unformatted")
	}

	for i, b := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			b.ID, b.BookingDate, b.BookingTime, b.UserName, b.UserEmail,
			b.AdvocateName, b.AdvocateEmail, b.ServiceTitle, string(b.ServiceType),
			string(b.Status), string(b.PaymentStatus), b.TotalAmount, b.Notes,
			b.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write booking %d: %w", b.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// ExportBookings godoc
// @Summary      Export bookings
// @Description  Download every booking as an xlsx workbook
// @Tags         Admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} file "Bookings workbook"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /admin/bookings/export [get]
func ExportBookings(c *gin.Context) {
	adminID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	bookings, err := scanBookings(bookingDetailQuery(db).Order("bookings.created_at DESC").Order("bookings.id DESC"))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch bookings", Err: err})
		return
	}
	buf, err := writeBookingsWorkbook(util.Logger(c), bookings)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to build export", Err: err})
		return
	}

	util.LogAdminAction(adminID, c.ClientIP(), "export_bookings", map[string]interface{}{"rows": len(bookings)})
	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}
