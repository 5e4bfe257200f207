// Package export writes store snapshots to spreadsheet files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ruangpulih/internal/config"
	"ruangpulih/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

var bookingColumns = []string{"Booking ID", "Date", "Time", "Client", "Psychologist", "Status", "Created At"}

type Exporter struct {
	dir    string
	logger zerolog.Logger
	now    func() time.Time
}

func NewExporter(cfg config.ExportConfig, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		dir:    cfg.Path,
		logger: logger.With().Str("component", "export").Logger(),
		now:    time.Now,
	}
}

// Bookings writes one row per booking, ordered by slot, and returns the
// path of the saved workbook. Slot date and time come from schedules
// when the booking's schedule is known there, otherwise from the
// schedule embedded in the booking.
func (e *Exporter) Bookings(ctx context.Context, bookings []models.Booking, schedules []models.Schedule) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	byID := make(map[string]models.Schedule, len(schedules))
	for _, s := range schedules {
		byID[s.ID] = s
	}

	rows := make([]bookingRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, newBookingRow(b, byID))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].date != rows[j].date {
			return rows[i].date < rows[j].date
		}
		return rows[i].time < rows[j].time
	})

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeHeader(f); err != nil {
		return "", err
	}

	styles, err := newStatusStyles(f)
	if err != nil {
		return "", err
	}
	for i, row := range rows {
		r := i + 2
		for col, value := range row.values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(bookingsSheet, cell, value)
		}
		if style, ok := styles[row.status]; ok {
			first, _ := excelize.CoordinatesToCellName(1, r)
			last, _ := excelize.CoordinatesToCellName(len(bookingColumns), r)
			_ = f.SetCellStyle(bookingsSheet, first, last, style)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(bookingsSheet, "B", "C", 12)
	_ = f.SetColWidth(bookingsSheet, "D", "E", 24)
	_ = f.SetColWidth(bookingsSheet, "F", "F", 12)
	_ = f.SetColWidth(bookingsSheet, "G", "G", 22)
	_ = f.SetPanes(bookingsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", e.now().Format("20060102_150405"))
	filePath := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(rows)).Msg("Bookings exported")
	return filePath, nil
}

type bookingRow struct {
	id           string
	date         string
	time         string
	client       string
	psychologist string
	status       string
	createdAt    string
}

func newBookingRow(b models.Booking, schedules map[string]models.Schedule) bookingRow {
	row := bookingRow{id: b.ID, status: b.Status, client: b.ClientID}
	if b.ClientDetails != nil && b.ClientDetails.Username != "" {
		row.client = b.ClientDetails.Username
	}
	if b.CreatedAt != nil && !b.CreatedAt.IsZero() {
		row.createdAt = b.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	}

	s, ok := schedules[b.ScheduleID]
	if !ok {
		if snapshot := b.ScheduleSnapshot(); snapshot != nil {
			s, ok = *snapshot, true
		}
	}
	if ok {
		row.date = s.Date
		row.time = s.TimeSlot
		row.psychologist = s.PsychologistID
	}
	return row
}

func (r bookingRow) values() []string {
	return []string{r.id, r.date, r.time, r.client, r.psychologist, r.status, r.createdAt}
}

func writeHeader(f *excelize.File) error {
	for i, title := range bookingColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, title)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(bookingColumns), 1)
	return f.SetCellStyle(bookingsSheet, "A1", last, style)
}

// newStatusStyles fills confirmed rows green, pending yellow and rejected
// red.
func newStatusStyles(f *excelize.File) (map[string]int, error) {
	colors := map[string]string{
		models.StatusConfirmed: "#C6EFCE",
		models.StatusPending:   "#FFEB9C",
		models.StatusRejected:  "#FFC7CE",
	}
	styles := make(map[string]int, len(colors))
	for status, color := range colors {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating %s style: %w", status, err)
		}
		styles[status] = style
	}
	return styles, nil
}
