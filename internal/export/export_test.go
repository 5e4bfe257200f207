package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ruangpulih/internal/config"
	"ruangpulih/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	logger := zerolog.Nop()
	e := NewExporter(config.ExportConfig{Path: filepath.Join(t.TempDir(), "out")}, &logger)
	e.now = func() time.Time { return time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC) }
	return e
}

func TestExportBookings(t *testing.T) {
	e := newTestExporter(t)

	schedules := []models.Schedule{
		{ID: "S1", PsychologistID: "P1", Date: "2024-03-12", TimeSlot: "10:00"},
		{ID: "S2", PsychologistID: "P1", Date: "2024-03-11", TimeSlot: "14:00"},
	}
	bookings := []models.Booking{
		{
			ID: "B1", ScheduleID: "S1", ClientID: "C1", Status: models.StatusConfirmed,
			ClientDetails: &models.User{ID: "C1", Username: "budi"},
			CreatedAt:     models.NewTimestamp(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
		},
		{ID: "B2", ScheduleID: "S2", ClientID: "C2", Status: models.StatusPending},
		{
			ID: "B3", ScheduleID: "gone", ClientID: "C3", Status: models.StatusRejected,
			ScheduleDetails: &models.Schedule{ID: "gone", PsychologistID: "P2", Date: "2024-03-13", TimeSlot: "09:00"},
		},
	}

	path, err := e.Bookings(context.Background(), bookings, schedules)
	require.NoError(t, err)
	assert.Equal(t, "bookings_20240310_093000.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{bookingsSheet}, f.GetSheetList())

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, bookingColumns, rows[0])
	assert.Equal(t, []string{"B2", "2024-03-11", "14:00", "C2", "P1", "pending"}, rows[1])
	assert.Equal(t, []string{"B1", "2024-03-12", "10:00", "budi", "P1", "confirmed", "2024-03-01 08:00:00"}, rows[2])
	assert.Equal(t, []string{"B3", "2024-03-13", "09:00", "C3", "P2", "rejected"}, rows[3])

	header, err := f.GetCellStyle(bookingsSheet, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(header)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestExportBookingsEmpty(t *testing.T) {
	e := newTestExporter(t)

	path, err := e.Bookings(context.Background(), nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExportBookingsCanceled(t *testing.T) {
	e := newTestExporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Bookings(ctx, []models.Booking{{ID: "B1"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
