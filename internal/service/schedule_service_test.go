package service

import (
	"context"
	"testing"
	"time"

	"ruangpulih/internal/models"
	"ruangpulih/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleService(t *testing.T, f *fixture) *ScheduleService {
	c := f.login(t, "ana@example.com")
	return NewScheduleService(store.New[models.Schedule](store.Schedules, c, nil, nil), nil)
}

func TestAddValidation(t *testing.T) {
	f := newFixture(t)
	svc := newScheduleService(t, f)
	ctx := context.Background()

	cases := []struct {
		date, slot, want string
	}{
		{"", "10:00", "Date and time slot are required."},
		{"2024-01-05", "", "Date and time slot are required."},
		{"05/01/2024", "10:00", "Date must use the YYYY-MM-DD format."},
		{"2024-01-05", "10am", "Time slot must use the HH:MM format."},
	}
	for _, tc := range cases {
		res := svc.Add(ctx, tc.date, tc.slot)
		assert.False(t, res.Success)
		assert.Equal(t, tc.want, res.Error)
	}
	assert.Zero(t, f.backend.Requests("POST /schedules"))
}

func TestAddEditDelete(t *testing.T) {
	f := newFixture(t)
	svc := newScheduleService(t, f)
	ctx := context.Background()
	require.True(t, svc.Fetch(ctx).Success)

	res := svc.Add(ctx, "2024-01-05", "14:00")
	require.True(t, res.Success, res.Error)
	id := res.Item.ID
	assert.Len(t, svc.Store().Items(), 2)

	assert.True(t, IsValidation(svc.Edit(ctx, id, SchedulePatch{}).Err))

	slot := "15:30"
	res = svc.Edit(ctx, id, SchedulePatch{TimeSlot: &slot})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "2024-01-05", res.Item.Date)
	assert.Equal(t, "15:30", res.Item.TimeSlot)

	bad := "tomorrow"
	assert.True(t, IsValidation(svc.Edit(ctx, id, SchedulePatch{Date: &bad}).Err))

	del := svc.Delete(ctx, id)
	require.True(t, del.Success)
	assert.Equal(t, "Schedule deleted", del.Message)
	assert.Len(t, svc.Store().Items(), 1)
}

func TestDeleteBookedRefusedLocally(t *testing.T) {
	f := newFixture(t)
	f.backend.AddBooking(f.client.ID, f.slot.ID, models.StatusPending)
	svc := newScheduleService(t, f)
	ctx := context.Background()
	require.True(t, svc.Fetch(ctx).Success)

	res := svc.Delete(ctx, f.slot.ID)
	assert.True(t, IsValidation(res.Err))
	assert.Zero(t, f.backend.Requests("DELETE /schedules/{id}"))
}

func TestOpenSlots(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	slots := []models.Schedule{
		{ID: "late", Date: "2024-01-03", TimeSlot: "08:00"},
		{ID: "past", Date: "2024-01-02", TimeSlot: "08:59"},
		{ID: "booked", Date: "2024-01-02", TimeSlot: "11:00", IsBooked: true},
		{ID: "soon", Date: "2024-01-02", TimeSlot: "10:00"},
		{ID: "broken", Date: "2024-13-40", TimeSlot: "10:00"},
	}

	open := OpenSlots(slots, now)
	require.Len(t, open, 2)
	assert.Equal(t, "soon", open[0].ID)
	assert.Equal(t, "late", open[1].ID)
}

func TestAvailableUsesLoadedSchedules(t *testing.T) {
	f := newFixture(t)
	svc := newScheduleService(t, f)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	assert.Empty(t, svc.Available())

	require.True(t, svc.Fetch(context.Background()).Success)
	available := svc.Available()
	require.Len(t, available, 1)
	assert.Equal(t, f.slot.ID, available[0].ID)
}
