package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "RFC3339", raw: `"2024-01-01T00:00:00Z"`, want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "NaiveMicros", raw: `"2024-05-02T10:30:00.123456"`, want: time.Date(2024, 5, 2, 10, 30, 0, 123456000, time.UTC)},
		{name: "NaiveSeconds", raw: `"2024-05-02T10:30:00"`, want: time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)},
		{name: "Null", raw: `null`},
		{name: "Empty", raw: `""`},
		{name: "Garbage", raw: `"yesterday"`, wantErr: true},
		{name: "NotString", raw: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.raw), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestBookingDecode(t *testing.T) {
	raw := `{
		"id": "B1",
		"client_id": "C1",
		"schedule_id": "S1",
		"status": "pending",
		"created_at": "2024-01-01T00:00:00",
		"client_details": {"id": "C1", "username": "rina", "email": "rina@example.com", "role": "client"}
	}`

	var b Booking
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	assert.Equal(t, "B1", b.Key())
	assert.Equal(t, StatusPending, b.Status)
	require.NotNil(t, b.CreatedAt)
	assert.Equal(t, 2024, b.CreatedAt.Year())
	require.NotNil(t, b.ClientDetails)
	assert.True(t, b.ClientDetails.IsClient())
	assert.True(t, b.IsActive())
	assert.Nil(t, b.ScheduleSnapshot())
}

func TestTimestampBefore(t *testing.T) {
	early := NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := NewTimestamp(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, TimestampBefore(early, late))
	assert.False(t, TimestampBefore(late, early))
	assert.True(t, TimestampBefore(nil, early))
	assert.False(t, TimestampBefore(early, nil))
	assert.False(t, TimestampBefore(nil, nil))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		role, from, to string
		want           bool
	}{
		{RoleClient, StatusPending, StatusRejected, true},
		{RoleClient, StatusConfirmed, StatusRejected, false},
		{RoleClient, StatusPending, StatusConfirmed, false},
		{RolePsychologist, StatusPending, StatusConfirmed, true},
		{RolePsychologist, StatusPending, StatusRejected, true},
		{RolePsychologist, StatusConfirmed, StatusPending, false},
		{RolePsychologist, StatusConfirmed, StatusRejected, true},
		{RolePsychologist, StatusRejected, StatusConfirmed, false},
		{RolePsychologist, StatusRejected, StatusRejected, true},
		{RolePsychologist, StatusPending, "done", false},
		{"admin", StatusPending, StatusRejected, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.role, tt.from, tt.to), "%s: %s -> %s", tt.role, tt.from, tt.to)
	}
}

func TestScheduleStartsAt(t *testing.T) {
	s := Schedule{ID: "S1", Date: "2024-03-10", TimeSlot: "14:30"}
	got, err := s.StartsAt(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC), got)

	_, err = Schedule{ID: "S2", Date: "10/03/2024", TimeSlot: "14:30"}.StartsAt(time.UTC)
	assert.Error(t, err)
}

func TestPsychologistListDecode(t *testing.T) {
	raw := `[{"id":"P1","username":"dr.ana","email":"ana@example.com","role":"psychologist",
		"average_rating":null,"total_reviews":null,
		"available_schedules":[{"id":"S1","date":"2030-01-01","time_slot":"09:00","is_booked":false}]}]`

	var list []Psychologist
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	require.Len(t, list, 1)
	assert.Nil(t, list[0].AverageRating)
	assert.Nil(t, list[0].TotalReviews)
	require.Len(t, list[0].AvailableSchedules, 1)
	assert.Equal(t, "09:00", list[0].AvailableSchedules[0].TimeSlot)
}

func TestIsValidStatusAndRole(t *testing.T) {
	assert.True(t, IsValidStatus(StatusConfirmed))
	assert.False(t, IsValidStatus("cancelled"))
	assert.True(t, IsValidRole(RolePsychologist))
	assert.False(t, IsValidRole("manager"))
}
