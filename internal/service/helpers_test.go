package service

import (
	"context"
	"testing"
	"time"

	"ruangpulih/internal/api"
	"ruangpulih/internal/apitest"
	"ruangpulih/internal/config"
	"ruangpulih/internal/models"
	"ruangpulih/internal/store"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend      *apitest.Backend
	psychologist models.User
	client       models.User
	slot         models.Schedule
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := apitest.NewBackend(t)
	b.SetNow(func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) })
	f := &fixture{
		backend:      b,
		psychologist: b.AddUser("dr.ana", "ana@example.com", "secret", models.RolePsychologist),
		client:       b.AddUser("budi", "budi@example.com", "secret", models.RoleClient),
	}
	f.slot = b.AddSchedule(f.psychologist.ID, "2024-01-02", "10:00")
	return f
}

func (f *fixture) login(t *testing.T, email string) *api.Client {
	t.Helper()
	c, err := api.NewClient(config.APIConfig{BaseURL: f.backend.URL()}, nil)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), email, "secret")
	require.NoError(t, err)
	return c
}

func (f *fixture) bookings(t *testing.T, email string) *BookingService {
	c := f.login(t, email)
	return NewBookingService(store.New[models.Booking](store.Bookings, c, nil, nil), c, nil)
}
