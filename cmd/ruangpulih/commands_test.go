package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ruangpulih/internal/apitest"
	"ruangpulih/internal/config"
	"ruangpulih/internal/dashboard"
	"ruangpulih/internal/models"
	"ruangpulih/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type cliEnv struct {
	backend *apitest.Backend
	ana     models.User
	budi    models.User
	slot    models.Schedule
	exports string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	b := apitest.NewBackend(t)
	b.SetNow(func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) })
	env := &cliEnv{
		backend: b,
		ana:     b.AddUser("dr.ana", "ana@example.com", "secret", models.RolePsychologist),
		budi:    b.AddUser("budi", "budi@example.com", "secret", models.RoleClient),
		exports: t.TempDir(),
	}
	env.slot = b.AddSchedule(env.ana.ID, "2024-01-02", "10:00")
	return env
}

// as returns a cli signed in as email, writing its output to out.
func (e *cliEnv) as(email string, out *bytes.Buffer) *cli {
	cfg := config.Default()
	cfg.API.BaseURL = e.backend.URL()
	cfg.Auth = config.AuthConfig{Email: email, Password: "secret"}
	cfg.Exports.Path = e.exports
	logger := zerolog.Nop()
	return &cli{
		cfg:    cfg,
		logger: &logger,
		cache:  repository.NewMemoryCache(),
		out:    out,
		now:    func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) },
	}
}

func decodeResult[T any](t *testing.T, out *bytes.Buffer) resultOutput[T] {
	t.Helper()
	var res resultOutput[T]
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	return res
}

func TestLoginCommand(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer

	require.NoError(t, env.as("budi@example.com", &out).execute(context.Background(), []string{"login"}))

	var user models.User
	require.NoError(t, json.Unmarshal(out.Bytes(), &user))
	assert.Equal(t, env.budi.ID, user.ID)
	assert.Equal(t, 1, env.backend.Requests("POST /logout"))
}

func TestLoginCommandBadPassword(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer
	c := env.as("budi@example.com", &out)
	c.cfg.Auth.Password = "wrong"

	assert.Error(t, c.execute(context.Background(), []string{"login"}))
}

func TestCommandWithoutCredentials(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer
	c := env.as("", &out)

	err := c.execute(context.Background(), []string{"bookings"})
	assert.ErrorIs(t, err, errNoCredentials)
}

func TestUnknownCommand(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer
	assert.Error(t, env.as("budi@example.com", &out).execute(context.Background(), []string{"nope"}))
}

func TestPsychologistsCommand(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer

	require.NoError(t, env.as("", &out).execute(context.Background(), []string{"psychologists"}))
	res := decodeResult[models.Psychologist](t, &out)
	assert.True(t, res.Success)
	require.Len(t, res.Items, 1)
	assert.Equal(t, env.ana.ID, res.Items[0].ID)

	out.Reset()
	require.NoError(t, env.as("", &out).execute(context.Background(), []string{"psychologists", "--id", env.ana.ID}))
	detail := decodeResult[models.Psychologist](t, &out)
	require.NotNil(t, detail.Item)
	assert.Equal(t, "dr.ana", detail.Item.Username)
}

func TestBookAndConfirm(t *testing.T) {
	env := newCLIEnv(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, env.as("budi@example.com", &out).execute(ctx, []string{"bookings", "book", env.slot.ID}))
	booked := decodeResult[models.Booking](t, &out)
	require.NotNil(t, booked.Item)
	assert.Equal(t, models.StatusPending, booked.Item.Status)

	out.Reset()
	err := env.as("budi@example.com", &out).execute(ctx, []string{"bookings", "confirm", booked.Item.ID})
	require.Error(t, err)
	assert.False(t, decodeResult[models.Booking](t, &out).Success)

	out.Reset()
	require.NoError(t, env.as("ana@example.com", &out).execute(ctx, []string{"bookings", "confirm", booked.Item.ID}))
	confirmed := decodeResult[models.Booking](t, &out)
	require.NotNil(t, confirmed.Item)
	assert.Equal(t, models.StatusConfirmed, confirmed.Item.Status)
}

func TestBookingsMissingID(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer
	err := env.as("budi@example.com", &out).execute(context.Background(), []string{"bookings", "show"})
	assert.EqualError(t, err, "missing id")
}

func TestSchedulesAddAndOpen(t *testing.T) {
	env := newCLIEnv(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, env.as("ana@example.com", &out).execute(ctx, []string{"schedules", "add", "--date", "2024-01-05", "--time", "09:00"}))
	added := decodeResult[models.Schedule](t, &out)
	require.NotNil(t, added.Item)
	assert.Equal(t, "2024-01-05", added.Item.Date)

	out.Reset()
	err := env.as("ana@example.com", &out).execute(ctx, []string{"schedules", "add", "--date", "2024-01-05"})
	require.Error(t, err)
	assert.Equal(t, "Date and time slot are required.", decodeResult[models.Schedule](t, &out).Error)

	out.Reset()
	require.NoError(t, env.as("ana@example.com", &out).execute(ctx, []string{"schedules", "open"}))
	var open []models.Schedule
	require.NoError(t, json.Unmarshal(out.Bytes(), &open))
	assert.Len(t, open, 2)
}

func TestReviewsAdd(t *testing.T) {
	env := newCLIEnv(t)
	booking := env.backend.AddBooking(env.budi.ID, env.slot.ID, models.StatusConfirmed)
	ctx := context.Background()

	var out bytes.Buffer
	args := []string{"reviews", "add", "--booking", booking.ID, "--rating", "5", "--comment", "  helpful  "}
	require.NoError(t, env.as("budi@example.com", &out).execute(ctx, args))
	res := decodeResult[models.Review](t, &out)
	require.NotNil(t, res.Item)
	assert.Equal(t, "helpful", res.Item.Comment)

	out.Reset()
	err := env.as("budi@example.com", &out).execute(ctx, args)
	require.Error(t, err)
	assert.Equal(t, "This booking has already been reviewed.", decodeResult[models.Review](t, &out).Error)
}

func TestDashboardCommand(t *testing.T) {
	env := newCLIEnv(t)
	booking := env.backend.AddBooking(env.budi.ID, env.slot.ID, models.StatusConfirmed)
	env.backend.AddReview(booking.ID, 4, "ok")

	var out bytes.Buffer
	require.NoError(t, env.as("ana@example.com", &out).execute(context.Background(), []string{"dashboard"}))

	var summary dashboard.PsychologistSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalSchedules)
	assert.Equal(t, 1, summary.ConfirmedBookings)
	assert.Equal(t, 1, summary.TotalReviews)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 4.0, *summary.AverageRating, 0.001)
}

func TestExportCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.AddBooking(env.budi.ID, env.slot.ID, models.StatusPending)

	var out bytes.Buffer
	require.NoError(t, env.as("budi@example.com", &out).execute(context.Background(), []string{"export"}))

	var written map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &written))
	assert.Equal(t, env.exports, filepath.Dir(written["path"]))

	f, err := excelize.OpenFile(written["path"])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWatchStopsOnCancel(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer
	c := env.as("budi@example.com", &out)
	c.cfg.Refresh.Enabled = true

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, c.execute(ctx, []string{"watch"}))
	assert.Equal(t, 1, env.backend.Requests("GET /bookings"))
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
