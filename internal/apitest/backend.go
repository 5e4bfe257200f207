// Package apitest runs an in-memory RuangPulih backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"ruangpulih/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sessionCookie = "auth_tkt"

type account struct {
	models.User
	password       string
	specialization string
}

type schedule struct {
	id             string
	psychologistID string
	date           string
	timeSlot       string
	isBooked       bool
}

type booking struct {
	id         string
	scheduleID string
	clientID   string
	status     string
	createdAt  time.Time
}

type review struct {
	id        string
	bookingID string
	rating    int
	comment   string
	createdAt time.Time
}

type failure struct {
	status  int
	message string
}

// Backend mimics the RuangPulih REST API, including its session cookie,
// role checks and booking status rules. Collections keep insertion order.
type Backend struct {
	server *httptest.Server
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	accounts  []*account
	schedules []*schedule
	bookings  []*booking
	reviews   []*review
	sessions  map[string]string
	failures  map[string][]failure
	requests  map[string]int
}

// NewBackend starts a backend that is closed when t finishes.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		logger:   zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.WarnLevel),
		now:      time.Now,
		sessions: make(map[string]string),
		failures: make(map[string][]failure),
		requests: make(map[string]int),
	}

	mux := http.NewServeMux()
	b.handle(mux, "POST /login", b.handleLogin)
	b.handle(mux, "POST /register", b.handleRegister)
	b.handle(mux, "POST /logout", b.handleLogout)
	b.handle(mux, "GET /schedules", b.handleListSchedules)
	b.handle(mux, "POST /schedules", b.handleAddSchedule)
	b.handle(mux, "GET /schedules/{id}", b.handleGetSchedule)
	b.handle(mux, "PUT /schedules/{id}", b.handleUpdateSchedule)
	b.handle(mux, "DELETE /schedules/{id}", b.handleDeleteSchedule)
	b.handle(mux, "GET /bookings", b.handleListBookings)
	b.handle(mux, "POST /bookings", b.handleCreateBooking)
	b.handle(mux, "GET /bookings/{id}", b.handleGetBooking)
	b.handle(mux, "PUT /bookings/{id}", b.handleUpdateBooking)
	b.handle(mux, "PATCH /bookings/{id}", b.handleUpdateBooking)
	b.handle(mux, "DELETE /bookings/{id}", b.handleDeleteBooking)
	b.handle(mux, "GET /reviews", b.handleListReviews)
	b.handle(mux, "POST /reviews", b.handleCreateReview)
	b.handle(mux, "GET /psychologists/available", b.handleAvailablePsychologists)
	b.handle(mux, "GET /psychologists/{id}", b.handlePsychologistDetail)

	b.server = httptest.NewServer(loggingMiddleware(b.logger, mux))
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) Close() {
	b.server.Close()
}

// SetNow fixes the clock used for "today" and created_at values.
func (b *Backend) SetNow(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// FailNext makes the next request matching pattern (e.g. "GET /bookings")
// answer status with message as its error field. An empty message sends an
// empty JSON object.
func (b *Backend) FailNext(pattern string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[pattern] = append(b.failures[pattern], failure{status: status, message: message})
}

// Requests counts requests served for pattern.
func (b *Backend) Requests(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[pattern]
}

func (b *Backend) AddUser(username, email, password, role string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUser(username, email, password, role)
}

func (b *Backend) addUser(username, email, password, role string) models.User {
	acc := &account{
		User:     models.User{ID: uuid.NewString(), Username: username, Email: email, Role: role},
		password: password,
	}
	b.accounts = append(b.accounts, acc)
	return acc.User
}

func (b *Backend) SetSpecialization(userID, specialization string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acc := b.account(userID); acc != nil {
		acc.specialization = specialization
	}
}

func (b *Backend) AddSchedule(psychologistID, date, timeSlot string) models.Schedule {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addSchedule(psychologistID, date, timeSlot)
}

func (b *Backend) addSchedule(psychologistID, date, timeSlot string) models.Schedule {
	s := &schedule{id: uuid.NewString(), psychologistID: psychologistID, date: date, timeSlot: timeSlot}
	b.schedules = append(b.schedules, s)
	return b.scheduleJSON(s)
}

// AddBooking books scheduleID for clientID, marking the schedule booked
// unless status is rejected.
func (b *Backend) AddBooking(clientID, scheduleID, status string) models.Booking {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addBooking(clientID, scheduleID, status)
}

func (b *Backend) addBooking(clientID, scheduleID, status string) models.Booking {
	bk := &booking{id: uuid.NewString(), scheduleID: scheduleID, clientID: clientID, status: status, createdAt: b.now().UTC()}
	b.bookings = append(b.bookings, bk)
	if s := b.schedule(scheduleID); s != nil && status != models.StatusRejected {
		s.isBooked = true
	}
	return b.bookingJSON(bk)
}

func (b *Backend) AddReview(bookingID string, rating int, comment string) models.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addReview(bookingID, rating, comment)
}

func (b *Backend) addReview(bookingID string, rating int, comment string) models.Review {
	r := &review{id: uuid.NewString(), bookingID: bookingID, rating: rating, comment: comment, createdAt: b.now().UTC()}
	b.reviews = append(b.reviews, r)
	return reviewJSON(r)
}

// Schedule returns the backend's current view of a schedule.
func (b *Backend) Schedule(id string) (models.Schedule, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.schedule(id)
	if s == nil {
		return models.Schedule{}, false
	}
	return b.scheduleJSON(s), true
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, user *account)

// handle counts the request, applies any forced failure and resolves the
// session user before calling h.
func (b *Backend) handle(mux *http.ServeMux, pattern string, h handlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests[pattern]++
		var forced *failure
		if queue := b.failures[pattern]; len(queue) > 0 {
			forced = &queue[0]
			b.failures[pattern] = queue[1:]
		}
		var user *account
		if c, err := r.Cookie(sessionCookie); err == nil {
			user = b.account(b.sessions[c.Value])
		}
		b.mu.Unlock()

		if forced != nil {
			if forced.message == "" {
				writeJSON(w, forced.status, map[string]string{})
				return
			}
			writeError(w, forced.status, forced.message)
			return
		}
		h(w, r, user)
	})
}

func (b *Backend) account(id string) *account {
	for _, a := range b.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (b *Backend) schedule(id string) *schedule {
	for _, s := range b.schedules {
		if s.id == id {
			return s
		}
	}
	return nil
}

func (b *Backend) booking(id string) *booking {
	for _, bk := range b.bookings {
		if bk.id == id {
			return bk
		}
	}
	return nil
}

func (b *Backend) today() string {
	return b.now().UTC().Format(models.DateLayout)
}

func (b *Backend) scheduleJSON(s *schedule) models.Schedule {
	out := models.Schedule{
		ID:             s.id,
		PsychologistID: s.psychologistID,
		Date:           s.date,
		TimeSlot:       s.timeSlot,
		IsBooked:       s.isBooked,
	}
	if !s.isBooked {
		return out
	}
	var current *booking
	for _, bk := range b.bookings {
		if bk.scheduleID != s.id {
			continue
		}
		if bk.status == models.StatusConfirmed {
			current = bk
			break
		}
		if current == nil {
			current = bk
		}
	}
	if current != nil {
		cb := b.bookingRecord(current)
		out.CurrentBooking = &cb
	}
	return out
}

func (b *Backend) bookingRecord(bk *booking) models.Booking {
	out := models.Booking{
		ID:         bk.id,
		ScheduleID: bk.scheduleID,
		ClientID:   bk.clientID,
		Status:     bk.status,
		CreatedAt:  models.NewTimestamp(bk.createdAt),
	}
	if c := b.account(bk.clientID); c != nil {
		u := c.User
		out.ClientDetails = &u
	}
	return out
}

func (b *Backend) bookingJSON(bk *booking) models.Booking {
	out := b.bookingRecord(bk)
	if s := b.schedule(bk.scheduleID); s != nil {
		snapshot := models.Schedule{
			ID:             s.id,
			PsychologistID: s.psychologistID,
			Date:           s.date,
			TimeSlot:       s.timeSlot,
			IsBooked:       s.isBooked,
		}
		out.ScheduleDetails = &snapshot
	}
	return out
}

func reviewJSON(r *review) models.Review {
	return models.Review{
		ID:        r.id,
		BookingID: r.bookingID,
		Rating:    r.rating,
		Comment:   r.comment,
		CreatedAt: models.NewTimestamp(r.createdAt),
	}
}

func (b *Backend) psychologistJSON(acc *account) models.Psychologist {
	return models.Psychologist{
		ID:             acc.ID,
		Username:       acc.Username,
		Email:          acc.Email,
		Role:           acc.Role,
		Specialization: acc.specialization,
	}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request, _ *account) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: email, password")
		return
	}

	b.mu.Lock()
	var found *account
	for _, a := range b.accounts {
		if a.Email == body.Email && a.password == body.Password {
			found = a
		}
	}
	if found == nil {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := uuid.NewString()
	b.sessions[token] = found.ID
	user := found.User
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": user})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request, _ *account) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" || body.Role == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: username, email, password, role")
		return
	}
	if !models.IsValidRole(body.Role) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid role: %s. Valid roles are: client, psychologist", body.Role))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.Username == body.Username {
			writeError(w, http.StatusConflict, "Username already exists")
			return
		}
		if a.Email == body.Email {
			writeError(w, http.StatusConflict, "Email already exists")
			return
		}
	}

	user := b.addUser(body.Username, body.Email, body.Password, body.Role)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Registration successful", "user": user})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request, _ *account) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		b.mu.Lock()
		delete(b.sessions, c.Value)
		b.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (b *Backend) handleListSchedules(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Schedule, 0, len(b.schedules))
	for _, s := range b.schedules {
		if user.IsPsychologist() && s.psychologistID != user.ID {
			continue
		}
		out = append(out, b.scheduleJSON(s))
	}
	writeJSON(w, http.StatusOK, out)
}

type schedulePayload struct {
	Date     *string `json:"date"`
	TimeSlot *string `json:"time_slot"`
}

func validSchedule(date, timeSlot string) bool {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return false
	}
	_, err := time.Parse(models.TimeSlotLayout, timeSlot)
	return err == nil
}

const invalidScheduleFormat = "Invalid date or time format (date=YYYY-MM-DD, time=HH:MM)"

func (b *Backend) handleAddSchedule(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	if !user.IsPsychologist() {
		writeError(w, http.StatusUnauthorized, "Only psychologists can create schedules")
		return
	}
	var body schedulePayload
	if !decode(w, r, &body) {
		return
	}
	if body.Date == nil || body.TimeSlot == nil || !validSchedule(*body.Date, *body.TimeSlot) {
		writeError(w, http.StatusBadRequest, invalidScheduleFormat)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.addSchedule(user.ID, *body.Date, *body.TimeSlot))
}

func (b *Backend) handleGetSchedule(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.schedule(r.PathValue("id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Schedule not found")
		return
	}
	writeJSON(w, http.StatusOK, b.scheduleJSON(s))
}

func (b *Backend) handleUpdateSchedule(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	var body schedulePayload
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.schedule(r.PathValue("id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Schedule not found")
		return
	}
	if s.psychologistID != user.ID {
		writeError(w, http.StatusUnauthorized, "You do not have permission to edit this schedule")
		return
	}
	date, timeSlot := s.date, s.timeSlot
	if body.Date != nil {
		date = *body.Date
	}
	if body.TimeSlot != nil {
		timeSlot = *body.TimeSlot
	}
	if !validSchedule(date, timeSlot) {
		writeError(w, http.StatusBadRequest, invalidScheduleFormat)
		return
	}
	s.date, s.timeSlot = date, timeSlot
	writeJSON(w, http.StatusOK, b.scheduleJSON(s))
}

func (b *Backend) handleDeleteSchedule(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.PathValue("id")
	s := b.schedule(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "Schedule not found")
		return
	}
	if s.psychologistID != user.ID {
		writeError(w, http.StatusUnauthorized, "You do not have permission to delete this schedule")
		return
	}
	if s.isBooked {
		writeError(w, http.StatusBadRequest, "Cannot delete schedule that has been booked")
		return
	}
	kept := b.schedules[:0]
	for _, other := range b.schedules {
		if other.id != id {
			kept = append(kept, other)
		}
	}
	b.schedules = kept
	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule deleted"})
}

// visible reports whether user may see or modify bk.
func (b *Backend) visible(user *account, bk *booking) bool {
	if user.IsClient() {
		return bk.clientID == user.ID
	}
	s := b.schedule(bk.scheduleID)
	return s != nil && s.psychologistID == user.ID
}

func (b *Backend) handleListBookings(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Booking, 0, len(b.bookings))
	for _, bk := range b.bookings {
		if b.visible(user, bk) {
			out = append(out, b.bookingJSON(bk))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateBooking(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	if !user.IsClient() {
		writeError(w, http.StatusUnauthorized, "Only clients can create bookings")
		return
	}
	var body struct {
		ScheduleID string `json:"schedule_id"`
	}
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.schedule(body.ScheduleID)
	if s == nil {
		writeError(w, http.StatusNotFound, "Schedule not found")
		return
	}
	if s.isBooked {
		writeError(w, http.StatusBadRequest, "Schedule already booked")
		return
	}
	writeJSON(w, http.StatusOK, b.addBooking(user.ID, s.id, models.StatusPending))
}

func (b *Backend) handleGetBooking(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bk := b.booking(r.PathValue("id"))
	if bk == nil {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if !b.visible(user, bk) {
		writeError(w, http.StatusUnauthorized, "You do not have permission to view this booking")
		return
	}
	writeJSON(w, http.StatusOK, b.bookingJSON(bk))
}

func (b *Backend) handleUpdateBooking(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	bk := b.booking(r.PathValue("id"))
	if bk == nil {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if body.Status == "" {
		writeError(w, http.StatusBadRequest, "Status field is required.")
		return
	}
	if !b.visible(user, bk) {
		writeError(w, http.StatusUnauthorized, "You do not have permission to modify this booking")
		return
	}
	if msg := transitionError(user.Role, bk.status, body.Status); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	bk.status = body.Status
	if s := b.schedule(bk.scheduleID); s != nil {
		s.isBooked = body.Status != models.StatusRejected
	}
	writeJSON(w, http.StatusOK, b.bookingJSON(bk))
}

func transitionError(role, from, to string) string {
	if role == models.RoleClient {
		if to != models.StatusRejected {
			return "Clients can only cancel their bookings (set status to 'rejected')."
		}
		if from != models.StatusPending {
			return "Only pending bookings can be cancelled by clients."
		}
		return ""
	}
	if !models.IsValidStatus(to) {
		return "Invalid status provided."
	}
	if from == models.StatusConfirmed && to == models.StatusPending {
		return "Cannot change confirmed booking back to pending."
	}
	if from == models.StatusRejected && to != models.StatusRejected {
		return "Cannot change rejected booking status."
	}
	return ""
}

func (b *Backend) handleDeleteBooking(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.PathValue("id")
	bk := b.booking(id)
	if bk == nil {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if !b.visible(user, bk) {
		writeError(w, http.StatusUnauthorized, "You do not have permission to delete this booking")
		return
	}
	if s := b.schedule(bk.scheduleID); s != nil {
		s.isBooked = false
	}
	kept := b.bookings[:0]
	for _, other := range b.bookings {
		if other.id != id {
			kept = append(kept, other)
		}
	}
	b.bookings = kept
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking deleted successfully"})
}

func (b *Backend) handleListReviews(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Review, 0, len(b.reviews))
	for _, rv := range b.reviews {
		out = append(out, reviewJSON(rv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateReview(w http.ResponseWriter, r *http.Request, user *account) {
	if !requireUser(w, user) {
		return
	}
	var body struct {
		BookingID string `json:"booking_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	bk := b.booking(body.BookingID)
	if bk == nil || bk.clientID != user.ID {
		writeError(w, http.StatusNotFound, "Booking not found or not yours")
		return
	}
	writeJSON(w, http.StatusOK, b.addReview(body.BookingID, body.Rating, body.Comment))
}

func (b *Backend) availableSchedules(psychologistID string) []*schedule {
	today := b.today()
	var out []*schedule
	for _, s := range b.schedules {
		if s.isBooked || s.date < today {
			continue
		}
		if psychologistID != "" && s.psychologistID != psychologistID {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].psychologistID != out[j].psychologistID {
			return out[i].psychologistID < out[j].psychologistID
		}
		if out[i].date != out[j].date {
			return out[i].date < out[j].date
		}
		return out[i].timeSlot < out[j].timeSlot
	})
	return out
}

func simpleSchedule(s *schedule) models.Schedule {
	return models.Schedule{ID: s.id, Date: s.date, TimeSlot: s.timeSlot, IsBooked: s.isBooked}
}

func (b *Backend) handleAvailablePsychologists(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.Psychologist{}
	index := map[string]int{}
	for _, s := range b.availableSchedules("") {
		acc := b.account(s.psychologistID)
		if acc == nil {
			continue
		}
		i, ok := index[acc.ID]
		if !ok {
			p := b.psychologistJSON(acc)
			p.AvailableSchedules = []models.Schedule{}
			out = append(out, p)
			i = len(out) - 1
			index[acc.ID] = i
		}
		out[i].AvailableSchedules = append(out[i].AvailableSchedules, simpleSchedule(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handlePsychologistDetail(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.account(r.PathValue("id"))
	if acc == nil || !acc.IsPsychologist() {
		writeError(w, http.StatusNotFound, "Psychologist not found.")
		return
	}

	p := b.psychologistJSON(acc)
	p.AvailableSchedules = []models.Schedule{}
	for _, s := range b.availableSchedules(acc.ID) {
		p.AvailableSchedules = append(p.AvailableSchedules, simpleSchedule(s))
	}

	p.Reviews = []models.Review{}
	sum := 0
	for _, rv := range b.reviews {
		bk := b.booking(rv.bookingID)
		if bk == nil {
			continue
		}
		if s := b.schedule(bk.scheduleID); s == nil || s.psychologistID != acc.ID {
			continue
		}
		p.Reviews = append(p.Reviews, models.Review{ID: rv.id, BookingID: rv.bookingID, Rating: rv.rating, Comment: rv.comment})
		sum += rv.rating
	}
	total := len(p.Reviews)
	p.TotalReviews = &total
	if total > 0 {
		avg := math.Round(float64(sum)/float64(total)*10) / 10
		p.AverageRating = &avg
	}
	writeJSON(w, http.StatusOK, p)
}

func requireUser(w http.ResponseWriter, user *account) bool {
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
