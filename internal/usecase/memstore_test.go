package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/response"
	"flight-booking/internal/event"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory stand-in for PostgreSQL. Transactions are
// serialized and roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[uuid.UUID]entity.User
	sessions map[uuid.UUID]entity.Session // by token
	flights  map[uuid.UUID]entity.Flight
	seats    map[uuid.UUID]entity.FlightSeat
	bookings map[uuid.UUID]entity.Booking
	details  map[uuid.UUID]entity.BookingDetail

	// flightLocks records "share" and "update" flight locks in call order.
	flightLocks []string
	// wrapSeats, when set, decorates the seat repository handed to
	// transactions.
	wrapSeats func(repository.FlightSeatRepository) repository.FlightSeatRepository
}

type memSnapshot struct {
	users    map[uuid.UUID]entity.User
	sessions map[uuid.UUID]entity.Session
	flights  map[uuid.UUID]entity.Flight
	seats    map[uuid.UUID]entity.FlightSeat
	bookings map[uuid.UUID]entity.Booking
	details  map[uuid.UUID]entity.BookingDetail
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]entity.User{},
		sessions: map[uuid.UUID]entity.Session{},
		flights:  map[uuid.UUID]entity.Flight{},
		seats:    map[uuid.UUID]entity.FlightSeat{},
		bookings: map[uuid.UUID]entity.Booking{},
		details:  map[uuid.UUID]entity.BookingDetail{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		users:    cloneMap(s.users),
		sessions: cloneMap(s.sessions),
		flights:  cloneMap(s.flights),
		seats:    cloneMap(s.seats),
		bookings: cloneMap(s.bookings),
		details:  cloneMap(s.details),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.sessions = snap.sessions
	s.flights = snap.flights
	s.seats = snap.seats
	s.bookings = snap.bookings
	s.details = snap.details
}

// repository returns a Repository backed by the store.
func (s *memStore) repository() *repository.Repository {
	repo := s.members()
	repo.Tx = &memTx{store: s}
	return repo
}

func (s *memStore) members() *repository.Repository {
	s.mu.Lock()
	wrap := s.wrapSeats
	s.mu.Unlock()

	var seats repository.FlightSeatRepository = &memSeats{s}
	if wrap != nil {
		seats = wrap(seats)
	}
	return &repository.Repository{
		User:          &memUsers{s},
		Session:       &memSessions{s},
		Flight:        &memFlights{s},
		FlightSeat:    seats,
		Booking:       &memBookings{s},
		BookingDetail: &memDetails{s},
	}
}

func (s *memStore) locks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.flightLocks...)
}

type memTx struct {
	store *memStore
}

func (t *memTx) WithinTx(_ context.Context, fn func(tx *repository.Repository) error) (err error) {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
		if err != nil {
			t.store.restore(snap)
		}
	}()

	txRepo := t.store.members()
	txRepo.Tx = passthroughTx{repo: txRepo}
	return fn(txRepo)
}

type passthroughTx struct {
	repo *repository.Repository
}

func (p passthroughTx) WithinTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	return fn(p.repo)
}

// ==================== USERS ====================

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return fmt.Errorf("create user: %w", utils.ErrConflict)
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUsers) findOne(match func(entity.User) bool) *entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.DeletedAt == nil && match(u) {
			return &u
		}
	}
	return nil
}

func (r *memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(func(u entity.User) bool { return u.ID == id }), nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findOne(func(u entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.findOne(func(u entity.User) bool { return u.Username == username }), nil
}

func (r *memUsers) withRole(role entity.UserRole) []*entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*entity.User
	for _, u := range r.s.users {
		u := u
		if u.DeletedAt == nil && u.HasRole(role) {
			users = append(users, &u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users
}

func (r *memUsers) FindByRole(_ context.Context, role entity.UserRole, limit, offset int) ([]*entity.User, error) {
	users := r.withRole(role)
	if offset >= len(users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end], nil
}

func (r *memUsers) CountByRole(_ context.Context, role entity.UserRole) (int64, error) {
	return int64(len(r.withRole(role))), nil
}

func (r *memUsers) CountAll(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *memUsers) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok || existing.DeletedAt != nil {
		return fmt.Errorf("user %s: %w", user.ID, utils.ErrNotFound)
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.DeletedAt != nil {
		return fmt.Errorf("user %s: %w", id, utils.ErrNotFound)
	}
	now := time.Now()
	u.DeletedAt = &now
	u.IsActive = false
	r.s.users[id] = u
	return nil
}

// ==================== SESSIONS ====================

type memSessions struct{ s *memStore }

func (r *memSessions) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.Token] = *session
	return nil
}

func (r *memSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[token]
	if !ok || !session.Active(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

func (r *memSessions) Revoke(_ context.Context, token uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[token]
	if !ok || session.RevokedAt != nil {
		return fmt.Errorf("session: %w", utils.ErrNotFound)
	}
	now := time.Now()
	session.RevokedAt = &now
	r.s.sessions[token] = session
	return nil
}

func (r *memSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for token, session := range r.s.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			session.RevokedAt = &now
			r.s.sessions[token] = session
		}
	}
	return nil
}

// ==================== FLIGHTS ====================

type memFlights struct{ s *memStore }

func (r *memFlights) Create(_ context.Context, flight *entity.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.flights[flight.ID] = *flight
	return nil
}

// withAvailability must be called with mu held.
func (r *memFlights) withAvailability(f entity.Flight) *entity.Flight {
	f.AvailableSeats = 0
	for _, seat := range r.s.seats {
		if seat.FlightID == f.ID && seat.IsAvailable {
			f.AvailableSeats++
		}
	}
	return &f
}

func (r *memFlights) FindByID(_ context.Context, id uuid.UUID) (*entity.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[id]
	if !ok {
		return nil, nil
	}
	return r.withAvailability(f), nil
}

func (r *memFlights) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*entity.Flight, error) {
	return r.lock(id, "update")
}

func (r *memFlights) FindByIDForShare(_ context.Context, id uuid.UUID) (*entity.Flight, error) {
	return r.lock(id, "share")
}

func (r *memFlights) lock(id uuid.UUID, mode string) (*entity.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.flightLocks = append(r.s.flightLocks, mode)
	f, ok := r.s.flights[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *memFlights) filter(match func(entity.Flight) bool) []*entity.Flight {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var flights []*entity.Flight
	for _, f := range r.s.flights {
		if match(f) {
			flights = append(flights, r.withAvailability(f))
		}
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].DepartureTime.Before(flights[j].DepartureTime) })
	return flights
}

func (r *memFlights) FindAll(context.Context) ([]*entity.Flight, error) {
	return r.filter(func(entity.Flight) bool { return true }), nil
}

func (r *memFlights) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*entity.Flight, error) {
	return r.filter(func(f entity.Flight) bool { return f.OwnerID == ownerID }), nil
}

func (r *memFlights) Search(_ context.Context, filter entity.FlightFilter) ([]*entity.Flight, error) {
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	return r.filter(func(f entity.Flight) bool {
		if filter.Origin != "" && !contains(f.Origin, filter.Origin) {
			return false
		}
		if filter.Destination != "" && !contains(f.Destination, filter.Destination) {
			return false
		}
		if filter.Date != nil {
			start := *filter.Date
			if f.DepartureTime.Before(start) || !f.DepartureTime.Before(start.Add(24*time.Hour)) {
				return false
			}
		}
		return true
	}), nil
}

func (r *memFlights) Update(_ context.Context, flight *entity.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.flights[flight.ID]; !ok {
		return fmt.Errorf("flight %s: %w", flight.ID, utils.ErrNotFound)
	}
	stored := *flight
	stored.AvailableSeats = 0
	r.s.flights[flight.ID] = stored
	return nil
}

// Delete mirrors the schema: bookings restrict, seats cascade.
func (r *memFlights) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.flights[id]; !ok {
		return fmt.Errorf("flight %s: %w", id, utils.ErrNotFound)
	}
	for _, b := range r.s.bookings {
		if b.FlightID == id {
			return fmt.Errorf("flight %s still has bookings", id)
		}
	}
	for seatID, seat := range r.s.seats {
		if seat.FlightID == id {
			delete(r.s.seats, seatID)
		}
	}
	delete(r.s.flights, id)
	return nil
}

// ==================== SEATS ====================

type memSeats struct{ s *memStore }

func (r *memSeats) CreateBatch(_ context.Context, seats []*entity.FlightSeat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, seat := range seats {
		for _, existing := range r.s.seats {
			if existing.FlightID == seat.FlightID && existing.SeatNumber == seat.SeatNumber {
				return fmt.Errorf("seat %s: %w", seat.SeatNumber, utils.ErrConflict)
			}
		}
		r.s.seats[seat.ID] = *seat
	}
	return nil
}

func (r *memSeats) filter(match func(entity.FlightSeat) bool) []*entity.FlightSeat {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var seats []*entity.FlightSeat
	for _, seat := range r.s.seats {
		seat := seat
		if match(seat) {
			seats = append(seats, &seat)
		}
	}
	sort.Slice(seats, func(i, j int) bool { return entity.SeatBefore(seats[i], seats[j]) })
	return seats
}

func (r *memSeats) FindByFlightID(_ context.Context, flightID uuid.UUID) ([]*entity.FlightSeat, error) {
	return r.filter(func(seat entity.FlightSeat) bool { return seat.FlightID == flightID }), nil
}

func (r *memSeats) FindByLabels(_ context.Context, flightID uuid.UUID, labels []string) ([]*entity.FlightSeat, error) {
	wanted := labelSet(labels)
	return r.filter(func(seat entity.FlightSeat) bool {
		return seat.FlightID == flightID && wanted[seat.SeatNumber]
	}), nil
}

func (r *memSeats) flip(flightID uuid.UUID, labels []string, from bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := labelSet(labels)
	var changed int64
	for id, seat := range r.s.seats {
		if seat.FlightID == flightID && wanted[seat.SeatNumber] && seat.IsAvailable == from {
			seat.IsAvailable = !from
			r.s.seats[id] = seat
			changed++
		}
	}
	return changed
}

func (r *memSeats) Reserve(_ context.Context, flightID uuid.UUID, labels []string) (int64, error) {
	return r.flip(flightID, labels, true), nil
}

func (r *memSeats) Release(_ context.Context, flightID uuid.UUID, labels []string) (int64, error) {
	return r.flip(flightID, labels, false), nil
}

func (r *memSeats) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for _, id := range ids {
		if seat, ok := r.s.seats[id]; ok && seat.IsAvailable {
			delete(r.s.seats, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memSeats) DeleteByFlightID(_ context.Context, flightID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, seat := range r.s.seats {
		if seat.FlightID == flightID {
			delete(r.s.seats, id)
		}
	}
	return nil
}

func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

// ==================== BOOKINGS ====================

type memBookings struct{ s *memStore }

func (r *memBookings) Create(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memBookings) FindSummaries(_ context.Context, filter repository.BookingFilter) ([]*entity.BookingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var summaries []*entity.BookingSummary
	for _, b := range r.s.bookings {
		flight := r.s.flights[b.FlightID]
		user := r.s.users[b.UserID]
		if filter.OwnerID != nil && flight.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		summaries = append(summaries, &entity.BookingSummary{
			BookingID:     b.ID,
			UserID:        b.UserID,
			FlightID:      b.FlightID,
			BookingDate:   b.CreatedAt,
			NumberOfSeats: b.NumberOfSeats,
			TotalPrice:    b.TotalPrice,
			Status:        b.Status,
			FlightNumber:  flight.FlightNumber,
			Origin:        flight.Origin,
			Destination:   flight.Destination,
			UserName:      user.Username,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].BookingDate.After(summaries[j].BookingDate) })
	return summaries, nil
}

// Delete mirrors the schema: details cascade.
func (r *memBookings) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
	}
	for detailID, d := range r.s.details {
		if d.BookingID == id {
			delete(r.s.details, detailID)
		}
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *memBookings) DeleteByFlightID(_ context.Context, flightID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, b := range r.s.bookings {
		if b.FlightID != flightID {
			continue
		}
		for detailID, d := range r.s.details {
			if d.BookingID == id {
				delete(r.s.details, detailID)
			}
		}
		delete(r.s.bookings, id)
		removed++
	}
	return removed, nil
}

// ==================== BOOKING DETAILS ====================

type memDetails struct{ s *memStore }

func (r *memDetails) CreateBatch(_ context.Context, details []*entity.BookingDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range details {
		if _, ok := r.s.bookings[d.BookingID]; !ok {
			return fmt.Errorf("booking %s does not exist", d.BookingID)
		}
		r.s.details[d.ID] = *d
	}
	return nil
}

func (r *memDetails) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var details []*entity.BookingDetail
	for _, d := range r.s.details {
		d := d
		if d.BookingID == bookingID {
			details = append(details, &d)
		}
	}
	sort.Slice(details, func(i, j int) bool { return details[i].SeatNumber < details[j].SeatNumber })
	return details, nil
}

func (r *memDetails) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.details {
		if d.BookingID == bookingID {
			delete(r.s.details, id)
		}
	}
	return nil
}

func (r *memDetails) DeleteByFlightID(_ context.Context, flightID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.details {
		if b, ok := r.s.bookings[d.BookingID]; ok && b.FlightID == flightID {
			delete(r.s.details, id)
		}
	}
	return nil
}

// ==================== MOCKS ====================

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e event.BookingEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockFlightCache struct {
	mock.Mock
}

func (m *MockFlightCache) GetFlights(ctx context.Context) ([]response.FlightResponse, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]response.FlightResponse), args.Bool(1), args.Error(2)
}

func (m *MockFlightCache) SetFlights(ctx context.Context, flights []response.FlightResponse) error {
	return m.Called(ctx, flights).Error(0)
}

func (m *MockFlightCache) InvalidateFlights(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ==================== INTERLEAVING ====================

// interleavedSeats runs afterRead once a seat read returns. Tests use it to
// commit a competing change between a transaction's read and its write.
type interleavedSeats struct {
	repository.FlightSeatRepository
	afterRead func()
}

func (s *interleavedSeats) FindByLabels(ctx context.Context, flightID uuid.UUID, labels []string) ([]*entity.FlightSeat, error) {
	seats, err := s.FlightSeatRepository.FindByLabels(ctx, flightID, labels)
	s.afterRead()
	return seats, err
}

func (s *interleavedSeats) FindByFlightID(ctx context.Context, flightID uuid.UUID) ([]*entity.FlightSeat, error) {
	seats, err := s.FlightSeatRepository.FindByFlightID(ctx, flightID)
	s.afterRead()
	return seats, err
}

// interleave runs afterRead after the next seat read only, then uninstalls
// itself when the test ends.
func (s *memStore) interleave(t interface{ Cleanup(func()) }, afterRead func()) {
	var once sync.Once
	hook := func() { once.Do(afterRead) }

	s.mu.Lock()
	s.wrapSeats = func(inner repository.FlightSeatRepository) repository.FlightSeatRepository {
		return &interleavedSeats{FlightSeatRepository: inner, afterRead: hook}
	}
	s.mu.Unlock()
	t.Cleanup(func() {
		s.mu.Lock()
		s.wrapSeats = nil
		s.mu.Unlock()
	})
}

// takeSeat marks a seat unavailable outside any transaction.
func (s *memStore) takeSeat(flightID uuid.UUID, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, seat := range s.seats {
		if seat.FlightID == flightID && seat.SeatNumber == label {
			seat.IsAvailable = false
			s.seats[id] = seat
		}
	}
}

func (s *memStore) bookingRows() (bookings, details int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings), len(s.details)
}
