package usecase

import (
	"context"
	"testing"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/policy"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	store     *memStore
	service   *Service
	publisher *MockPublisher
	cache     *MockFlightCache
	config    *utils.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	flightCache := &MockFlightCache{}
	flightCache.On("InvalidateFlights", mock.Anything).Return(nil).Maybe()

	config := &utils.Config{
		JWT: utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
	}

	service := NewService(Dependencies{
		Repo:      store.repository(),
		Cache:     flightCache,
		Publisher: publisher,
		Config:    config,
		Log:       zap.NewNop(),
	})

	return &testEnv{
		store:     store,
		service:   service,
		publisher: publisher,
		cache:     flightCache,
		config:    config,
	}
}

// seedUser stores an active user with the given roles and returns it as an actor.
func (e *testEnv) seedUser(t *testing.T, username string, roles ...entity.UserRole) policy.Actor {
	t.Helper()

	now := time.Now()
	user := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		Roles:        roles,
		IsActive:     true,
	}
	require.NoError(t, e.store.repository().User.Create(context.Background(), user))
	return policy.NewActor(user.ID, roles...)
}

// seedFlight creates a flight through the service so seats are generated.
func (e *testEnv) seedFlight(t *testing.T, owner policy.Actor, capacity int, price float64) uuid.UUID {
	t.Helper()

	flight, err := e.service.Flight.CreateFlight(context.Background(), owner, &request.FlightRequest{
		FlightNumber:  "GA-" + uuid.NewString()[:4],
		Origin:        "Jakarta",
		Destination:   "Denpasar",
		DepartureTime: time.Now().Add(48 * time.Hour).UTC(),
		Capacity:      capacity,
		PricePerSeat:  price,
	})
	require.NoError(t, err)
	return uuid.MustParse(flight.ID)
}

// seatStates maps seat label to availability.
func (e *testEnv) seatStates(t *testing.T, flightID uuid.UUID) map[string]bool {
	t.Helper()

	seats, err := e.store.repository().FlightSeat.FindByFlightID(context.Background(), flightID)
	require.NoError(t, err)
	states := make(map[string]bool, len(seats))
	for _, s := range seats {
		states[s.SeatNumber] = s.IsAvailable
	}
	return states
}

func (e *testEnv) seatLabels(t *testing.T, flightID uuid.UUID) []string {
	t.Helper()

	seats, err := e.store.repository().FlightSeat.FindByFlightID(context.Background(), flightID)
	require.NoError(t, err)
	labels := make([]string, 0, len(seats))
	for _, s := range seats {
		labels = append(labels, s.SeatNumber)
	}
	return labels
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}

// actor loads a stored user as an actor.
func (e *testEnv) actor(t *testing.T, userID string) policy.Actor {
	t.Helper()

	user, err := e.store.repository().User.FindByID(context.Background(), uuid.MustParse(userID))
	require.NoError(t, err)
	require.NotNil(t, user)
	return policy.NewActor(user.ID, user.Roles...)
}
