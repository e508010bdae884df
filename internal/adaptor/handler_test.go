package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/internal/policy"
	"flight-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==================== MOCKS ====================

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, actor policy.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, actor policy.Actor, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, actor policy.Actor, bookingID string) error {
	return m.Called(ctx, actor, bookingID).Error(0)
}

func (m *MockBookingService) GetBookingHistory(ctx context.Context, actor policy.Actor) ([]response.BookingSummaryResponse, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]response.BookingSummaryResponse), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, actor policy.Actor) ([]response.BookingSummaryResponse, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]response.BookingSummaryResponse), args.Error(1)
}

type MockFlightService struct {
	mock.Mock
}

func (m *MockFlightService) GetAllFlightsForEveryone(ctx context.Context) ([]response.FlightResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]response.FlightResponse), args.Error(1)
}

func (m *MockFlightService) SearchFlights(ctx context.Context, req *request.SearchFlightsRequest) ([]response.FlightResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]response.FlightResponse), args.Error(1)
}

func (m *MockFlightService) GetFlightDetails(ctx context.Context, flightID string) (*response.FlightDetailResponse, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.FlightDetailResponse), args.Error(1)
}

func (m *MockFlightService) GetAllFlights(ctx context.Context, actor policy.Actor) ([]response.FlightResponse, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]response.FlightResponse), args.Error(1)
}

func (m *MockFlightService) CreateFlight(ctx context.Context, actor policy.Actor, req *request.FlightRequest) (*response.FlightDetailResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.FlightDetailResponse), args.Error(1)
}

func (m *MockFlightService) UpdateFlight(ctx context.Context, actor policy.Actor, flightID string, req *request.FlightRequest) (*response.FlightResponse, error) {
	args := m.Called(ctx, actor, flightID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.FlightResponse), args.Error(1)
}

func (m *MockFlightService) UpdateFlightCapacity(ctx context.Context, actor policy.Actor, flightID string, capacity int) (*response.FlightDetailResponse, error) {
	args := m.Called(ctx, actor, flightID, capacity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.FlightDetailResponse), args.Error(1)
}

func (m *MockFlightService) RemoveFlight(ctx context.Context, actor policy.Actor, flightID string) error {
	return m.Called(ctx, actor, flightID).Error(0)
}

// ==================== HELPERS ====================

func authenticated(r *http.Request, actor policy.Actor) *http.Request {
	ctx := utils.SetUserContext(r.Context(), actor.ID, entity.RoleNames(actor.Roles))
	return r.WithContext(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// ==================== TESTS ====================

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("flight x: %w", utils.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("seat taken: %w", utils.ErrConflict), http.StatusConflict},
		{fmt.Errorf("not owner: %w", utils.ErrUnauthorized), http.StatusForbidden},
		{fmt.Errorf("bad password: %w", utils.ErrUnauthenticated), http.StatusUnauthorized},
		{fmt.Errorf("%w: capacity", utils.ErrValidation), http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, zap.NewNop(), tt.err, "test")
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}

	rec := httptest.NewRecorder()
	writeServiceError(rec, zap.NewNop(), assert.AnError, "test")
	assert.Equal(t, "Internal server error", decodeResponse(t, rec).Message)
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	actor := policy.NewActor(uuid.New(), entity.RoleUser)
	flightID := uuid.NewString()

	service := &MockBookingService{}
	handler := NewBookingHandler(service, zap.NewNop())

	service.On("CreateBooking", mock.Anything, actor, mock.MatchedBy(func(req *request.CreateBookingRequest) bool {
		return req.FlightID == flightID && len(req.SeatNumbers) == 2
	})).Return(&response.BookingResponse{ID: "b-1", TotalPrice: 200, SeatNumbers: []string{"A1", "B1"}}, nil).Once()

	body := jsonBody(t, map[string]any{"flight_id": flightID, "seat_numbers": []string{"A1", "B1"}})
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/bookings", body), actor)
	rec := httptest.NewRecorder()

	handler.CreateBooking(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Status)
	service.AssertExpectations(t)
}

func TestBookingHandler_CreateBookingErrors(t *testing.T) {
	actor := policy.NewActor(uuid.New(), entity.RoleUser)
	flightID := uuid.NewString()

	service := &MockBookingService{}
	service.On("CreateBooking", mock.Anything, actor, mock.Anything).
		Return(nil, fmt.Errorf("seats taken: %w", utils.ErrConflict))
	handler := NewBookingHandler(service, zap.NewNop())

	tests := []struct {
		name   string
		body   any
		auth   bool
		status int
	}{
		{name: "unauthenticated", body: map[string]any{"flight_id": flightID, "seat_numbers": []string{"A1"}}, status: http.StatusUnauthorized},
		{name: "invalid body", body: "nope", auth: true, status: http.StatusBadRequest},
		{name: "validation", body: map[string]any{"flight_id": "x", "seat_numbers": []string{}}, auth: true, status: http.StatusBadRequest},
		{name: "conflict", body: map[string]any{"flight_id": flightID, "seat_numbers": []string{"A1"}}, auth: true, status: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/bookings", jsonBody(t, tt.body))
			if tt.auth {
				req = authenticated(req, actor)
			}
			rec := httptest.NewRecorder()

			handler.CreateBooking(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestBookingHandler_CancelBooking(t *testing.T) {
	actor := policy.NewActor(uuid.New(), entity.RoleUser)
	bookingID := uuid.NewString()
	missingID := uuid.NewString()

	service := &MockBookingService{}
	service.On("CancelBooking", mock.Anything, actor, bookingID).Return(nil).Once()
	service.On("CancelBooking", mock.Anything, actor, missingID).Return(fmt.Errorf("booking: %w", utils.ErrNotFound)).Once()

	r := chi.NewRouter()
	r.Delete("/api/bookings/{id}", NewBookingHandler(service, zap.NewNop()).CancelBooking)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authenticated(httptest.NewRequest(http.MethodDelete, "/api/bookings/"+bookingID, nil), actor))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authenticated(httptest.NewRequest(http.MethodDelete, "/api/bookings/"+missingID, nil), actor))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	service.AssertExpectations(t)
}

func TestFlightHandler_RemoveFlightForbidden(t *testing.T) {
	actor := policy.NewActor(uuid.New(), entity.RoleFlightOwner)
	flightID := uuid.NewString()

	service := &MockFlightService{}
	service.On("RemoveFlight", mock.Anything, actor, flightID).
		Return(fmt.Errorf("not your flight: %w", utils.ErrUnauthorized)).Once()

	r := chi.NewRouter()
	r.Delete("/api/owner/flights/{id}", NewFlightHandler(service, zap.NewNop()).RemoveFlight)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authenticated(httptest.NewRequest(http.MethodDelete, "/api/owner/flights/"+flightID, nil), actor))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, decodeResponse(t, rec).Status)
	service.AssertExpectations(t)
}

func TestFlightHandler_UpdateCapacity(t *testing.T) {
	actor := policy.NewActor(uuid.New(), entity.RoleFlightOwner)
	flightID := uuid.NewString()

	service := &MockFlightService{}
	service.On("UpdateFlightCapacity", mock.Anything, actor, flightID, 12).
		Return(&response.FlightDetailResponse{FlightResponse: response.FlightResponse{ID: flightID, Capacity: 12}}, nil).Once()

	r := chi.NewRouter()
	r.Patch("/api/owner/flights/{id}/capacity", NewFlightHandler(service, zap.NewNop()).UpdateCapacity)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/owner/flights/"+flightID+"/capacity", jsonBody(t, map[string]int{"capacity": 12}))
	r.ServeHTTP(rec, authenticated(req, actor))
	assert.Equal(t, http.StatusOK, rec.Code)

	// capacity is required
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/owner/flights/"+flightID+"/capacity", jsonBody(t, map[string]int{}))
	r.ServeHTTP(rec, authenticated(req, actor))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	service.AssertExpectations(t)
}

func TestFlightHandler_SearchFlights(t *testing.T) {
	service := &MockFlightService{}
	service.On("SearchFlights", mock.Anything, &request.SearchFlightsRequest{Origin: "Jakarta", Date: "2030-05-17"}).
		Return([]response.FlightResponse{{FlightNumber: "GA-410"}}, nil).Once()
	handler := NewFlightHandler(service, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.SearchFlights(rec, httptest.NewRequest(http.MethodGet, "/api/flights/search?origin=Jakarta&date=2030-05-17", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.SearchFlights(rec, httptest.NewRequest(http.MethodGet, "/api/flights/search?date=tomorrow", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	service.AssertExpectations(t)
}
