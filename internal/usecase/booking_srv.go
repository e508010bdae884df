package usecase

import (
	"context"
	"fmt"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/internal/policy"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, actor policy.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, actor policy.Actor, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor policy.Actor, bookingID string) error
	GetBookingHistory(ctx context.Context, actor policy.Actor) ([]response.BookingSummaryResponse, error)
	// ListBookings returns every booking for an admin and the bookings on
	// the caller's flights for a flight owner.
	ListBookings(ctx context.Context, actor policy.Actor) ([]response.BookingSummaryResponse, error)
}

type bookingService struct {
	repo        *repository.Repository
	reservation ReservationEngine
	log         *zap.Logger
}

func NewBookingService(repo *repository.Repository, reservation ReservationEngine, log *zap.Logger) BookingService {
	return &bookingService{
		repo:        repo,
		reservation: reservation,
		log:         log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor policy.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := validateRequest(s.log, "Create booking", req); err != nil {
		return nil, err
	}

	flightID, err := parseID("flight", req.FlightID)
	if err != nil {
		return nil, err
	}

	bookingID, err := s.reservation.ReserveSeats(ctx, flightID, req.SeatNumbers, actor.ID)
	if err != nil {
		return nil, err
	}

	booking, details, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, details)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor policy.Actor, bookingID string) (*response.BookingResponse, error) {
	id, err := parseID("booking", bookingID)
	if err != nil {
		return nil, err
	}

	booking, details, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, booking, policy.CanViewBooking); err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, details)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor policy.Actor, bookingID string) error {
	id, err := parseID("booking", bookingID)
	if err != nil {
		return err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
	}
	if err := s.authorize(ctx, actor, booking, policy.CanCancelBooking); err != nil {
		return err
	}

	return s.reservation.CancelBooking(ctx, id)
}

func (s *bookingService) GetBookingHistory(ctx context.Context, actor policy.Actor) ([]response.BookingSummaryResponse, error) {
	summaries, err := s.repo.Booking.FindSummaries(ctx, repository.BookingFilter{UserID: &actor.ID})
	if err != nil {
		return nil, err
	}
	return response.BookingSummariesToResponse(summaries), nil
}

func (s *bookingService) ListBookings(ctx context.Context, actor policy.Actor) ([]response.BookingSummaryResponse, error) {
	var (
		summaries []*entity.BookingSummary
		err       error
	)
	switch {
	case actor.IsAdmin():
		summaries, err = s.reservation.ListAllBookings(ctx)
	case actor.HasRole(entity.RoleFlightOwner):
		summaries, err = s.reservation.ListBookingsForOwner(ctx, actor.ID)
	default:
		return nil, policy.Authorize(false, "user %s may not list bookings", actor.ID)
	}
	if err != nil {
		return nil, err
	}
	return response.BookingSummariesToResponse(summaries), nil
}

func (s *bookingService) load(ctx context.Context, id uuid.UUID) (*entity.Booking, []*entity.BookingDetail, error) {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		return nil, nil, fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
	}

	details, err := s.repo.BookingDetail.FindByBookingID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return booking, details, nil
}

func (s *bookingService) authorize(
	ctx context.Context,
	actor policy.Actor,
	booking *entity.Booking,
	allowed func(policy.Actor, *entity.Booking, *entity.Flight) bool,
) error {
	var flight *entity.Flight
	if !actor.IsAdmin() && actor.ID != booking.UserID {
		var err error
		if flight, err = s.repo.Flight.FindByID(ctx, booking.FlightID); err != nil {
			return err
		}
	}

	if !allowed(actor, booking, flight) {
		s.log.Warn("Booking access rejected",
			zap.String("booking_id", booking.ID.String()),
			zap.String("actor_id", actor.ID.String()),
		)
		return policy.Authorize(false, "user %s may not access booking %s", actor.ID, booking.ID)
	}
	return nil
}
