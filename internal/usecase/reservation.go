package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/cache"
	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/event"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationEngine owns the seat inventory side of bookings. It does no
// authorization; callers check policy first.
type ReservationEngine interface {
	// ReserveSeats books exactly the requested seats or nothing. Every seat
	// must exist on the flight and be available.
	ReserveSeats(ctx context.Context, flightID uuid.UUID, seatNumbers []string, userID uuid.UUID) (uuid.UUID, error)
	// CancelBooking frees the booked seats and deletes the booking.
	CancelBooking(ctx context.Context, bookingID uuid.UUID) error
	ListBookingsForOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.BookingSummary, error)
	ListAllBookings(ctx context.Context) ([]*entity.BookingSummary, error)
}

type reservationEngine struct {
	repo      *repository.Repository
	cache     cache.FlightCache
	publisher event.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewReservationEngine(repo *repository.Repository, flightCache cache.FlightCache, publisher event.Publisher, log *zap.Logger) ReservationEngine {
	return &reservationEngine{
		repo:      repo,
		cache:     flightCache,
		publisher: publisher,
		log:       log.With(zap.String("service", "reservation")),
		now:       time.Now,
	}
}

func (e *reservationEngine) ReserveSeats(ctx context.Context, flightID uuid.UUID, seatNumbers []string, userID uuid.UUID) (uuid.UUID, error) {
	labels, err := normalizeSeatNumbers(seatNumbers)
	if err != nil {
		return uuid.Nil, err
	}

	var booking *entity.Booking
	err = e.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		// The flight lock comes before any seat row lock, the same order
		// capacity changes and removal use.
		flight, err := tx.Flight.FindByIDForShare(ctx, flightID)
		if err != nil {
			return err
		}
		if flight == nil {
			return fmt.Errorf("flight %s: %w", flightID, utils.ErrNotFound)
		}

		seats, err := tx.FlightSeat.FindByLabels(ctx, flightID, labels)
		if err != nil {
			return err
		}
		available := 0
		for _, s := range seats {
			if s.IsAvailable {
				available++
			}
		}
		if available != len(labels) {
			return fmt.Errorf("only %d of %d requested seats are available on flight %s: %w",
				available, len(labels), flight.FlightNumber, utils.ErrConflict)
		}

		// Only rows still available flip, so a concurrent booking of the
		// same seat shows up as a short count.
		reserved, err := tx.FlightSeat.Reserve(ctx, flightID, labels)
		if err != nil {
			return err
		}
		if reserved != int64(len(labels)) {
			return fmt.Errorf("seats on flight %s were taken while booking: %w", flight.FlightNumber, utils.ErrConflict)
		}

		now := e.now()
		booking = &entity.Booking{
			BaseNoDelete:  entity.NewBaseNoDelete(now),
			UserID:        userID,
			FlightID:      flightID,
			NumberOfSeats: len(labels),
			TotalPrice:    flight.PricePerSeat * float64(len(labels)),
			Status:        entity.BookingStatusConfirmed,
		}
		if err := tx.Booking.Create(ctx, booking); err != nil {
			return err
		}

		details := make([]*entity.BookingDetail, 0, len(labels))
		for _, label := range labels {
			details = append(details, &entity.BookingDetail{
				BaseSimple: entity.NewBaseSimple(now),
				BookingID:  booking.ID,
				SeatNumber: label,
				IsPaid:     true,
			})
		}
		return tx.BookingDetail.CreateBatch(ctx, details)
	})
	if err != nil {
		return uuid.Nil, err
	}

	e.log.Info("Seats reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("flight_id", flightID.String()),
		zap.String("user_id", userID.String()),
		zap.Strings("seats", labels),
		zap.Float64("total_price", booking.TotalPrice),
	)

	e.afterCommit(ctx, event.BookingEvent{
		Type:       event.BookingConfirmed,
		BookingID:  booking.ID,
		FlightID:   flightID,
		UserID:     userID,
		Seats:      labels,
		TotalPrice: booking.TotalPrice,
		OccurredAt: booking.CreatedAt,
	})

	return booking.ID, nil
}

func (e *reservationEngine) CancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	var (
		booking *entity.Booking
		labels  []string
	)
	err := e.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return fmt.Errorf("booking %s: %w", bookingID, utils.ErrNotFound)
		}
		if !booking.Status.CanTransitionTo(entity.BookingStatusCanceled) {
			return fmt.Errorf("booking %s is %s: %w", bookingID, booking.Status, utils.ErrConflict)
		}
		if _, err := tx.Flight.FindByIDForShare(ctx, booking.FlightID); err != nil {
			return err
		}

		details, err := tx.BookingDetail.FindByBookingID(ctx, bookingID)
		if err != nil {
			return err
		}
		labels = make([]string, 0, len(details))
		for _, d := range details {
			labels = append(labels, d.SeatNumber)
		}

		if len(labels) > 0 {
			if _, err := tx.FlightSeat.Release(ctx, booking.FlightID, labels); err != nil {
				return err
			}
		}
		if err := tx.BookingDetail.DeleteByBookingID(ctx, bookingID); err != nil {
			return err
		}
		return tx.Booking.Delete(ctx, bookingID)
	})
	if err != nil {
		return err
	}

	e.log.Info("Booking canceled",
		zap.String("booking_id", bookingID.String()),
		zap.String("flight_id", booking.FlightID.String()),
		zap.Strings("seats", labels),
	)

	e.afterCommit(ctx, event.BookingEvent{
		Type:       event.BookingCanceled,
		BookingID:  bookingID,
		FlightID:   booking.FlightID,
		UserID:     booking.UserID,
		Seats:      labels,
		TotalPrice: booking.TotalPrice,
		OccurredAt: e.now(),
	})

	return nil
}

func (e *reservationEngine) ListBookingsForOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.BookingSummary, error) {
	return e.repo.Booking.FindSummaries(ctx, repository.BookingFilter{OwnerID: &ownerID})
}

func (e *reservationEngine) ListAllBookings(ctx context.Context) ([]*entity.BookingSummary, error) {
	return e.repo.Booking.FindSummaries(ctx, repository.BookingFilter{})
}

// afterCommit refreshes derived state once the booking change is durable.
// Failures here are logged; the booking itself already succeeded.
func (e *reservationEngine) afterCommit(ctx context.Context, evt event.BookingEvent) {
	if err := e.cache.InvalidateFlights(ctx); err != nil {
		e.log.Warn("Failed to invalidate flight cache", zap.Error(err))
	}
	if err := e.publisher.Publish(ctx, evt); err != nil {
		e.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("type", string(evt.Type)),
			zap.String("booking_id", evt.BookingID.String()),
		)
	}
}

// normalizeSeatNumbers upper-cases and trims labels and rejects empty or
// repeated ones.
func normalizeSeatNumbers(seatNumbers []string) ([]string, error) {
	if len(seatNumbers) == 0 {
		return nil, fmt.Errorf("no seats requested: %w", utils.ErrValidation)
	}

	labels := make([]string, 0, len(seatNumbers))
	seen := make(map[string]bool, len(seatNumbers))
	for _, raw := range seatNumbers {
		label := strings.ToUpper(strings.TrimSpace(raw))
		if label == "" {
			return nil, fmt.Errorf("empty seat number: %w", utils.ErrValidation)
		}
		if seen[label] {
			return nil, fmt.Errorf("seat %s requested twice: %w", label, utils.ErrValidation)
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels, nil
}
