package repository

import (
	"context"
	"errors"
	"fmt"

	"flight-booking/internal/data/entity"
	"flight-booking/pkg/database"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindSummaries joins bookings with their flight and requester.
	FindSummaries(ctx context.Context, filter BookingFilter) ([]*entity.BookingSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByFlightID(ctx context.Context, flightID uuid.UUID) (int64, error)
}

// BookingFilter narrows FindSummaries. Nil fields do not filter.
type BookingFilter struct {
	OwnerID *uuid.UUID
	UserID  *uuid.UUID
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, flight_id, number_of_seats, total_price,
		                      status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.FlightID,
		booking.NumberOfSeats,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		r.log.Warn("Booking references a missing flight or user",
			zap.String("user_id", booking.UserID.String()),
			zap.String("flight_id", booking.FlightID.String()),
		)
		return fmt.Errorf("flight %s: %w", booking.FlightID, utils.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", booking.UserID.String()),
			zap.String("flight_id", booking.FlightID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, user_id, flight_id, number_of_seats, total_price, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.FlightID,
		&booking.NumberOfSeats,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindSummaries(ctx context.Context, filter BookingFilter) ([]*entity.BookingSummary, error) {
	query := `
		SELECT b.id, b.user_id, b.flight_id, b.created_at, b.number_of_seats,
		       b.total_price, b.status, f.flight_number, f.origin, f.destination,
		       u.username
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		JOIN users u ON u.id = b.user_id
		WHERE ($1::uuid IS NULL OR f.owner_id = $1)
		  AND ($2::uuid IS NULL OR b.user_id = $2)
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, filter.OwnerID, filter.UserID)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var summaries []*entity.BookingSummary
	for rows.Next() {
		var s entity.BookingSummary
		err := rows.Scan(
			&s.BookingID,
			&s.UserID,
			&s.FlightID,
			&s.BookingDate,
			&s.NumberOfSeats,
			&s.TotalPrice,
			&s.Status,
			&s.FlightNumber,
			&s.Origin,
			&s.Destination,
			&s.UserName,
		)
		if err != nil {
			r.log.Error("Failed to scan booking summary", zap.Error(err))
			return nil, fmt.Errorf("scan booking summary: %w", err)
		}
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return summaries, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete booking", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("delete booking %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
	}

	return nil
}

func (r *bookingRepository) DeleteByFlightID(ctx context.Context, flightID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE flight_id = $1`, flightID)
	if err != nil {
		r.log.Error("Failed to delete flight bookings", zap.Error(err), zap.String("flight_id", flightID.String()))
		return 0, fmt.Errorf("delete bookings of flight %s: %w", flightID, err)
	}

	return result.RowsAffected(), nil
}
