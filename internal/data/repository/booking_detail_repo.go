package repository

import (
	"context"
	"fmt"
	"strings"

	"flight-booking/internal/data/entity"
	"flight-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingDetailRepository interface {
	CreateBatch(ctx context.Context, details []*entity.BookingDetail) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingDetail, error)
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error
	DeleteByFlightID(ctx context.Context, flightID uuid.UUID) error
}

type bookingDetailRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingDetailRepository(db database.Querier, log *zap.Logger) BookingDetailRepository {
	return &bookingDetailRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_detail")),
	}
}

func (r *bookingDetailRepository) CreateBatch(ctx context.Context, details []*entity.BookingDetail) error {
	if len(details) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_details (id, booking_id, seat_number, is_paid, created_at) VALUES `)
	args := make([]any, 0, len(details)*5)

	for i, d := range details {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5)
		args = append(args, d.ID, d.BookingID, d.SeatNumber, d.IsPaid, d.CreatedAt)
	}

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		r.log.Error("Failed to create booking details",
			zap.Error(err),
			zap.String("booking_id", details[0].BookingID.String()),
		)
		return fmt.Errorf("create booking details: %w", err)
	}

	return nil
}

func (r *bookingDetailRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingDetail, error) {
	query := `
		SELECT id, booking_id, seat_number, is_paid, created_at
		FROM booking_details
		WHERE booking_id = $1
		ORDER BY seat_number
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking details", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("find details of booking %s: %w", bookingID, err)
	}
	defer rows.Close()

	var details []*entity.BookingDetail
	for rows.Next() {
		var d entity.BookingDetail
		if err := rows.Scan(&d.ID, &d.BookingID, &d.SeatNumber, &d.IsPaid, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking detail: %w", err)
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking detail rows: %w", err)
	}

	return details, nil
}

func (r *bookingDetailRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM booking_details WHERE booking_id = $1`, bookingID); err != nil {
		r.log.Error("Failed to delete booking details", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return fmt.Errorf("delete details of booking %s: %w", bookingID, err)
	}
	return nil
}

func (r *bookingDetailRepository) DeleteByFlightID(ctx context.Context, flightID uuid.UUID) error {
	query := `
		DELETE FROM booking_details
		WHERE booking_id IN (SELECT id FROM bookings WHERE flight_id = $1)
	`

	if _, err := r.db.Exec(ctx, query, flightID); err != nil {
		r.log.Error("Failed to delete flight booking details", zap.Error(err), zap.String("flight_id", flightID.String()))
		return fmt.Errorf("delete booking details of flight %s: %w", flightID, err)
	}
	return nil
}
