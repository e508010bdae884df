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

// seatBatchSize keeps one INSERT well under the 65535 bind parameter limit.
const seatBatchSize = 1000

type FlightSeatRepository interface {
	CreateBatch(ctx context.Context, seats []*entity.FlightSeat) error
	// FindByFlightID returns the seats ordered by row number, then letter.
	FindByFlightID(ctx context.Context, flightID uuid.UUID) ([]*entity.FlightSeat, error)
	FindByLabels(ctx context.Context, flightID uuid.UUID, labels []string) ([]*entity.FlightSeat, error)
	// Reserve flips the listed seats to unavailable only where they are still
	// available and returns how many rows changed.
	Reserve(ctx context.Context, flightID uuid.UUID, labels []string) (int64, error)
	Release(ctx context.Context, flightID uuid.UUID, labels []string) (int64, error)
	// DeleteByIDs removes only the listed seats that are still available and
	// returns how many rows went.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteByFlightID(ctx context.Context, flightID uuid.UUID) error
}

type flightSeatRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewFlightSeatRepository(db database.Querier, log *zap.Logger) FlightSeatRepository {
	return &flightSeatRepository{
		db:  db,
		log: log.With(zap.String("repository", "flight_seat")),
	}
}

func (r *flightSeatRepository) CreateBatch(ctx context.Context, seats []*entity.FlightSeat) error {
	for start := 0; start < len(seats); start += seatBatchSize {
		end := min(start+seatBatchSize, len(seats))
		if err := r.insert(ctx, seats[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *flightSeatRepository) insert(ctx context.Context, seats []*entity.FlightSeat) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO flight_seats (id, flight_id, seat_number, seat_row, seat_letter, is_available, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(seats)*8)

	for i, seat := range seats {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*8+1, i*8+2, i*8+3, i*8+4, i*8+5, i*8+6, i*8+7, i*8+8)

		args = append(args,
			seat.ID,
			seat.FlightID,
			seat.SeatNumber,
			seat.SeatRow,
			seat.SeatLetter,
			seat.IsAvailable,
			seat.CreatedAt,
			seat.UpdatedAt,
		)
	}

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		r.log.Error("Failed to create batch seats",
			zap.Error(err),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("create batch seats: %w", err)
	}

	return nil
}

func (r *flightSeatRepository) FindByFlightID(ctx context.Context, flightID uuid.UUID) ([]*entity.FlightSeat, error) {
	query := `
		SELECT id, flight_id, seat_number, seat_row, seat_letter, is_available, created_at, updated_at
		FROM flight_seats
		WHERE flight_id = $1
		ORDER BY seat_row, seat_letter
	`
	return r.list(ctx, query, flightID)
}

func (r *flightSeatRepository) FindByLabels(ctx context.Context, flightID uuid.UUID, labels []string) ([]*entity.FlightSeat, error) {
	query := `
		SELECT id, flight_id, seat_number, seat_row, seat_letter, is_available, created_at, updated_at
		FROM flight_seats
		WHERE flight_id = $1 AND seat_number = ANY($2)
		ORDER BY seat_row, seat_letter
	`
	return r.list(ctx, query, flightID, labels)
}

func (r *flightSeatRepository) list(ctx context.Context, query string, args ...any) ([]*entity.FlightSeat, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query seats", zap.Error(err))
		return nil, fmt.Errorf("query seats: %w", err)
	}
	defer rows.Close()

	var seats []*entity.FlightSeat
	for rows.Next() {
		var seat entity.FlightSeat
		err := rows.Scan(
			&seat.ID,
			&seat.FlightID,
			&seat.SeatNumber,
			&seat.SeatRow,
			&seat.SeatLetter,
			&seat.IsAvailable,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan seat", zap.Error(err))
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, &seat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat rows: %w", err)
	}

	return seats, nil
}

func (r *flightSeatRepository) Reserve(ctx context.Context, flightID uuid.UUID, labels []string) (int64, error) {
	query := `
		UPDATE flight_seats
		SET is_available = FALSE, updated_at = NOW()
		WHERE flight_id = $1 AND seat_number = ANY($2) AND is_available = TRUE
	`

	result, err := r.db.Exec(ctx, query, flightID, labels)
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("flight_id", flightID.String()),
			zap.Strings("seats", labels),
		)
		return 0, fmt.Errorf("reserve seats on flight %s: %w", flightID, err)
	}

	return result.RowsAffected(), nil
}

func (r *flightSeatRepository) Release(ctx context.Context, flightID uuid.UUID, labels []string) (int64, error) {
	query := `
		UPDATE flight_seats
		SET is_available = TRUE, updated_at = NOW()
		WHERE flight_id = $1 AND seat_number = ANY($2)
	`

	result, err := r.db.Exec(ctx, query, flightID, labels)
	if err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("flight_id", flightID.String()),
			zap.Strings("seats", labels),
		)
		return 0, fmt.Errorf("release seats on flight %s: %w", flightID, err)
	}

	return result.RowsAffected(), nil
}

func (r *flightSeatRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.Exec(ctx, `DELETE FROM flight_seats WHERE id = ANY($1) AND is_available = TRUE`, ids)
	if err != nil {
		r.log.Error("Failed to delete seats", zap.Error(err), zap.Int("count", len(ids)))
		return 0, fmt.Errorf("delete seats: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *flightSeatRepository) DeleteByFlightID(ctx context.Context, flightID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM flight_seats WHERE flight_id = $1`, flightID); err != nil {
		r.log.Error("Failed to delete flight seats", zap.Error(err), zap.String("flight_id", flightID.String()))
		return fmt.Errorf("delete seats of flight %s: %w", flightID, err)
	}

	return nil
}
