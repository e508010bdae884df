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

type FlightRepository interface {
	Create(ctx context.Context, flight *entity.Flight) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Flight, error)
	// FindByIDForUpdate locks the flight row until the surrounding
	// transaction ends. AvailableSeats is not populated.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Flight, error)
	// FindByIDForShare takes a shared lock on the flight row. Bookings hold it
	// so that seat changes, which take FindByIDForUpdate, wait for them and
	// never the other way round.
	FindByIDForShare(ctx context.Context, id uuid.UUID) (*entity.Flight, error)
	FindAll(ctx context.Context) ([]*entity.Flight, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.Flight, error)
	Search(ctx context.Context, filter entity.FlightFilter) ([]*entity.Flight, error)
	Update(ctx context.Context, flight *entity.Flight) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type flightRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewFlightRepository(db database.Querier, log *zap.Logger) FlightRepository {
	return &flightRepository{
		db:  db,
		log: log.With(zap.String("repository", "flight")),
	}
}

const flightSelect = `
		SELECT f.id, f.flight_number, f.origin, f.destination, f.departure_time,
		       f.capacity, f.price_per_seat, f.owner_id, f.created_at, f.updated_at,
		       (SELECT COUNT(*) FROM flight_seats s
		         WHERE s.flight_id = f.id AND s.is_available) AS available_seats
		FROM flights f
`

func scanFlight(row pgx.Row) (*entity.Flight, error) {
	var flight entity.Flight
	err := row.Scan(
		&flight.ID,
		&flight.FlightNumber,
		&flight.Origin,
		&flight.Destination,
		&flight.DepartureTime,
		&flight.Capacity,
		&flight.PricePerSeat,
		&flight.OwnerID,
		&flight.CreatedAt,
		&flight.UpdatedAt,
		&flight.AvailableSeats,
	)
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *flightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	query := `
		INSERT INTO flights (id, flight_number, origin, destination, departure_time,
		                     capacity, price_per_seat, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		flight.ID,
		flight.FlightNumber,
		flight.Origin,
		flight.Destination,
		flight.DepartureTime,
		flight.Capacity,
		flight.PricePerSeat,
		flight.OwnerID,
		flight.CreatedAt,
		flight.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create flight",
			zap.Error(err),
			zap.String("flight_number", flight.FlightNumber),
		)
		return fmt.Errorf("create flight %s: %w", flight.FlightNumber, err)
	}

	return nil
}

func (r *flightRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Flight, error) {
	flight, err := scanFlight(r.db.QueryRow(ctx, flightSelect+` WHERE f.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find flight by ID", zap.Error(err), zap.String("flight_id", id.String()))
		return nil, fmt.Errorf("find flight by ID %s: %w", id, err)
	}
	return flight, nil
}

func (r *flightRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Flight, error) {
	return r.lock(ctx, id, "UPDATE")
}

func (r *flightRepository) FindByIDForShare(ctx context.Context, id uuid.UUID) (*entity.Flight, error) {
	return r.lock(ctx, id, "SHARE")
}

// lock reads the flight row with a FOR UPDATE or FOR SHARE clause.
func (r *flightRepository) lock(ctx context.Context, id uuid.UUID, strength string) (*entity.Flight, error) {
	query := `
		SELECT id, flight_number, origin, destination, departure_time,
		       capacity, price_per_seat, owner_id, created_at, updated_at
		FROM flights
		WHERE id = $1
		FOR ` + strength

	var flight entity.Flight
	err := r.db.QueryRow(ctx, query, id).Scan(
		&flight.ID,
		&flight.FlightNumber,
		&flight.Origin,
		&flight.Destination,
		&flight.DepartureTime,
		&flight.Capacity,
		&flight.PricePerSeat,
		&flight.OwnerID,
		&flight.CreatedAt,
		&flight.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock flight",
			zap.Error(err),
			zap.String("flight_id", id.String()),
			zap.String("lock", strength),
		)
		return nil, fmt.Errorf("lock flight %s: %w", id, err)
	}
	return &flight, nil
}

func (r *flightRepository) FindAll(ctx context.Context) ([]*entity.Flight, error) {
	return r.list(ctx, "find all flights", flightSelect+` ORDER BY f.departure_time`)
}

func (r *flightRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.Flight, error) {
	return r.list(ctx, "find flights by owner",
		flightSelect+` WHERE f.owner_id = $1 ORDER BY f.departure_time`, ownerID)
}

// Search matches origin and destination as case-insensitive literal
// substrings (no LIKE wildcards) and, when a date is given, flights departing
// on that UTC day.
func (r *flightRepository) Search(ctx context.Context, filter entity.FlightFilter) ([]*entity.Flight, error) {
	query := flightSelect + `
		WHERE ($1 = '' OR strpos(lower(f.origin), lower($1)) > 0)
		  AND ($2 = '' OR strpos(lower(f.destination), lower($2)) > 0)
		  AND ($3::timestamptz IS NULL
		       OR (f.departure_time >= $3 AND f.departure_time < $3::timestamptz + INTERVAL '1 day'))
		ORDER BY f.departure_time
	`
	return r.list(ctx, "search flights", query, filter.Origin, filter.Destination, filter.Date)
}

func (r *flightRepository) list(ctx context.Context, op, query string, args ...any) ([]*entity.Flight, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to "+op, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var flights []*entity.Flight
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			r.log.Error("Failed to scan flight row", zap.Error(err))
			return nil, fmt.Errorf("scan flight row: %w", err)
		}
		flights = append(flights, flight)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flight rows: %w", err)
	}

	return flights, nil
}

func (r *flightRepository) Update(ctx context.Context, flight *entity.Flight) error {
	query := `
		UPDATE flights
		SET flight_number = $2, origin = $3, destination = $4, departure_time = $5,
		    capacity = $6, price_per_seat = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		flight.ID,
		flight.FlightNumber,
		flight.Origin,
		flight.Destination,
		flight.DepartureTime,
		flight.Capacity,
		flight.PricePerSeat,
		flight.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update flight", zap.Error(err), zap.String("flight_id", flight.ID.String()))
		return fmt.Errorf("update flight %s: %w", flight.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("flight %s: %w", flight.ID, utils.ErrNotFound)
	}

	return nil
}

func (r *flightRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete flight", zap.Error(err), zap.String("flight_id", id.String()))
		return fmt.Errorf("delete flight %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("flight %s: %w", id, utils.ErrNotFound)
	}

	return nil
}
