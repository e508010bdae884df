package entity

import (
	"time"

	"github.com/google/uuid"
)

type Flight struct {
	BaseNoDelete
	FlightNumber  string    `db:"flight_number"`
	Origin        string    `db:"origin"`
	Destination   string    `db:"destination"`
	DepartureTime time.Time `db:"departure_time"`
	Capacity      int       `db:"capacity"`
	PricePerSeat  float64   `db:"price_per_seat"`
	OwnerID       uuid.UUID `db:"owner_id"`

	// AvailableSeats is computed on read from flight_seats.
	AvailableSeats int `db:"-"`
}

// FlightFilter narrows SearchFlights. Empty fields match everything.
type FlightFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
}
