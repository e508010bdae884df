package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCanceled  BookingStatus = "Canceled"
	BookingStatusPending   BookingStatus = "Pending"
)

// CanTransitionTo reports whether a booking may move from s to next.
// Canceled is terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s != BookingStatusConfirmed {
		return false
	}
	return next == BookingStatusCanceled || next == BookingStatusPending
}

type Booking struct {
	BaseNoDelete
	UserID        uuid.UUID     `db:"user_id"`
	FlightID      uuid.UUID     `db:"flight_id"`
	NumberOfSeats int           `db:"number_of_seats"`
	TotalPrice    float64       `db:"total_price"`
	Status        BookingStatus `db:"status"`
}

// BookingSummary is a booking joined with its flight and requester for listings.
type BookingSummary struct {
	BookingID     uuid.UUID
	UserID        uuid.UUID
	FlightID      uuid.UUID
	BookingDate   time.Time
	NumberOfSeats int
	TotalPrice    float64
	Status        BookingStatus
	FlightNumber  string
	Origin        string
	Destination   string
	UserName      string
}
