package entity

import "github.com/google/uuid"

type BookingDetail struct {
	BaseSimple
	BookingID  uuid.UUID `db:"booking_id"`
	SeatNumber string    `db:"seat_number"`
	IsPaid     bool      `db:"is_paid"`
}
