package entity

import "github.com/google/uuid"

type FlightSeat struct {
	BaseNoDelete
	FlightID    uuid.UUID `db:"flight_id"`
	SeatNumber  string    `db:"seat_number"` // A1, B1, C1, D1, A2, ...
	SeatRow     int       `db:"seat_row"`    // 1, 2, 3, ...
	SeatLetter  string    `db:"seat_letter"` // A, B, C, D
	IsAvailable bool      `db:"is_available"`
}

// SeatBefore orders seats by row number, then letter.
func SeatBefore(a, b *FlightSeat) bool {
	if a.SeatRow != b.SeatRow {
		return a.SeatRow < b.SeatRow
	}
	return a.SeatLetter < b.SeatLetter
}
