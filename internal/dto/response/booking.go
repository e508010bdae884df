package response

import (
	"time"

	"flight-booking/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	FlightID      string               `json:"flight_id"`
	UserID        string               `json:"user_id"`
	BookingDate   time.Time            `json:"booking_date"`
	NumberOfSeats int                  `json:"number_of_seats"`
	TotalPrice    float64              `json:"total_price"`
	Status        entity.BookingStatus `json:"status"`
	SeatNumbers   []string             `json:"seat_numbers"`
}

type BookingSummaryResponse struct {
	BookingID     string               `json:"booking_id"`
	BookingDate   time.Time            `json:"booking_date"`
	NumberOfSeats int                  `json:"number_of_seats"`
	TotalPrice    float64              `json:"total_price"`
	Status        entity.BookingStatus `json:"status"`
	FlightNumber  string               `json:"flight_number"`
	Origin        string               `json:"origin"`
	Destination   string               `json:"destination"`
	UserName      string               `json:"user_name"`
}

func BookingToResponse(b *entity.Booking, details []*entity.BookingDetail) BookingResponse {
	seats := make([]string, 0, len(details))
	for _, d := range details {
		seats = append(seats, d.SeatNumber)
	}
	return BookingResponse{
		ID:            b.ID.String(),
		FlightID:      b.FlightID.String(),
		UserID:        b.UserID.String(),
		BookingDate:   b.CreatedAt,
		NumberOfSeats: b.NumberOfSeats,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		SeatNumbers:   seats,
	}
}

func BookingSummariesToResponse(summaries []*entity.BookingSummary) []BookingSummaryResponse {
	out := make([]BookingSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, BookingSummaryResponse{
			BookingID:     s.BookingID.String(),
			BookingDate:   s.BookingDate,
			NumberOfSeats: s.NumberOfSeats,
			TotalPrice:    s.TotalPrice,
			Status:        s.Status,
			FlightNumber:  s.FlightNumber,
			Origin:        s.Origin,
			Destination:   s.Destination,
			UserName:      s.UserName,
		})
	}
	return out
}
