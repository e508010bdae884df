package response

import (
	"time"

	"flight-booking/internal/data/entity"
)

type FlightResponse struct {
	ID             string    `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	PricePerSeat   float64   `json:"price_per_seat"`
	OwnerID        string    `json:"owner_id"`
}

type SeatResponse struct {
	SeatNumber  string `json:"seat_number"`
	IsAvailable bool   `json:"is_available"`
}

type FlightDetailResponse struct {
	FlightResponse
	Seats []SeatResponse `json:"seats"`
}

func FlightToResponse(f *entity.Flight) FlightResponse {
	return FlightResponse{
		ID:             f.ID.String(),
		FlightNumber:   f.FlightNumber,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime,
		Capacity:       f.Capacity,
		AvailableSeats: f.AvailableSeats,
		PricePerSeat:   f.PricePerSeat,
		OwnerID:        f.OwnerID.String(),
	}
}

func FlightsToResponse(flights []*entity.Flight) []FlightResponse {
	out := make([]FlightResponse, 0, len(flights))
	for _, f := range flights {
		out = append(out, FlightToResponse(f))
	}
	return out
}

func FlightDetailToResponse(f *entity.Flight, seats []*entity.FlightSeat) FlightDetailResponse {
	resp := FlightDetailResponse{
		FlightResponse: FlightToResponse(f),
		Seats:          make([]SeatResponse, 0, len(seats)),
	}
	available := 0
	for _, s := range seats {
		resp.Seats = append(resp.Seats, SeatResponse{SeatNumber: s.SeatNumber, IsAvailable: s.IsAvailable})
		if s.IsAvailable {
			available++
		}
	}
	resp.AvailableSeats = available
	return resp
}
