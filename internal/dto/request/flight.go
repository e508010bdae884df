package request

import "time"

type FlightRequest struct {
	FlightNumber  string    `json:"flight_number" validate:"required,max=20"`
	Origin        string    `json:"origin" validate:"required,max=100"`
	Destination   string    `json:"destination" validate:"required,max=100,nefield=Origin"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	Capacity      int       `json:"capacity" validate:"gte=0,lte=1000"`
	PricePerSeat  float64   `json:"price_per_seat" validate:"gte=0"`
}

type UpdateCapacityRequest struct {
	Capacity *int `json:"capacity" validate:"required,gte=0,lte=1000"`
}

// SearchFlightsRequest comes from the query string. Date is YYYY-MM-DD.
type SearchFlightsRequest struct {
	Origin      string `validate:"omitempty,max=100"`
	Destination string `validate:"omitempty,max=100"`
	Date        string `validate:"omitempty,datetime=2006-01-02"`
}
