package request

type CreateBookingRequest struct {
	FlightID    string   `json:"flight_id" validate:"required,uuid"`
	SeatNumbers []string `json:"seat_numbers" validate:"required,min=1,max=50,unique,dive,required,max=10"`
}
