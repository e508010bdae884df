package wire

import (
	"flight-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, g guards) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		// POST /api/bookings - Reserve seats on a flight
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings/{id} - Requester, flight owner or admin
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

		// DELETE /api/bookings/{id} - Cancel and free the seats
		r.Delete("/api/bookings/{id}", bookingHandler.CancelBooking)

		// GET /api/user/bookings - Booking history of the caller
		r.Get("/api/user/bookings", bookingHandler.GetBookingHistory)
	})

	// ==================== FLIGHT OWNER / ADMIN ROUTES ====================
	r.With(g.auth, g.ownerAdmin).Get("/api/owner/bookings", bookingHandler.ListBookings)
}
