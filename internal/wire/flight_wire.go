package wire

import (
	"flight-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireFlight(r chi.Router, flightHandler *adaptor.FlightHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/flights", func(r chi.Router) {
		r.Get("/", flightHandler.GetAllFlights)
		r.Get("/search", flightHandler.SearchFlights) // ?origin=&destination=&date=2025-01-31
		r.Get("/{id}", flightHandler.GetFlightDetails)
	})

	// ==================== FLIGHT OWNER ROUTES ====================
	r.Route("/api/owner/flights", func(r chi.Router) {
		r.Use(g.auth)

		r.With(g.ownerAdmin).Get("/", flightHandler.GetOwnFlights)
		// Only flight owners create flights; admins manage existing ones
		r.With(g.owner).Post("/", flightHandler.CreateFlight)

		r.Group(func(r chi.Router) {
			r.Use(g.ownerAdmin)
			r.Put("/{id}", flightHandler.UpdateFlight)
			r.Patch("/{id}/capacity", flightHandler.UpdateCapacity)
			r.Delete("/{id}", flightHandler.RemoveFlight)
		})
	})
}
