package wire

import (
	"flight-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures profile routes and the admin user listing
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	// ==================== PROTECTED USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/api/user/profile", userHandler.GetProfile)
		// Ownership is checked in the service, admins may edit anyone
		r.Put("/api/users/{id}", userHandler.EditProfile)
		r.Delete("/api/users/{id}", userHandler.DeleteProfile)
	})

	// ==================== ADMIN ROUTES ====================
	r.With(g.auth, g.admin).Get("/api/admin/users", userHandler.GetUsersByRole) // ?role=FlightOwner&page=1&per_page=10
}
