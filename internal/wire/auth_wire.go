package wire

import (
	"flight-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	// ==================== PROTECTED ROUTES ====================
	r.With(g.auth).Post("/api/auth/logout", authHandler.Logout)

	// ==================== ADMIN ROUTES ====================
	r.With(g.auth, g.admin).Post("/api/admin/flight-owners", authHandler.RegisterFlightOwner)
}
