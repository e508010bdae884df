// Package policy holds the authorization rules shared by the use cases:
// who may change or remove a flight, who may touch a profile, and who may
// see or cancel a booking.
package policy

import (
	"fmt"

	"flight-booking/internal/data/entity"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
)

// Actor is the caller of an operation as far as authorization is concerned.
type Actor struct {
	ID    uuid.UUID
	Roles []entity.UserRole
}

func NewActor(id uuid.UUID, roles ...entity.UserRole) Actor {
	return Actor{ID: id, Roles: roles}
}

func (a Actor) HasRole(role entity.UserRole) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(entity.RoleAdmin)
}

func CanEditFlight(actor Actor, flight *entity.Flight) bool {
	return actor.IsAdmin() || (flight != nil && actor.ID == flight.OwnerID)
}

func CanRemoveFlight(actor Actor, flight *entity.Flight) bool {
	return CanEditFlight(actor, flight)
}

func CanEditProfile(actor Actor, targetID uuid.UUID) bool {
	return actor.IsAdmin() || actor.ID == targetID
}

// CanViewBooking allows the requester, the owner of the booked flight and admins.
func CanViewBooking(actor Actor, booking *entity.Booking, flight *entity.Flight) bool {
	if actor.IsAdmin() {
		return true
	}
	if booking == nil {
		return false
	}
	if actor.ID == booking.UserID {
		return true
	}
	return flight != nil && flight.ID == booking.FlightID && actor.ID == flight.OwnerID
}

func CanCancelBooking(actor Actor, booking *entity.Booking, flight *entity.Flight) bool {
	return CanViewBooking(actor, booking, flight)
}

// Authorize turns a failed check into an error wrapping utils.ErrUnauthorized.
func Authorize(allowed bool, format string, args ...any) error {
	if allowed {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), utils.ErrUnauthorized)
}
