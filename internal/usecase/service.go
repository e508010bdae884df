package usecase

import (
	"fmt"

	"flight-booking/internal/cache"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/event"
	"flight-booking/internal/policy"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	Auth        AuthService
	User        UserService
	Flight      FlightService
	Booking     BookingService
	Reservation ReservationEngine
}

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Repo      *repository.Repository
	Identity  policy.IdentityProvider
	Cache     cache.FlightCache
	Publisher event.Publisher
	Config    *utils.Config
	Log       *zap.Logger
}

func NewService(deps Dependencies) *Service {
	if deps.Cache == nil {
		deps.Cache = cache.NopCache{}
	}
	if deps.Publisher == nil {
		deps.Publisher = event.NopPublisher{}
	}
	if deps.Identity == nil {
		deps.Identity = policy.NewIdentityProvider(deps.Repo.User)
	}

	reservation := NewReservationEngine(deps.Repo, deps.Cache, deps.Publisher, deps.Log)
	return &Service{
		Auth:        NewAuthService(deps.Repo, deps.Config, deps.Log),
		User:        NewUserService(deps.Repo, deps.Log),
		Flight:      NewFlightService(deps.Repo, deps.Identity, deps.Cache, deps.Log),
		Booking:     NewBookingService(deps.Repo, reservation, deps.Log),
		Reservation: reservation,
	}
}

// ==================== HELPERS ====================

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID %q: %w", kind, raw, utils.ErrValidation)
	}
	return id, nil
}

func validateRequest(log *zap.Logger, op string, req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		log.Warn(op+" validation failed", zap.Any("errors", errs))
		return fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}
	return nil
}
