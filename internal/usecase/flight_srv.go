package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/cache"
	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/internal/policy"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FlightService interface {
	// Public
	GetAllFlightsForEveryone(ctx context.Context) ([]response.FlightResponse, error)
	SearchFlights(ctx context.Context, req *request.SearchFlightsRequest) ([]response.FlightResponse, error)
	GetFlightDetails(ctx context.Context, flightID string) (*response.FlightDetailResponse, error)

	// Flight owners and admins
	GetAllFlights(ctx context.Context, actor policy.Actor) ([]response.FlightResponse, error)
	CreateFlight(ctx context.Context, actor policy.Actor, req *request.FlightRequest) (*response.FlightDetailResponse, error)
	UpdateFlight(ctx context.Context, actor policy.Actor, flightID string, req *request.FlightRequest) (*response.FlightResponse, error)
	UpdateFlightCapacity(ctx context.Context, actor policy.Actor, flightID string, capacity int) (*response.FlightDetailResponse, error)
	RemoveFlight(ctx context.Context, actor policy.Actor, flightID string) error
}

type flightService struct {
	repo     *repository.Repository
	identity policy.IdentityProvider
	cache    cache.FlightCache
	log      *zap.Logger
	now      func() time.Time
}

func NewFlightService(repo *repository.Repository, identity policy.IdentityProvider, flightCache cache.FlightCache, log *zap.Logger) FlightService {
	return &flightService{
		repo:     repo,
		identity: identity,
		cache:    flightCache,
		log:      log.With(zap.String("service", "flight")),
		now:      time.Now,
	}
}

func (s *flightService) GetAllFlightsForEveryone(ctx context.Context) ([]response.FlightResponse, error) {
	cached, ok, err := s.cache.GetFlights(ctx)
	if err != nil {
		s.log.Warn("Flight cache read failed", zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	flights, err := s.repo.Flight.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := response.FlightsToResponse(flights)
	if err := s.cache.SetFlights(ctx, resp); err != nil {
		s.log.Warn("Flight cache write failed", zap.Error(err))
	}
	return resp, nil
}

func (s *flightService) SearchFlights(ctx context.Context, req *request.SearchFlightsRequest) ([]response.FlightResponse, error) {
	if err := validateRequest(s.log, "Search flights", req); err != nil {
		return nil, err
	}

	filter := entity.FlightFilter{
		Origin:      strings.TrimSpace(req.Origin),
		Destination: strings.TrimSpace(req.Destination),
	}
	if req.Date != "" {
		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", req.Date, utils.ErrValidation)
		}
		filter.Date = &date
	}

	flights, err := s.repo.Flight.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return response.FlightsToResponse(flights), nil
}

func (s *flightService) GetFlightDetails(ctx context.Context, flightID string) (*response.FlightDetailResponse, error) {
	id, err := parseID("flight", flightID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, s.repo, id)
}

func (s *flightService) details(ctx context.Context, repo *repository.Repository, id uuid.UUID) (*response.FlightDetailResponse, error) {
	flight, err := repo.Flight.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, fmt.Errorf("flight %s: %w", id, utils.ErrNotFound)
	}

	seats, err := repo.FlightSeat.FindByFlightID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.FlightDetailToResponse(flight, seats)
	return &resp, nil
}

// GetAllFlights lists every flight for an admin and the caller's own flights
// otherwise.
func (s *flightService) GetAllFlights(ctx context.Context, actor policy.Actor) ([]response.FlightResponse, error) {
	var (
		flights []*entity.Flight
		err     error
	)
	if actor.IsAdmin() {
		flights, err = s.repo.Flight.FindAll(ctx)
	} else {
		flights, err = s.repo.Flight.FindByOwnerID(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}
	return response.FlightsToResponse(flights), nil
}

func (s *flightService) CreateFlight(ctx context.Context, actor policy.Actor, req *request.FlightRequest) (*response.FlightDetailResponse, error) {
	if err := validateRequest(s.log, "Create flight", req); err != nil {
		return nil, err
	}

	isOwner, err := s.identity.IsInRole(ctx, actor.ID, entity.RoleFlightOwner)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(isOwner, "user %s is not a flight owner", actor.ID); err != nil {
		return nil, err
	}

	now := s.now()
	flight := &entity.Flight{
		BaseNoDelete:  entity.NewBaseNoDelete(now),
		FlightNumber:  strings.TrimSpace(req.FlightNumber),
		Origin:        strings.TrimSpace(req.Origin),
		Destination:   strings.TrimSpace(req.Destination),
		DepartureTime: req.DepartureTime,
		Capacity:      req.Capacity,
		PricePerSeat:  req.PricePerSeat,
		OwnerID:       actor.ID,
	}

	var resp *response.FlightDetailResponse
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Flight.Create(ctx, flight); err != nil {
			return err
		}
		seats := generateSeats(flight.ID, 1, flight.Capacity, nil, now)
		if err := tx.FlightSeat.CreateBatch(ctx, seats); err != nil {
			return err
		}
		resp, err = s.details(ctx, tx, flight.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Flight created",
		zap.String("flight_id", flight.ID.String()),
		zap.String("flight_number", flight.FlightNumber),
		zap.String("owner_id", actor.ID.String()),
		zap.Int("capacity", flight.Capacity),
	)
	s.invalidate(ctx)

	return resp, nil
}

func (s *flightService) UpdateFlight(ctx context.Context, actor policy.Actor, flightID string, req *request.FlightRequest) (*response.FlightResponse, error) {
	id, err := parseID("flight", flightID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Update flight", req); err != nil {
		return nil, err
	}

	var change seatChange
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		flight, err := s.lockEditable(ctx, tx, actor, id, policy.CanEditFlight)
		if err != nil {
			return err
		}

		now := s.now()
		if req.Capacity != flight.Capacity {
			if change, err = adjustSeats(ctx, tx, id, req.Capacity, now); err != nil {
				return err
			}
		}

		flight.FlightNumber = strings.TrimSpace(req.FlightNumber)
		flight.Origin = strings.TrimSpace(req.Origin)
		flight.Destination = strings.TrimSpace(req.Destination)
		flight.DepartureTime = req.DepartureTime
		flight.Capacity = req.Capacity
		flight.PricePerSeat = req.PricePerSeat
		flight.UpdatedAt = now
		return tx.Flight.Update(ctx, flight)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Flight updated",
		zap.String("flight_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.Int("seats_added", change.Added),
		zap.Int("seats_removed", change.Removed),
	)
	s.invalidate(ctx)

	flight, err := s.repo.Flight.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, fmt.Errorf("flight %s: %w", id, utils.ErrNotFound)
	}
	resp := response.FlightToResponse(flight)
	return &resp, nil
}

func (s *flightService) UpdateFlightCapacity(ctx context.Context, actor policy.Actor, flightID string, capacity int) (*response.FlightDetailResponse, error) {
	id, err := parseID("flight", flightID)
	if err != nil {
		return nil, err
	}
	if capacity < 0 {
		return nil, fmt.Errorf("capacity %d is negative: %w", capacity, utils.ErrValidation)
	}

	var (
		change seatChange
		resp   *response.FlightDetailResponse
	)
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		flight, err := s.lockEditable(ctx, tx, actor, id, policy.CanEditFlight)
		if err != nil {
			return err
		}

		now := s.now()
		if change, err = adjustSeats(ctx, tx, id, capacity, now); err != nil {
			return err
		}

		flight.Capacity = capacity
		flight.UpdatedAt = now
		if err := tx.Flight.Update(ctx, flight); err != nil {
			return err
		}
		resp, err = s.details(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Flight capacity updated",
		zap.String("flight_id", id.String()),
		zap.Int("capacity", capacity),
		zap.Int("seats_added", change.Added),
		zap.Int("seats_removed", change.Removed),
	)
	s.invalidate(ctx)

	return resp, nil
}

// RemoveFlight deletes the flight together with its bookings and seats.
// Bookings are dropped outright, not canceled.
func (s *flightService) RemoveFlight(ctx context.Context, actor policy.Actor, flightID string) error {
	id, err := parseID("flight", flightID)
	if err != nil {
		return err
	}

	var removedBookings int64
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if _, err := s.lockEditable(ctx, tx, actor, id, policy.CanRemoveFlight); err != nil {
			return err
		}

		if err := tx.BookingDetail.DeleteByFlightID(ctx, id); err != nil {
			return err
		}
		if removedBookings, err = tx.Booking.DeleteByFlightID(ctx, id); err != nil {
			return err
		}
		if err := tx.FlightSeat.DeleteByFlightID(ctx, id); err != nil {
			return err
		}
		return tx.Flight.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("Flight removed",
		zap.String("flight_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.Int64("bookings_removed", removedBookings),
	)
	s.invalidate(ctx)

	return nil
}

// lockEditable loads and locks the flight, then applies the policy check.
func (s *flightService) lockEditable(
	ctx context.Context,
	tx *repository.Repository,
	actor policy.Actor,
	id uuid.UUID,
	allowed func(policy.Actor, *entity.Flight) bool,
) (*entity.Flight, error) {
	flight, err := tx.Flight.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, fmt.Errorf("flight %s: %w", id, utils.ErrNotFound)
	}
	if err := policy.Authorize(allowed(actor, flight), "user %s may not change flight %s", actor.ID, id); err != nil {
		s.log.Warn("Flight change rejected",
			zap.String("flight_id", id.String()),
			zap.String("actor_id", actor.ID.String()),
		)
		return nil, err
	}
	return flight, nil
}

func (s *flightService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("Failed to invalidate flight cache", zap.Error(err))
	}
}
