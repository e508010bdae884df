package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
)

// generateSeats builds count seats starting at seat index start (1-based),
// skipping labels already present in taken.
func generateSeats(flightID uuid.UUID, start, count int, taken map[string]bool, now time.Time) []*entity.FlightSeat {
	seats := make([]*entity.FlightSeat, 0, count)
	for i := start; len(seats) < count; i++ {
		row, letter := utils.SeatPosition(i)
		label := utils.SeatLabel(i)
		if taken[label] {
			continue
		}
		seats = append(seats, &entity.FlightSeat{
			BaseNoDelete: entity.NewBaseNoDelete(now),
			FlightID:     flightID,
			SeatNumber:   label,
			SeatRow:      row,
			SeatLetter:   letter,
			IsAvailable:  true,
		})
	}
	return seats
}

// seatChange is the outcome of adjustSeats.
type seatChange struct {
	Added   int
	Removed int
}

// adjustSeats makes the flight own exactly capacity seats. New seats continue
// the numbering after the current count. Removal starts from the highest row
// and letter and never touches a reserved seat, so shrinking below the number
// of reserved seats is a conflict.
func adjustSeats(ctx context.Context, tx *repository.Repository, flightID uuid.UUID, capacity int, now time.Time) (seatChange, error) {
	seats, err := tx.FlightSeat.FindByFlightID(ctx, flightID)
	if err != nil {
		return seatChange{}, err
	}

	sort.SliceStable(seats, func(i, j int) bool { return entity.SeatBefore(seats[i], seats[j]) })

	current := len(seats)
	switch {
	case capacity > current:
		taken := make(map[string]bool, current)
		for _, s := range seats {
			taken[s.SeatNumber] = true
		}
		added := generateSeats(flightID, current+1, capacity-current, taken, now)
		if err := tx.FlightSeat.CreateBatch(ctx, added); err != nil {
			return seatChange{}, err
		}
		return seatChange{Added: len(added)}, nil

	case capacity < current:
		reserved := 0
		for _, s := range seats {
			if !s.IsAvailable {
				reserved++
			}
		}
		if capacity < reserved {
			return seatChange{}, fmt.Errorf("capacity %d is below the %d reserved seats: %w", capacity, reserved, utils.ErrConflict)
		}

		toRemove := current - capacity
		ids := make([]uuid.UUID, 0, toRemove)
		for i := len(seats) - 1; i >= 0 && len(ids) < toRemove; i-- {
			if seats[i].IsAvailable {
				ids = append(ids, seats[i].ID)
			}
		}
		removed, err := tx.FlightSeat.DeleteByIDs(ctx, ids)
		if err != nil {
			return seatChange{}, err
		}
		if removed != int64(len(ids)) {
			return seatChange{}, fmt.Errorf("seats on flight %s were booked while resizing: %w", flightID, utils.ErrConflict)
		}
		return seatChange{Removed: len(ids)}, nil
	}

	return seatChange{}, nil
}
