package policy

import (
	"context"
	"fmt"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
)

// IdentityProvider resolves actors and their roles from the user store.
type IdentityProvider interface {
	FindActor(ctx context.Context, id uuid.UUID) (*Actor, error)
	ActorRoles(ctx context.Context, id uuid.UUID) ([]entity.UserRole, error)
	IsInRole(ctx context.Context, id uuid.UUID, role entity.UserRole) (bool, error)
}

type userIdentity struct {
	users repository.UserRepository
}

func NewIdentityProvider(users repository.UserRepository) IdentityProvider {
	return &userIdentity{users: users}
}

// FindActor fails with utils.ErrNotFound for unknown or inactive users.
func (p *userIdentity) FindActor(ctx context.Context, id uuid.UUID) (*Actor, error) {
	user, err := p.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted() || !user.IsActive {
		return nil, fmt.Errorf("actor %s: %w", id, utils.ErrNotFound)
	}
	return &Actor{ID: user.ID, Roles: user.Roles}, nil
}

func (p *userIdentity) ActorRoles(ctx context.Context, id uuid.UUID) ([]entity.UserRole, error) {
	actor, err := p.FindActor(ctx, id)
	if err != nil {
		return nil, err
	}
	return actor.Roles, nil
}

func (p *userIdentity) IsInRole(ctx context.Context, id uuid.UUID, role entity.UserRole) (bool, error) {
	roles, err := p.ActorRoles(ctx, id)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}
