package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/internal/policy"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, actor policy.Actor) (*response.UserResponse, error)
	EditProfile(ctx context.Context, actor policy.Actor, userID string, req *request.EditProfileRequest) (*response.UserResponse, error)
	DeleteProfile(ctx context.Context, actor policy.Actor, userID string) error
	GetAllUsersByRole(ctx context.Context, req *request.UsersByRoleRequest) (*response.PaginatedResponse[response.UserResponse], error)
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log.With(zap.String("service", "user")),
		now:  time.Now,
	}
}

func (s *userService) GetProfile(ctx context.Context, actor policy.Actor) (*response.UserResponse, error) {
	user, err := s.find(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) EditProfile(ctx context.Context, actor policy.Actor, userID string, req *request.EditProfileRequest) (*response.UserResponse, error) {
	id, err := parseID("user", userID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(policy.CanEditProfile(actor, id), "user %s may not edit profile %s", actor.ID, id); err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Edit profile", req); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if err := ensureIdentityAvailable(ctx, s.repo.User, id, email, username); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	user.Phone = req.Phone
	user.Gender = req.Gender
	user.Address = req.Address
	user.UpdatedAt = s.now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("Profile updated",
		zap.String("user_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	resp := response.UserToResponse(user)
	return &resp, nil
}

// DeleteProfile soft-deletes the user and revokes all of their sessions.
func (s *userService) DeleteProfile(ctx context.Context, actor policy.Actor, userID string) error {
	id, err := parseID("user", userID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(policy.CanEditProfile(actor, id), "user %s may not delete profile %s", actor.ID, id); err != nil {
		return err
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Delete(ctx, id); err != nil {
			return err
		}
		return tx.Session.RevokeAllUserSessions(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("Profile deleted",
		zap.String("user_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

func (s *userService) GetAllUsersByRole(ctx context.Context, req *request.UsersByRoleRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if err := validateRequest(s.log, "List users", req); err != nil {
		return nil, err
	}

	role := entity.UserRole(req.Role)
	users, err := s.repo.User.FindByRole(ctx, role, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}
	total, err := s.repo.User.CountByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	data := make([]response.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, response.UserToResponse(u))
	}
	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *userService) find(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, utils.ErrNotFound)
	}
	return user, nil
}
