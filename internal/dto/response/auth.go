package response

import (
	"time"

	"flight-booking/internal/data/entity"
)

type AuthResponse struct {
	UserID    string            `json:"user_id"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Email     string            `json:"email"`
	Username  string            `json:"username"`
	Roles     []entity.UserRole `json:"roles"`
}

type UserResponse struct {
	ID        string            `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Phone     *string           `json:"phone,omitempty"`
	Gender    *string           `json:"gender,omitempty"`
	Address   *string           `json:"address,omitempty"`
	Roles     []entity.UserRole `json:"roles"`
	CreatedAt time.Time         `json:"created_at"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Gender:    user.Gender,
		Address:   user.Address,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
	}
}
