package request

type RegisterRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	Gender          *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Address         *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest accepts either the email or the username in Username.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}
