package request

type EditProfileRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	Gender   *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

type UsersByRoleRequest struct {
	Role string `validate:"required,oneof=Admin FlightOwner User"`
	PaginatedRequest
}
