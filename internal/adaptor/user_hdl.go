package adaptor

import (
	"net/http"

	"flight-booking/internal/dto/request"
	"flight-booking/internal/usecase"
	"flight-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// GetProfile handles GET /api/user/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// EditProfile handles PUT /api/users/{id}
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.EditProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.service.EditProfile(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "edit profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated successfully", profile)
}

// DeleteProfile handles DELETE /api/users/{id}
func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteProfile(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete profile")
		return
	}

	utils.ResponseSuccess(w, "Profile deleted successfully", nil)
}

// GetUsersByRole handles GET /api/admin/users?role=&page=&per_page= (admin only)
func (h *UserHandler) GetUsersByRole(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.UsersByRoleRequest{
		Role: query.Get("role"),
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
	}
	if req.Role == "" {
		req.Role = "User"
	}

	// Validate per_page max
	if req.PerPage > 100 {
		req.PerPage = 100
	}

	users, err := h.service.GetAllUsersByRole(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "get users by role")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}
