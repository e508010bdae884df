package adaptor

import (
	"net/http"

	"flight-booking/internal/dto/request"
	"flight-booking/internal/usecase"
	"flight-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service usecase.FlightService
	log     *zap.Logger
}

func NewFlightHandler(service usecase.FlightService, log *zap.Logger) *FlightHandler {
	return &FlightHandler{
		service: service,
		log:     log,
	}
}

// ==================== PUBLIC ====================

// GetAllFlights handles GET /api/flights
func (h *FlightHandler) GetAllFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.service.GetAllFlightsForEveryone(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get flights")
		return
	}

	utils.ResponseSuccess(w, "Flights retrieved successfully", flights)
}

// SearchFlights handles GET /api/flights/search?origin=&destination=&date=
func (h *FlightHandler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SearchFlightsRequest{
		Origin:      query.Get("origin"),
		Destination: query.Get("destination"),
		Date:        query.Get("date"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	flights, err := h.service.SearchFlights(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "search flights")
		return
	}

	utils.ResponseSuccess(w, "Flights retrieved successfully", flights)
}

// GetFlightDetails handles GET /api/flights/{id}
func (h *FlightHandler) GetFlightDetails(w http.ResponseWriter, r *http.Request) {
	flight, err := h.service.GetFlightDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get flight details")
		return
	}

	utils.ResponseSuccess(w, "Flight retrieved successfully", flight)
}

// ==================== FLIGHT OWNER / ADMIN ====================

// GetOwnFlights handles GET /api/owner/flights
func (h *FlightHandler) GetOwnFlights(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	flights, err := h.service.GetAllFlights(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.log, err, "get owner flights")
		return
	}

	utils.ResponseSuccess(w, "Flights retrieved successfully", flights)
}

// CreateFlight handles POST /api/owner/flights
func (h *FlightHandler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.FlightRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	flight, err := h.service.CreateFlight(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create flight")
		return
	}

	utils.ResponseCreated(w, "Flight created successfully", flight)
}

// UpdateFlight handles PUT /api/owner/flights/{id}
func (h *FlightHandler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.FlightRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	flight, err := h.service.UpdateFlight(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update flight")
		return
	}

	utils.ResponseSuccess(w, "Flight updated successfully", flight)
}

// UpdateCapacity handles PATCH /api/owner/flights/{id}/capacity
func (h *FlightHandler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateCapacityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	flight, err := h.service.UpdateFlightCapacity(r.Context(), actor, chi.URLParam(r, "id"), *req.Capacity)
	if err != nil {
		writeServiceError(w, h.log, err, "update flight capacity")
		return
	}

	utils.ResponseSuccess(w, "Flight capacity updated successfully", flight)
}

// RemoveFlight handles DELETE /api/owner/flights/{id}
func (h *FlightHandler) RemoveFlight(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.RemoveFlight(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "remove flight")
		return
	}

	utils.ResponseSuccess(w, "Flight removed successfully", nil)
}
