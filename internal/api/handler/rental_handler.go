package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merelformation/reservation-system/internal/core/ports"
)

// RentalHandler handles the vehicle-rental specific operations.
type RentalHandler struct {
	service ports.ReservationService
}

func NewRentalHandler(service ports.ReservationService) *RentalHandler {
	return &RentalHandler{service: service}
}

// AssignVehicle handles PUT /v1/rentals/:id/vehicle.
//
// @Summary      Assign a vehicle to a rental reservation
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Reservation id"
// @Param        body  body      assignVehicleRequest  true  "Vehicle assignment"
// @Success      200   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/rentals/{id}/vehicle [put]
func (h *RentalHandler) AssignVehicle(c echo.Context) error {
	var req assignVehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	r, err := h.service.AssignVehicle(c.Request().Context(), ports.AssignVehicleInput{
		ReservationID: c.Param("id"),
		VehicleID:     req.VehicleID,
		VehicleModel:  req.VehicleModel,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Track handles GET /track/:token. No authentication: the token itself is
// the capability.
//
// @Summary      Track a rental reservation by public token
// @Tags         rentals
// @Produce      json
// @Param        token  path      string  true  "Public tracking token"
// @Success      200    {object}  trackResponse
// @Failure      404    {object}  errorResponse
// @Router       /track/{token} [get]
func (h *RentalHandler) Track(c echo.Context) error {
	r, err := h.service.Track(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTrackResponse(r))
}
