package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/merelformation/reservation-system/internal/api/metrics"
	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// ReservationHandler handles HTTP requests for reservation operations.
type ReservationHandler struct {
	service ports.ReservationService
}

func NewReservationHandler(service ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// Create handles POST /v1/reservations.
//
// @Summary      Create a new reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReservationRequest  true  "Reservation details"
// @Success      201   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	// Admins may open a reservation on behalf of a student.
	if role == domain.RoleAdmin && req.UserID != "" {
		userID = req.UserID
	}

	r, err := h.service.Create(c.Request().Context(), toCreateInput(req, userID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// Get handles GET /v1/reservations/:id.
//
// @Summary      Get a reservation by id
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Reservation id"
// @Success      200  {object}  reservationResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/reservations/{id} [get]
func (h *ReservationHandler) Get(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	r, err := h.service.Get(c.Request().Context(), c.Param("id"), role, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// List handles GET /v1/reservations.
//
// @Summary      List reservations
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        kind    query     string  false  "Filter by kind (session|vehicle_rental)"
// @Param        status  query     string  false  "Filter by status"
// @Param        search  query     string  false  "Partial match on subject name or email"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Rows per page (max 100)"
// @Success      200     {object}  listReservationsResponse
// @Failure      401     {object}  errorResponse
// @Router       /v1/reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	filter := ports.ListReservationsFilter{
		Kind:   domain.ReservationKind(c.QueryParam("kind")),
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	// Students only ever see their own reservations.
	if role == domain.RoleStudent {
		filter.UserID = userID
	}

	items, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	data := make([]reservationSummaryResponse, 0, len(items))
	for _, r := range items {
		data = append(data, toSummaryResponse(r))
	}

	return c.JSON(http.StatusOK, listReservationsResponse{
		Data:       data,
		Pagination: toPagination(total, filter.Page, filter.Limit),
	})
}

// ChangeStatus handles PATCH /v1/reservations/:id/status.
//
// @Summary      Change the status of a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Reservation id"
// @Param        body  body      changeStatusRequest  true  "Target status"
// @Success      200   {object}  changeStatusResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/reservations/{id}/status [patch]
func (h *ReservationHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.ChangeStatus(c.Request().Context(), ports.ChangeStatusInput{
		ReservationID:      c.Param("id"),
		NewStatus:          domain.ReservationStatus(req.Status),
		ActorRole:          role,
		CustomMessage:      req.CustomMessage,
		ExpectedVersion:    req.ExpectedVersion,
		ResendNotification: req.ResendNotification,
	})
	if err != nil {
		metrics.TransitionErrorsTotal.WithLabelValues(transitionErrorReason(err)).Inc()
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(result.Reservation.Kind), req.Status).Inc()

	return c.JSON(http.StatusOK, changeStatusResponse{
		Reservation: toReservationResponse(result.Reservation),
		PriorStatus: string(result.PriorStatus),
		Notified:    result.Notified,
		Warnings:    result.Warnings,
	})
}

// Transitions handles GET /v1/reservations/:id/transitions: the options
// the admin UI offers in the status dropdown.
//
// @Summary      List valid next statuses for a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Reservation id"
// @Success      200  {array}  ports.TransitionOption
// @Failure      404  {object}  errorResponse
// @Router       /v1/reservations/{id}/transitions [get]
func (h *ReservationHandler) Transitions(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	r, err := h.service.Get(c.Request().Context(), c.Param("id"), role, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.service.ListValidTransitions(r.Kind, r.Status))
}

// Statuses handles GET /v1/reservations/statuses: the full status menu
// for a reservation kind.
//
// @Summary      List all workflow statuses for a kind
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        kind  query     string  false  "Reservation kind (default session)"
// @Success      200   {array}   ports.StatusInfo
// @Failure      400   {object}  errorResponse
// @Router       /v1/reservations/statuses [get]
func (h *ReservationHandler) Statuses(c echo.Context) error {
	kind := domain.ReservationKind(c.QueryParam("kind"))
	if kind == "" {
		kind = domain.KindSession
	}
	if !kind.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown reservation kind")
	}

	return c.JSON(http.StatusOK, h.service.ListStatuses(kind))
}

func transitionErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTerminalState):
		return "terminal_state"
	case errors.Is(err, domain.ErrNoOpTransition):
		return "no_op"
	case errors.Is(err, domain.ErrInvalidTargetState):
		return "invalid_target"
	case errors.Is(err, domain.ErrTransitionNotAllowed):
		return "not_allowed"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, domain.ErrReservationNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
