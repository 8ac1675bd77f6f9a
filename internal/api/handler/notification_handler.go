package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// NotificationHandler exposes the delivery audit trail of a reservation.
type NotificationHandler struct {
	reservations ports.ReservationService
	logs         ports.NotificationLogRepository
}

func NewNotificationHandler(reservations ports.ReservationService, logs ports.NotificationLogRepository) *NotificationHandler {
	return &NotificationHandler{reservations: reservations, logs: logs}
}

type notificationLogResponse struct {
	TemplateIdentifier string    `json:"template_identifier"`
	TargetRole         string    `json:"target_role"`
	RecipientEmail     string    `json:"recipient_email"`
	Status             string    `json:"status"`
	Delivered          bool      `json:"delivered"`
	Error              string    `json:"error,omitempty"`
	SentAt             time.Time `json:"sent_at"`
}

// ListByReservation handles GET /v1/reservations/:id/notifications.
//
// @Summary      List the notifications sent for a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Reservation id"
// @Success      200  {array}   notificationLogResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/reservations/{id}/notifications [get]
func (h *NotificationHandler) ListByReservation(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	// Resolves 404 for unknown ids before touching the log collection.
	r, err := h.reservations.Get(c.Request().Context(), c.Param("id"), role, userID)
	if err != nil {
		return err
	}

	entries, err := h.logs.ListByReservation(c.Request().Context(), r.ID)
	if err != nil {
		return err
	}

	out := make([]notificationLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toNotificationLogResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}

func toNotificationLogResponse(e *domain.NotificationLogEntry) notificationLogResponse {
	return notificationLogResponse{
		TemplateIdentifier: e.TemplateIdentifier,
		TargetRole:         e.TargetRole,
		RecipientEmail:     e.RecipientEmail,
		Status:             string(e.Status),
		Delivered:          e.Delivered,
		Error:              e.Error,
		SentAt:             e.SentAt,
	}
}
