package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/merelformation/reservation-system/internal/api/metrics"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// RetentionHandler exposes the user-deletion retention pipeline.
type RetentionHandler struct {
	service ports.RetentionService
}

func NewRetentionHandler(service ports.RetentionService) *RetentionHandler {
	return &RetentionHandler{service: service}
}

// SoftDelete handles POST /v1/users/:id/delete: deactivates the account.
//
// @Summary      Soft-delete a user (level 1, deactivated)
// @Tags         retention
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/delete [post]
func (h *RetentionHandler) SoftDelete(c echo.Context) error {
	user, err := h.service.SoftDelete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.RetentionAdvancedTotal.WithLabelValues(string(user.DeletionLevel)).Inc()
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Restore handles POST /v1/users/:id/restore: reactivates a deactivated
// account while the restore window is still open.
//
// @Summary      Restore a soft-deleted user
// @Tags         retention
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/users/{id}/restore [post]
func (h *RetentionHandler) Restore(c echo.Context) error {
	user, err := h.service.Restore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ForceDelete handles POST /v1/users/:id/delete/permanent: bypasses the
// retention deadlines after a typed name confirmation.
//
// @Summary      Permanently delete a user, bypassing the deadlines
// @Tags         retention
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "User id"
// @Param        body  body  forceDeleteRequest  true  "Typed name confirmation"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/users/{id}/delete/permanent [post]
func (h *RetentionHandler) ForceDelete(c echo.Context) error {
	var req forceDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.ForcePermanentDelete(c.Request().Context(), c.Param("id"), req.ConfirmationName); err != nil {
		return err
	}

	metrics.RetentionAdvancedTotal.WithLabelValues("permanent").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Status handles GET /v1/users/:id/retention: the read model the admin UI
// renders for a user in the pipeline.
//
// @Summary      Get the retention status of a user
// @Tags         retention
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  ports.RetentionStatus
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/retention [get]
func (h *RetentionHandler) Status(c echo.Context) error {
	status, err := h.service.Status(c.Request().Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}

// Sweep handles POST /v1/retention/sweep: advances every due record by one
// level. Normally driven by a cron job hitting this endpoint.
//
// @Summary      Advance all due retention records
// @Tags         retention
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sweepRequest  false  "Optional reference time override"
// @Success      200   {object}  ports.RetentionSweepReport
// @Failure      401   {object}  errorResponse
// @Router       /v1/retention/sweep [post]
func (h *RetentionHandler) Sweep(c echo.Context) error {
	var req sweepRequest
	// Body is optional; a bind failure just means no override.
	_ = c.Bind(&req)

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	report, err := h.service.Sweep(c.Request().Context(), now)
	if err != nil {
		return err
	}

	if report.Anonymized > 0 {
		metrics.RetentionAdvancedTotal.WithLabelValues("anonymized").Add(float64(report.Anonymized))
	}
	if report.Purged > 0 {
		metrics.RetentionAdvancedTotal.WithLabelValues("permanent").Add(float64(report.Purged))
	}

	return c.JSON(http.StatusOK, report)
}
