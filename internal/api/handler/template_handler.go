package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// TemplateHandler exposes the notification template catalog to admins.
type TemplateHandler struct {
	templates ports.TemplateRepository
}

func NewTemplateHandler(templates ports.TemplateRepository) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type templateResponse struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	EventType  string   `json:"event_type"`
	Status     string   `json:"status"`
	TargetRole string   `json:"target_role"`
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
	Variables  []string `json:"variables"`
	IsSystem   bool     `json:"is_system"`
}

type upsertTemplateRequest struct {
	Identifier string   `json:"identifier"  validate:"required"`
	Name       string   `json:"name"        validate:"required"`
	EventType  string   `json:"event_type"  validate:"required,oneof=reservation_status_change vehicle_rental_status_updated"`
	Status     string   `json:"status"      validate:"required"`
	TargetRole string   `json:"target_role" validate:"required,oneof=student admin"`
	Subject    string   `json:"subject"     validate:"required"`
	Content    string   `json:"content"     validate:"required"`
	Variables  []string `json:"variables"`
}

// List handles GET /v1/templates.
//
// @Summary      List system notification templates
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   templateResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/templates [get]
func (h *TemplateHandler) List(c echo.Context) error {
	templates, err := h.templates.ListSystem(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Upsert handles PUT /v1/templates/:identifier. The body identifier must
// match the path; the template is validated before it is stored so a bad
// placeholder can never reach the dispatcher.
//
// @Summary      Create or update a notification template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        identifier  path      string                 true  "Template identifier"
// @Param        body        body      upsertTemplateRequest  true  "Template"
// @Success      200         {object}  templateResponse
// @Failure      400         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /v1/templates/{identifier} [put]
func (h *TemplateHandler) Upsert(c echo.Context) error {
	var req upsertTemplateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.Identifier != c.Param("identifier") {
		return echo.NewHTTPError(http.StatusBadRequest, "identifier mismatch between path and body")
	}

	t := &domain.NotificationTemplate{
		Identifier: req.Identifier,
		Name:       req.Name,
		EventType:  domain.NotificationEventType(req.EventType),
		Status:     domain.ReservationStatus(req.Status),
		TargetRole: req.TargetRole,
		Subject:    req.Subject,
		Content:    req.Content,
		Variables:  req.Variables,
	}
	if err := t.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	// System templates keep their flag and their workflow position: an admin
	// edit may reword subject and content but never move the template to a
	// different (event, status, role) slot or demote it out of ListSystem.
	existing, err := h.templates.FindByIdentifier(c.Request().Context(), req.Identifier)
	switch {
	case err == nil && existing.IsSystem:
		if t.EventType != existing.EventType || t.Status != existing.Status || t.TargetRole != existing.TargetRole {
			return domain.ErrSystemTemplateProtected
		}
		t.IsSystem = true
	case err != nil && !errors.Is(err, domain.ErrTemplateNotFound):
		return err
	}

	if err := h.templates.Upsert(c.Request().Context(), t); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTemplateResponse(t))
}

func toTemplateResponse(t *domain.NotificationTemplate) templateResponse {
	return templateResponse{
		Identifier: t.Identifier,
		Name:       t.Name,
		EventType:  string(t.EventType),
		Status:     string(t.Status),
		TargetRole: t.TargetRole,
		Subject:    t.Subject,
		Content:    t.Content,
		Variables:  t.Variables,
		IsSystem:   t.IsSystem,
	}
}
