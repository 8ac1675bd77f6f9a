package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// catalogKey addresses a template by workflow position instead of by the
// historical identifier string, so the dispatcher never concatenates
// "<event>_<status>_<role>" at send time.
type catalogKey struct {
	eventType domain.NotificationEventType
	status    domain.ReservationStatus
	role      string
}

// TemplateCatalog is the in-memory index of system notification templates,
// built once at startup and validated against the status registry.
type TemplateCatalog struct {
	byKey map[catalogKey]*domain.NotificationTemplate
	log   zerolog.Logger
}

// LoadTemplateCatalog reads all system templates, validates the declared
// placeholder sets, and indexes them by (eventType, status, role). Invalid
// templates abort startup; coverage gaps (states with no template) are
// logged only, since not every state sends mail.
func LoadTemplateCatalog(ctx context.Context, repo ports.TemplateRepository, log zerolog.Logger) (*TemplateCatalog, error) {
	templates, err := repo.ListSystem(ctx)
	if err != nil {
		return nil, fmt.Errorf("load template catalog: %w", err)
	}

	c := &TemplateCatalog{
		byKey: make(map[catalogKey]*domain.NotificationTemplate, len(templates)),
		log:   log,
	}

	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("load template catalog: %w", err)
		}
		key := catalogKey{eventType: t.EventType, status: t.Status, role: t.TargetRole}
		if prev, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("load template catalog: %s and %s both claim %s/%s/%s",
				prev.Identifier, t.Identifier, t.EventType, t.Status, t.TargetRole)
		}
		c.byKey[key] = t
	}

	c.logCoverage(domain.KindSession)
	c.logCoverage(domain.KindVehicleRental)

	log.Info().Int("templates", len(templates)).Msg("template catalog loaded")
	return c, nil
}

// Resolve returns the template for a (kind, status, role) triple.
func (c *TemplateCatalog) Resolve(kind domain.ReservationKind, status domain.ReservationStatus, role string) (*domain.NotificationTemplate, bool) {
	t, ok := c.byKey[catalogKey{eventType: domain.EventTypeFor(kind), status: status, role: role}]
	return t, ok
}

// Size returns the number of indexed templates.
func (c *TemplateCatalog) Size() int {
	return len(c.byKey)
}

func (c *TemplateCatalog) logCoverage(kind domain.ReservationKind) {
	for _, status := range domain.StatusesFor(kind) {
		for _, role := range domain.NotifiedRoles(status) {
			if _, ok := c.Resolve(kind, status, role); !ok {
				c.log.Warn().
					Str("kind", string(kind)).
					Str("status", string(status)).
					Str("role", role).
					Msg("no system template for notified state")
			}
		}
	}
}
