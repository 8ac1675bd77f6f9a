package ports

import (
	"context"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

// TemplateRepository stores notification templates. System templates are
// seeded at deploy time and protected from deletion.
type TemplateRepository interface {
	ListSystem(ctx context.Context) ([]*domain.NotificationTemplate, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.NotificationTemplate, error)
	Upsert(ctx context.Context, t *domain.NotificationTemplate) error
}

// NotificationLogRepository persists the audit trail of sent notifications.
type NotificationLogRepository interface {
	Insert(ctx context.Context, entry *domain.NotificationLogEntry) error
	ListByReservation(ctx context.Context, reservationID string) ([]*domain.NotificationLogEntry, error)
}
