package ports

import (
	"context"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

// NotificationSender hands a fully built request to the external mailer
// collaborator, which owns template rendering and SMTP delivery. The core
// only supplies the template identifier and the variable bag.
type NotificationSender interface {
	Send(ctx context.Context, req domain.NotificationRequest) error
}

// NotificationEnqueuer accepts requests for asynchronous delivery. Requests
// for the same reservation are delivered in order.
type NotificationEnqueuer interface {
	Enqueue(req domain.NotificationRequest)
}

// NotificationDispatcher resolves templates for a committed transition and
// queues one request per interested role. Failures surface as warnings only:
// the transition is already committed and must never be rolled back here.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, r *domain.Reservation, prior domain.ReservationStatus, customMessage string) ([]string, []DispatchWarning)
	// Resend re-queues the notifications for the reservation's current
	// status. Requests are flagged so delivery bypasses the idempotency
	// check that would otherwise swallow them.
	Resend(ctx context.Context, r *domain.Reservation, customMessage string) ([]string, []DispatchWarning)
}
