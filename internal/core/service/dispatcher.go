package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// NotificationDispatcher resolves the system template for each interested
// role after a committed transition and queues exactly one request per
// (transition, role). It never fails the transition: every problem is
// reported as a warning and the commit stands.
type NotificationDispatcher struct {
	catalog    *TemplateCatalog
	queue      ports.NotificationEnqueuer
	adminEmail string
	appURL     string
	log        zerolog.Logger
}

func NewNotificationDispatcher(
	catalog *TemplateCatalog,
	queue ports.NotificationEnqueuer,
	adminEmail string,
	appURL string,
	log zerolog.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		catalog:    catalog,
		queue:      queue,
		adminEmail: adminEmail,
		appURL:     appURL,
		log:        log,
	}
}

// Dispatch queues the notifications for a reservation's current status and
// returns the queued template identifiers plus any per-role warnings.
func (d *NotificationDispatcher) Dispatch(
	ctx context.Context,
	r *domain.Reservation,
	prior domain.ReservationStatus,
	customMessage string,
) ([]string, []ports.DispatchWarning) {
	return d.dispatch(ctx, r, prior, customMessage, false)
}

// Resend re-queues the current status notifications with the resend flag
// set, so the delivery worker skips its duplicate suppression.
func (d *NotificationDispatcher) Resend(
	ctx context.Context,
	r *domain.Reservation,
	customMessage string,
) ([]string, []ports.DispatchWarning) {
	return d.dispatch(ctx, r, r.Status, customMessage, true)
}

func (d *NotificationDispatcher) dispatch(
	ctx context.Context,
	r *domain.Reservation,
	prior domain.ReservationStatus,
	customMessage string,
	resend bool,
) ([]string, []ports.DispatchWarning) {
	var (
		notified []string
		warnings []ports.DispatchWarning
	)

	vars := d.variableBag(r, customMessage)

	for _, role := range domain.NotifiedRoles(r.Status) {
		tpl, ok := d.catalog.Resolve(r.Kind, r.Status, role)
		if !ok {
			// No template for this state/role: skip quietly, the workflow
			// does not require full coverage.
			d.log.Debug().
				Str("reservation_id", r.ID).
				Str("status", string(r.Status)).
				Str("role", role).
				Msg("no template for status, notification skipped")
			warnings = append(warnings, ports.DispatchWarning{
				TargetRole: role,
				Reason:     fmt.Sprintf("no system template for %s/%s", r.Status, role),
			})
			continue
		}

		recipient := r.Subject.Email
		if role == domain.RoleAdmin {
			recipient = d.adminEmail
		}
		if recipient == "" {
			warnings = append(warnings, ports.DispatchWarning{
				TargetRole: role,
				Reason:     "no recipient address",
			})
			continue
		}

		d.queue.Enqueue(domain.NotificationRequest{
			ReservationID:      r.ID,
			TemplateIdentifier: tpl.Identifier,
			EventType:          tpl.EventType,
			TargetRole:         role,
			RecipientEmail:     recipient,
			Status:             r.Status,
			Version:            r.Version,
			Resend:             resend,
			Variables:          vars,
		})
		notified = append(notified, tpl.Identifier)

		d.log.Info().
			Str("reservation_id", r.ID).
			Str("template", tpl.Identifier).
			Str("role", role).
			Str("from", string(prior)).
			Str("to", string(r.Status)).
			Msg("notification queued")
	}

	return notified, warnings
}

// variableBag builds the placeholder values from the reservation snapshot.
// The optional admin message is merged over the defaults under "message".
func (d *NotificationDispatcher) variableBag(r *domain.Reservation, customMessage string) map[string]string {
	vars := map[string]string{
		"studentName":    r.Subject.FullName(),
		"reservationId":  r.ID,
		"submissionDate": r.CreatedAt.Format("02/01/2006"),
		"statusLabel":    r.Status.Label(),
	}

	switch r.Kind {
	case domain.KindSession:
		if r.Session != nil {
			vars["formationTitle"] = r.Session.FormationTitle
			vars["sessionDate"] = r.Session.StartDate.Format("02/01/2006")
		}
	case domain.KindVehicleRental:
		if r.Rental != nil {
			vars["rentalId"] = r.ID
			vars["vehicleModel"] = r.Rental.VehicleModel
			vars["examCenter"] = r.Rental.ExamCenter
			vars["rentalDates"] = formatDateRange(r.Rental.StartDate, r.Rental.EndDate)
		}
		if r.TrackingToken != "" {
			vars["trackingUrl"] = d.appURL + "/track/" + r.TrackingToken
		}
	}

	if customMessage != "" {
		vars["message"] = customMessage
	}
	return vars
}

func formatDateRange(from, to time.Time) string {
	if to.IsZero() || from.Equal(to) {
		return from.Format("02/01/2006")
	}
	return from.Format("02/01/2006") + " - " + to.Format("02/01/2006")
}
