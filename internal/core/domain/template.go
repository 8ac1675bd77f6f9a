package domain

import (
	"fmt"
	"regexp"
)

// NotificationEventType is the logical event a template is bound to.
type NotificationEventType string

const (
	EventReservationStatusChange NotificationEventType = "reservation_status_change"
	EventVehicleRentalStatus     NotificationEventType = "vehicle_rental_status_updated"
)

// EventTypeFor maps a reservation kind to its status-change event type.
func EventTypeFor(kind ReservationKind) NotificationEventType {
	if kind == KindVehicleRental {
		return EventVehicleRentalStatus
	}
	return EventReservationStatusChange
}

// placeholderRe matches {{variable}} markers in subject/content. The
// Handlebars-style {{#if var}} blocks used by some rental templates reduce
// to the same variable names.
var placeholderRe = regexp.MustCompile(`\{\{#?(?:if\s+)?([a-zA-Z][a-zA-Z0-9_]*)\}\}`)

// NotificationTemplate is a typed email template. Subject and Content hold
// {{variable}} placeholders; rendering itself is the mailer's job; the core
// only checks declaration consistency and supplies the variable bag.
type NotificationTemplate struct {
	Identifier string                `json:"identifier" bson:"_id"`
	Name       string                `json:"name" bson:"name"`
	EventType  NotificationEventType `json:"event_type" bson:"event_type"`
	Status     ReservationStatus     `json:"status" bson:"status"`
	TargetRole string                `json:"target_role" bson:"target_role"`
	Subject    string                `json:"subject" bson:"subject"`
	Content    string                `json:"content" bson:"content"`
	Variables  []string              `json:"variables" bson:"variables"`
	IsSystem   bool                  `json:"is_system" bson:"is_system"`
}

// Placeholders returns the distinct variable names referenced in the
// template's subject and content, in order of first appearance.
func (t *NotificationTemplate) Placeholders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, text := range []string{t.Subject, t.Content} {
		for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Validate enforces the template-content invariant: every placeholder used
// in subject or content must be declared in Variables. Run at catalog load
// time so broken templates are caught at startup, not at send time.
func (t *NotificationTemplate) Validate() error {
	declared := make(map[string]bool, len(t.Variables))
	for _, v := range t.Variables {
		declared[v] = true
	}
	for _, p := range t.Placeholders() {
		if !declared[p] {
			return fmt.Errorf("template %s: %w: {{%s}}", t.Identifier, ErrUndeclaredPlaceholder, p)
		}
	}
	return nil
}

// NotificationRequest is the send request emitted after a committed
// transition: one per (transition, interested role). The mailer collaborator
// resolves TemplateIdentifier and substitutes Variables itself.
type NotificationRequest struct {
	ReservationID      string                `json:"reservation_id"`
	TemplateIdentifier string                `json:"template_identifier"`
	EventType          NotificationEventType `json:"event_type"`
	TargetRole         string                `json:"target_role"`
	RecipientEmail     string                `json:"recipient_email"`
	Status             ReservationStatus     `json:"status"`
	Version            int64                 `json:"version"`
	// Resend marks an explicit admin resend; the delivery worker must not
	// suppress it as a duplicate of the original post-transition send.
	Resend    bool              `json:"resend,omitempty"`
	Variables map[string]string `json:"variables"`
}
