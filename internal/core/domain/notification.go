package domain

import "time"

// NotificationLogEntry is the audit record of one delivered (or failed)
// notification request.
type NotificationLogEntry struct {
	ID                 string            `json:"id" bson:"_id,omitempty"`
	ReservationID      string            `json:"reservation_id" bson:"reservation_id"`
	TemplateIdentifier string            `json:"template_identifier" bson:"template_identifier"`
	TargetRole         string            `json:"target_role" bson:"target_role"`
	RecipientEmail     string            `json:"recipient_email" bson:"recipient_email"`
	Status             ReservationStatus `json:"status" bson:"status"`
	Variables          map[string]string `json:"variables" bson:"variables"`
	Delivered          bool              `json:"delivered" bson:"delivered"`
	Error              string            `json:"error,omitempty" bson:"error,omitempty"`
	SentAt             time.Time         `json:"sent_at" bson:"sent_at"`
}
