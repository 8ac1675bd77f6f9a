package ports

import (
	"context"
	"time"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

// CreateReservationInput carries all data needed to open a new reservation.
// Exactly one of Session/Rental must be set, matching Kind.
type CreateReservationInput struct {
	Kind    domain.ReservationKind
	UserID  string
	Session *SessionRefInput
	Rental  *RentalRefInput
	Notes   string
}

// SessionRefInput references the training session being booked.
type SessionRefInput struct {
	SessionID      string
	FormationTitle string
	StartDate      time.Time
}

// RentalRefInput references the exam-center rental slot being booked. The
// vehicle itself is assigned later by an admin.
type RentalRefInput struct {
	ExamCenter string
	StartDate  time.Time
	EndDate    time.Time
}

// ChangeStatusInput carries a requested status transition.
type ChangeStatusInput struct {
	ReservationID string
	NewStatus     domain.ReservationStatus
	ActorRole     string
	CustomMessage string
	// ExpectedVersion enables the optimistic-concurrency check; zero means
	// the caller opted out (last write wins).
	ExpectedVersion int64
	// ResendNotification re-emits the notification for the current status
	// without a status change; NewStatus must equal the current status.
	ResendNotification bool
}

// DispatchWarning reports a non-fatal notification failure. The status
// commit it relates to is never rolled back.
type DispatchWarning struct {
	TargetRole string `json:"target_role"`
	Reason     string `json:"reason"`
}

// ChangeStatusResult is returned after a committed transition.
type ChangeStatusResult struct {
	Reservation *domain.Reservation
	PriorStatus domain.ReservationStatus
	// Notified lists the template identifiers queued for delivery.
	Notified []string
	Warnings []DispatchWarning
}

// TransitionOption is one entry of the UI status-change dropdown.
type TransitionOption struct {
	Value domain.ReservationStatus `json:"value"`
	Label string                   `json:"label"`
	Color string                   `json:"color"`
}

// StatusInfo describes one workflow status for the admin status menu.
type StatusInfo struct {
	Value              domain.ReservationStatus   `json:"value"`
	Label              string                     `json:"label"`
	Phase              string                     `json:"phase"`
	Color              string                     `json:"color"`
	Terminal           bool                       `json:"terminal"`
	AllowedTransitions []domain.ReservationStatus `json:"allowedTransitions"`
}

// AssignVehicleInput carries a vehicle assignment for a rental reservation.
type AssignVehicleInput struct {
	ReservationID string
	VehicleID     string
	VehicleModel  string
}

// ReservationService defines the workflow use cases.
type ReservationService interface {
	Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	Get(ctx context.Context, id string, actorRole, actorUserID string) (*domain.Reservation, error)
	List(ctx context.Context, filter ListReservationsFilter) ([]*domain.Reservation, int64, error)
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*ChangeStatusResult, error)
	// Track resolves a rental reservation from its public tracking token.
	Track(ctx context.Context, token string) (*domain.Reservation, error)
	ListValidTransitions(kind domain.ReservationKind, current domain.ReservationStatus) []TransitionOption
	ListStatuses(kind domain.ReservationKind) []StatusInfo
	AssignVehicle(ctx context.Context, input AssignVehicleInput) (*domain.Reservation, error)
}
