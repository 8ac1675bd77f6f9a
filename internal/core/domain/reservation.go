package domain

import (
	"errors"
	"time"
)

// ReservationKind distinguishes the two reservation variants. Both run the
// same status workflow but carry a different resource payload.
type ReservationKind string

const (
	KindSession       ReservationKind = "session"
	KindVehicleRental ReservationKind = "vehicle_rental"
)

// Valid reports whether k is one of the known reservation kinds.
func (k ReservationKind) Valid() bool {
	return k == KindSession || k == KindVehicleRental
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	// Phase 1: initial request
	StatusSubmitted   ReservationStatus = "submitted"
	StatusUnderReview ReservationStatus = "under_review"

	// Phase 2: administrative checks
	StatusAwaitingDocuments     ReservationStatus = "awaiting_documents"
	StatusDocumentsPending      ReservationStatus = "documents_pending"
	StatusDocumentsRejected     ReservationStatus = "documents_rejected"
	StatusAwaitingPrerequisites ReservationStatus = "awaiting_prerequisites"

	// Phase 3: financial validation
	StatusAwaitingFunding ReservationStatus = "awaiting_funding"
	StatusFundingApproved ReservationStatus = "funding_approved"
	StatusAwaitingPayment ReservationStatus = "awaiting_payment"
	StatusPaymentPending  ReservationStatus = "payment_pending"

	// Phase 4: confirmation
	StatusConfirmed     ReservationStatus = "confirmed"
	StatusAwaitingStart ReservationStatus = "awaiting_start"

	// Phase 5: training in progress
	StatusInProgress       ReservationStatus = "in_progress"
	StatusAttendanceIssues ReservationStatus = "attendance_issues"
	StatusSuspended        ReservationStatus = "suspended"

	// Phase 6: closure
	StatusCompleted ReservationStatus = "completed"
	StatusFailed    ReservationStatus = "failed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusRefunded  ReservationStatus = "refunded"
)

var (
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrInvalidTargetState      = errors.New("status not defined for this reservation kind")
	ErrTerminalState           = errors.New("no transitions allowed out of a terminal status")
	ErrNoOpTransition          = errors.New("target status equals current status")
	ErrTransitionNotAllowed    = errors.New("status transition not allowed")
	ErrConcurrentModification  = errors.New("reservation modified concurrently")
	ErrResourceConflict        = errors.New("vehicle already booked for overlapping dates")
	ErrVehicleNotFound         = errors.New("vehicle not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrUserExists              = errors.New("user already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrForbidden               = errors.New("access forbidden")
	ErrConfirmationMismatch    = errors.New("confirmation name does not match")
	ErrRestoreWindowClosed     = errors.New("restore window has closed")
	ErrNotDeleted              = errors.New("user is not in the deletion pipeline")
	ErrTemplateNotFound        = errors.New("notification template not found")
	ErrUndeclaredPlaceholder   = errors.New("template uses an undeclared placeholder")
	ErrSystemTemplateProtected = errors.New("system templates cannot be deleted")
)

// SessionRef is the resource payload of a session-formation reservation.
type SessionRef struct {
	SessionID      string    `json:"session_id" bson:"session_id"`
	FormationTitle string    `json:"formation_title" bson:"formation_title"`
	StartDate      time.Time `json:"start_date" bson:"start_date"`
}

// RentalRef is the resource payload of a vehicle-rental reservation.
// VehicleID stays empty until a vehicle has been assigned.
type RentalRef struct {
	VehicleID    string    `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	VehicleModel string    `json:"vehicle_model,omitempty" bson:"vehicle_model,omitempty"`
	ExamCenter   string    `json:"exam_center" bson:"exam_center"`
	StartDate    time.Time `json:"start_date" bson:"start_date"`
	EndDate      time.Time `json:"end_date" bson:"end_date"`
}

// Subject identifies the owning student/client of a reservation.
type Subject struct {
	UserID    string `json:"user_id" bson:"user_id"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
}

// FullName returns "FirstName LastName".
func (s Subject) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StatusHistoryEntry records a single status transition on a reservation.
type StatusHistoryEntry struct {
	From      ReservationStatus `json:"from,omitempty" bson:"from,omitempty"`
	Status    ReservationStatus `json:"status" bson:"status"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	ActorRole string            `json:"actor_role,omitempty" bson:"actor_role,omitempty"`
	Notes     string            `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Reservation is the core aggregate root. Status only changes through the
// lifecycle service; Version increments on every committed transition and
// backs the optimistic-concurrency check in the store.
type Reservation struct {
	ID            string               `json:"id" bson:"_id,omitempty"`
	Kind          ReservationKind      `json:"kind" bson:"kind"`
	Status        ReservationStatus    `json:"status" bson:"status"`
	Subject       Subject              `json:"subject" bson:"subject"`
	Session       *SessionRef          `json:"session,omitempty" bson:"session,omitempty"`
	Rental        *RentalRef           `json:"rental,omitempty" bson:"rental,omitempty"`
	TrackingToken string               `json:"tracking_token,omitempty" bson:"tracking_token,omitempty"`
	Notes         string               `json:"notes,omitempty" bson:"notes,omitempty"`
	Version       int64                `json:"version" bson:"version"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
	StatusHistory []StatusHistoryEntry `json:"status_history" bson:"status_history"`
}
