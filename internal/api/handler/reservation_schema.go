package handler

import (
	"time"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type sessionRefRequest struct {
	SessionID      string    `json:"session_id"      validate:"required"`
	FormationTitle string    `json:"formation_title" validate:"required"`
	StartDate      time.Time `json:"start_date"      validate:"required"`
}

type rentalRefRequest struct {
	ExamCenter string    `json:"exam_center" validate:"required"`
	StartDate  time.Time `json:"start_date"  validate:"required"`
	EndDate    time.Time `json:"end_date"    validate:"required,gtfield=StartDate"`
}

type createReservationRequest struct {
	Kind    string             `json:"kind"    validate:"required,oneof=session vehicle_rental"`
	UserID  string             `json:"user_id"`
	Session *sessionRefRequest `json:"session,omitempty"`
	Rental  *rentalRefRequest  `json:"rental,omitempty"`
	Notes   string             `json:"notes"`
}

type changeStatusRequest struct {
	Status             string `json:"status"  validate:"required"`
	CustomMessage      string `json:"custom_message"`
	ExpectedVersion    int64  `json:"expected_version"`
	ResendNotification bool   `json:"resend_notification"`
}

type assignVehicleRequest struct {
	VehicleID    string `json:"vehicle_id"    validate:"required"`
	VehicleModel string `json:"vehicle_model" validate:"required"`
}

// --- Response types ---
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type statusHistoryItemResponse struct {
	From      string    `json:"from,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorRole string    `json:"actor_role,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

type subjectResponse struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type reservationResponse struct {
	ID            string                      `json:"id"`
	Kind          string                      `json:"kind"`
	Status        string                      `json:"status"`
	StatusLabel   string                      `json:"status_label"`
	StatusColor   string                      `json:"status_color"`
	Subject       subjectResponse             `json:"subject"`
	Session       *domain.SessionRef          `json:"session,omitempty"`
	Rental        *domain.RentalRef           `json:"rental,omitempty"`
	TrackingToken string                      `json:"tracking_token,omitempty"`
	Notes         string                      `json:"notes,omitempty"`
	Version       int64                       `json:"version"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	StatusHistory []statusHistoryItemResponse `json:"status_history,omitempty"`
}

type changeStatusResponse struct {
	Reservation reservationResponse     `json:"reservation"`
	PriorStatus string                  `json:"prior_status"`
	Notified    []string                `json:"notified"`
	Warnings    []ports.DispatchWarning `json:"warnings,omitempty"`
}

// reservationSummaryResponse is the lightweight item used in list responses.
// It intentionally omits status_history to keep payloads small.
type reservationSummaryResponse struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Status      string             `json:"status"`
	StatusLabel string             `json:"status_label"`
	Subject     subjectResponse    `json:"subject"`
	Session     *domain.SessionRef `json:"session,omitempty"`
	Rental      *domain.RentalRef  `json:"rental,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listReservationsResponse struct {
	Data       []reservationSummaryResponse `json:"data"`
	Pagination paginationResponse           `json:"pagination"`
}

// trackResponse is the public tracking view. It deliberately exposes no
// subject identity beyond the first name.
type trackResponse struct {
	Status        string                      `json:"status"`
	StatusLabel   string                      `json:"status_label"`
	StatusColor   string                      `json:"status_color"`
	FirstName     string                      `json:"first_name"`
	Rental        *domain.RentalRef           `json:"rental,omitempty"`
	StatusHistory []statusHistoryItemResponse `json:"status_history"`
}
