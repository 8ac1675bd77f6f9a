package ports

import (
	"context"
	"time"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

// ListReservationsFilter carries all query parameters for listing reservations.
type ListReservationsFilter struct {
	Kind   domain.ReservationKind // optional: filter by kind
	UserID string                 // empty = no filter (admin); non-empty = scoped to owner
	Status string                 // optional: filter by status
	Search string                 // optional: partial match on subject name or email
	Page   int                    // 1-based
	Limit  int                    // max rows per page (capped at 100 by service)
}

// StatusUpdate is the atomic write applied by UpdateStatus.
type StatusUpdate struct {
	NewStatus domain.ReservationStatus
	// ExpectedVersion is the version the caller read before requesting the
	// transition. The store must only apply the update when the stored
	// version still matches, and must increment it on success.
	ExpectedVersion int64
	ActorRole       string
	Notes           string
	Timestamp       time.Time
}

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	// FindByTrackingToken backs the public rental tracking page.
	FindByTrackingToken(ctx context.Context, token string) (*domain.Reservation, error)
	// List returns a page of reservations matching filter and the total count.
	List(ctx context.Context, filter ListReservationsFilter) ([]*domain.Reservation, int64, error)
	// UpdateStatus atomically sets the new status, appends a history entry,
	// stamps updated_at and increments the version. It fails with
	// domain.ErrConcurrentModification when the stored version no longer
	// matches upd.ExpectedVersion.
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*domain.Reservation, error)
	// AssignVehicle records the vehicle on a rental reservation. The write
	// is a compare-and-set on expectedVersion and fails with
	// domain.ErrConcurrentModification when the reservation moved since the
	// caller read it.
	AssignVehicle(ctx context.Context, id, vehicleID, vehicleModel string, expectedVersion int64) (*domain.Reservation, error)
	// UnassignVehicle clears the vehicle from a rental reservation. Used to
	// back out an assignment that lost the overlap re-check.
	UnassignVehicle(ctx context.Context, id string) error
	// FindOverlappingRental returns any active rental holding vehicleID for
	// a date range overlapping [from, to], excluding excludeID. Active means
	// any non-terminal status other than documents_rejected.
	FindOverlappingRental(ctx context.Context, vehicleID string, from, to time.Time, excludeID string) (*domain.Reservation, error)
}
