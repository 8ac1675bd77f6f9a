package ports

import (
	"context"
	"time"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

// AuthService implements registration and login for platform actors.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      string
}

// RetentionSweepReport summarises one sweep run.
type RetentionSweepReport struct {
	Anonymized int `json:"anonymized"`
	Purged     int `json:"purged"`
}

// RetentionService manages the 3-level user-deletion lifecycle.
type RetentionService interface {
	// SoftDelete enters the user into the pipeline at level deactivated.
	SoftDelete(ctx context.Context, userID string) (*domain.User, error)
	// Restore exits the pipeline; only legal while the record CanRestore.
	Restore(ctx context.Context, userID string) (*domain.User, error)
	// Sweep advances every due record. Idempotent: a second run at the same
	// instant is a no-op.
	Sweep(ctx context.Context, now time.Time) (*RetentionSweepReport, error)
	// ForcePermanentDelete bypasses the deadlines. confirmationName must
	// match the user's original full name, case-insensitively.
	ForcePermanentDelete(ctx context.Context, userID, confirmationName string) error
	// Status reports the retention record and derived flags for a user.
	Status(ctx context.Context, userID string, now time.Time) (*RetentionStatus, error)
}

// RetentionStatus is the read model the admin UI renders. The UI never
// recomputes deadlines itself.
type RetentionStatus struct {
	Record                 domain.RetentionRecord `json:"record"`
	AnonymizationDeadline  time.Time              `json:"anonymization_deadline"`
	DeletionDeadline       *time.Time             `json:"deletion_deadline,omitempty"`
	CanRestore             bool                   `json:"can_restore"`
	IsOverdue              bool                   `json:"is_overdue"`
}
