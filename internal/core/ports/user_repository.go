package ports

import (
	"context"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

// UserRepository defines persistence for users, including the retention
// pipeline fields.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// ListByDeletionLevel returns every user currently at the given level.
	// The sweep filters by deadline itself; the query stays level-only so
	// the decision logic lives in one place.
	ListByDeletionLevel(ctx context.Context, level domain.DeletionLevel) ([]*domain.User, error)
	// Delete removes the user record for good (retention level 3).
	Delete(ctx context.Context, id string) error
}
