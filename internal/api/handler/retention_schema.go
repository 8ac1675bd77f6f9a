package handler

import (
	"time"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

type forceDeleteRequest struct {
	// ConfirmationName must match the user's original full name; the
	// comparison is case-insensitive.
	ConfirmationName string `json:"confirmation_name" validate:"required"`
}

type sweepRequest struct {
	// Now overrides the sweep reference time; zero means time.Now().
	Now time.Time `json:"now"`
}

type userResponse struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	DeletionLevel string    `json:"deletion_level"`
	DeletedAt     time.Time `json:"deleted_at,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Role:          u.Role,
		DeletionLevel: string(u.DeletionLevel),
	}
	if u.DeletedAt != nil {
		resp.DeletedAt = *u.DeletedAt
	}
	return resp
}
