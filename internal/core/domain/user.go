package domain

import "time"

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// User models an authenticated actor. The retention fields are only set once
// the user enters the deletion pipeline; Original* shadow fields capture the
// identity at soft-delete time so it survives anonymization (the admin UI
// shows them, and the forced-delete confirmation is checked against them).
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	FirstName    string    `json:"first_name" bson:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`

	DeletionLevel     DeletionLevel `json:"deletion_level,omitempty" bson:"deletion_level,omitempty"`
	DeletedAt         *time.Time    `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	AnonymizedAt      *time.Time    `json:"anonymized_at,omitempty" bson:"anonymized_at,omitempty"`
	OriginalEmail     string        `json:"original_email,omitempty" bson:"original_email,omitempty"`
	OriginalFirstName string        `json:"original_first_name,omitempty" bson:"original_first_name,omitempty"`
	OriginalLastName  string        `json:"original_last_name,omitempty" bson:"original_last_name,omitempty"`
}

// FullName returns "FirstName LastName".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// OriginalFullName returns the full name captured at soft-delete time,
// falling back to the current name for users outside the pipeline.
func (u *User) OriginalFullName() string {
	if u.OriginalFirstName != "" || u.OriginalLastName != "" {
		return u.OriginalFirstName + " " + u.OriginalLastName
	}
	return u.FullName()
}
