package domain

import (
	"fmt"
	"time"
)

// DeletionLevel is the retention pipeline level of a soft-deleted user.
type DeletionLevel string

const (
	LevelDeactivated DeletionLevel = "deactivated"
	LevelAnonymized  DeletionLevel = "anonymized"
	LevelPermanent   DeletionLevel = "permanent"
)

const (
	// AnonymizationDelay is how long a deactivated account is kept intact
	// and restorable before its PII is anonymized.
	AnonymizationDelay = 30 * 24 * time.Hour
	// PurgeDelay is how long an anonymized account is kept before the
	// record is removed for good.
	PurgeDelay = 365 * 24 * time.Hour
)

// RetentionRecord is the deletion-pipeline state of one user. Levels only
// move forward (deactivated → anonymized → permanent); the only way back is
// an explicit restore, which exits the pipeline entirely.
type RetentionRecord struct {
	UserID        string        `json:"user_id" bson:"user_id"`
	DeletionLevel DeletionLevel `json:"deletion_level" bson:"deletion_level"`
	DeletedAt     time.Time     `json:"deleted_at" bson:"deleted_at"`
	AnonymizedAt  *time.Time    `json:"anonymized_at,omitempty" bson:"anonymized_at,omitempty"`
}

// AnonymizationDeadline is when a deactivated account becomes eligible for
// anonymization.
func (r RetentionRecord) AnonymizationDeadline() time.Time {
	return r.DeletedAt.Add(AnonymizationDelay)
}

// DeletionDeadline is when an anonymized account becomes eligible for
// permanent removal. The zero time is returned before anonymization.
func (r RetentionRecord) DeletionDeadline() time.Time {
	if r.AnonymizedAt == nil {
		return time.Time{}
	}
	return r.AnonymizedAt.Add(PurgeDelay)
}

// CanRestore reports whether the account can still be brought back: only at
// the deactivated level, and only before the anonymization deadline.
func (r RetentionRecord) CanRestore(now time.Time) bool {
	return r.DeletionLevel == LevelDeactivated && now.Before(r.AnonymizationDeadline())
}

// IsOverdue reports whether a deadline for the current level has passed but
// the sweep has not advanced the record yet. Operational visibility only;
// it never blocks reads.
func (r RetentionRecord) IsOverdue(now time.Time) bool {
	switch r.DeletionLevel {
	case LevelDeactivated:
		return !now.Before(r.AnonymizationDeadline())
	case LevelAnonymized:
		return !now.Before(r.DeletionDeadline())
	}
	return false
}

// AdvanceRetention returns the record as it should look at instant now. It
// is pure and idempotent: applying it twice with the same now yields the
// same record. Levels advance at most one step per call; the daily sweep
// catches up over successive runs.
func AdvanceRetention(r RetentionRecord, now time.Time) RetentionRecord {
	switch r.DeletionLevel {
	case LevelDeactivated:
		if !now.Before(r.AnonymizationDeadline()) {
			ts := now
			r.DeletionLevel = LevelAnonymized
			r.AnonymizedAt = &ts
		}
	case LevelAnonymized:
		if !now.Before(r.DeletionDeadline()) {
			r.DeletionLevel = LevelPermanent
		}
	}
	return r
}

// AnonymizedEmail is the placeholder address written over the user's email
// at anonymization.
func AnonymizedEmail(userID string) string {
	return fmt.Sprintf("anonymized_%s@deleted.local", userID)
}

const (
	// AnonymizedFirstName and AnonymizedLastName replace the user's name
	// at anonymization.
	AnonymizedFirstName = "Utilisateur"
	AnonymizedLastName  = "Anonymisé"
)
