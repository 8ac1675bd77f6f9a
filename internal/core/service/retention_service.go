package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// RetentionService manages the 3-level user-deletion pipeline. The decision
// logic lives in domain.AdvanceRetention; this service only loads, applies
// and persists. The sweep is meant to be triggered daily by an external
// scheduler.
type RetentionService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewRetentionService(users ports.UserRepository, logger zerolog.Logger) *RetentionService {
	return &RetentionService{users: users, logger: logger}
}

// SoftDelete deactivates a user and captures the original identity so it
// survives anonymization. A user already in the pipeline is returned as-is.
func (s *RetentionService) SoftDelete(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("soft delete: %w", err)
	}
	if u.DeletionLevel != "" {
		return u, nil
	}

	now := time.Now().UTC()
	u.DeletionLevel = domain.LevelDeactivated
	u.DeletedAt = &now
	u.OriginalEmail = u.Email
	u.OriginalFirstName = u.FirstName
	u.OriginalLastName = u.LastName
	u.UpdatedAt = now

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("soft delete: %w", err)
	}

	s.logger.Info().
		Str("user_id", u.ID).
		Time("anonymization_deadline", s.record(u).AnonymizationDeadline()).
		Msg("user deactivated")
	return u, nil
}

// Restore exits the pipeline and reactivates the account. Only legal while
// the record is still restorable (deactivated, before the deadline).
func (s *RetentionService) Restore(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if u.DeletionLevel == "" {
		return nil, domain.ErrNotDeleted
	}
	if !s.record(u).CanRestore(time.Now().UTC()) {
		return nil, domain.ErrRestoreWindowClosed
	}

	u.Email = u.OriginalEmail
	u.FirstName = u.OriginalFirstName
	u.LastName = u.OriginalLastName
	u.DeletionLevel = ""
	u.DeletedAt = nil
	u.AnonymizedAt = nil
	u.OriginalEmail = ""
	u.OriginalFirstName = ""
	u.OriginalLastName = ""
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	s.logger.Info().Str("user_id", u.ID).Msg("user restored")
	return u, nil
}

// Sweep advances every due record. Per-record granularity: a failure on one
// user does not stop the run, and re-running at the same instant changes
// nothing.
func (s *RetentionService) Sweep(ctx context.Context, now time.Time) (*ports.RetentionSweepReport, error) {
	report := &ports.RetentionSweepReport{}

	deactivated, err := s.users.ListByDeletionLevel(ctx, domain.LevelDeactivated)
	if err != nil {
		return nil, fmt.Errorf("retention sweep: %w", err)
	}
	for _, u := range deactivated {
		rec := domain.AdvanceRetention(s.record(u), now)
		if rec.DeletionLevel != domain.LevelAnonymized {
			continue
		}
		if err := s.anonymize(ctx, u, rec); err != nil {
			s.logger.Error().Err(err).Str("user_id", u.ID).Msg("anonymization failed")
			continue
		}
		report.Anonymized++
	}

	anonymized, err := s.users.ListByDeletionLevel(ctx, domain.LevelAnonymized)
	if err != nil {
		return nil, fmt.Errorf("retention sweep: %w", err)
	}
	for _, u := range anonymized {
		rec := domain.AdvanceRetention(s.record(u), now)
		if rec.DeletionLevel != domain.LevelPermanent {
			continue
		}
		if err := s.users.Delete(ctx, u.ID); err != nil {
			s.logger.Error().Err(err).Str("user_id", u.ID).Msg("permanent deletion failed")
			continue
		}
		s.logger.Info().Str("user_id", u.ID).Msg("user permanently deleted")
		report.Purged++
	}

	s.logger.Info().
		Int("anonymized", report.Anonymized).
		Int("purged", report.Purged).
		Msg("retention sweep finished")
	return report, nil
}

// ForcePermanentDelete bypasses the deadlines. The confirmation name must
// match the user's original full name, compared case-insensitively after
// trimming whitespace.
func (s *RetentionService) ForcePermanentDelete(ctx context.Context, userID, confirmationName string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("force delete: %w", err)
	}

	expected := strings.TrimSpace(u.OriginalFullName())
	if !strings.EqualFold(strings.TrimSpace(confirmationName), expected) {
		s.logger.Warn().Str("user_id", userID).Msg("forced deletion rejected: confirmation mismatch")
		return domain.ErrConfirmationMismatch
	}

	if err := s.users.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("force delete: %w", err)
	}
	s.logger.Info().Str("user_id", u.ID).Msg("user permanently deleted (forced)")
	return nil
}

// Status reports the retention record and its derived flags. The UI renders
// this; it never recomputes deadlines itself.
func (s *RetentionService) Status(ctx context.Context, userID string, now time.Time) (*ports.RetentionStatus, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("retention status: %w", err)
	}
	if u.DeletionLevel == "" {
		return nil, domain.ErrNotDeleted
	}

	rec := s.record(u)
	status := &ports.RetentionStatus{
		Record:                rec,
		AnonymizationDeadline: rec.AnonymizationDeadline(),
		CanRestore:            rec.CanRestore(now),
		IsOverdue:             rec.IsOverdue(now),
	}
	if rec.AnonymizedAt != nil {
		dd := rec.DeletionDeadline()
		status.DeletionDeadline = &dd
	}
	return status, nil
}

// anonymize applies level 2: PII replaced with placeholders, shadow fields
// kept for admin visibility and the forced-delete confirmation.
func (s *RetentionService) anonymize(ctx context.Context, u *domain.User, rec domain.RetentionRecord) error {
	u.Email = domain.AnonymizedEmail(u.ID)
	u.FirstName = domain.AnonymizedFirstName
	u.LastName = domain.AnonymizedLastName
	u.Phone = ""
	u.DeletionLevel = rec.DeletionLevel
	u.AnonymizedAt = rec.AnonymizedAt
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", u.ID).Msg("user anonymized")
	return nil
}

func (s *RetentionService) record(u *domain.User) domain.RetentionRecord {
	rec := domain.RetentionRecord{
		UserID:        u.ID,
		DeletionLevel: u.DeletionLevel,
		AnonymizedAt:  u.AnonymizedAt,
	}
	if u.DeletedAt != nil {
		rec.DeletedAt = *u.DeletedAt
	}
	return rec
}
