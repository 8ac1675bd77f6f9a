package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// SessionEnroller registers a confirmed student as a session participant.
type SessionEnroller interface {
	AddParticipant(ctx context.Context, sessionID, userID string) error
}

// ReservationService orchestrates the reservation lifecycle: it owns the
// transition decision and hands committed transitions to the dispatcher.
type ReservationService struct {
	repo       ports.ReservationRepository
	users      ports.UserRepository
	dispatcher ports.NotificationDispatcher
	enroller   SessionEnroller
	policy     domain.TransitionPolicy
	logger     zerolog.Logger
}

func NewReservationService(
	repo ports.ReservationRepository,
	users ports.UserRepository,
	dispatcher ports.NotificationDispatcher,
	enroller SessionEnroller,
	policy domain.TransitionPolicy,
	logger zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		repo:       repo,
		users:      users,
		dispatcher: dispatcher,
		enroller:   enroller,
		policy:     policy,
		logger:     logger,
	}
}

// Create opens a new reservation in the initial submitted status and emits
// the submission notifications.
func (s *ReservationService) Create(ctx context.Context, input ports.CreateReservationInput) (*domain.Reservation, error) {
	now := time.Now().UTC()
	r := &domain.Reservation{
		Kind:      input.Kind,
		Status:    domain.StatusSubmitted,
		Notes:     input.Notes,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusSubmitted, Timestamp: now},
		},
	}

	switch input.Kind {
	case domain.KindSession:
		if input.Session == nil {
			return nil, fmt.Errorf("create reservation: %w", domain.ErrInvalidTargetState)
		}
		r.Session = &domain.SessionRef{
			SessionID:      input.Session.SessionID,
			FormationTitle: input.Session.FormationTitle,
			StartDate:      input.Session.StartDate,
		}
	case domain.KindVehicleRental:
		if input.Rental == nil {
			return nil, fmt.Errorf("create reservation: %w", domain.ErrInvalidTargetState)
		}
		r.Rental = &domain.RentalRef{
			ExamCenter: input.Rental.ExamCenter,
			StartDate:  input.Rental.StartDate,
			EndDate:    input.Rental.EndDate,
		}
		r.TrackingToken = generateTrackingToken()
	default:
		return nil, fmt.Errorf("create reservation: unknown kind %q", input.Kind)
	}

	owner, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	r.Subject = domain.Subject{
		UserID:    owner.ID,
		FirstName: owner.FirstName,
		LastName:  owner.LastName,
		Email:     owner.Email,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Error().Err(err).Str("kind", string(input.Kind)).Msg("failed to create reservation")
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("kind", string(r.Kind)).
		Str("user_id", input.UserID).
		Msg("reservation created")

	// Submission fan-out (student + admin). Non-fatal.
	_, warnings := s.dispatcher.Dispatch(ctx, r, "", "")
	for _, w := range warnings {
		s.logger.Warn().Str("reservation_id", r.ID).Str("role", w.TargetRole).Str("reason", w.Reason).Msg("submission notification skipped")
	}
	return r, nil
}

// Get retrieves a reservation. Students only see their own.
func (s *ReservationService) Get(ctx context.Context, id string, actorRole, actorUserID string) (*domain.Reservation, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole == domain.RoleStudent && r.Subject.UserID != actorUserID {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

// Track resolves a rental reservation from its public tracking token. No
// authentication: the token itself is the capability.
func (s *ReservationService) Track(ctx context.Context, token string) (*domain.Reservation, error) {
	return s.repo.FindByTrackingToken(ctx, token)
}

// List returns a page of reservations. The handler scopes the filter to the
// actor before calling.
func (s *ReservationService) List(ctx context.Context, filter ports.ListReservationsFilter) ([]*domain.Reservation, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// ChangeStatus runs one transition end to end:
//
//  1. Load the reservation.
//  2. Validate the transition against the registry.
//  3. Commit the new status with a version check.
//  4. Dispatch notifications; failures become warnings, the commit stands.
func (s *ReservationService) ChangeStatus(ctx context.Context, input ports.ChangeStatusInput) (*ports.ChangeStatusResult, error) {
	r, err := s.repo.FindByID(ctx, input.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}
	prior := r.Status

	if input.ResendNotification {
		if input.NewStatus != "" && input.NewStatus != prior {
			return nil, fmt.Errorf("change status: resend requires the current status, got %q: %w", input.NewStatus, domain.ErrTransitionNotAllowed)
		}
		notified, warnings := s.dispatcher.Resend(ctx, r, input.CustomMessage)
		return &ports.ChangeStatusResult{Reservation: r, PriorStatus: prior, Notified: notified, Warnings: warnings}, nil
	}

	if err := domain.ValidateTransition(r.Kind, prior, input.NewStatus, s.policy); err != nil {
		return nil, fmt.Errorf("change status from %s to %s: %w", prior, input.NewStatus, err)
	}

	expected := input.ExpectedVersion
	if expected == 0 {
		// Caller opted out of the optimistic check: last write wins against
		// the version we just read.
		expected = r.Version
	}

	updated, err := s.repo.UpdateStatus(ctx, r.ID, ports.StatusUpdate{
		NewStatus:       input.NewStatus,
		ExpectedVersion: expected,
		ActorRole:       input.ActorRole,
		Notes:           input.CustomMessage,
		Timestamp:       time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	s.logger.Info().
		Str("reservation_id", updated.ID).
		Str("kind", string(updated.Kind)).
		Str("from", string(prior)).
		Str("to", string(updated.Status)).
		Str("actor_role", input.ActorRole).
		Msg("status changed")

	// The transition is committed; everything past this point is best effort.
	if updated.Status == domain.StatusConfirmed && updated.Kind == domain.KindSession && s.enroller != nil {
		if err := s.enroller.AddParticipant(ctx, updated.Session.SessionID, updated.Subject.UserID); err != nil {
			s.logger.Warn().Err(err).Str("reservation_id", updated.ID).Msg("participant enrolment failed")
		}
	}

	notified, warnings := s.dispatcher.Dispatch(ctx, updated, prior, input.CustomMessage)
	for _, w := range warnings {
		s.logger.Warn().
			Str("reservation_id", updated.ID).
			Str("role", w.TargetRole).
			Str("reason", w.Reason).
			Msg("notification not dispatched")
	}

	return &ports.ChangeStatusResult{
		Reservation: updated,
		PriorStatus: prior,
		Notified:    notified,
		Warnings:    warnings,
	}, nil
}

// ListValidTransitions returns the dropdown options for the active policy.
func (s *ReservationService) ListValidTransitions(kind domain.ReservationKind, current domain.ReservationStatus) []ports.TransitionOption {
	allowed := domain.AllowedTransitions(kind, current, s.policy)
	out := make([]ports.TransitionOption, 0, len(allowed))
	for _, st := range allowed {
		out = append(out, ports.TransitionOption{Value: st, Label: st.Label(), Color: st.Color()})
	}
	return out
}

// ListStatuses describes the full workflow for a kind, for the status menu.
func (s *ReservationService) ListStatuses(kind domain.ReservationKind) []ports.StatusInfo {
	statuses := domain.StatusesFor(kind)
	out := make([]ports.StatusInfo, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, ports.StatusInfo{
			Value:              st,
			Label:              st.Label(),
			Phase:              st.Phase(),
			Color:              st.Color(),
			Terminal:           st.IsTerminal(),
			AllowedTransitions: domain.AllowedTransitions(kind, st, s.policy),
		})
	}
	return out
}

// AssignVehicle attaches a vehicle to a rental reservation after checking
// the vehicle is free for the reservation's date range. A losing race at the
// store surfaces as domain.ErrResourceConflict, which is retryable: the
// caller may pick another vehicle.
func (s *ReservationService) AssignVehicle(ctx context.Context, input ports.AssignVehicleInput) (*domain.Reservation, error) {
	r, err := s.repo.FindByID(ctx, input.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("assign vehicle: %w", err)
	}
	if r.Kind != domain.KindVehicleRental || r.Rental == nil {
		return nil, fmt.Errorf("assign vehicle: reservation %s is not a vehicle rental: %w", r.ID, domain.ErrInvalidTargetState)
	}
	if r.Status.IsTerminal() {
		return nil, fmt.Errorf("assign vehicle: %w", domain.ErrTerminalState)
	}

	conflicting, err := s.repo.FindOverlappingRental(ctx, input.VehicleID, r.Rental.StartDate, r.Rental.EndDate, r.ID)
	if err != nil {
		return nil, fmt.Errorf("assign vehicle: %w", err)
	}
	if conflicting != nil {
		s.logger.Info().
			Str("reservation_id", r.ID).
			Str("vehicle_id", input.VehicleID).
			Str("conflicting_reservation", conflicting.ID).
			Msg("vehicle assignment rejected: overlapping booking")
		return nil, domain.ErrResourceConflict
	}

	updated, err := s.repo.AssignVehicle(ctx, r.ID, input.VehicleID, input.VehicleModel, r.Version)
	if err != nil {
		return nil, fmt.Errorf("assign vehicle: %w", err)
	}

	// Re-check after the write: a racing assignment on another reservation
	// may have grabbed the vehicle between the pre-check and the commit. The
	// loser backs out, so at most one assignment survives.
	conflicting, err = s.repo.FindOverlappingRental(ctx, input.VehicleID, r.Rental.StartDate, r.Rental.EndDate, r.ID)
	if err != nil {
		return nil, fmt.Errorf("assign vehicle: %w", err)
	}
	if conflicting != nil {
		if unErr := s.repo.UnassignVehicle(ctx, r.ID); unErr != nil {
			s.logger.Error().Err(unErr).Str("reservation_id", r.ID).Msg("failed to back out vehicle assignment")
		}
		s.logger.Info().
			Str("reservation_id", r.ID).
			Str("vehicle_id", input.VehicleID).
			Str("conflicting_reservation", conflicting.ID).
			Msg("vehicle assignment lost the overlap re-check")
		return nil, domain.ErrResourceConflict
	}

	s.logger.Info().
		Str("reservation_id", updated.ID).
		Str("vehicle_id", input.VehicleID).
		Msg("vehicle assigned")
	return updated, nil
}

// generateTrackingToken returns a public token for the rental tracking page,
// in the format track_<16 hex chars>.
func generateTrackingToken() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("track_%016x", time.Now().UnixNano())
	}
	return fmt.Sprintf("track_%x", b)
}
