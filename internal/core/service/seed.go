package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// sessionVariables is the bag the dispatcher fills for session reservations.
// Seeded templates may use any subset of it.
var sessionVariables = []string{
	"studentName", "reservationId", "submissionDate", "statusLabel",
	"formationTitle", "sessionDate", "message",
}

// rentalVariables is the bag for vehicle-rental reservations.
var rentalVariables = []string{
	"studentName", "reservationId", "submissionDate", "statusLabel",
	"rentalId", "vehicleModel", "examCenter", "rentalDates", "trackingUrl",
	"message",
}

// SeedSystemTemplates upserts the default notification template for every
// notified (status, role) pair of both reservation kinds. Existing documents
// are overwritten so label changes ship with the binary; admin-edited copies
// live under their own identifiers and are not touched.
func SeedSystemTemplates(ctx context.Context, repo ports.TemplateRepository, log zerolog.Logger) error {
	var count int
	for _, kind := range []domain.ReservationKind{domain.KindSession, domain.KindVehicleRental} {
		for _, status := range domain.StatusesFor(kind) {
			for _, role := range domain.NotifiedRoles(status) {
				t := defaultTemplate(kind, status, role)
				if err := t.Validate(); err != nil {
					return fmt.Errorf("seed templates: %w", err)
				}
				if err := repo.Upsert(ctx, t); err != nil {
					return fmt.Errorf("seed templates: upsert %s: %w", t.Identifier, err)
				}
				count++
			}
		}
	}

	log.Info().Int("templates", count).Msg("system templates seeded")
	return nil
}

func defaultTemplate(kind domain.ReservationKind, status domain.ReservationStatus, role string) *domain.NotificationTemplate {
	eventType := domain.EventTypeFor(kind)
	label := status.Label()

	prefix := "reservation_status"
	variables := sessionVariables
	if kind == domain.KindVehicleRental {
		prefix = "vehicle_rental_status"
		variables = rentalVariables
	}

	t := &domain.NotificationTemplate{
		Identifier: fmt.Sprintf("%s_%s_%s", prefix, status, role),
		Name:       fmt.Sprintf("%s (%s)", label, role),
		EventType:  eventType,
		Status:     status,
		TargetRole: role,
		Variables:  variables,
		IsSystem:   true,
	}

	if role == domain.RoleAdmin {
		t.Subject = fmt.Sprintf("[Admin] Réservation {{reservationId}} : %s", label)
		t.Content = "La réservation {{reservationId}} de {{studentName}} est passée au statut " +
			"{{statusLabel}} le {{submissionDate}}.{{#if message}} Note : {{message}}{{/if}}"
		return t
	}

	if kind == domain.KindVehicleRental {
		t.Subject = fmt.Sprintf("Votre location de véhicule : %s", label)
		t.Content = "Bonjour {{studentName}},\n\n" +
			"Votre réservation de véhicule {{vehicleModel}} pour le centre d'examen {{examCenter}} " +
			"({{rentalDates}}) est maintenant au statut {{statusLabel}}.\n" +
			"Suivez votre dossier : {{trackingUrl}}\n" +
			"{{#if message}}Message de l'équipe : {{message}}{{/if}}"
		return t
	}

	t.Subject = fmt.Sprintf("Votre formation {{formationTitle}} : %s", label)
	t.Content = "Bonjour {{studentName}},\n\n" +
		"Votre réservation pour la session du {{sessionDate}} de la formation {{formationTitle}} " +
		"est maintenant au statut {{statusLabel}}.\n" +
		"{{#if message}}Message de l'équipe : {{message}}{{/if}}"
	return t
}
