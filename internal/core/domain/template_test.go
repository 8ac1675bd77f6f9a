package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestTemplate_Placeholders(t *testing.T) {
	tpl := &NotificationTemplate{
		Subject: "Votre formation {{formationTitle}} : {{statusLabel}}",
		Content: "Bonjour {{studentName}},\nstatut {{statusLabel}}.\n{{#if message}}Note : {{message}}{{/if}}",
	}

	want := []string{"formationTitle", "statusLabel", "studentName", "message"}
	if got := tpl.Placeholders(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestTemplate_Validate(t *testing.T) {
	tpl := &NotificationTemplate{
		Identifier: "reservation_status_confirmed_student",
		Subject:    "{{formationTitle}}",
		Content:    "Bonjour {{studentName}}",
		Variables:  []string{"formationTitle", "studentName"},
	}
	if err := tpl.Validate(); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}

	tpl.Content = "Bonjour {{studentName}}, votre dossier {{dossierRef}}"
	err := tpl.Validate()
	if !errors.Is(err, ErrUndeclaredPlaceholder) {
		t.Fatalf("want ErrUndeclaredPlaceholder, got %v", err)
	}
}

func TestEventTypeFor(t *testing.T) {
	if EventTypeFor(KindSession) != EventReservationStatusChange {
		t.Fatalf("unexpected event type for sessions")
	}
	if EventTypeFor(KindVehicleRental) != EventVehicleRentalStatus {
		t.Fatalf("unexpected event type for rentals")
	}
}
