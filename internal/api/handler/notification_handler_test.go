package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// stubReservationService implements ports.ReservationService; tests set only
// the hooks they exercise.
type stubReservationService struct {
	getFn func(ctx context.Context, id, actorRole, actorUserID string) (*domain.Reservation, error)
}

func (s *stubReservationService) Create(context.Context, ports.CreateReservationInput) (*domain.Reservation, error) {
	return nil, errors.New("not implemented")
}

func (s *stubReservationService) Get(ctx context.Context, id, actorRole, actorUserID string) (*domain.Reservation, error) {
	return s.getFn(ctx, id, actorRole, actorUserID)
}

func (s *stubReservationService) List(context.Context, ports.ListReservationsFilter) ([]*domain.Reservation, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubReservationService) ChangeStatus(context.Context, ports.ChangeStatusInput) (*ports.ChangeStatusResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubReservationService) Track(context.Context, string) (*domain.Reservation, error) {
	return nil, errors.New("not implemented")
}

func (s *stubReservationService) ListValidTransitions(domain.ReservationKind, domain.ReservationStatus) []ports.TransitionOption {
	return nil
}

func (s *stubReservationService) ListStatuses(domain.ReservationKind) []ports.StatusInfo {
	return nil
}

func (s *stubReservationService) AssignVehicle(context.Context, ports.AssignVehicleInput) (*domain.Reservation, error) {
	return nil, errors.New("not implemented")
}

type stubNotificationLogs struct {
	entries []*domain.NotificationLogEntry
}

func (s *stubNotificationLogs) Insert(_ context.Context, entry *domain.NotificationLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubNotificationLogs) ListByReservation(_ context.Context, reservationID string) ([]*domain.NotificationLogEntry, error) {
	var out []*domain.NotificationLogEntry
	for _, e := range s.entries {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newNotificationContext(id string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations/"+id+"/notifications", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("role", domain.RoleAdmin)
	c.Set("user_id", "admin_1")
	return c, rec
}

func TestNotificationHandler_ListByReservation(t *testing.T) {
	service := &stubReservationService{
		getFn: func(_ context.Context, id, _, _ string) (*domain.Reservation, error) {
			return &domain.Reservation{ID: id, Kind: domain.KindSession, Status: domain.StatusConfirmed}, nil
		},
	}
	logs := &stubNotificationLogs{}
	_ = logs.Insert(context.Background(), &domain.NotificationLogEntry{
		ReservationID:      "res_1",
		TemplateIdentifier: "reservation_status_confirmed_student",
		TargetRole:         domain.RoleStudent,
		RecipientEmail:     "jean.dupont@example.com",
		Status:             domain.StatusConfirmed,
		Delivered:          true,
		SentAt:             time.Now().UTC(),
	})
	_ = logs.Insert(context.Background(), &domain.NotificationLogEntry{
		ReservationID:      "res_2",
		TemplateIdentifier: "reservation_status_cancelled_student",
		TargetRole:         domain.RoleStudent,
	})
	h := NewNotificationHandler(service, logs)

	c, rec := newNotificationContext("res_1")
	if err := h.ListByReservation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out []notificationLogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("want the reservation's own entries only, got %d", len(out))
	}
	if out[0].TemplateIdentifier != "reservation_status_confirmed_student" || !out[0].Delivered {
		t.Fatalf("unexpected entry: %+v", out[0])
	}
}

func TestNotificationHandler_ListByReservation_NotFound(t *testing.T) {
	service := &stubReservationService{
		getFn: func(context.Context, string, string, string) (*domain.Reservation, error) {
			return nil, domain.ErrReservationNotFound
		},
	}
	h := NewNotificationHandler(service, &stubNotificationLogs{})

	c, _ := newNotificationContext("res_missing")
	if err := h.ListByReservation(c); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("want ErrReservationNotFound, got %v", err)
	}
}

func TestNotificationHandler_ListByReservation_EmptyIsOK(t *testing.T) {
	service := &stubReservationService{
		getFn: func(_ context.Context, id, _, _ string) (*domain.Reservation, error) {
			return &domain.Reservation{ID: id}, nil
		},
	}
	h := NewNotificationHandler(service, &stubNotificationLogs{})

	c, rec := newNotificationContext("res_1")
	if err := h.ListByReservation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("want empty json array, got %q", body)
	}
}
