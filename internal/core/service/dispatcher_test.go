package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubTemplateRepo struct {
	templates map[string]*domain.NotificationTemplate
}

func newStubTemplateRepo() *stubTemplateRepo {
	return &stubTemplateRepo{templates: make(map[string]*domain.NotificationTemplate)}
}

func (r *stubTemplateRepo) ListSystem(_ context.Context) ([]*domain.NotificationTemplate, error) {
	var out []*domain.NotificationTemplate
	for _, t := range r.templates {
		if t.IsSystem {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubTemplateRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.NotificationTemplate, error) {
	t, ok := r.templates[identifier]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTemplateRepo) Upsert(_ context.Context, t *domain.NotificationTemplate) error {
	clone := *t
	r.templates[t.Identifier] = &clone
	return nil
}

type stubEnqueuer struct {
	requests []domain.NotificationRequest
}

func (q *stubEnqueuer) Enqueue(req domain.NotificationRequest) {
	q.requests = append(q.requests, req)
}

func systemTemplate(eventType domain.NotificationEventType, status domain.ReservationStatus, role string) *domain.NotificationTemplate {
	prefix := "reservation_status"
	if eventType == domain.EventVehicleRentalStatus {
		prefix = "vehicle_rental_status"
	}
	return &domain.NotificationTemplate{
		Identifier: prefix + "_" + string(status) + "_" + role,
		Name:       string(status) + " (" + role + ")",
		EventType:  eventType,
		Status:     status,
		TargetRole: role,
		Subject:    "Statut : {{statusLabel}}",
		Content:    "Bonjour {{studentName}}",
		Variables:  []string{"statusLabel", "studentName"},
		IsSystem:   true,
	}
}

func sessionReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:     "res_1",
		Kind:   domain.KindSession,
		Status: domain.StatusConfirmed,
		Subject: domain.Subject{
			UserID: "user_1", FirstName: "Jean", LastName: "Dupont", Email: "jean.dupont@example.com",
		},
		Session: &domain.SessionRef{
			SessionID:      "sess_42",
			FormationTitle: "Formation Taxi Initiale",
			StartDate:      time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC),
		},
		Version:   2,
		CreatedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func TestLoadTemplateCatalog(t *testing.T) {
	repo := newStubTemplateRepo()
	_ = repo.Upsert(context.Background(), systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent))
	_ = repo.Upsert(context.Background(), systemTemplate(domain.EventVehicleRentalStatus, domain.StatusConfirmed, domain.RoleStudent))

	catalog, err := LoadTemplateCatalog(context.Background(), repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadTemplateCatalog returned error: %v", err)
	}
	if catalog.Size() != 2 {
		t.Fatalf("want 2 templates, got %d", catalog.Size())
	}

	tpl, ok := catalog.Resolve(domain.KindSession, domain.StatusConfirmed, domain.RoleStudent)
	if !ok || tpl.Identifier != "reservation_status_confirmed_student" {
		t.Fatalf("session resolve failed: %v %v", tpl, ok)
	}
	tpl, ok = catalog.Resolve(domain.KindVehicleRental, domain.StatusConfirmed, domain.RoleStudent)
	if !ok || tpl.Identifier != "vehicle_rental_status_confirmed_student" {
		t.Fatalf("rental resolve failed: %v %v", tpl, ok)
	}
	if _, ok := catalog.Resolve(domain.KindSession, domain.StatusCancelled, domain.RoleAdmin); ok {
		t.Fatalf("resolve for an unseeded state should miss")
	}
}

func TestLoadTemplateCatalog_RejectsInvalidTemplate(t *testing.T) {
	repo := newStubTemplateRepo()
	bad := systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent)
	bad.Content = "Bonjour {{studentName}}, dossier {{dossierRef}}"
	_ = repo.Upsert(context.Background(), bad)

	if _, err := LoadTemplateCatalog(context.Background(), repo, zerolog.Nop()); err == nil {
		t.Fatalf("catalog accepted a template with an undeclared placeholder")
	}
}

func TestLoadTemplateCatalog_RejectsDuplicateKey(t *testing.T) {
	repo := newStubTemplateRepo()
	a := systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent)
	b := systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent)
	b.Identifier = "reservation_status_confirmed_student_v2"
	_ = repo.Upsert(context.Background(), a)
	_ = repo.Upsert(context.Background(), b)

	if _, err := LoadTemplateCatalog(context.Background(), repo, zerolog.Nop()); err == nil {
		t.Fatalf("catalog accepted two templates for the same (event, status, role)")
	}
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

func newDispatcherFixture(t *testing.T, templates ...*domain.NotificationTemplate) (*NotificationDispatcher, *stubEnqueuer) {
	t.Helper()
	repo := newStubTemplateRepo()
	for _, tpl := range templates {
		_ = repo.Upsert(context.Background(), tpl)
	}
	catalog, err := LoadTemplateCatalog(context.Background(), repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	queue := &stubEnqueuer{}
	d := NewNotificationDispatcher(catalog, queue, "admin@merelformation.local", "https://app.merelformation.fr", zerolog.Nop())
	return d, queue
}

func TestDispatch_StudentOnly(t *testing.T) {
	d, queue := newDispatcherFixture(t,
		systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent))

	r := sessionReservation()
	notified, warnings := d.Dispatch(context.Background(), r, domain.StatusSubmitted, "")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if len(notified) != 1 || notified[0] != "reservation_status_confirmed_student" {
		t.Fatalf("unexpected notified list: %v", notified)
	}

	if len(queue.requests) != 1 {
		t.Fatalf("want 1 queued request, got %d", len(queue.requests))
	}
	req := queue.requests[0]
	if req.RecipientEmail != "jean.dupont@example.com" || req.TargetRole != domain.RoleStudent {
		t.Fatalf("wrong recipient: %+v", req)
	}
	if req.Version != 2 || req.Status != domain.StatusConfirmed {
		t.Fatalf("request missing dedup coordinates: %+v", req)
	}
	if req.Variables["studentName"] != "Jean Dupont" {
		t.Fatalf("studentName missing: %v", req.Variables)
	}
	if req.Variables["formationTitle"] != "Formation Taxi Initiale" || req.Variables["sessionDate"] != "05/10/2026" {
		t.Fatalf("session variables missing: %v", req.Variables)
	}
	if req.Variables["statusLabel"] != "Inscription confirmée" {
		t.Fatalf("statusLabel missing: %v", req.Variables)
	}
}

func TestDispatch_PlainDispatchIsNotFlaggedAsResend(t *testing.T) {
	d, queue := newDispatcherFixture(t,
		systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent))

	d.Dispatch(context.Background(), sessionReservation(), domain.StatusSubmitted, "")
	if len(queue.requests) != 1 || queue.requests[0].Resend {
		t.Fatalf("plain dispatch must not set the resend flag: %+v", queue.requests)
	}
}

func TestResend_FlagsQueuedRequests(t *testing.T) {
	d, queue := newDispatcherFixture(t,
		systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent))

	r := sessionReservation()
	notified, warnings := d.Resend(context.Background(), r, "Relance")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if len(notified) != 1 {
		t.Fatalf("want 1 notification, got %v", notified)
	}

	req := queue.requests[0]
	if !req.Resend {
		t.Fatalf("resend flag not set on queued request: %+v", req)
	}
	if req.Variables["message"] != "Relance" {
		t.Fatalf("custom message missing: %v", req.Variables)
	}
	if req.Status != r.Status || req.Version != r.Version {
		t.Fatalf("resend must reuse the current coordinates: %+v", req)
	}
}

func TestDispatch_AdminFanOutOnCancellation(t *testing.T) {
	d, queue := newDispatcherFixture(t,
		systemTemplate(domain.EventReservationStatusChange, domain.StatusCancelled, domain.RoleStudent),
		systemTemplate(domain.EventReservationStatusChange, domain.StatusCancelled, domain.RoleAdmin))

	r := sessionReservation()
	r.Status = domain.StatusCancelled
	notified, warnings := d.Dispatch(context.Background(), r, domain.StatusConfirmed, "")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if len(notified) != 2 {
		t.Fatalf("cancellation should notify student and admin, got %v", notified)
	}

	var adminReq *domain.NotificationRequest
	for i := range queue.requests {
		if queue.requests[i].TargetRole == domain.RoleAdmin {
			adminReq = &queue.requests[i]
		}
	}
	if adminReq == nil || adminReq.RecipientEmail != "admin@merelformation.local" {
		t.Fatalf("admin copy not routed to the configured address: %+v", queue.requests)
	}
}

func TestDispatch_MissingTemplateIsAWarning(t *testing.T) {
	d, queue := newDispatcherFixture(t) // empty catalog

	notified, warnings := d.Dispatch(context.Background(), sessionReservation(), domain.StatusSubmitted, "")
	if len(notified) != 0 {
		t.Fatalf("nothing should be queued: %v", notified)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Reason, "no system template") {
		t.Fatalf("want a missing-template warning, got %+v", warnings)
	}
	if len(queue.requests) != 0 {
		t.Fatalf("queue should stay empty")
	}
}

func TestDispatch_MissingRecipientIsAWarning(t *testing.T) {
	d, queue := newDispatcherFixture(t,
		systemTemplate(domain.EventReservationStatusChange, domain.StatusConfirmed, domain.RoleStudent))

	r := sessionReservation()
	r.Subject.Email = ""
	_, warnings := d.Dispatch(context.Background(), r, domain.StatusSubmitted, "")
	if len(warnings) != 1 || warnings[0].Reason != "no recipient address" {
		t.Fatalf("want a no-recipient warning, got %+v", warnings)
	}
	if len(queue.requests) != 0 {
		t.Fatalf("queue should stay empty")
	}
}

func TestDispatch_RentalVariables(t *testing.T) {
	d, queue := newDispatcherFixture(t,
		systemTemplate(domain.EventVehicleRentalStatus, domain.StatusConfirmed, domain.RoleStudent))

	r := &domain.Reservation{
		ID:     "res_9",
		Kind:   domain.KindVehicleRental,
		Status: domain.StatusConfirmed,
		Subject: domain.Subject{
			UserID: "user_1", FirstName: "Jean", LastName: "Dupont", Email: "jean.dupont@example.com",
		},
		Rental: &domain.RentalRef{
			VehicleModel: "Toyota Corolla Taxi",
			ExamCenter:   "CMA Rennes",
			StartDate:    time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2026, 11, 4, 18, 0, 0, 0, time.UTC),
		},
		TrackingToken: "track_abcd1234",
		Version:       1,
		CreatedAt:     time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
	}

	_, warnings := d.Dispatch(context.Background(), r, domain.StatusSubmitted, "Votre véhicule vous attend")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	vars := queue.requests[0].Variables
	if vars["vehicleModel"] != "Toyota Corolla Taxi" || vars["examCenter"] != "CMA Rennes" {
		t.Fatalf("rental variables missing: %v", vars)
	}
	if vars["rentalDates"] != "02/11/2026 - 04/11/2026" {
		t.Fatalf("wrong date range: %q", vars["rentalDates"])
	}
	if vars["trackingUrl"] != "https://app.merelformation.fr/track/track_abcd1234" {
		t.Fatalf("wrong tracking url: %q", vars["trackingUrl"])
	}
	if vars["message"] != "Votre véhicule vous attend" {
		t.Fatalf("custom message lost: %v", vars)
	}
}

// ---------------------------------------------------------------------------
// Seed
// ---------------------------------------------------------------------------

func TestSeedSystemTemplates_FullCoverage(t *testing.T) {
	repo := newStubTemplateRepo()
	if err := SeedSystemTemplates(context.Background(), repo, zerolog.Nop()); err != nil {
		t.Fatalf("SeedSystemTemplates returned error: %v", err)
	}

	catalog, err := LoadTemplateCatalog(context.Background(), repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("seeded catalog does not load: %v", err)
	}

	// Every notified (kind, status, role) pair must resolve.
	for _, kind := range []domain.ReservationKind{domain.KindSession, domain.KindVehicleRental} {
		for _, status := range domain.StatusesFor(kind) {
			for _, role := range domain.NotifiedRoles(status) {
				if _, ok := catalog.Resolve(kind, status, role); !ok {
					t.Errorf("no seeded template for %s/%s/%s", kind, status, role)
				}
			}
		}
	}
}
