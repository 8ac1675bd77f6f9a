package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

type stubSender struct {
	mu    sync.Mutex
	sent  []domain.NotificationRequest
	errFn func(req domain.NotificationRequest) error
}

func (s *stubSender) Send(_ context.Context, req domain.NotificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	if s.errFn != nil {
		return s.errFn(req)
	}
	return nil
}

type stubDedup struct {
	mu        sync.Mutex
	seen      map[string]bool
	checkErr  error
	markErr   error
	markCalls int
}

func dedupKey(reservationID, status, role string, version int64) string {
	return fmt.Sprintf("%s|%s|%s|%d", reservationID, status, role, version)
}

func (s *stubDedup) IsDuplicate(_ context.Context, reservationID, status, role string, version int64) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[dedupKey(reservationID, status, role, version)], nil
}

func (s *stubDedup) Mark(_ context.Context, reservationID, status, role string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	if s.markErr != nil {
		return s.markErr
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	s.seen[dedupKey(reservationID, status, role, version)] = true
	return nil
}

type stubLogRepo struct {
	mu      sync.Mutex
	entries []*domain.NotificationLogEntry
	err     error
}

func (s *stubLogRepo) Insert(_ context.Context, entry *domain.NotificationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *stubLogRepo) ListByReservation(_ context.Context, reservationID string) ([]*domain.NotificationLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.NotificationLogEntry
	for _, e := range s.entries {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func testRequest(reservationID string, version int64) domain.NotificationRequest {
	return domain.NotificationRequest{
		ReservationID:      reservationID,
		TemplateIdentifier: "reservation_status_confirmed_student",
		EventType:          domain.EventReservationStatusChange,
		TargetRole:         domain.RoleStudent,
		RecipientEmail:     "jean.dupont@example.com",
		Status:             domain.StatusConfirmed,
		Version:            version,
		Variables:          map[string]string{"studentName": "Jean Dupont"},
	}
}

func newTestDispatcher(sender *stubSender, dedup *stubDedup, logRepo *stubLogRepo) *Dispatcher {
	return NewDispatcher(2, sender, dedup, logRepo, zerolog.Nop())
}

func TestDispatcher_Deliver_Success(t *testing.T) {
	sender := &stubSender{}
	dedup := &stubDedup{}
	logRepo := &stubLogRepo{}
	d := newTestDispatcher(sender, dedup, logRepo)

	d.deliver(context.Background(), 0, testRequest("res_1", 2))

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if dedup.markCalls != 1 {
		t.Fatalf("expected dedup mark before send, got %d calls", dedup.markCalls)
	}
	if len(logRepo.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(logRepo.entries))
	}
	entry := logRepo.entries[0]
	if !entry.Delivered || entry.Error != "" {
		t.Fatalf("expected delivered entry, got %+v", entry)
	}
	if entry.TemplateIdentifier != "reservation_status_confirmed_student" || entry.RecipientEmail != "jean.dupont@example.com" {
		t.Fatalf("audit entry did not carry request fields: %+v", entry)
	}
	if entry.SentAt.IsZero() {
		t.Fatalf("expected SentAt to be set")
	}
}

func TestDispatcher_Deliver_SkipsDuplicate(t *testing.T) {
	sender := &stubSender{}
	dedup := &stubDedup{}
	logRepo := &stubLogRepo{}
	d := newTestDispatcher(sender, dedup, logRepo)

	req := testRequest("res_1", 2)
	d.deliver(context.Background(), 0, req)
	d.deliver(context.Background(), 0, req)

	if len(sender.sent) != 1 {
		t.Fatalf("duplicate must be skipped, got %d sends", len(sender.sent))
	}
	if len(logRepo.entries) != 1 {
		t.Fatalf("duplicate must not be logged, got %d entries", len(logRepo.entries))
	}
}

func TestDispatcher_Deliver_ResendBypassesDedup(t *testing.T) {
	sender := &stubSender{}
	dedup := &stubDedup{}
	logRepo := &stubLogRepo{}
	d := newTestDispatcher(sender, dedup, logRepo)

	// Original post-transition send, then an explicit resend with the same
	// reservation, status, role and version.
	d.deliver(context.Background(), 0, testRequest("res_1", 2))
	resend := testRequest("res_1", 2)
	resend.Resend = true
	d.deliver(context.Background(), 0, resend)

	if len(sender.sent) != 2 {
		t.Fatalf("resend suppressed: sender received %d request(s), want 2", len(sender.sent))
	}
	if len(logRepo.entries) != 2 {
		t.Fatalf("resend must be logged too, got %d entries", len(logRepo.entries))
	}

	// A plain duplicate afterwards is still suppressed.
	d.deliver(context.Background(), 0, testRequest("res_1", 2))
	if len(sender.sent) != 2 {
		t.Fatalf("plain duplicate delivered after resend, got %d sends", len(sender.sent))
	}
}

func TestDispatcher_Deliver_NewVersionIsNotDuplicate(t *testing.T) {
	sender := &stubSender{}
	dedup := &stubDedup{}
	d := newTestDispatcher(sender, dedup, &stubLogRepo{})

	d.deliver(context.Background(), 0, testRequest("res_1", 2))
	d.deliver(context.Background(), 0, testRequest("res_1", 3))

	if len(sender.sent) != 2 {
		t.Fatalf("different versions must both deliver, got %d sends", len(sender.sent))
	}
}

func TestDispatcher_Deliver_DedupErrorStillDelivers(t *testing.T) {
	sender := &stubSender{}
	dedup := &stubDedup{checkErr: errors.New("redis down")}
	d := newTestDispatcher(sender, dedup, &stubLogRepo{})

	d.deliver(context.Background(), 0, testRequest("res_1", 2))

	if len(sender.sent) != 1 {
		t.Fatalf("dedup failure must not block delivery, got %d sends", len(sender.sent))
	}
}

func TestDispatcher_Deliver_SendFailureRecorded(t *testing.T) {
	sender := &stubSender{errFn: func(domain.NotificationRequest) error {
		return errors.New("mailer unreachable")
	}}
	logRepo := &stubLogRepo{}
	d := newTestDispatcher(sender, &stubDedup{}, logRepo)

	d.deliver(context.Background(), 0, testRequest("res_1", 2))

	if len(logRepo.entries) != 1 {
		t.Fatalf("failed send must still be logged, got %d entries", len(logRepo.entries))
	}
	entry := logRepo.entries[0]
	if entry.Delivered {
		t.Fatalf("entry must not be marked delivered")
	}
	if entry.Error != "mailer unreachable" {
		t.Fatalf("expected error recorded, got %q", entry.Error)
	}
}

func TestDispatcher_Deliver_LogFailureNonFatal(t *testing.T) {
	sender := &stubSender{}
	logRepo := &stubLogRepo{err: errors.New("mongo down")}
	d := newTestDispatcher(sender, &stubDedup{}, logRepo)

	// Must not panic; the send already happened and the audit write is best effort.
	d.deliver(context.Background(), 0, testRequest("res_1", 2))

	if len(sender.sent) != 1 {
		t.Fatalf("expected delivery despite audit failure, got %d sends", len(sender.sent))
	}
}

func TestDispatcher_ShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(4, &stubSender{}, &stubDedup{}, &stubLogRepo{}, zerolog.Nop())

	first := d.shardIndex("res_42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("res_42"); got != first {
			t.Fatalf("shard index must be stable, got %d then %d", first, got)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, &stubSender{}, &stubDedup{}, &stubLogRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_EnqueueDeliversThroughWorker(t *testing.T) {
	delivered := make(chan domain.NotificationRequest, 1)
	sender := &stubSender{errFn: func(req domain.NotificationRequest) error {
		delivered <- req
		return nil
	}}
	d := newTestDispatcher(sender, &stubDedup{}, &stubLogRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	req := testRequest("res_7", 1)
	d.Enqueue(req)

	got := <-delivered
	if got.ReservationID != "res_7" {
		t.Fatalf("unexpected request delivered: %+v", got)
	}
}
