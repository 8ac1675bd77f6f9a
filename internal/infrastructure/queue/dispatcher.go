package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/api/metrics"
	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// DedupChecker abstracts the send-idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, reservationID, status, role string, version int64) (bool, error)
	Mark(ctx context.Context, reservationID, status, role string, version int64) error
}

// Dispatcher routes notification requests to a fixed set of workers using
// consistent hashing on the reservation id, guaranteeing per-reservation
// delivery ordering. Send failures are logged and recorded; the status
// transition that produced the request is already committed and is never
// affected.
type Dispatcher struct {
	workers []chan domain.NotificationRequest
	sender  ports.NotificationSender
	dedup   DedupChecker
	logRepo ports.NotificationLogRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(
	numWorkers int,
	sender ports.NotificationSender,
	dedup DedupChecker,
	logRepo ports.NotificationLogRepository,
	log zerolog.Logger,
) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.NotificationRequest, numWorkers),
		sender:  sender,
		dedup:   dedup,
		logRepo: logRepo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.NotificationRequest, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a request to the worker responsible for its reservation.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(req domain.NotificationRequest) {
	d.workers[d.shardIndex(req.ReservationID)] <- req
}

// shardIndex maps a reservation id deterministically to a worker index.
func (d *Dispatcher) shardIndex(reservationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(reservationID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.NotificationRequest) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, req)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, req domain.NotificationRequest) {
	// Idempotency check: silently skip duplicates. Explicit resends carry
	// the same coordinates as the original send, so they bypass the check.
	if req.Resend {
		metrics.NotificationsDedupTotal.WithLabelValues("bypass").Inc()
	} else {
		isDup, err := d.dedup.IsDuplicate(ctx, req.ReservationID, string(req.Status), req.TargetRole, req.Version)
		if err != nil {
			d.log.Warn().Err(err).Str("reservation_id", req.ReservationID).Msg("dedup check failed, delivering anyway")
		} else if isDup {
			d.log.Debug().
				Str("reservation_id", req.ReservationID).
				Str("template", req.TemplateIdentifier).
				Msg("duplicate notification skipped")
			metrics.NotificationsDedupTotal.WithLabelValues("hit").Inc()
			return
		}
		metrics.NotificationsDedupTotal.WithLabelValues("miss").Inc()
	}

	// Mark before sending so a crash-retry cannot double-send.
	if markErr := d.dedup.Mark(ctx, req.ReservationID, string(req.Status), req.TargetRole, req.Version); markErr != nil {
		d.log.Warn().Err(markErr).Str("reservation_id", req.ReservationID).Msg("failed to set dedup key")
	}

	entry := &domain.NotificationLogEntry{
		ReservationID:      req.ReservationID,
		TemplateIdentifier: req.TemplateIdentifier,
		TargetRole:         req.TargetRole,
		RecipientEmail:     req.RecipientEmail,
		Status:             req.Status,
		Variables:          req.Variables,
		SentAt:             time.Now().UTC(),
	}

	if err := d.sender.Send(ctx, req); err != nil {
		entry.Error = err.Error()
		metrics.NotificationsFailedTotal.WithLabelValues("send_error").Inc()
		d.log.Error().Err(err).
			Str("reservation_id", req.ReservationID).
			Str("template", req.TemplateIdentifier).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
	} else {
		entry.Delivered = true
		metrics.NotificationsSentTotal.WithLabelValues(string(req.EventType), req.TargetRole).Inc()
	}

	// Audit trail write is non-fatal.
	if err := d.logRepo.Insert(ctx, entry); err != nil {
		d.log.Warn().Err(err).Str("reservation_id", req.ReservationID).Msg("failed to record notification")
	}
}
