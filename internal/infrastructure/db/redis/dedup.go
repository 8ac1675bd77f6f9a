package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker provides send-idempotency checks backed by Redis. The version
// in the key ties the guard to one committed transition: a retry of the same
// delivery is suppressed, a later re-transition to the same status is not.
// Key format: notif:<reservation_id>:<status>:<role>:<version>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this notification has already been sent.
func (d *DedupChecker) IsDuplicate(ctx context.Context, reservationID, status, role string, version int64) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(reservationID, status, role, version)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this notification has been sent (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, reservationID, status, role string, version int64) error {
	return d.client.Set(ctx, d.key(reservationID, status, role, version), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(reservationID, status, role string, version int64) string {
	return fmt.Sprintf("notif:%s:%s:%s:%d", reservationID, status, role, version)
}
