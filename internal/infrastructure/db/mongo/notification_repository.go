package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

const collectionNotifications = "notifications"

// NotificationLogRepository persists the audit trail of sent notifications.
type NotificationLogRepository struct {
	col *mongo.Collection
}

func NewNotificationLogRepository(db *mongo.Database) *NotificationLogRepository {
	return &NotificationLogRepository{col: db.Collection(collectionNotifications)}
}

func (r *NotificationLogRepository) Insert(ctx context.Context, entry *domain.NotificationLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, entry)
	return err
}

func (r *NotificationLogRepository) ListByReservation(ctx context.Context, reservationID string) ([]*domain.NotificationLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"reservation_id": reservationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.NotificationLogEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
