package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionSessions = "sessions"

// SessionRepository covers the one session write the workflow performs:
// enrolling a confirmed student as a participant.
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(collectionSessions)}
}

// AddParticipant registers the user on the session. $addToSet keeps the
// operation idempotent when a reservation is re-confirmed.
func (r *SessionRepository) AddParticipant(ctx context.Context, sessionID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$addToSet": bson.M{"participants": userID}},
		options.Update().SetUpsert(true),
	)
	return err
}
