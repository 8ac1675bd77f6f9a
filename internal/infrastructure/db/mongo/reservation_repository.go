package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

const collectionReservations = "reservations"

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(collectionReservations)}
}

// Create inserts a new reservation document.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if res.ID == "" {
		res.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, res)
	return err
}

// FindByID retrieves a reservation by id.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res domain.Reservation
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindByTrackingToken retrieves a rental reservation by its public token.
func (r *ReservationRepository) FindByTrackingToken(ctx context.Context, token string) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res domain.Reservation
	err := r.col.FindOne(ctx, bson.M{"tracking_token": token}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// List returns a page of reservations matching filter and the total count.
func (r *ReservationRepository) List(ctx context.Context, f ports.ListReservationsFilter) ([]*domain.Reservation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = string(f.Kind)
	}
	if f.UserID != "" {
		filter["subject.user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: f.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"subject.first_name": re},
			bson.M{"subject.last_name": re},
			bson.M{"subject.email": re},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	limit := int64(f.Limit)
	skip := int64(f.Page-1) * limit
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*domain.Reservation
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStatus atomically applies a transition: the filter carries the
// expected version, so a concurrent writer makes this a no-match and the
// caller gets ErrConcurrentModification instead of silently overwriting.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, upd ports.StatusUpdate) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	historyEntry := bson.M{
		"from":       string(current.Status),
		"status":     string(upd.NewStatus),
		"timestamp":  upd.Timestamp.UTC(),
		"actor_role": upd.ActorRole,
	}
	if upd.Notes != "" {
		historyEntry["notes"] = upd.Notes
	}

	filter := bson.M{"_id": id, "version": upd.ExpectedVersion}
	update := bson.M{
		"$set": bson.M{
			"status":     string(upd.NewStatus),
			"updated_at": upd.Timestamp.UTC(),
		},
		"$inc":  bson.M{"version": 1},
		"$push": bson.M{"status_history": historyEntry},
	}

	var updated domain.Reservation
	err = r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The document exists (loaded above) but the version moved.
			return nil, domain.ErrConcurrentModification
		}
		return nil, err
	}
	return &updated, nil
}

// AssignVehicle records the vehicle on a rental reservation under a version
// check, so a racing status change or competing assignment on the same
// reservation cannot be silently overwritten.
func (r *ReservationRepository) AssignVehicle(ctx context.Context, id, vehicleID, vehicleModel string, expectedVersion int64) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":     id,
		"kind":    string(domain.KindVehicleRental),
		"version": expectedVersion,
	}
	update := bson.M{
		"$set": bson.M{
			"rental.vehicle_id":    vehicleID,
			"rental.vehicle_model": vehicleModel,
			"updated_at":           time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	var updated domain.Reservation
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The document exists (loaded above) but the version moved.
			return nil, domain.ErrConcurrentModification
		}
		return nil, err
	}
	return &updated, nil
}

// UnassignVehicle backs an assignment out again. Best effort: the caller
// already decided the assignment lost its overlap re-check.
func (r *ReservationRepository) UnassignVehicle(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$unset": bson.M{
			"rental.vehicle_id":    "",
			"rental.vehicle_model": "",
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "kind": string(domain.KindVehicleRental)}, update)
	return err
}

// FindOverlappingRental returns an active rental holding vehicleID over a
// range overlapping [from, to], or nil when the vehicle is free. Cancelled
// and refunded rentals do not hold the vehicle.
func (r *ReservationRepository) FindOverlappingRental(ctx context.Context, vehicleID string, from, to time.Time, excludeID string) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"kind":              string(domain.KindVehicleRental),
		"rental.vehicle_id": vehicleID,
		"status": bson.M{"$nin": bson.A{
			string(domain.StatusCancelled),
			string(domain.StatusRefunded),
		}},
		"rental.start_date": bson.M{"$lte": to},
		"rental.end_date":   bson.M{"$gte": from},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	var res domain.Reservation
	err := r.col.FindOne(ctx, filter).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// EnsureIndexes creates the indexes backing the workflow queries.
func (r *ReservationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "subject.user_id", Value: 1}}},
		{Keys: bson.D{
			{Key: "rental.vehicle_id", Value: 1},
			{Key: "rental.start_date", Value: 1},
			{Key: "rental.end_date", Value: 1},
		}},
		{
			Keys:    bson.D{{Key: "tracking_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
