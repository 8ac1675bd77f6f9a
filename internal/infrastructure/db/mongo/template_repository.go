package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

const collectionTemplates = "email_templates"

// TemplateRepository implements ports.TemplateRepository using MongoDB.
// Templates are keyed by their identifier (the _id), so the historical
// unique-identifier constraint holds for free.
type TemplateRepository struct {
	col *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{col: db.Collection(collectionTemplates)}
}

// ListSystem returns every protected system template.
func (r *TemplateRepository) ListSystem(ctx context.Context) ([]*domain.NotificationTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"is_system": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.NotificationTemplate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByIdentifier retrieves a template by its unique identifier.
func (r *TemplateRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.NotificationTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.NotificationTemplate
	err := r.col.FindOne(ctx, bson.M{"_id": identifier}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Upsert inserts or replaces a template (used by the seed step).
func (r *TemplateRepository) Upsert(ctx context.Context, t *domain.NotificationTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.Identifier}, t, options.Replace().SetUpsert(true))
	return err
}
