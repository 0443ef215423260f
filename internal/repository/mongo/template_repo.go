// internal/repository/mongo/template_repo.go
package mongo

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const templateCollectionName = "templates"

// mongoTemplateRepository implements repository.TemplateRepository.
// Exercises are embedded in the template document, so a per-template
// ReplaceOne already swaps the whole exercise collection atomically; the
// session transaction makes the cross-template batch atomic too.
type mongoTemplateRepository struct {
	collection *mongo.Collection
	client     *mongo.Client
}

// NewMongoTemplateRepository creates a new Template repository backed by MongoDB.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
		client:     db.Client(),
	}
}

// scopeFilter builds the (user, gym) partition filter. gymID nil selects
// the global scope: documents without a gymId field.
func scopeFilter(userID primitive.ObjectID, gymID *primitive.ObjectID) bson.M {
	filter := bson.M{"userId": userID}
	if gymID != nil {
		filter["gymId"] = *gymID
	} else {
		filter["gymId"] = bson.M{"$exists": false}
	}
	return filter
}

// ListByOwner retrieves all templates for (userID, gymID) in stable order.
func (r *mongoTemplateRepository) ListByOwner(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) ([]domain.Template, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "dayOfWeek", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, scopeFilter(userID, gymID), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.Template
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	// Empty slice when nothing is stored, not an error.
	return templates, nil
}

// ApplyPlan commits a reconciliation plan as one transaction: deletions
// first, then in-place replaces, then inserts.
func (r *mongoTemplateRepository) ApplyPlan(ctx context.Context, plan *repository.TemplatePlan) error {
	if plan == nil || plan.IsEmpty() {
		return nil
	}

	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if len(plan.Deletions) > 0 {
			if _, err := r.collection.DeleteMany(sc, bson.M{"_id": bson.M{"$in": plan.Deletions}}); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for i := range plan.Updates {
			tpl := plan.Updates[i]
			tpl.UpdatedAt = now
			// Full-document replace: scalar fields updated, embedded
			// exercise collection swapped wholesale.
			result, err := r.collection.ReplaceOne(sc, bson.M{"_id": tpl.ID}, tpl)
			if err != nil {
				return err
			}
			if result.MatchedCount == 0 {
				return repository.ErrUpdateFailed
			}
		}

		for i := range plan.Additions {
			tpl := plan.Additions[i]
			tpl.CreatedAt = now
			tpl.UpdatedAt = now
			if _, err := r.collection.InsertOne(sc, tpl); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceScope wipes the (userID, gymID) partition and inserts the given
// templates in one transaction.
func (r *mongoTemplateRepository) ReplaceScope(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID, templates []domain.Template) error {
	if userID == primitive.NilObjectID {
		return errors.New("user ID is required")
	}

	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.collection.DeleteMany(sc, scopeFilter(userID, gymID)); err != nil {
			return err
		}
		if len(templates) == 0 {
			return nil
		}

		now := time.Now().UTC()
		docs := make([]interface{}, 0, len(templates))
		for i := range templates {
			tpl := templates[i]
			tpl.CreatedAt = now
			tpl.UpdatedAt = now
			docs = append(docs, tpl)
		}
		_, err := r.collection.InsertMany(sc, docs)
		return err
	})
}

// DeleteScope removes every template for (userID, gymID).
func (r *mongoTemplateRepository) DeleteScope(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) error {
	if userID == primitive.NilObjectID {
		return errors.New("user ID is required")
	}
	_, err := r.collection.DeleteMany(ctx, scopeFilter(userID, gymID))
	return err
}

// EnsureTemplateIndexes creates necessary indexes. Call during startup.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Compound index for the main query pattern: listing a user's
			// templates for one gym scope.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "gymId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
