package repository

import (
	"alcyxob/fitness-companion/internal/domain" // Import our defined domain models
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TemplatePlan is the precomputed result of reconciling the local template
// set against a remote answer: which templates to insert, which to replace
// in place, and which local IDs to delete. Computing the plan first, then
// applying it as one batch, keeps the reconciliation logic testable without
// a database.
type TemplatePlan struct {
	Additions []domain.Template
	Updates   []domain.Template
	Deletions []string // local template IDs absent from the remote answer
	Unchanged int      // templates matched by content, no write needed
}

// IsEmpty reports whether applying the plan would change nothing. Unchanged
// templates need no writes, so a plan carrying only those is empty.
func (p *TemplatePlan) IsEmpty() bool {
	return len(p.Additions) == 0 && len(p.Updates) == 0 && len(p.Deletions) == 0
}

// Applied is the number of templates the plan leaves in the store.
func (p *TemplatePlan) Applied() int {
	return len(p.Additions) + len(p.Updates) + p.Unchanged
}

// TemplateRepository is the local template store, scoped by (user, gym).
// Both ApplyPlan and ReplaceScope must be atomic: either the whole batch
// commits or none of it does.
type TemplateRepository interface {
	// ListByOwner returns the templates for (userID, gymID), gymID nil
	// meaning the global scope. Order is stable (day of week, then name).
	ListByOwner(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) ([]domain.Template, error)

	// ApplyPlan commits a reconciliation plan as a single batch.
	ApplyPlan(ctx context.Context, plan *TemplatePlan) error

	// ReplaceScope deletes every template for (userID, gymID) and inserts
	// the given ones, as a single batch. Used by gym adaptation, which
	// fully replaces the target gym's program.
	ReplaceScope(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID, templates []domain.Template) error

	// DeleteScope removes every template for (userID, gymID). Used when a
	// gym is deleted.
	DeleteScope(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) error
}

// GymRepository is the registry of a user's gyms and their equipment sets.
type GymRepository interface {
	Create(ctx context.Context, gym *domain.Gym) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Gym, error)
	Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error // ensure the user owns the gym
}

// UserRepository reads and updates user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetSelectedGym(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) error
}

// CatalogRepository exposes the read-only master exercise catalog.
type CatalogRepository interface {
	AllExercises(ctx context.Context) ([]domain.CatalogExercise, error)
}
