// internal/domain/template.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template represents one scheduled workout day for a user at a gym.
// Its ID is a string instead of an ObjectID: templates mirrored from the
// remote generator carry the server-assigned ID so that resyncs stay
// idempotent; templates produced by gym adaptation get a locally generated
// UUID.
type Template struct {
	ID           string              `bson:"_id" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	GymID        *primitive.ObjectID `bson:"gymId,omitempty" json:"gymId,omitempty"` // nil = global, not tied to a gym
	Name         string              `bson:"name" json:"name"`
	MuscleFocus  string              `bson:"muscleFocus,omitempty" json:"muscleFocus,omitempty"` // e.g., "Push", "Pull", "Legs"
	DayOfWeek    *int                `bson:"dayOfWeek,omitempty" json:"dayOfWeek,omitempty"`     // 1 (Mon) - 7 (Sun)
	DurationMins *int                `bson:"durationMins,omitempty" json:"durationMins,omitempty"`
	WarmUp       string              `bson:"warmUp,omitempty" json:"warmUp,omitempty"`

	// Exercises are embedded: they live and die with their template, which
	// gives us cascade delete for free and keeps a template replace atomic
	// at the document level.
	Exercises []TemplateExercise `bson:"exercises" json:"exercises"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TemplateExercise is one exercise entry within a template.
type TemplateExercise struct {
	ExerciseKey       string   `bson:"exerciseKey" json:"exerciseKey"` // catalog identity
	Name              string   `bson:"name" json:"name"`
	OrderIndex        int      `bson:"orderIndex" json:"orderIndex"` // 0-based display/execution order, unique within the template
	Sets              int      `bson:"sets" json:"sets"`
	Reps              string   `bson:"reps" json:"reps"` // free-form, supports ranges like "8-12"
	WeightKg          *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RequiredEquipment []string `bson:"requiredEquipment" json:"requiredEquipment"`
	Muscles           []string `bson:"muscles" json:"muscles"` // primary first
	Notes             string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PrimaryMuscle returns the first listed muscle, the one substitution
// ranking cares most about.
func (e *TemplateExercise) PrimaryMuscle() string {
	if len(e.Muscles) == 0 {
		return ""
	}
	return e.Muscles[0]
}
