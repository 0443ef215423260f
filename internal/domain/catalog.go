// internal/domain/catalog.go
package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogExercise is one entry in the read-only master exercise catalog.
// The catalog is reference data; the companion app only ever reads it.
type CatalogExercise struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key               string             `bson:"key" json:"key"` // stable catalog identity, e.g. "dumbbell-press"
	Name              string             `bson:"name" json:"name"`
	Category          string             `bson:"category,omitempty" json:"category,omitempty"`
	PrimaryMuscles    []string           `bson:"primaryMuscles" json:"primaryMuscles"`
	SecondaryMuscles  []string           `bson:"secondaryMuscles,omitempty" json:"secondaryMuscles,omitempty"`
	RequiredEquipment []string           `bson:"requiredEquipment" json:"requiredEquipment"`
	Difficulty        string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // "Novice", "Medium", "Advanced"
	IsCompound        bool               `bson:"isCompound" json:"isCompound"`
}

// IsBodyweight reports whether the exercise needs no external load: either
// no equipment at all, or only a "bodyweight" marker entry.
func (c *CatalogExercise) IsBodyweight() bool {
	if len(c.RequiredEquipment) == 0 {
		return true
	}
	for _, name := range c.RequiredEquipment {
		if !strings.EqualFold(strings.TrimSpace(name), "bodyweight") {
			return false
		}
	}
	return true
}
