// internal/domain/gym.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gym is a named location with an associated equipment set. Templates are
// scoped by (user, gym); the equipment names are the matching key against
// TemplateExercise.RequiredEquipment.
type Gym struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Equipment []string           `bson:"equipment" json:"equipment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EquipmentSet returns the gym's equipment as a lowercased lookup set.
// Equipment names come from user input and the catalog; matching is
// case-insensitive.
func (g *Gym) EquipmentSet() map[string]bool {
	set := make(map[string]bool, len(g.Equipment))
	for _, name := range g.Equipment {
		set[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return set
}

// HasAllEquipment reports whether every name in required is available
// at this gym. An empty required list (bodyweight movement) is always
// satisfiable.
func HasAllEquipment(available map[string]bool, required []string) bool {
	for _, name := range required {
		if !available[strings.ToLower(strings.TrimSpace(name))] {
			return false
		}
	}
	return true
}
