package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a companion-app user profile. Authentication lives in a separate
// service; here we only need the profile fields the sync and adaptation
// flows read.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"` // unique

	// SelectedGymID is the user's currently active gym. Nil means the user
	// trains "globally" with no gym-specific equipment scoping.
	SelectedGymID *primitive.ObjectID `bson:"selectedGymId,omitempty" json:"selectedGymId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
