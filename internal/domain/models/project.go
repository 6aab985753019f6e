// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a unit of tracked work owned by exactly one user.
//
// NOTE:
//   - OwnerID is written once at creation and never updated.
//   - The owner is never stored in Participants; ownership is derived from
//     OwnerID alone.
//   - Participants has set semantics (writes use $addToSet / $pull).
type Project struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	NameCI       string               `bson:"name_ci" json:"-"`
	Description  string               `bson:"description" json:"description"`
	Status       ProjectStatus        `bson:"status" json:"status"`
	OwnerID      primitive.ObjectID   `bson:"owner_id" json:"owner_id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Info         map[string]any       `bson:"info" json:"info"`
	Progress     []ProgressEntry      `bson:"progress,omitempty" json:"progress,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProgressEntry is one append-only progress note on a project.
type ProgressEntry struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
