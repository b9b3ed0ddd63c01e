package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note represents a user's note in the system
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	AuthorID  bson.ObjectID `bson:"author_id" json:"author_id" example:"683cdb8aa96ad71e8e075bd0"`
	Title     string        `bson:"title" json:"title" example:"Shopping"`
	Content   string        `bson:"content" json:"content" example:"Milk, eggs, bread"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// UpdateNote represents the fields that can be updated in a note.
// A nil field means "leave unchanged", not "clear".
type UpdateNote struct {
	Title   *string `json:"title,omitempty" example:"Updated Shopping"`
	Content *string `json:"content,omitempty" example:"Milk, eggs, bread, coffee"`
}

// NoteSnippet is the projection used by the summarize action:
// only the fields the prompt needs, never the full document.
type NoteSnippet struct {
	Title   string `bson:"title" json:"title"`
	Content string `bson:"content" json:"content"`
}

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"` // "created", "updated", "deleted"
	Note *Note  `json:"note"`
}
