package notes

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for notes repository operations.
// Every operation that takes a note id also takes the author id and
// must treat a foreign note exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	ListByAuthor(ctx context.Context, authorID bson.ObjectID) ([]*Note, error)
	Update(ctx context.Context, authorID, noteID bson.ObjectID, patch UpdateNote) (*Note, error)
	Delete(ctx context.Context, authorID, noteID bson.ObjectID) error
	GetForSummary(ctx context.Context, authorID, noteID bson.ObjectID) (*NoteSnippet, error)
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}

// Summarizer produces a short synopsis of note content via the model provider.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}
