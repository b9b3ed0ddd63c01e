// Package workspace is the client-side state layer used by tooling that
// drives the HTTP API as a user session would: it caches the note list,
// tracks the selected note, buffers in-flight edits, and applies
// optimistic mutations with rollback.
package workspace

import (
	"context"
	"time"
)

// StoredNote is the last known server-side state of a note. It is the
// persisted record, distinct from any locally buffered edits.
type StoredNote struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SummarizeOutcome mirrors the result union returned by the summarize
// action: exactly one of Summary or ErrorMessage is set.
type SummarizeOutcome struct {
	Summary      *string `json:"summary"`
	ErrorMessage *string `json:"errorMessage"`
}

// API is the remote surface the workspace drives. Implementations live in
// internal/clients/api; tests inject fakes.
type API interface {
	ListNotes(ctx context.Context) ([]StoredNote, error)
	CreateNote(ctx context.Context, title, content string) (StoredNote, error)
	UpdateNote(ctx context.Context, id string, title, content *string) (StoredNote, error)
	DeleteNote(ctx context.Context, id string) error
	SummarizeNote(ctx context.Context, id string) (SummarizeOutcome, error)
}
