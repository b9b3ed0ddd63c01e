package notes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"note-sage/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Defaults applied when a create request omits a field.
const (
	DefaultTitle   = "New Note"
	DefaultContent = ""
)

// Service handles notes business logic
type Service struct {
	repo       Repository
	bus        Bus
	summarizer Summarizer
	log        *slog.Logger
}

// NewService creates a new notes service
func NewService(repo Repository, bus Bus, summarizer Summarizer, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bus:        bus,
		summarizer: summarizer,
		log:        log,
	}
}

// CreateNoteRequest represents a note creation request.
// Both fields are optional; omitted ones get defaults.
type CreateNoteRequest struct {
	Title   string `json:"title" example:"Shopping"`
	Content string `json:"content" example:"Milk, eggs, bread"`
}

// UpdateNoteRequest represents a note update request
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty" example:"Updated Shopping"`
	Content *string `json:"content,omitempty" example:"Milk, eggs, bread, coffee"`
}

// NoteResponse represents a single note response
type NoteResponse struct {
	Note *Note `json:"note"`
}

// ListNotesResponse represents a list of notes response,
// ordered by updated_at descending.
type ListNotesResponse struct {
	Notes []*Note `json:"notes"`
}

// Create inserts a new note, defaulting empty fields
func (s *Service) Create(ctx context.Context, authorID bson.ObjectID, req CreateNoteRequest) (*NoteResponse, error) {
	title := sanitize.Clean(req.Title)
	if title == "" {
		title = DefaultTitle
	}

	now := time.Now()
	note := &Note{
		ID:        bson.NewObjectID(),
		AuthorID:  authorID,
		Title:     title,
		Content:   sanitize.Clean(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "author_id", authorID.Hex())
		return nil, ErrCreateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "created",
		Note: note,
	})

	return &NoteResponse{Note: note}, nil
}

// List retrieves all notes for a user, most recently modified first
func (s *Service) List(ctx context.Context, authorID bson.ObjectID) (*ListNotesResponse, error) {
	notesList, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "author_id", authorID.Hex())
		return nil, ErrListNotes
	}

	if notesList == nil {
		notesList = []*Note{}
	}

	return &ListNotesResponse{Notes: notesList}, nil
}

// sanitizedUpdateNote creates an UpdateNote with sanitized title and content
func sanitizedUpdateNote(req UpdateNoteRequest) UpdateNote {
	patch := UpdateNote(req)

	if patch.Title != nil {
		sanitized := sanitize.Clean(*patch.Title)
		patch.Title = &sanitized
	}
	if patch.Content != nil {
		sanitized := sanitize.Clean(*patch.Content)
		patch.Content = &sanitized
	}

	return patch
}

// Update applies a partial update to a note belonging to the user.
// Omitted fields keep their previous values; updated_at is refreshed.
func (s *Service) Update(ctx context.Context, authorID, noteID bson.ObjectID, req UpdateNoteRequest) (*NoteResponse, error) {
	patch := sanitizedUpdateNote(req)

	updatedNote, err := s.repo.Update(ctx, authorID, noteID, patch)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for update", "author_id", authorID.Hex(), "note_id", noteID.Hex())
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "author_id", authorID.Hex(), "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "updated",
		Note: updatedNote,
	})

	return &NoteResponse{Note: updatedNote}, nil
}

// Delete removes a note belonging to the user. Deleting an absent or
// foreign id reports ErrNoteNotFound; the operation never crashes on it.
func (s *Service) Delete(ctx context.Context, authorID, noteID bson.ObjectID) error {
	if err := s.repo.Delete(ctx, authorID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for delete", "author_id", authorID.Hex(), "note_id", noteID.Hex())
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "author_id", authorID.Hex(), "note_id", noteID.Hex())
		return ErrDeleteNote
	}

	// Broadcast deletion event with minimal note data
	deletedNote := &Note{
		ID:       noteID,
		AuthorID: authorID,
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "deleted",
		Note: deletedNote,
	})

	return nil
}
