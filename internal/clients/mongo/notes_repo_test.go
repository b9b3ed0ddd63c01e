package mongo

import (
	"errors"
	"testing"

	"note-sage/internal/services/notes"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestNotesRepo_Structure(t *testing.T) {
	note := &notes.Note{
		ID:       bson.NewObjectID(),
		AuthorID: bson.NewObjectID(),
		Title:    "Test Note",
		Content:  "Test content",
	}

	// Validate note structure
	assert.NotNil(t, note)
	assert.False(t, note.ID.IsZero())
	assert.False(t, note.AuthorID.IsZero())
	assert.Equal(t, "Test Note", note.Title)
	assert.Equal(t, "Test content", note.Content)
}

func TestNotesRepo_PartialUpdate(t *testing.T) {
	title := "Only Title Updated"

	update := notes.UpdateNote{
		Title: &title,
		// Content intentionally omitted
	}

	assert.NotNil(t, update.Title)
	assert.Nil(t, update.Content)
	assert.Equal(t, "Only Title Updated", *update.Title)
}

func TestTranslateNotFound(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no documents maps to domain error", mongo.ErrNoDocuments, notes.ErrNoteNotFound},
		{"other errors pass through", errors.New("socket closed"), nil},
		{"nil passes through", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateNotFound(tt.in)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				return
			}
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestNoteEvent_Structure(t *testing.T) {
	note := &notes.Note{
		ID:       bson.NewObjectID(),
		AuthorID: bson.NewObjectID(),
		Title:    "Event Note",
		Content:  "Event content",
	}

	event := notes.NoteEvent{
		Type: "created",
		Note: note,
	}

	assert.Equal(t, "created", event.Type)
	assert.NotNil(t, event.Note)
	assert.Equal(t, note.ID, event.Note.ID)
}
