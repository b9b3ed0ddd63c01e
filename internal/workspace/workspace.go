package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// flushTimeout bounds the detached save issued when switching notes.
const flushTimeout = 10 * time.Second

// Workspace tracks one user session's view of their notes: the cached
// list, the selected note id, and the edit buffer for the open note.
// Mutations are optimistic: the local state changes first and is rolled
// back from a snapshot when the server call fails.
type Workspace struct {
	api   API
	cache *Cache
	log   *slog.Logger

	mu       sync.Mutex
	notes    []StoredNote
	selected string
	buffer   *EditBuffer

	// flushWG lets tests wait for fire-and-forget saves.
	flushWG sync.WaitGroup
}

// New wires a workspace over the given API with an injected cache.
func New(api API, cache *Cache, log *slog.Logger) *Workspace {
	if cache == nil {
		cache = NewCache(0)
	}
	return &Workspace{api: api, cache: cache, log: log}
}

// Notes returns a copy of the current visible list.
func (w *Workspace) Notes() []StoredNote {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]StoredNote, len(w.notes))
	copy(out, w.notes)
	return out
}

// SelectedID returns the id of the currently open note, or "" for the
// empty state.
func (w *Workspace) SelectedID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// Buffer returns the edit buffer for the open note, or nil in the empty state.
func (w *Workspace) Buffer() *EditBuffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer
}

// Load fetches the note list (honoring the cache's staleness window) and
// applies the selection policy: keep the current selection if it still
// exists, else fall back to the most recently modified note, and if the
// account has no notes at all, create one and select it.
func (w *Workspace) Load(ctx context.Context) error {
	notes, fresh := w.cache.Get()
	if !fresh {
		fetched, err := w.api.ListNotes(ctx)
		if err != nil {
			return err
		}
		w.cache.Set(fetched)
		notes = fetched
	}

	if len(notes) == 0 {
		created, err := w.api.CreateNote(ctx, "", "")
		if err != nil {
			return err
		}
		w.cache.Invalidate()
		notes = []StoredNote{created}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = notes

	if idx := indexOf(notes, w.selected); idx >= 0 {
		w.buffer = NewEditBuffer(notes[idx])
		return nil
	}
	// Selected note is gone (or nothing was selected yet): the list is
	// ordered most-recently-updated first, so the head is the fallback.
	w.selected = notes[0].ID
	w.buffer = NewEditBuffer(notes[0])
	return nil
}

// Select switches the open note. Unsaved edits on the previous note are
// flushed fire-and-forget: the switch does not wait for the save, but the
// edits are not lost.
func (w *Workspace) Select(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buffer != nil && w.buffer.Dirty() {
		w.flushDetachedLocked(w.buffer)
	}

	w.selected = id
	if idx := indexOf(w.notes, id); idx >= 0 {
		w.buffer = NewEditBuffer(w.notes[idx])
	} else {
		w.buffer = nil
	}
}

// flushDetachedLocked saves a dirty buffer in the background. The buffer
// being saved is no longer the one displayed, so its result only needs to
// invalidate the cache.
func (w *Workspace) flushDetachedLocked(buf *EditBuffer) {
	title, content := buf.Patch()
	id := buf.NoteID
	w.flushWG.Add(1)
	go func() {
		defer w.flushWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if _, err := w.api.UpdateNote(ctx, id, title, content); err != nil {
			w.log.Warn("background save failed", "note_id", id, "error", err)
			return
		}
		w.cache.Invalidate()
	}()
}

// WaitFlush blocks until all detached saves have completed. Test hook.
func (w *Workspace) WaitFlush() { w.flushWG.Wait() }

// SetTitle updates the open note's buffered title.
func (w *Workspace) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buffer != nil {
		w.buffer.Title = title
	}
}

// SetContent updates the open note's buffered content.
func (w *Workspace) SetContent(content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buffer != nil {
		w.buffer.Content = content
	}
}

// Flush saves the open note's buffer if and only if it differs from the
// last known server values. Called on blur of the edit field or an
// explicit save action.
func (w *Workspace) Flush(ctx context.Context) error {
	w.mu.Lock()
	buf := w.buffer
	if buf == nil || !buf.Dirty() {
		w.mu.Unlock()
		return nil
	}
	title, content := buf.Patch()
	id := buf.NoteID
	w.mu.Unlock()

	updated, err := w.api.UpdateNote(ctx, id, title, content)
	if err != nil {
		return err
	}
	w.cache.Invalidate()

	w.mu.Lock()
	defer w.mu.Unlock()
	if idx := indexOf(w.notes, id); idx >= 0 {
		w.notes[idx] = updated
	}
	if w.buffer != nil && w.buffer.NoteID == id {
		w.buffer.Rebase(updated)
	}
	return nil
}

// Create makes a new note server-side, prepends it to the visible list
// and selects it.
func (w *Workspace) Create(ctx context.Context) (StoredNote, error) {
	created, err := w.api.CreateNote(ctx, "", "")
	if err != nil {
		return StoredNote{}, err
	}
	w.cache.Invalidate()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = append([]StoredNote{created}, w.notes...)
	w.selected = created.ID
	w.buffer = NewEditBuffer(created)
	return created, nil
}

// Delete removes the note optimistically: it disappears from the visible
// list and a replacement selection is chosen before the server call. On
// failure the snapshot taken at mutation start is restored and the error
// is returned.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	w.mu.Lock()
	idx := indexOf(w.notes, id)
	if idx < 0 {
		w.mu.Unlock()
		return nil
	}

	// Rollback snapshot.
	prevNotes := make([]StoredNote, len(w.notes))
	copy(prevNotes, w.notes)
	prevSelected := w.selected
	prevBuffer := w.buffer

	w.notes = append(w.notes[:idx], w.notes[idx+1:]...)
	if w.selected == id {
		w.selected = replacementAfterDelete(w.notes, idx)
		if ridx := indexOf(w.notes, w.selected); ridx >= 0 {
			w.buffer = NewEditBuffer(w.notes[ridx])
		} else {
			w.buffer = nil
		}
	}
	w.mu.Unlock()

	if err := w.api.DeleteNote(ctx, id); err != nil {
		w.mu.Lock()
		w.notes = prevNotes
		w.selected = prevSelected
		w.buffer = prevBuffer
		w.mu.Unlock()
		return err
	}

	w.cache.Invalidate()
	return nil
}

// Summarize runs the summarize action for the open note. A failed
// summarization comes back in the outcome and never touches the buffer.
func (w *Workspace) Summarize(ctx context.Context) (SummarizeOutcome, error) {
	w.mu.Lock()
	id := w.selected
	w.mu.Unlock()
	if id == "" {
		msg := "no note selected"
		return SummarizeOutcome{ErrorMessage: &msg}, nil
	}
	return w.api.SummarizeNote(ctx, id)
}

// replacementAfterDelete picks the new selection given the list with the
// note already removed and the index it occupied: the note that was
// adjacent after it, else adjacent before it, else the first note, else
// the empty state.
func replacementAfterDelete(notes []StoredNote, deletedIdx int) string {
	if len(notes) == 0 {
		return ""
	}
	if deletedIdx < len(notes) {
		return notes[deletedIdx].ID
	}
	return notes[deletedIdx-1].ID
}

func indexOf(notes []StoredNote, id string) int {
	if id == "" {
		return -1
	}
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}
