package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory API implementation backing the workspace tests.
type fakeAPI struct {
	mu      sync.Mutex
	notes   []StoredNote
	nextID  int
	listErr error
	saveErr error
	delErr  error

	updates []string
	deletes []string
}

func (f *fakeAPI) ListNotes(_ context.Context) ([]StoredNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]StoredNote, len(f.notes))
	copy(out, f.notes)
	return out, nil
}

func (f *fakeAPI) CreateNote(_ context.Context, title, content string) (StoredNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if title == "" {
		title = "New Note"
	}
	n := StoredNote{
		ID:        fmt.Sprintf("n%d", f.nextID),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.notes = append([]StoredNote{n}, f.notes...)
	return n, nil
}

func (f *fakeAPI) UpdateNote(_ context.Context, id string, title, content *string) (StoredNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if f.saveErr != nil {
		return StoredNote{}, f.saveErr
	}
	for i := range f.notes {
		if f.notes[i].ID == id {
			if title != nil {
				f.notes[i].Title = *title
			}
			if content != nil {
				f.notes[i].Content = *content
			}
			f.notes[i].UpdatedAt = time.Now()
			return f.notes[i], nil
		}
	}
	return StoredNote{}, errors.New("note not found or you don't have permission")
}

func (f *fakeAPI) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.delErr != nil {
		return f.delErr
	}
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return errors.New("note not found or you don't have permission")
}

func (f *fakeAPI) SummarizeNote(_ context.Context, _ string) (SummarizeOutcome, error) {
	s := "summary"
	return SummarizeOutcome{Summary: &s}, nil
}

func seeded(ids ...string) *fakeAPI {
	f := &fakeAPI{}
	for _, id := range ids {
		f.notes = append(f.notes, StoredNote{ID: id, Title: "t-" + id, Content: "c-" + id})
	}
	return f
}

func newWS(f *fakeAPI) *Workspace {
	return New(f, NewCache(time.Minute), slog.Default())
}

func TestLoadSelectsMostRecent(t *testing.T) {
	f := seeded("a", "b", "c") // list order is most-recently-updated first
	ws := newWS(f)

	require.NoError(t, ws.Load(context.Background()))
	assert.Equal(t, "a", ws.SelectedID())
	require.NotNil(t, ws.Buffer())
	assert.Equal(t, "t-a", ws.Buffer().Title)
}

func TestLoadCreatesWhenEmpty(t *testing.T) {
	f := &fakeAPI{}
	ws := newWS(f)

	require.NoError(t, ws.Load(context.Background()))
	require.Len(t, ws.Notes(), 1)
	assert.Equal(t, "New Note", ws.Notes()[0].Title)
	assert.Equal(t, ws.Notes()[0].ID, ws.SelectedID())
}

func TestLoadFallsBackWhenSelectionGone(t *testing.T) {
	f := seeded("a", "b")
	ws := newWS(f)
	require.NoError(t, ws.Load(context.Background()))
	ws.Select("b")

	// Another session deletes "b"; the next load must fall back.
	f.mu.Lock()
	f.notes = f.notes[:1]
	f.mu.Unlock()
	ws.cache.Invalidate()

	require.NoError(t, ws.Load(context.Background()))
	assert.Equal(t, "a", ws.SelectedID())
}

func TestFlushOnlyWhenDirty(t *testing.T) {
	f := seeded("a")
	ws := newWS(f)
	require.NoError(t, ws.Load(context.Background()))

	require.NoError(t, ws.Flush(context.Background()))
	assert.Empty(t, f.updates, "clean buffer must not hit the server")

	ws.SetTitle("edited")
	require.NoError(t, ws.Flush(context.Background()))
	assert.Equal(t, []string{"a"}, f.updates)

	// Rebase after save: flushing again is a no-op.
	require.NoError(t, ws.Flush(context.Background()))
	assert.Equal(t, []string{"a"}, f.updates)
}

func TestSelectFlushesPreviousBuffer(t *testing.T) {
	f := seeded("a", "b")
	ws := newWS(f)
	require.NoError(t, ws.Load(context.Background()))

	ws.SetContent("unsaved edit")
	ws.Select("b")
	assert.Equal(t, "b", ws.SelectedID(), "switch is not blocked on the save")

	ws.WaitFlush()
	require.Equal(t, []string{"a"}, f.updates)
	assert.Equal(t, "unsaved edit", f.notes[indexOf(f.notes, "a")].Content)
}

func TestSelectCleanBufferNoFlush(t *testing.T) {
	f := seeded("a", "b")
	ws := newWS(f)
	require.NoError(t, ws.Load(context.Background()))

	ws.Select("b")
	ws.WaitFlush()
	assert.Empty(t, f.updates)
}

func TestDeleteReplacementSelection(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		deleteID string
		want     string
	}{
		{"middle picks adjacent after", []string{"a", "b", "c"}, "b", "c"},
		{"last picks adjacent before", []string{"a", "b", "c"}, "c", "b"},
		{"first picks new first", []string{"a", "b", "c"}, "a", "b"},
		{"only note empties selection", []string{"a"}, "a", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := seeded(tc.ids...)
			ws := newWS(f)
			require.NoError(t, ws.Load(context.Background()))
			ws.Select(tc.deleteID)

			require.NoError(t, ws.Delete(context.Background(), tc.deleteID))
			assert.Equal(t, tc.want, ws.SelectedID())
		})
	}
}

func TestDeleteRollbackOnFailure(t *testing.T) {
	f := seeded("a", "b", "c")
	f.delErr = errors.New("boom")
	ws := newWS(f)
	require.NoError(t, ws.Load(context.Background()))
	ws.Select("b")

	err := ws.Delete(context.Background(), "b")
	require.Error(t, err)

	// Prior list and selection restored.
	require.Len(t, ws.Notes(), 3)
	assert.Equal(t, "b", ws.SelectedID())
	require.NotNil(t, ws.Buffer())
	assert.Equal(t, "b", ws.Buffer().NoteID)
}

func TestDeleteIsOptimistic(t *testing.T) {
	f := seeded("a", "b")
	ws := newWS(f)
	require.NoError(t, ws.Load(context.Background()))

	require.NoError(t, ws.Delete(context.Background(), "a"))
	ids := make([]string, 0, len(ws.Notes()))
	for _, n := range ws.Notes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"b"}, ids)
	assert.Equal(t, []string{"a"}, f.deletes)
}

func TestCachedListSkipsRefetch(t *testing.T) {
	f := seeded("a")
	ws := newWS(f)
	require.NoError(t, ws.Load(context.Background()))

	// A second load inside the staleness window must not hit the API
	// even if the server state changed underneath.
	f.mu.Lock()
	f.listErr = errors.New("should not be called")
	f.mu.Unlock()

	require.NoError(t, ws.Load(context.Background()))
}

func TestEditBufferPatch(t *testing.T) {
	buf := NewEditBuffer(StoredNote{ID: "a", Title: "t", Content: "c"})
	assert.False(t, buf.Dirty())

	buf.Title = "t2"
	title, content := buf.Patch()
	require.NotNil(t, title)
	assert.Equal(t, "t2", *title)
	assert.Nil(t, content, "unchanged field stays nil")

	buf.Rebase(StoredNote{Title: "t2", Content: "c"})
	assert.False(t, buf.Dirty())
}

func TestCacheStaleness(t *testing.T) {
	c := NewCache(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	_, fresh := c.Get()
	assert.False(t, fresh, "empty cache is never fresh")

	c.Set([]StoredNote{{ID: "a"}})
	got, fresh := c.Get()
	assert.True(t, fresh)
	require.Len(t, got, 1)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, fresh = c.Get()
	assert.False(t, fresh, "past the window the cache is stale")

	c.now = func() time.Time { return base }
	c.Invalidate()
	_, fresh = c.Get()
	assert.False(t, fresh)
}
