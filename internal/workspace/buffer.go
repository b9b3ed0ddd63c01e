package workspace

// EditBuffer holds in-flight edits for one note, separate from the cached
// list. The base fields track the last known server values so Dirty can
// tell a real edit from a spurious save.
type EditBuffer struct {
	NoteID  string
	Title   string
	Content string

	baseTitle   string
	baseContent string
}

// NewEditBuffer opens a buffer seeded from the persisted note.
func NewEditBuffer(note StoredNote) *EditBuffer {
	return &EditBuffer{
		NoteID:      note.ID,
		Title:       note.Title,
		Content:     note.Content,
		baseTitle:   note.Title,
		baseContent: note.Content,
	}
}

// Dirty reports whether the buffer differs from the last known server state.
func (b *EditBuffer) Dirty() bool {
	return b.Title != b.baseTitle || b.Content != b.baseContent
}

// Rebase resets the base to the given persisted state, typically after a
// successful save returned the updated record.
func (b *EditBuffer) Rebase(note StoredNote) {
	b.baseTitle = note.Title
	b.baseContent = note.Content
}

// Patch returns the changed fields as a partial update; unchanged fields
// come back nil so the server leaves them alone.
func (b *EditBuffer) Patch() (title, content *string) {
	if b.Title != b.baseTitle {
		t := b.Title
		title = &t
	}
	if b.Content != b.baseContent {
		c := b.Content
		content = &c
	}
	return title, content
}
