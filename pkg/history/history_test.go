package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docWithVersion(v int) domain.Document {
	doc := domain.NewDefaultDocument()
	doc.Version = v
	return doc
}

func TestEngine_UndoRedo(t *testing.T) {
	h := New()
	h.Save(docWithVersion(0), "Initial state")
	h.Save(docWithVersion(1), "one")
	h.Save(docWithVersion(2), "two")

	require.Equal(t, 2, h.Index())
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	snap, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 1, snap.Version)
	assert.Equal(t, "one", snap.Description)

	snap, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, 0, snap.Version)

	snap, ok = h.Undo()
	assert.False(t, ok, "undo at index 0 is a no-op")
	assert.Nil(t, snap)
	assert.Equal(t, 0, h.Index())

	snap, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, 1, snap.Version)

	h.Redo()
	_, ok = h.Redo()
	assert.False(t, ok, "redo at the end is a no-op")
	assert.Equal(t, 2, h.Index())
}

func TestEngine_SaveDiscardsRedoBranch(t *testing.T) {
	h := New()
	h.Save(docWithVersion(0), "a")
	h.Save(docWithVersion(1), "b")
	h.Save(docWithVersion(2), "c")
	h.Undo()
	h.Undo()

	h.Save(docWithVersion(3), "d")
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Index())
	assert.False(t, h.CanRedo())

	entries := h.Entries()
	assert.Equal(t, "a", entries[0].Description)
	assert.Equal(t, "d", entries[1].Description)
	assert.True(t, entries[1].Current)
}

func TestEngine_BoundedFIFO(t *testing.T) {
	h := New(WithLimit(5))
	for i := 0; i < 12; i++ {
		h.Save(docWithVersion(i), fmt.Sprintf("op %d", i))
		assert.LessOrEqual(t, h.Len(), 5)
		assert.Equal(t, h.Len()-1, h.Index())
	}

	entries := h.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, "op 7", entries[0].Description, "oldest entries are evicted first")
	assert.Equal(t, "op 11", entries[4].Description)

	for h.CanUndo() {
		h.Undo()
	}
	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, 7, cur.Version)
}

func TestEngine_SnapshotsAreIndependent(t *testing.T) {
	h := New()
	doc := domain.NewDefaultDocument()
	h.Save(doc, "initial")

	doc.Nodes[0].Data["title"] = "mutated after save"

	cur, _ := h.Current()
	assert.Equal(t, "Start", cur.Nodes[0].Title())

	cur.Nodes[0].Data["title"] = "mutated copy"
	again, _ := h.Current()
	assert.Equal(t, "Start", again.Nodes[0].Title())
}

func TestEngine_Reset(t *testing.T) {
	h := New()
	h.Save(docWithVersion(0), "a")
	h.Save(docWithVersion(1), "b")

	h.Reset(docWithVersion(5), "Clear history")
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Index())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestEngine_Clock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := New(WithClock(func() time.Time { return fixed }))
	snap := h.Save(docWithVersion(0), "a")
	assert.Equal(t, fixed, snap.Timestamp)
}

func TestDebouncer_RestartsAndFiresOnce(t *testing.T) {
	var mu sync.Mutex
	d := NewDebouncer(30 * time.Millisecond)
	var fired []string

	fire := func(gen uint64) {
		mu.Lock()
		defer mu.Unlock()
		if desc, ok := d.Take(gen); ok {
			fired = append(fired, desc)
		}
	}

	mu.Lock()
	d.Arm("first", fire)
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	d.Arm("second", fire)
	assert.True(t, d.Pending())
	mu.Unlock()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"second"}, fired)
	assert.False(t, d.Pending())
}

func TestDebouncer_CancelInvalidatesLateFire(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var captured uint64
	d.Arm("edit", func(gen uint64) {})
	captured = d.generation

	desc, ok := d.Cancel()
	require.True(t, ok)
	assert.Equal(t, "edit", desc)

	// A callback that was already running when Cancel happened.
	_, ok = d.Take(captured)
	assert.False(t, ok)

	_, ok = d.Cancel()
	assert.False(t, ok, "nothing pending after cancel")
}
