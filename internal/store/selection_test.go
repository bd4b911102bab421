package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection()

	sel.Toggle("a")
	sel.Toggle("b")
	assert.Equal(t, []string{"a", "b"}, sel.Selected())

	// Toggling again removes.
	sel.Toggle("a")
	assert.Equal(t, []string{"b"}, sel.Selected())
}

func TestSelectionSelectAllAndClear(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("old")

	sel.SelectAll([]string{"a", "b", "b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, sel.Selected())

	sel.Clear()
	assert.Empty(t, sel.Selected())
}

func TestSelectionRemove(t *testing.T) {
	sel := NewSelection()
	sel.SelectAll([]string{"a", "b", "c"})
	sel.SetProcessing([]string{"a", "b", "c"})

	sel.Remove("b")
	assert.Equal(t, []string{"a", "c"}, sel.Selected())

	snapshot := sel.ProcessingSnapshot()
	_, ok := snapshot["b"]
	assert.False(t, ok)

	// Removing an id that was never selected is a no-op.
	sel.Remove("zz")
	assert.Equal(t, []string{"a", "c"}, sel.Selected())
}

func TestSelectionProcessingLifecycle(t *testing.T) {
	sel := NewSelection()
	sel.SetProcessing([]string{"a", "b"})

	snapshot := sel.ProcessingSnapshot()
	assert.Equal(t, ProcessingActive, snapshot["a"])
	assert.Equal(t, ProcessingActive, snapshot["b"])

	sel.MarkSuccess("a")
	sel.MarkError("b")

	snapshot = sel.ProcessingSnapshot()
	assert.Equal(t, ProcessingSuccess, snapshot["a"])
	assert.Equal(t, ProcessingError, snapshot["b"])

	// A new run resets previous outcomes.
	sel.SetProcessing([]string{"c"})
	snapshot = sel.ProcessingSnapshot()
	assert.Len(t, snapshot, 1)
	assert.Equal(t, ProcessingActive, snapshot["c"])
}
