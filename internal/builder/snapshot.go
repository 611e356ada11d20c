package builder

import (
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// historySnapshot returns the most recent pre-stage snapshot recorded for
// the given stage index, or nil when the stage has never been visited.
func (c *Context) historySnapshot(index int) *deck.State {
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Cursor == index {
			return c.History[i].Snapshot
		}
	}
	return nil
}

// Rewind restores the deck to the snapshot taken before the history entry
// at the given position and moves the cursor back to that stage, so the
// next RunStage call re-enters it. Out-of-range positions are a no-op.
// History itself is append-only; rewinding never discards entries.
func (c *Context) Rewind(historyIndex int) bool {
	if historyIndex < 0 || historyIndex >= len(c.History) {
		return false
	}

	entry := c.History[historyIndex]
	c.Deck = entry.Snapshot.Clone()
	c.Cursor = entry.Cursor
	c.LastVisibleCursor = entry.Cursor
	c.Snapshot = entry.Snapshot

	c.logger.Debug("rewound build", "stage", entry.Key, "cursor", entry.Cursor)
	return true
}

// RewindToKey rewinds to the most recent history entry recorded for the
// given stage key. Unknown keys are a no-op.
func (c *Context) RewindToKey(key string) bool {
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Key == key {
			return c.Rewind(i)
		}
	}
	return false
}
