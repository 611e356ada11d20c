package builder

import (
	"testing"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

func TestLockToggleNormalizes(t *testing.T) {
	ctx := startTest(t, Options{})

	ctx.LockToggle("  Sol Ring  ", true)
	if !ctx.IsLocked("sol ring") {
		t.Error("Lock lookups must normalize names")
	}
	if !ctx.IsLocked("SOL RING") {
		t.Error("Lock lookups must be case-insensitive")
	}

	ctx.LockToggle("Sol Ring", false)
	if ctx.IsLocked("sol ring") {
		t.Error("Unlock did not remove the lock")
	}
}

func TestReplaceSwapsEntryAndLocks(t *testing.T) {
	ctx := startTest(t, Options{})
	ctx.Deck.Add("Lightning Bolt", 1, deck.LibraryEntry{Role: deck.RoleSupport, AddedBy: "spells_removal"})
	ctx.LockToggle("Lightning Bolt", true)

	if !ctx.Replace("Lightning Bolt", "Chaos Warp") {
		t.Fatal("Replace should succeed for a resolvable target")
	}

	if ctx.Deck.Count("Lightning Bolt") != 0 {
		t.Error("Old card should be removed")
	}
	if ctx.Deck.Count("Chaos Warp") != 1 {
		t.Error("New card should carry the old count")
	}

	entry := ctx.Deck.Library["Chaos Warp"]
	if entry.Role != deck.RoleSupport {
		t.Errorf("Role should carry over, got %s", entry.Role)
	}
	if entry.AddedBy != "replace" {
		t.Errorf("Expected addedBy replace, got %s", entry.AddedBy)
	}

	if ctx.IsLocked("Lightning Bolt") {
		t.Error("Old card should be unlocked")
	}
	if !ctx.IsLocked("Chaos Warp") {
		t.Error("New card should be locked")
	}

	if ctx.LastReplace == nil || ctx.LastReplace.New != "Chaos Warp" {
		t.Errorf("Undo buffer not recorded: %+v", ctx.LastReplace)
	}
	if !ctx.Excluded["lightning bolt"] {
		t.Error("Old card should join the exclusion set")
	}
	if ctx.PreferredReplacements["lightning bolt"] != "chaos warp" {
		t.Errorf("Preferred replacement hint not recorded: %v", ctx.PreferredReplacements)
	}
}

func TestReplaceUnresolvableTarget(t *testing.T) {
	ctx := startTest(t, Options{})
	ctx.Deck.Add("Lightning Bolt", 1, deck.LibraryEntry{Role: deck.RoleSupport})
	version := ctx.ExclusionVersion

	if ctx.Replace("Lightning Bolt", "Black Lotus") {
		t.Error("Replace must fail for an unresolvable target")
	}
	if ctx.Deck.Count("Lightning Bolt") != 1 {
		t.Error("Failed replace must not disturb the deck")
	}
	if ctx.ExclusionVersion != version {
		t.Error("Failed replace must not bump the exclusion version")
	}
}

func TestReplaceMissingOldCard(t *testing.T) {
	ctx := startTest(t, Options{})

	if ctx.Replace("Lightning Bolt", "Chaos Warp") {
		t.Error("Replace must fail when the old card is absent")
	}
}

func TestUndoReplaceReversesLocks(t *testing.T) {
	ctx := startTest(t, Options{})
	ctx.Deck.Add("Lightning Bolt", 1, deck.LibraryEntry{Role: deck.RoleSupport})
	ctx.Replace("Lightning Bolt", "Chaos Warp")

	ctx.UndoReplace("", "")

	if !ctx.IsLocked("Lightning Bolt") {
		t.Error("Undo should re-lock the old card")
	}
	if ctx.IsLocked("Chaos Warp") {
		t.Error("Undo should unlock the new card")
	}
	if ctx.LastReplace != nil {
		t.Error("Undo buffer should be cleared")
	}
	if ctx.Excluded["lightning bolt"] {
		t.Error("Undo should remove the old card from the exclusion set")
	}

	// The swap itself is not undone; only a stage rerun does that.
	if ctx.Deck.Count("Chaos Warp") != 1 {
		t.Error("Undo must not mutate the deck")
	}
}

func TestLockedCardNeverReducedAcrossBuild(t *testing.T) {
	ctx := startTest(t, Options{
		ThemeTags: []string{"goblin kindred", "tokens"},
		Locks:     []string{"Skullclamp"},
	})

	lockedAt := -1
	for {
		result := ctx.RunStage(false, false, false)
		count := ctx.Deck.Count("Skullclamp")
		if lockedAt >= 0 && count < lockedAt {
			t.Fatalf("Locked card reduced from %d to %d", lockedAt, count)
		}
		if count > 0 && lockedAt < 0 {
			lockedAt = count
		}
		if result.Done {
			break
		}
	}

	if ctx.Deck.Count("Skullclamp") < 1 {
		t.Error("Locked card missing from the finished deck")
	}
}

func TestFinalizerInsertsLockPlaceholder(t *testing.T) {
	ctx := startTest(t, Options{})
	ctx.LockToggle("Sol Ring", true)

	// Jump straight to the finalizer without running any stage.
	ctx.Cursor = len(ctx.Stages)
	result := ctx.RunStage(false, false, false)

	if !result.Done {
		t.Fatal("Expected terminal result")
	}
	entry, ok := ctx.Deck.Library["Sol Ring"]
	if !ok {
		t.Fatal("Finalizer should insert a placeholder for the locked card")
	}
	if entry.Role != deck.RoleLocked || entry.Count != 1 {
		t.Errorf("Expected role Locked count 1, got %s count %d", entry.Role, entry.Count)
	}
}

func TestFinalizerSkipsUnresolvableLocks(t *testing.T) {
	ctx := startTest(t, Options{})
	ctx.LockToggle("Black Lotus", true)

	ctx.Cursor = len(ctx.Stages)
	result := ctx.RunStage(false, false, false)

	if !result.Done {
		t.Fatal("Expected terminal result")
	}
	if ctx.Deck.Count("Black Lotus") != 0 {
		t.Error("Unresolvable locks must be skipped silently")
	}
}
