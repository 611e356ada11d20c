package builder

import (
	"sort"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// AddedCard reports one card whose count increased during a stage.
type AddedCard struct {
	Name    string
	Count   int // copies added this stage, after clamping
	Role    deck.Role
	SubRole string
	AddedBy string
	Trigger string
}

// reason is the grouping string used for stable diff ordering.
func (a AddedCard) reason() string {
	if a.Trigger != "" {
		return a.Trigger
	}
	return a.AddedBy
}

// StageResult is the outcome of one RunStage call.
type StageResult struct {
	Done  bool
	Key   string
	Label string

	LogDelta   []string
	AddedCards []AddedCard

	Cursor      int // 1-based index of the shown stage
	TotalStages int
	TotalCards  int
	AddedTotal  int

	ClampedOverflow int      // copies trimmed by the deck-size clamp
	MCAdjustments   []string // ideal-count changes made by a multi-copy stage
	MCSummary       string

	// Terminal fields, set by the finalizer.
	CSVPath  string
	TextPath string
	Summary  map[string]any
}

// RunStage advances the pipeline by one visible stage.
//
// With rerun set, the most recently shown stage is executed again; with
// replace also set, its pre-stage snapshot is restored first so the rerun
// fully supersedes the original execution. Stages that produce an empty
// diff are skipped silently unless showSkipped is set. Once the catalog is
// exhausted the finalizer runs and a terminal result is returned.
//
// Stage action failures never abort the pipeline: the deck is restored to
// its pre-stage snapshot, the failure is logged, and the stage proceeds as
// a zero-diff skip.
func (c *Context) RunStage(rerun, showSkipped, replace bool) *StageResult {
	if c.Cursor >= len(c.Stages) {
		return c.finalize()
	}

	i := c.Cursor
	if rerun {
		i = c.LastVisibleCursor - 1
		if i < 0 {
			i = 0
		}
	}

	for ; i < len(c.Stages); i++ {
		stage := c.Stages[i]

		if rerun && replace {
			if snap := c.historySnapshot(i); snap != nil {
				c.Deck = snap.Clone()
				c.logf("Restored deck to the state before %q", stage.Label)
			}
		}

		snapBefore := c.Deck.Clone()

		if err := c.execute(stage); err != nil {
			// Soft failure: fold into a zero-diff result and move on.
			c.Deck = snapBefore.Clone()
			c.logf("Stage %q failed: %v (continuing)", stage.Label, err)
			c.logger.Warn("stage action failed", "stage", stage.Key, "error", err)
		}

		c.insertLockPlaceholders(stage.Key)

		added := c.diffAgainst(snapBefore)
		added, clamped := clampToLimit(c.Deck, snapBefore, added, c.Locks)
		if clamped > 0 {
			c.logf("Trimmed %d cards to stay within the %d-card limit", clamped, deck.MaxDeckSize)
		}
		if over := c.Deck.TotalCards() - deck.MaxDeckSize; over > 0 {
			// The stage's own additions could not absorb the overflow.
			// Earlier committed stages are never reneged on; surface it.
			c.logger.Warn("deck remains over limit after clamp", "stage", stage.Key, "over", over)
		}

		if len(added) > 0 || showSkipped {
			c.History = append(c.History, HistoryEntry{
				Cursor:   i,
				Key:      stage.Key,
				Label:    stage.Label,
				Snapshot: snapBefore,
			})
			c.Snapshot = snapBefore
			c.Cursor = i + 1
			c.LastVisibleCursor = i + 1

			addedTotal := 0
			for _, card := range added {
				addedTotal += card.Count
			}

			result := &StageResult{
				Key:             stage.Key,
				Label:           stage.Label,
				LogDelta:        c.drainLog(),
				AddedCards:      added,
				Cursor:          i + 1,
				TotalStages:     len(c.Stages),
				TotalCards:      c.Deck.TotalCards(),
				AddedTotal:      addedTotal,
				ClampedOverflow: clamped,
				MCAdjustments:   c.mcAdjustments,
				MCSummary:       c.mcSummary,
			}
			c.mcAdjustments = nil
			c.mcSummary = ""
			return result
		}

		// Empty diff and the caller does not want skipped stages: advance.
		c.Cursor = i + 1
		c.drainLog()
		c.mcAdjustments = nil
		c.mcSummary = ""
		// A rerun that landed on an empty stage continues forward normally.
		rerun = false
	}

	return c.finalize()
}

// execute dispatches one stage action. The action set is closed; special
// handlers are matched by kind, not by name.
func (c *Context) execute(stage StageDescriptor) error {
	switch stage.kind {
	case actionMultiCopy:
		return c.runMultiCopy()
	case actionAutoCombos:
		return c.runAutoCombos()
	default:
		if stage.run == nil {
			return nil
		}
		return stage.run(c)
	}
}

// insertLockPlaceholders resolves locked names missing from the library
// and inserts single-copy placeholder entries so they participate in
// diffing and are protected from clamping.
func (c *Context) insertLockPlaceholders(stageKey string) {
	for locked := range c.Locks {
		found := false
		for name := range c.Deck.Library {
			if deck.NormalizeName(name) == locked {
				found = true
				break
			}
		}
		if found {
			continue
		}

		card, ok := c.Pool.Lookup(locked)
		if !ok {
			continue
		}

		c.Deck.Add(card.Name, 1, deck.LibraryEntry{
			Role:     deck.RoleLocked,
			AddedBy:  stageKey,
			CardType: card.TypeLine,
			ManaCost: card.ManaCost,
		})
		c.logf("Restored locked card %s", card.Name)
	}
}

// diffAgainst reports every card whose count increased relative to the
// snapshot, sorted by (reason, name) for stable display.
func (c *Context) diffAgainst(snapshot *deck.State) []AddedCard {
	var added []AddedCard

	for name, entry := range c.Deck.Library {
		delta := entry.Count - snapshot.Count(name)
		if delta <= 0 {
			continue
		}
		added = append(added, AddedCard{
			Name:    name,
			Count:   delta,
			Role:    entry.Role,
			SubRole: entry.SubRole,
			AddedBy: entry.AddedBy,
			Trigger: entry.TriggerTag,
		})
	}

	sort.Slice(added, func(i, j int) bool {
		if added[i].reason() != added[j].reason() {
			return added[i].reason() < added[j].reason()
		}
		return added[i].Name < added[j].Name
	})

	return added
}
