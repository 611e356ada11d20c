package builder

import (
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// clampToLimit trims overflow above MaxDeckSize, drawing only from the
// cards the current stage just added, never from pre-existing entries or
// locked names. Records are visited in reverse so the most
// recently added cards give way first. Returns the surviving records (zero
// deltas dropped) and the total number of copies trimmed.
//
// If the stage's own additions cannot absorb the whole overflow, the deck
// is left over the limit; earlier committed stages are never reneged on.
// The executor logs that condition.
func clampToLimit(state *deck.State, snapshot *deck.State, added []AddedCard, locks map[string]bool) ([]AddedCard, int) {
	overflow := state.TotalCards() - deck.MaxDeckSize
	if overflow <= 0 {
		return added, 0
	}

	trimmed := 0
	for i := len(added) - 1; i >= 0 && overflow > 0; i-- {
		record := &added[i]

		if locks[deck.NormalizeName(record.Name)] {
			continue
		}

		preCount := snapshot.Count(record.Name)
		current := state.Count(record.Name)

		// Only what was actually added this stage is reducible.
		reducible := current - preCount
		if reducible > record.Count {
			reducible = record.Count
		}
		if reducible <= 0 {
			continue
		}

		take := reducible
		if take > overflow {
			take = overflow
		}

		entry := state.Library[record.Name]
		entry.Count -= take
		if entry.Count == 0 {
			// Never deletes below the pre-stage count: take is bounded by
			// current - preCount, so count zero implies preCount was zero.
			delete(state.Library, record.Name)
		}

		record.Count -= take
		overflow -= take
		trimmed += take
	}

	kept := added[:0]
	for _, record := range added {
		if record.Count > 0 {
			kept = append(kept, record)
		}
	}

	return kept, trimmed
}
