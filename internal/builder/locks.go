package builder

import (
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// LockToggle adds or removes a card from the lock set. Locked cards are
// exempt from clamping and automated removal, and the finalizer inserts a
// placeholder entry for any locked card the build never added.
func (c *Context) LockToggle(name string, locked bool) {
	normalized := deck.NormalizeName(name)
	if normalized == "" {
		return
	}

	if locked {
		c.Locks[normalized] = true
	} else {
		delete(c.Locks, normalized)
	}

	c.logger.Debug("lock toggled", "card", normalized, "locked", locked)
}

// Replace atomically swaps old for new in the live deck: the old entry's
// count is carried over, the lock set follows the swap, and the old card
// joins the exclusion set so alternatives suggestions never re-offer it.
// Returns false when the old card is absent or the new card cannot be
// resolved against the pool; neither case disturbs the deck.
func (c *Context) Replace(oldName, newName string) bool {
	oldEntry, ok := c.Deck.Library[c.canonicalInDeck(oldName)]
	if !ok {
		c.logf("Replace: %s is not in the deck", oldName)
		return false
	}

	card, found := c.Pool.Lookup(newName)
	if !found {
		c.logf("Replace: %s not found in the card pool", newName)
		return false
	}

	canonical := c.canonicalInDeck(oldName)
	count := oldEntry.Count
	role := oldEntry.Role
	subRole := oldEntry.SubRole

	delete(c.Deck.Library, canonical)
	c.Deck.Add(card.Name, count, deck.LibraryEntry{
		Role:     role,
		SubRole:  subRole,
		AddedBy:  "replace",
		CardType: card.TypeLine,
		ManaCost: card.ManaCost,
	})

	oldNorm := deck.NormalizeName(oldName)
	newNorm := deck.NormalizeName(card.Name)
	delete(c.Locks, oldNorm)
	c.Locks[newNorm] = true

	c.LastReplace = &Replacement{Old: canonical, New: card.Name}
	c.PreferredReplacements[oldNorm] = newNorm
	c.Excluded[oldNorm] = true
	c.ExclusionVersion++

	c.logf("Replaced %s with %s (×%d)", canonical, card.Name, count)
	return true
}

// UndoReplace reverses the lock mutation of the most recent Replace (or an
// explicit old/new pair): the old card is re-locked and the new one
// unlocked. This is a best-effort affordance for the UI; the card swap
// itself is only undone by rerunning the affected stage.
func (c *Context) UndoReplace(oldName, newName string) {
	if oldName == "" && newName == "" {
		if c.LastReplace == nil {
			return
		}
		oldName = c.LastReplace.Old
		newName = c.LastReplace.New
	}

	oldNorm := deck.NormalizeName(oldName)
	newNorm := deck.NormalizeName(newName)

	if oldNorm != "" {
		c.Locks[oldNorm] = true
		delete(c.Excluded, oldNorm)
		delete(c.PreferredReplacements, oldNorm)
		c.ExclusionVersion++
	}
	if newNorm != "" {
		delete(c.Locks, newNorm)
	}

	c.LastReplace = nil
	c.logger.Debug("replace undone", "old", oldNorm, "new", newNorm)
}

// canonicalInDeck maps a possibly differently-cased name to the exact
// library key, or returns the input unchanged when absent.
func (c *Context) canonicalInDeck(name string) string {
	normalized := deck.NormalizeName(name)
	for key := range c.Deck.Library {
		if deck.NormalizeName(key) == normalized {
			return key
		}
	}
	return name
}
