package builder

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// companionCardName is the fixed companion for multi-copy packages: the
// artifact that chains extra copies of the packaged card into play.
const companionCardName = "Thrumming Stone"

// spreadOrder is the priority order in which a non-creature package's
// footprint is subtracted from spell category targets.
var spreadOrder = []string{
	deck.CategoryCardAdvantage,
	deck.CategoryProtection,
	deck.CategoryRemoval,
	deck.CategoryWipes,
}

// runMultiCopy injects the selected multi-copy package and shrinks the
// ideal-count targets to make room for it, so later stages don't fill the
// same space again.
func (c *Context) runMultiCopy() error {
	selection := c.Options.MultiCopy
	if selection == nil || selection.Count <= 0 || strings.TrimSpace(selection.Name) == "" {
		// Still counts as a run; the empty diff gets auto-skipped.
		return nil
	}

	card, ok := c.Pool.Lookup(selection.Name)
	if !ok {
		c.logf("Multi-copy card %s not found in the pool", selection.Name)
		return nil
	}

	c.Deck.Add(card.Name, selection.Count, deck.LibraryEntry{
		Role:     deck.RoleTheme,
		SubRole:  "Multi-Copy",
		AddedBy:  "MultiCopy",
		CardType: card.TypeLine,
		ManaCost: card.ManaCost,
	})
	c.logf("Added %s ×%d", card.Name, selection.Count)

	companionAdded := 0
	if selection.IncludeCompanion {
		if companion, found := c.Pool.Lookup(companionCardName); found {
			c.Deck.Add(companion.Name, 1, deck.LibraryEntry{
				Role:     deck.RoleSupport,
				SubRole:  "Multi-Copy",
				AddedBy:  "MultiCopy",
				CardType: companion.TypeLine,
				ManaCost: companion.ManaCost,
			})
			companionAdded = 1
			c.logf("Added companion %s ×1", companion.Name)
		} else {
			c.logf("Companion %s not found in the pool", companionCardName)
		}
	}

	c.mcAdjustments = c.reallocateTargets(selection, card.TypeLine, companionAdded)

	summary := fmt.Sprintf("%s ×%d", card.Name, selection.Count)
	if companionAdded > 0 {
		summary += fmt.Sprintf(" + %s ×1", companionCardName)
	}
	c.mcSummary = summary

	return nil
}

// reallocateTargets shrinks ideal counts by the package footprint. Creature
// packages come out of the creature budget; everything else spreads across
// the spell categories in priority order. Every non-zero change is
// reported as a "category before→after" string for the UI.
func (c *Context) reallocateTargets(selection *MultiCopySelection, typeLine string, companionAdded int) []string {
	var adjustments []string

	isCreature := strings.EqualFold(selection.TypeHint, "creature") ||
		(selection.TypeHint == "" && strings.Contains(strings.ToLower(typeLine), "creature"))

	if isCreature {
		before := c.Deck.IdealCounts[deck.CategoryCreatures]
		after := before - selection.Count
		if after < 0 {
			after = 0
		}
		if after != before {
			c.Deck.IdealCounts[deck.CategoryCreatures] = after
			adjustments = append(adjustments, fmt.Sprintf("%s %d→%d", deck.CategoryCreatures, before, after))
		}
		return adjustments
	}

	toSpread := selection.Count + companionAdded
	for _, category := range spreadOrder {
		if toSpread == 0 {
			break
		}
		before := c.Deck.IdealCounts[category]
		if before == 0 {
			continue
		}

		cut := toSpread
		if cut > before {
			cut = before
		}
		after := before - cut
		c.Deck.IdealCounts[category] = after
		toSpread -= cut
		adjustments = append(adjustments, fmt.Sprintf("%s %d→%d", category, before, after))
	}

	return adjustments
}
