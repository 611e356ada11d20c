package builder

import (
	"sort"

	"github.com/ramonehamilton/Commander-Companion/internal/combos"
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
	"github.com/ramonehamilton/Commander-Companion/internal/pool"
)

// comboCandidate is the missing half of a curated pair, scored by the
// balance policy.
type comboCandidate struct {
	name  string
	score float64
}

// runAutoCombos completes curated two-card combos where exactly one half
// is already in the deck, bounded by the configured pair target. A missing
// dataset adds nothing and logs a single line; it never fails the build.
func (c *Context) runAutoCombos() error {
	if c.Combos == nil {
		c.logf("Combo dataset not configured; skipping combo completion")
		return nil
	}

	pairs, err := c.Combos.LoadCombos()
	if err != nil {
		c.logf("Combo dataset unavailable: %v", err)
		return nil
	}

	present := make(map[string]bool, len(c.Deck.Library)+1)
	for name := range c.Deck.Library {
		present[deck.NormalizeName(name)] = true
	}
	present[deck.NormalizeName(c.Deck.Commander)] = true

	existingPairs := 0
	var candidates []comboCandidate
	seen := make(map[string]bool)

	for _, pair := range pairs {
		aPresent := present[deck.NormalizeName(pair.A)]
		bPresent := present[deck.NormalizeName(pair.B)]

		switch {
		case aPresent && bPresent:
			existingPairs++
		case aPresent || bPresent:
			missing := pair.A
			if aPresent {
				missing = pair.B
			}
			normalized := deck.NormalizeName(missing)
			if seen[normalized] {
				continue
			}
			if c.Locks[normalized] {
				continue
			}
			if !c.Options.Owned.Allows(missing) {
				continue
			}
			seen[normalized] = true
			candidates = append(candidates, comboCandidate{
				name:  missing,
				score: c.scorePair(pair),
			})
		}
	}

	remaining := c.Options.Combos.TargetTotal - existingPairs
	if remaining <= 0 {
		c.logf("Combo target already met (%d pairs present)", existingPairs)
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	added := 0
	for _, candidate := range candidates {
		if added >= remaining {
			break
		}

		card, offColor := c.resolveComboCard(candidate.name)
		if card == nil {
			// Unresolvable candidates don't consume a slot.
			c.logf("Combo partner %s not found in any pool; skipping", candidate.name)
			continue
		}
		if offColor {
			c.logf("Combo partner %s resolved outside the color-filtered pool", card.Name)
		}

		c.Deck.Add(card.Name, 1, deck.LibraryEntry{
			Role:     deck.RoleSupport,
			SubRole:  "Combo Partner",
			AddedBy:  "AutoCombos",
			CardType: card.TypeLine,
			ManaCost: card.ManaCost,
		})
		added++
		c.logf("Completed combo with %s", card.Name)
	}

	if added > 0 {
		c.logf("Added %d combo partners (%d pairs already present)", added, existingPairs)
	}
	return nil
}

// scorePair rates a candidate pair under the balance policy: early builds
// reward cheap/fast combos, late builds reward setup-dependent ones, and
// the default mix rewards both at a lower weight.
func (c *Context) scorePair(pair combos.Pair) float64 {
	score := 0.0
	switch c.Options.Combos.Balance {
	case BalanceEarly:
		if pair.CheapEarly {
			score += 2
		}
		if pair.SetupDependent {
			score--
		}
	case BalanceLate:
		if pair.SetupDependent {
			score += 2
		}
		if pair.CheapEarly {
			score--
		}
	default: // BalanceMix
		if pair.CheapEarly {
			score++
		}
		if pair.SetupDependent {
			score++
		}
	}
	return score
}

// resolveComboCard resolves a candidate against the color-filtered pool
// first, falling back to the full pool. The second return reports whether
// the fallback was needed.
func (c *Context) resolveComboCard(name string) (card *pool.Card, offColor bool) {
	normalized := deck.NormalizeName(name)
	for _, pooled := range c.filtered {
		if deck.NormalizeName(pooled.Name) == normalized {
			return pooled, false
		}
	}

	if pooled, ok := c.Pool.Lookup(name); ok {
		return pooled, true
	}
	return nil, false
}
