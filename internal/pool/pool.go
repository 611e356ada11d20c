// Package pool defines the card pool consumed by the build pipeline.
// A Provider supplies card records already filtered or filterable by
// color identity; implementations are backed by the sqlite card cache
// (internal/storage) or an in-memory slice for tests.
package pool

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// Card is a single card record from the pool.
type Card struct {
	Name          string   // canonical display name
	TypeLine      string   // e.g. "Creature — Goblin Warrior"
	ManaCost      string   // e.g. "{2}{R}{R}"
	ManaValue     int      // converted mana cost
	ThemeTags     []string // theme and category tags (e.g. "goblin kindred", "ramp")
	ColorIdentity []string // color identity letters (W/U/B/R/G)
	Rank          int      // relevance rank, lower sorts first
}

// HasTag reports whether the card carries the given theme tag.
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.ThemeTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// IsType reports whether the card's type line contains the given type word.
func (c *Card) IsType(cardType string) bool {
	return strings.Contains(strings.ToLower(c.TypeLine), strings.ToLower(cardType))
}

// InColorIdentity reports whether the card is legal in the given identity.
func (c *Card) InColorIdentity(identity []string) bool {
	allowed := make(map[string]bool, len(identity))
	for _, color := range identity {
		allowed[strings.ToUpper(color)] = true
	}
	for _, color := range c.ColorIdentity {
		if !allowed[strings.ToUpper(color)] {
			return false
		}
	}
	return true
}

// Provider supplies queryable card records to the build pipeline.
type Provider interface {
	// Lookup resolves a card by name (case-insensitive). The second return
	// is false when the name is not in the pool.
	Lookup(name string) (*Card, bool)

	// FilteredPool returns the cards legal in the given color identity,
	// sorted by relevance rank.
	FilteredPool(colorIdentity []string) []*Card
}

// MemoryProvider is a Provider backed by an in-memory card slice.
type MemoryProvider struct {
	cards  []*Card
	byName map[string]*Card
}

// NewMemoryProvider builds a provider over the given cards. The slice is
// retained; callers must not mutate it afterwards.
func NewMemoryProvider(cards []*Card) *MemoryProvider {
	byName := make(map[string]*Card, len(cards))
	for _, card := range cards {
		byName[deck.NormalizeName(card.Name)] = card
	}

	sorted := append([]*Card(nil), cards...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].Name < sorted[j].Name
	})

	return &MemoryProvider{cards: sorted, byName: byName}
}

// Lookup resolves a card by name, case-insensitive.
func (p *MemoryProvider) Lookup(name string) (*Card, bool) {
	card, ok := p.byName[deck.NormalizeName(name)]
	return card, ok
}

// FilteredPool returns cards legal in the given color identity, rank-sorted.
func (p *MemoryProvider) FilteredPool(colorIdentity []string) []*Card {
	filtered := make([]*Card, 0, len(p.cards))
	for _, card := range p.cards {
		if card.InColorIdentity(colorIdentity) {
			filtered = append(filtered, card)
		}
	}
	return filtered
}
