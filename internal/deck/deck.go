// Package deck defines the mutable deck aggregate built by the staged
// build pipeline: the card library, the per-category ideal counts, and
// deep-copy snapshot support.
package deck

import (
	"sort"
	"strings"
)

// MaxDeckSize is the hard upper bound on total cards in a Commander deck.
const MaxDeckSize = 100

// Role categorizes how a card ended up in the deck.
type Role string

const (
	RoleCommander Role = "Commander"
	RoleTheme     Role = "Theme"
	RoleSupport   Role = "Support"
	RoleLocked    Role = "Locked"
	RoleLand      Role = "Land"
)

// Category keys for ideal-count targets.
const (
	CategoryRamp          = "ramp"
	CategoryLands         = "lands"
	CategoryCreatures     = "creatures"
	CategoryRemoval       = "removal"
	CategoryWipes         = "wipes"
	CategoryCardAdvantage = "card_advantage"
	CategoryProtection    = "protection"
)

// SpellCategories lists the granular spell categories in stage order.
var SpellCategories = []string{
	CategoryRamp,
	CategoryRemoval,
	CategoryWipes,
	CategoryCardAdvantage,
	CategoryProtection,
}

// LibraryEntry is one card's presence in the deck.
type LibraryEntry struct {
	Count      int    // copies in deck, always >= 1 for a stored entry
	Role       Role   // provenance category
	SubRole    string // e.g. "Multi-Copy", "Combo Partner"
	AddedBy    string // stage key or mechanism that created/last touched the entry
	TriggerTag string // theme tag that caused the addition, if any
	CardType   string // denormalized type line for display
	ManaCost   string // denormalized mana cost for display
}

// State is the aggregate being built: library plus ideal-count targets.
// It is mutated in place by stage actions and deep-copied for snapshots.
type State struct {
	Commander     string
	ColorIdentity []string
	Library       map[string]*LibraryEntry
	IdealCounts   map[string]int
}

// NewState creates an empty deck state for the given commander.
func NewState(commander string, colorIdentity []string, idealCounts map[string]int) *State {
	ideals := make(map[string]int, len(idealCounts))
	for k, v := range idealCounts {
		ideals[k] = v
	}

	return &State{
		Commander:     commander,
		ColorIdentity: append([]string(nil), colorIdentity...),
		Library:       make(map[string]*LibraryEntry),
		IdealCounts:   ideals,
	}
}

// TotalCards returns the sum of all library entry counts.
func (s *State) TotalCards() int {
	total := 0
	for _, entry := range s.Library {
		total += entry.Count
	}
	return total
}

// Count returns the number of copies of name in the library (0 if absent).
func (s *State) Count(name string) int {
	if entry, ok := s.Library[name]; ok {
		return entry.Count
	}
	return 0
}

// Add inserts count copies of a card, merging into an existing entry when
// present. The entry's provenance fields are only set on first insert; later
// additions keep the original attribution and just bump the count.
func (s *State) Add(name string, count int, entry LibraryEntry) {
	if count <= 0 || name == "" {
		return
	}

	if existing, ok := s.Library[name]; ok {
		existing.Count += count
		return
	}

	entry.Count = count
	s.Library[name] = &entry
}

// Remove removes up to count copies of a card, deleting the entry when it
// reaches zero. Returns the number of copies actually removed.
func (s *State) Remove(name string, count int) int {
	entry, ok := s.Library[name]
	if !ok || count <= 0 {
		return 0
	}

	removed := count
	if removed > entry.Count {
		removed = entry.Count
	}

	entry.Count -= removed
	if entry.Count == 0 {
		delete(s.Library, name)
	}

	return removed
}

// CategoryCount sums the copies attributed to a category via trigger tag.
func (s *State) CategoryCount(category string) int {
	total := 0
	for _, entry := range s.Library {
		if entry.TriggerTag == category {
			total += entry.Count
		}
	}
	return total
}

// Names returns all library card names sorted for stable iteration.
func (s *State) Names() []string {
	names := make([]string, 0, len(s.Library))
	for name := range s.Library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the state. Snapshots taken by the build
// pipeline must never alias the live library or ideal-count maps.
func (s *State) Clone() *State {
	clone := &State{
		Commander:     s.Commander,
		ColorIdentity: append([]string(nil), s.ColorIdentity...),
		Library:       make(map[string]*LibraryEntry, len(s.Library)),
		IdealCounts:   make(map[string]int, len(s.IdealCounts)),
	}

	for name, entry := range s.Library {
		copied := *entry
		clone.Library[name] = &copied
	}
	for category, target := range s.IdealCounts {
		clone.IdealCounts[category] = target
	}

	return clone
}

// NormalizeName canonicalizes a card name for lock/lookup comparisons.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
