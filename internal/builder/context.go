// Package builder implements the staged deck build pipeline: a build
// context holds the deck being assembled, an ordered stage catalog, and
// snapshot history; RunStage advances the pipeline one visible stage at a
// time, enforcing the 100-card limit and honoring user locks.
package builder

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ramonehamilton/Commander-Companion/internal/combos"
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
	"github.com/ramonehamilton/Commander-Companion/internal/pool"
)

// TagMode controls how multiple theme tags combine when selecting cards.
type TagMode string

const (
	TagModeAnd TagMode = "AND"
	TagModeOr  TagMode = "OR"
)

// BalancePolicy biases which combo candidates are prioritized.
type BalancePolicy string

const (
	BalanceEarly BalancePolicy = "early"
	BalanceLate  BalancePolicy = "late"
	BalanceMix   BalancePolicy = "mix"
)

// MultiCopySelection describes a multi-copy package chosen for the build.
type MultiCopySelection struct {
	ID               string
	Name             string
	Count            int
	IncludeCompanion bool   // also add one copy of the fixed companion card
	TypeHint         string // "creature" reallocates the creature budget
}

// ComboPrefs configures the auto-complete combos stage.
type ComboPrefs struct {
	Enabled     bool
	TargetTotal int           // desired total number of complete pairs
	Balance     BalancePolicy // early / late / mix (default mix)
}

// OwnedFilter restricts automated additions to cards the user owns.
type OwnedFilter struct {
	Enabled bool
	Owned   map[string]bool // normalized card names
}

// Allows reports whether the filter permits the given card name.
func (f OwnedFilter) Allows(name string) bool {
	if !f.Enabled {
		return true
	}
	return f.Owned[deck.NormalizeName(name)]
}

// Options configures a new build context.
type Options struct {
	Commander   string
	ThemeTags   []string
	Bracket     int // power bracket 1-5, 0 = unset
	IdealCounts map[string]int
	TagMode     TagMode
	Owned       OwnedFilter
	Locks       []string
	MultiCopy   *MultiCopySelection
	Combos      ComboPrefs

	// GranularSpells emits one stage per spell category instead of a
	// single monolithic spells stage. Default true.
	GranularSpells *bool

	Logger  *slog.Logger   // defaults to slog.Default()
	Export  Exporter       // nil disables export in the finalizer
	Summary SummaryBuilder // nil disables the summary in the finalizer
}

// Replacement records a card swap for the single-slot undo buffer.
type Replacement struct {
	Old string
	New string
}

// HistoryEntry is one pre-stage snapshot in the build history.
type HistoryEntry struct {
	Cursor   int
	Key      string
	Label    string
	Snapshot *deck.State
}

// Context is the per-session build state. It is mutated in place by every
// RunStage call and must only be driven by one caller at a time; the
// hosting layer serializes access per session.
type Context struct {
	ID   string
	Deck *deck.State

	Pool   pool.Provider
	Combos combos.Loader

	Options Options
	Stages  []StageDescriptor

	Cursor            int // index of the next stage to attempt
	LastVisibleCursor int // index just past the most recently shown stage

	History  []HistoryEntry
	Snapshot *deck.State // snapshot taken before the most recent visible stage

	Locks                 map[string]bool
	LastReplace           *Replacement
	PreferredReplacements map[string]string

	// Cards removed via Replace; alternatives suggestions must not
	// re-offer them. The version counter invalidates downstream caches.
	Excluded         map[string]bool
	ExclusionVersion int

	commander *pool.Card
	filtered  []*pool.Card // color-filtered pool, loaded once at session start
	logger    *slog.Logger
	logBuf    []string

	// Per-run scratch set by the multi-copy handler.
	mcAdjustments []string
	mcSummary     string

	// Export bookkeeping; the finalizer is idempotent.
	csvPath       string
	txtPath       string
	runConfigDone bool
	summary       map[string]any
}

// DefaultIdealCounts returns the standard category targets for a fresh build.
func DefaultIdealCounts() map[string]int {
	return map[string]int{
		deck.CategoryRamp:          10,
		deck.CategoryLands:         35,
		deck.CategoryCreatures:     28,
		deck.CategoryRemoval:       10,
		deck.CategoryWipes:         2,
		deck.CategoryCardAdvantage: 10,
		deck.CategoryProtection:    4,
	}
}

// Start creates a build context for the given options. The commander must
// resolve against the pool and the bracket must be valid; these are the
// only caller-visible setup errors; everything later is folded into
// per-stage results.
func Start(provider pool.Provider, comboLoader combos.Loader, opts Options) (*Context, error) {
	if provider == nil {
		return nil, fmt.Errorf("pool provider cannot be nil")
	}

	commander, ok := provider.Lookup(opts.Commander)
	if !ok {
		return nil, fmt.Errorf("commander not found: %q", opts.Commander)
	}

	if opts.Bracket < 0 || opts.Bracket > 5 {
		return nil, fmt.Errorf("bracket out of range: %d", opts.Bracket)
	}

	if opts.TagMode == "" {
		opts.TagMode = TagModeOr
	}
	if opts.Combos.Balance == "" {
		opts.Combos.Balance = BalanceMix
	}
	if opts.IdealCounts == nil {
		opts.IdealCounts = DefaultIdealCounts()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	state := deck.NewState(commander.Name, commander.ColorIdentity, opts.IdealCounts)
	state.Add(commander.Name, 1, deck.LibraryEntry{
		Role:     deck.RoleCommander,
		AddedBy:  "setup",
		CardType: commander.TypeLine,
		ManaCost: commander.ManaCost,
	})

	id := uuid.NewString()
	ctx := &Context{
		ID:                    id,
		Deck:                  state,
		Pool:                  provider,
		Combos:                comboLoader,
		Options:               opts,
		Locks:                 make(map[string]bool),
		PreferredReplacements: make(map[string]string),
		Excluded:              make(map[string]bool),
		commander:             commander,
		filtered:              provider.FilteredPool(commander.ColorIdentity),
		logger:                opts.Logger.With("session", id),
	}

	for _, name := range opts.Locks {
		if normalized := deck.NormalizeName(name); normalized != "" {
			ctx.Locks[normalized] = true
		}
	}

	ctx.Stages = buildStages(state, opts)

	ctx.logger.Debug("build context started",
		"commander", commander.Name,
		"stages", len(ctx.Stages),
		"tags", opts.ThemeTags,
	)

	return ctx, nil
}

// logf appends a line to the current stage's log delta and mirrors it to
// the structured logger.
func (c *Context) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	c.logBuf = append(c.logBuf, line)
	c.logger.Debug(line)
}

// drainLog returns and clears the accumulated stage log lines.
func (c *Context) drainLog() []string {
	lines := c.logBuf
	c.logBuf = nil
	return lines
}

// IsLocked reports whether the given card name is locked.
func (c *Context) IsLocked(name string) bool {
	return c.Locks[deck.NormalizeName(name)]
}

// granularSpells reports whether per-category spell stages are enabled.
func (o Options) granularSpells() bool {
	if o.GranularSpells == nil {
		return true
	}
	return *o.GranularSpells
}
