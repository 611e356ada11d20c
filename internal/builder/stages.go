package builder

import (
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// Stage keys for the two non-generic stage kinds.
const (
	StageKeyMultiCopy  = "__add_multi_copy__"
	StageKeyAutoCombos = "__auto_complete_combos__"
)

// actionKind is the closed set of stage action variants. Dispatch happens
// via a switch in the executor, never by name lookup.
type actionKind int

const (
	actionOp actionKind = iota
	actionMultiCopy
	actionAutoCombos
)

// OpFunc is an ordinary builder operation run against the build context.
type OpFunc func(c *Context) error

// StageDescriptor is one immutable entry in the stage catalog.
type StageDescriptor struct {
	Key   string
	Label string

	kind actionKind
	run  OpFunc // set for actionOp only
}

// landStep describes one of the land sub-steps and when it applies.
type landStep struct {
	key       string
	label     string
	run       OpFunc
	available func(state *deck.State, opts Options) bool
}

// landSteps lists the land sub-steps in build order. A step whose
// availability check fails for the active commander is not emitted;
// steps that exist but add nothing are skipped at execution time instead.
var landSteps = []landStep{
	{key: "lands_basics", label: "Lands: Basics", run: opLandsBasics, available: alwaysAvailable},
	{key: "lands_staples", label: "Lands: Staples", run: opLandsStaples, available: alwaysAvailable},
	{key: "lands_kindred", label: "Lands: Kindred", run: opLandsKindred, available: hasKindredTag},
	{key: "lands_fetches", label: "Lands: Fetches", run: opLandsFetches, available: multiColor},
	{key: "lands_duals", label: "Lands: Duals", run: opLandsDuals, available: multiColor},
	{key: "lands_triples", label: "Lands: Triple Lands", run: opLandsTriples, available: threePlusColor},
	{key: "lands_utility", label: "Lands: Utility", run: opLandsUtility, available: alwaysAvailable},
	{key: "lands_optimize", label: "Lands: Optimization", run: opLandsOptimize, available: alwaysAvailable},
}

func alwaysAvailable(*deck.State, Options) bool { return true }

func multiColor(state *deck.State, _ Options) bool {
	return len(state.ColorIdentity) >= 2
}

func threePlusColor(state *deck.State, _ Options) bool {
	return len(state.ColorIdentity) >= 3
}

func hasKindredTag(_ *deck.State, opts Options) bool {
	for _, tag := range opts.ThemeTags {
		if isKindredTag(tag) {
			return true
		}
	}
	return false
}

// buildStages computes the ordered stage catalog for a session. Pure and
// deterministic for the given deck state and options; it is called once
// at session start and never re-derived mid-build.
func buildStages(state *deck.State, opts Options) []StageDescriptor {
	var stages []StageDescriptor

	// The multi-copy package goes before all land stages so later land
	// and spell targets account for its footprint.
	if opts.MultiCopy != nil {
		stages = append(stages, StageDescriptor{
			Key:   StageKeyMultiCopy,
			Label: "Multi-Copy Package",
			kind:  actionMultiCopy,
		})
	}

	for _, step := range landSteps {
		if step.available(state, opts) {
			stages = append(stages, StageDescriptor{
				Key:   step.key,
				Label: step.label,
				kind:  actionOp,
				run:   step.run,
			})
		}
	}

	// Creature stages in fixed order: all-theme intersection, primary,
	// secondary, tertiary, fill.
	if opts.TagMode == TagModeAnd && len(opts.ThemeTags) >= 2 {
		stages = append(stages, StageDescriptor{
			Key:   "creatures_all_theme",
			Label: "Creatures: All Themes",
			kind:  actionOp,
			run:   opCreaturesAllThemes,
		})
	}
	creatureStages := []struct {
		key   string
		label string
		index int
	}{
		{key: "creatures_primary", label: "Creatures: Primary Theme", index: 0},
		{key: "creatures_secondary", label: "Creatures: Secondary Theme", index: 1},
		{key: "creatures_tertiary", label: "Creatures: Tertiary Theme", index: 2},
	}
	for _, cs := range creatureStages {
		if cs.index < len(opts.ThemeTags) {
			stages = append(stages, StageDescriptor{
				Key:   cs.key,
				Label: cs.label,
				kind:  actionOp,
				run:   opCreaturesForTag(cs.index),
			})
		}
	}
	stages = append(stages, StageDescriptor{
		Key:   "creatures_fill",
		Label: "Creatures: Fill",
		kind:  actionOp,
		run:   opCreaturesFill,
	})

	// Spell stages: one per category when granular handlers are enabled,
	// otherwise a single monolithic pass. The autocombos stage slots in as
	// late as possible while still preceding quota-filling logic.
	if opts.granularSpells() {
		for _, category := range deck.SpellCategories {
			stages = append(stages, StageDescriptor{
				Key:   "spells_" + category,
				Label: spellStageLabel(category),
				kind:  actionOp,
				run:   opSpellCategory(category),
			})
		}
		if opts.Combos.Enabled {
			stages = append(stages, StageDescriptor{
				Key:   StageKeyAutoCombos,
				Label: "Auto-Complete Combos",
				kind:  actionAutoCombos,
			})
		}
		stages = append(stages, StageDescriptor{
			Key:   "spells_theme_fill",
			Label: "Spells: Theme Fill",
			kind:  actionOp,
			run:   opSpellsThemeFill,
		})
	} else {
		if opts.Combos.Enabled {
			stages = append(stages, StageDescriptor{
				Key:   StageKeyAutoCombos,
				Label: "Auto-Complete Combos",
				kind:  actionAutoCombos,
			})
		}
		stages = append(stages, StageDescriptor{
			Key:   "spells",
			Label: "Spells",
			kind:  actionOp,
			run:   opSpellsMonolithic,
		})
	}

	// Always end with the post-adjustment and reporting passes.
	stages = append(stages,
		StageDescriptor{Key: "post_adjust", Label: "Post-Adjustments", kind: actionOp, run: opPostAdjust},
		StageDescriptor{Key: "reporting", Label: "Reporting", kind: actionOp, run: opReporting},
	)

	return stages
}

func spellStageLabel(category string) string {
	switch category {
	case deck.CategoryRamp:
		return "Spells: Ramp"
	case deck.CategoryRemoval:
		return "Spells: Removal"
	case deck.CategoryWipes:
		return "Spells: Board Wipes"
	case deck.CategoryCardAdvantage:
		return "Spells: Card Advantage"
	case deck.CategoryProtection:
		return "Spells: Protection"
	default:
		return "Spells: " + category
	}
}
