package builder

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
	"github.com/ramonehamilton/Commander-Companion/internal/pool"
)

// Pool tags recognized by the land sub-steps.
const (
	tagStapleLand  = "staple land"
	tagKindredLand = "kindred land"
	tagFetchLand   = "fetch land"
	tagDualLand    = "dual land"
	tagTripleLand  = "triple land"
	tagUtilityLand = "utility land"
)

// basicLandNames maps color identity letters to basic land names.
var basicLandNames = map[string]string{
	"W": "Plains",
	"U": "Island",
	"B": "Swamp",
	"R": "Mountain",
	"G": "Forest",
}

// pickFunc decides whether a pool card belongs to the running stage and,
// if so, which trigger tag to attribute the addition to.
type pickFunc func(card *pool.Card) (bool, string)

// addCards walks the color-filtered pool in relevance order and adds one
// copy of every card the pick function accepts, up to limit. Cards already
// in the library, the commander, and cards excluded by the owned filter
// are passed over. Returns the number of cards added.
func (c *Context) addCards(stageKey string, role deck.Role, subRole string, limit int, pick pickFunc) int {
	if limit <= 0 {
		return 0
	}

	added := 0
	for _, card := range c.filtered {
		if added >= limit {
			break
		}
		if card.Name == c.commander.Name {
			continue
		}
		if c.Deck.Count(card.Name) > 0 {
			continue
		}
		if !c.Options.Owned.Allows(card.Name) {
			continue
		}

		ok, trigger := pick(card)
		if !ok {
			continue
		}

		c.Deck.Add(card.Name, 1, deck.LibraryEntry{
			Role:       role,
			SubRole:    subRole,
			AddedBy:    stageKey,
			TriggerTag: trigger,
			CardType:   card.TypeLine,
			ManaCost:   card.ManaCost,
		})
		added++
	}

	return added
}

// countByType sums library copies whose type line contains the given word.
func (c *Context) countByType(cardType string) int {
	total := 0
	for _, entry := range c.Deck.Library {
		if strings.Contains(strings.ToLower(entry.CardType), strings.ToLower(cardType)) {
			total += entry.Count
		}
	}
	return total
}

func (c *Context) landsRemaining() int {
	return c.Deck.IdealCounts[deck.CategoryLands] - c.countByType("land")
}

func (c *Context) creaturesRemaining() int {
	remaining := c.Deck.IdealCounts[deck.CategoryCreatures] - c.countByType("creature")
	// The commander fills one creature slot when it is a creature.
	if remaining < 0 {
		return 0
	}
	return remaining
}

// --- Land sub-steps ---

// opLandsBasics fills the bulk of the land target with basics, reserving a
// share of the budget for the nonbasic steps that follow.
func opLandsBasics(c *Context) error {
	remaining := c.landsRemaining()
	if remaining <= 0 {
		return nil
	}

	reserve := remaining / 4
	if len(c.Deck.ColorIdentity) >= 2 {
		reserve = (remaining * 2) / 5
	}
	basicsTarget := remaining - reserve
	if basicsTarget <= 0 {
		return nil
	}

	colors := c.Deck.ColorIdentity
	if len(colors) == 0 {
		colors = []string{"C"}
	}

	perColor := basicsTarget / len(colors)
	extra := basicsTarget % len(colors)

	for i, color := range colors {
		name, ok := basicLandNames[strings.ToUpper(color)]
		if !ok {
			name = "Wastes"
		}

		count := perColor
		if i < extra {
			count++
		}
		if count == 0 {
			continue
		}

		card, found := c.Pool.Lookup(name)
		if !found {
			c.logf("Basic land %s not in pool, skipping", name)
			continue
		}

		c.Deck.Add(card.Name, count, deck.LibraryEntry{
			Role:     deck.RoleLand,
			AddedBy:  "lands_basics",
			CardType: card.TypeLine,
			ManaCost: card.ManaCost,
		})
	}

	c.logf("Added %d basic lands across %d colors", basicsTarget, len(colors))
	return nil
}

func opLandsStaples(c *Context) error {
	limit := minInt(c.landsRemaining(), 6)
	added := c.addCards("lands_staples", deck.RoleLand, "", limit, landPick(tagStapleLand))
	if added > 0 {
		c.logf("Added %d staple lands", added)
	}
	return nil
}

func opLandsKindred(c *Context) error {
	limit := minInt(c.landsRemaining(), 4)
	added := c.addCards("lands_kindred", deck.RoleLand, "", limit, landPick(tagKindredLand))
	if added > 0 {
		c.logf("Added %d kindred lands", added)
	}
	return nil
}

func opLandsFetches(c *Context) error {
	limit := minInt(c.landsRemaining(), 3)
	added := c.addCards("lands_fetches", deck.RoleLand, "", limit, landPick(tagFetchLand))
	if added > 0 {
		c.logf("Added %d fetch lands", added)
	}
	return nil
}

func opLandsDuals(c *Context) error {
	added := c.addCards("lands_duals", deck.RoleLand, "", c.landsRemaining(), landPick(tagDualLand))
	if added > 0 {
		c.logf("Added %d dual lands", added)
	}
	return nil
}

func opLandsTriples(c *Context) error {
	limit := minInt(c.landsRemaining(), 3)
	added := c.addCards("lands_triples", deck.RoleLand, "", limit, landPick(tagTripleLand))
	if added > 0 {
		c.logf("Added %d triple lands", added)
	}
	return nil
}

func opLandsUtility(c *Context) error {
	added := c.addCards("lands_utility", deck.RoleLand, "", c.landsRemaining(), landPick(tagUtilityLand))
	if added > 0 {
		c.logf("Added %d utility lands", added)
	}
	return nil
}

// opLandsOptimize trims excess basics when earlier steps overshot the land
// target. Basic counts are reduced largest-first; locked basics are kept.
func opLandsOptimize(c *Context) error {
	excess := -c.landsRemaining()
	if excess <= 0 {
		return nil
	}

	type basicCount struct {
		name  string
		count int
	}
	var basics []basicCount
	for name, entry := range c.Deck.Library {
		if isBasicLand(name) && !c.IsLocked(name) {
			basics = append(basics, basicCount{name: name, count: entry.Count})
		}
	}
	sort.Slice(basics, func(i, j int) bool {
		if basics[i].count != basics[j].count {
			return basics[i].count > basics[j].count
		}
		return basics[i].name < basics[j].name
	})

	trimmed := 0
	for excess > 0 && len(basics) > 0 {
		for i := range basics {
			if excess == 0 || basics[i].count == 0 {
				continue
			}
			c.Deck.Remove(basics[i].name, 1)
			basics[i].count--
			excess--
			trimmed++
		}
		// All basics exhausted; nonbasic excess stays.
		allZero := true
		for _, b := range basics {
			if b.count > 0 {
				allZero = false
				break
			}
		}
		if allZero {
			break
		}
	}

	if trimmed > 0 {
		c.logf("Trimmed %d excess basic lands", trimmed)
	}
	return nil
}

func landPick(tag string) pickFunc {
	return func(card *pool.Card) (bool, string) {
		return card.IsType("land") && card.HasTag(tag), ""
	}
}

func isBasicLand(name string) bool {
	switch name {
	case "Plains", "Island", "Swamp", "Mountain", "Forest", "Wastes":
		return true
	}
	return false
}

// --- Creature stages ---

// opCreaturesAllThemes adds creatures matching every selected theme tag.
// Only cataloged when combine mode is AND with two or more tags.
func opCreaturesAllThemes(c *Context) error {
	tags := c.Options.ThemeTags
	limit := (c.creaturesRemaining() + 1) / 2

	added := c.addCards("creatures_all_theme", deck.RoleTheme, "", limit, func(card *pool.Card) (bool, string) {
		if !card.IsType("creature") {
			return false, ""
		}
		for _, tag := range tags {
			if !card.HasTag(tag) {
				return false, ""
			}
		}
		return true, "all themes"
	})

	if added > 0 {
		c.logf("Added %d creatures matching all themes", added)
	}
	return nil
}

// opCreaturesForTag returns the stage op for the theme tag at the given
// index. Primary, secondary, and tertiary themes take successive halves of
// the remaining creature budget; the fill stage takes whatever is left.
func opCreaturesForTag(index int) OpFunc {
	return func(c *Context) error {
		if index >= len(c.Options.ThemeTags) {
			return nil
		}
		tag := c.Options.ThemeTags[index]
		limit := (c.creaturesRemaining() + 1) / 2

		added := c.addCards("creatures_"+ordinal(index), deck.RoleTheme, "", limit, func(card *pool.Card) (bool, string) {
			if card.IsType("creature") && card.HasTag(tag) {
				return true, tag
			}
			return false, ""
		})

		if added > 0 {
			c.logf("Added %d %q creatures", added, tag)
		}
		return nil
	}
}

func opCreaturesFill(c *Context) error {
	tags := c.Options.ThemeTags
	added := c.addCards("creatures_fill", deck.RoleTheme, "", c.creaturesRemaining(), func(card *pool.Card) (bool, string) {
		if !card.IsType("creature") {
			return false, ""
		}
		if len(tags) == 0 {
			return true, ""
		}
		for _, tag := range tags {
			if card.HasTag(tag) {
				return true, tag
			}
		}
		return false, ""
	})

	if added > 0 {
		c.logf("Added %d creatures to fill the creature target", added)
	}
	return nil
}

func ordinal(index int) string {
	switch index {
	case 0:
		return "primary"
	case 1:
		return "secondary"
	default:
		return "tertiary"
	}
}

// --- Spell stages ---

// opSpellCategory fills one spell category toward its ideal count.
func opSpellCategory(category string) OpFunc {
	return func(c *Context) error {
		return fillSpellCategory(c, "spells_"+category, category)
	}
}

func fillSpellCategory(c *Context, stageKey, category string) error {
	remaining := c.Deck.IdealCounts[category] - c.Deck.CategoryCount(category)

	added := c.addCards(stageKey, deck.RoleSupport, "", remaining, func(card *pool.Card) (bool, string) {
		if card.IsType("land") {
			return false, ""
		}
		if card.HasTag(category) {
			return true, category
		}
		return false, ""
	})

	if added > 0 {
		c.logf("Added %d %s spells", added, category)
	}
	return nil
}

// opSpellsThemeFill tops the deck up with theme-tagged spells. This is the
// final quota-filling stage, so it may take the deck to the full 100.
func opSpellsThemeFill(c *Context) error {
	tags := c.Options.ThemeTags
	remaining := deck.MaxDeckSize - c.Deck.TotalCards()

	added := c.addCards("spells_theme_fill", deck.RoleTheme, "", remaining, func(card *pool.Card) (bool, string) {
		if card.IsType("land") {
			return false, ""
		}
		if len(tags) == 0 {
			return true, ""
		}
		for _, tag := range tags {
			if card.HasTag(tag) {
				return true, tag
			}
		}
		return false, ""
	})

	if added > 0 {
		c.logf("Added %d theme spells to fill the deck", added)
	}
	return nil
}

// opSpellsMonolithic runs every spell category and the theme fill as one
// stage. Used when granular spell stages are disabled.
func opSpellsMonolithic(c *Context) error {
	for _, category := range deck.SpellCategories {
		if err := fillSpellCategory(c, "spells", category); err != nil {
			return err
		}
	}
	return opSpellsThemeFill(c)
}

// --- Post stages ---

// opPostAdjust pads an underfull deck with basics so the build lands on
// exactly 100 cards.
func opPostAdjust(c *Context) error {
	shortfall := deck.MaxDeckSize - c.Deck.TotalCards()
	if shortfall <= 0 {
		return nil
	}

	colors := c.Deck.ColorIdentity
	if len(colors) == 0 {
		colors = []string{"C"}
	}

	for i := 0; i < shortfall; i++ {
		color := colors[i%len(colors)]
		name, ok := basicLandNames[strings.ToUpper(color)]
		if !ok {
			name = "Wastes"
		}
		card, found := c.Pool.Lookup(name)
		if !found {
			continue
		}
		c.Deck.Add(card.Name, 1, deck.LibraryEntry{
			Role:     deck.RoleLand,
			AddedBy:  "post_adjust",
			CardType: card.TypeLine,
			ManaCost: card.ManaCost,
		})
	}

	c.logf("Padded deck with %d basic lands to reach %d cards", shortfall, deck.MaxDeckSize)
	return nil
}

// opReporting logs the final composition. It never changes the deck, so it
// only surfaces when the caller asks to see skipped stages.
func opReporting(c *Context) error {
	c.logf("Deck composition: %d total, %d lands, %d creatures",
		c.Deck.TotalCards(), c.countByType("land"), c.countByType("creature"))
	for _, category := range deck.SpellCategories {
		c.logf("  %s: %d/%d", category, c.Deck.CategoryCount(category), c.Deck.IdealCounts[category])
	}
	return nil
}

func isKindredTag(tag string) bool {
	lower := strings.ToLower(tag)
	return strings.Contains(lower, "kindred") || strings.Contains(lower, "tribal")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
