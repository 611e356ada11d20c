package builder

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ramonehamilton/Commander-Companion/internal/combos"
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
	"github.com/ramonehamilton/Commander-Companion/internal/pool"
)

// testPool returns a small but representative red card pool: basics,
// tagged nonbasic lands, goblin creatures, category spells, combo pieces,
// and the multi-copy package cards.
func testPool() []*pool.Card {
	rank := 0
	card := func(name, typeLine, manaCost string, manaValue int, colors []string, tags ...string) *pool.Card {
		rank++
		return &pool.Card{
			Name:          name,
			TypeLine:      typeLine,
			ManaCost:      manaCost,
			ManaValue:     manaValue,
			ColorIdentity: colors,
			ThemeTags:     tags,
			Rank:          rank,
		}
	}

	red := []string{"R"}
	none := []string(nil)

	return []*pool.Card{
		card("Krenko, Mob Boss", "Legendary Creature — Goblin Warrior", "{2}{R}{R}", 4, red, "goblin kindred", "tokens"),

		card("Mountain", "Basic Land — Mountain", "", 0, none),
		card("Command Tower", "Land", "", 0, none, tagStapleLand),
		card("Path of Ancestry", "Land", "", 0, none, tagStapleLand),
		card("Goblin Burrows", "Land", "", 0, none, tagKindredLand),
		card("War Room", "Land", "", 0, none, tagUtilityLand),
		card("Castle Embereth", "Land", "", 0, red, tagUtilityLand),

		card("Goblin Chieftain", "Creature — Goblin", "{1}{R}{R}", 3, red, "goblin kindred"),
		card("Goblin Warchief", "Creature — Goblin Warrior", "{1}{R}{R}", 3, red, "goblin kindred"),
		card("Goblin Matron", "Creature — Goblin", "{2}{R}", 3, red, "goblin kindred", "tokens"),
		card("Skirk Prospector", "Creature — Goblin", "{R}", 1, red, "goblin kindred"),
		card("Goblin Recruiter", "Creature — Goblin", "{1}{R}", 2, red, "goblin kindred"),
		card("Beetleback Chief", "Creature — Goblin Warrior", "{2}{R}{R}", 4, red, "goblin kindred", "tokens"),
		card("Zealous Conscripts", "Creature — Human Berserker", "{4}{R}", 5, red),
		card("Kiki-Jiki, Mirror Breaker", "Legendary Creature — Goblin Shaman", "{2}{R}{R}{R}", 5, red),

		card("Sol Ring", "Artifact", "{1}", 1, none, deck.CategoryRamp),
		card("Arcane Signet", "Artifact", "{2}", 2, none, deck.CategoryRamp),
		card("Mind Stone", "Artifact", "{2}", 2, none, deck.CategoryRamp),
		card("Lightning Bolt", "Instant", "{R}", 1, red, deck.CategoryRemoval),
		card("Chaos Warp", "Instant", "{2}{R}", 3, red, deck.CategoryRemoval),
		card("Abrade", "Instant", "{1}{R}", 2, red, deck.CategoryRemoval),
		card("Blasphemous Act", "Sorcery", "{8}{R}", 9, red, deck.CategoryWipes),
		card("Faithless Looting", "Sorcery", "{R}", 1, red, deck.CategoryCardAdvantage),
		card("Wheel of Fortune", "Sorcery", "{2}{R}", 3, red, deck.CategoryCardAdvantage),
		card("Skullclamp", "Artifact — Equipment", "{1}", 1, none, deck.CategoryCardAdvantage),
		card("Lightning Greaves", "Artifact — Equipment", "{2}", 2, none, deck.CategoryProtection),
		card("Swiftfoot Boots", "Artifact — Equipment", "{2}", 2, none, deck.CategoryProtection),

		card("Impact Tremors", "Enchantment", "{1}{R}", 2, red, "tokens"),
		card("Purphoros, God of the Forge", "Legendary Enchantment Creature — God", "{3}{R}", 4, red, "tokens"),

		card("Dragon's Approach", "Sorcery", "{2}{R}", 3, red),
		card("Thrumming Stone", "Legendary Artifact", "{5}", 5, none),

		// Off-color card for the combo fallback path.
		card("Demonic Consultation", "Instant", "{B}", 1, []string{"B"}),
		card("Thassa's Oracle", "Creature — Merfolk Wizard", "{U}{U}", 2, []string{"U"}),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startTest creates a build context over the test pool, failing the test
// on setup errors.
func startTest(t *testing.T, opts Options) *Context {
	t.Helper()

	if opts.Commander == "" {
		opts.Commander = "Krenko, Mob Boss"
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}

	ctx, err := Start(pool.NewMemoryProvider(testPool()), &combos.StaticLoader{}, opts)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return ctx
}

// runToCompletion drives the pipeline until the terminal result, checking
// the deck-size invariant after every call.
func runToCompletion(t *testing.T, ctx *Context) *StageResult {
	t.Helper()

	for i := 0; i < 100; i++ {
		result := ctx.RunStage(false, false, false)
		if total := ctx.Deck.TotalCards(); total > deck.MaxDeckSize {
			t.Fatalf("Deck size invariant violated after %q: %d cards", result.Label, total)
		}
		if result.Done {
			return result
		}
	}

	t.Fatal("Pipeline did not complete within 100 calls")
	return nil
}

func TestStartResolvesCommander(t *testing.T) {
	ctx := startTest(t, Options{ThemeTags: []string{"goblin kindred"}})

	if ctx.Deck.Commander != "Krenko, Mob Boss" {
		t.Errorf("Expected canonical commander name, got %q", ctx.Deck.Commander)
	}
	if ctx.Deck.Count("Krenko, Mob Boss") != 1 {
		t.Error("Commander entry missing from library")
	}
	if ctx.ID == "" {
		t.Error("Expected a session ID")
	}
}

func TestStartUnknownCommander(t *testing.T) {
	_, err := Start(pool.NewMemoryProvider(testPool()), nil, Options{
		Commander: "Urza, Lord High Artificer",
		Logger:    quietLogger(),
	})
	if err == nil {
		t.Error("Expected error for unknown commander")
	}
}

func TestStartInvalidBracket(t *testing.T) {
	_, err := Start(pool.NewMemoryProvider(testPool()), nil, Options{
		Commander: "Krenko, Mob Boss",
		Bracket:   9,
		Logger:    quietLogger(),
	})
	if err == nil {
		t.Error("Expected error for out-of-range bracket")
	}
}

func TestFullBuildReachesHundredCards(t *testing.T) {
	ctx := startTest(t, Options{ThemeTags: []string{"goblin kindred", "tokens"}})

	result := runToCompletion(t, ctx)

	if !result.Done {
		t.Fatal("Expected terminal result")
	}
	if result.TotalCards != deck.MaxDeckSize {
		t.Errorf("Expected a full %d-card deck, got %d", deck.MaxDeckSize, result.TotalCards)
	}
}
