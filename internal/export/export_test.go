package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/ramonehamilton/Commander-Companion/internal/builder"
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

func testDeck() *deck.State {
	state := deck.NewState("Krenko, Mob Boss", []string{"R"}, nil)
	state.Add("Krenko, Mob Boss", 1, deck.LibraryEntry{Role: deck.RoleCommander, CardType: "Legendary Creature — Goblin Warrior", ManaCost: "{2}{R}{R}"})
	state.Add("Mountain", 30, deck.LibraryEntry{Role: deck.RoleLand, AddedBy: "lands_basics", CardType: "Basic Land — Mountain"})
	state.Add("Sol Ring", 1, deck.LibraryEntry{Role: deck.RoleSupport, AddedBy: "spells_ramp", TriggerTag: "ramp", CardType: "Artifact", ManaCost: "{1}"})
	return state
}

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	opts := DefaultOptions(t.TempDir())
	opts.Timestamp = false
	return NewExporter(opts)
}

func TestExportCSV(t *testing.T) {
	exporter := newTestExporter(t)

	path, err := exporter.ExportCSV(testDeck())
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open exported CSV: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse exported CSV: %v", err)
	}

	// Header plus three cards.
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Name" {
		t.Errorf("Expected header row, got %v", rows[0])
	}

	foundMountain := false
	for _, row := range rows[1:] {
		if row[0] == "Mountain" {
			foundMountain = true
			if row[1] != "30" {
				t.Errorf("Expected Mountain count 30, got %s", row[1])
			}
		}
	}
	if !foundMountain {
		t.Error("Mountain missing from CSV export")
	}
}

func TestExportTextCommanderFirst(t *testing.T) {
	exporter := newTestExporter(t)

	path, err := exporter.ExportText(testDeck(), "")
	if err != nil {
		t.Fatalf("ExportText failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read decklist: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "1 Krenko, Mob Boss" {
		t.Errorf("Expected commander first, got %q", lines[0])
	}
}

func TestExportRunConfigRoundTrip(t *testing.T) {
	exporter := newTestExporter(t)

	config := builder.RunConfig{
		Commander:   "Krenko, Mob Boss",
		ThemeTags:   []string{"goblin kindred"},
		TagMode:     builder.TagModeOr,
		IdealCounts: map[string]int{deck.CategoryLands: 35},
	}

	path, err := exporter.ExportRunConfig(config)
	if err != nil {
		t.Fatalf("ExportRunConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read run config: %v", err)
	}

	var decoded builder.RunConfig
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Run config is not valid JSON: %v", err)
	}
	if decoded.Commander != config.Commander {
		t.Errorf("Expected commander %q, got %q", config.Commander, decoded.Commander)
	}
	if decoded.IdealCounts[deck.CategoryLands] != 35 {
		t.Errorf("Ideal counts not round-tripped: %v", decoded.IdealCounts)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Commander name", input: "Krenko, Mob Boss", want: "Krenko_Mob_Boss"},
		{name: "Path separators", input: "a/b\\c", want: "a_b_c"},
		{name: "Empty", input: "  ", want: "deck"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
