package deck

import (
	"testing"
)

func TestAddMergesExistingEntry(t *testing.T) {
	state := NewState("Krenko, Mob Boss", []string{"R"}, nil)

	state.Add("Mountain", 3, LibraryEntry{Role: RoleLand, AddedBy: "lands_basics"})
	state.Add("Mountain", 2, LibraryEntry{Role: RoleTheme, AddedBy: "later_stage"})

	entry := state.Library["Mountain"]
	if entry == nil {
		t.Fatal("expected Mountain entry")
	}
	if entry.Count != 5 {
		t.Errorf("Expected count 5, got %d", entry.Count)
	}
	// Provenance belongs to the first insert.
	if entry.AddedBy != "lands_basics" {
		t.Errorf("Expected addedBy lands_basics, got %s", entry.AddedBy)
	}
}

func TestAddIgnoresZeroAndBlank(t *testing.T) {
	state := NewState("Krenko, Mob Boss", []string{"R"}, nil)

	state.Add("Mountain", 0, LibraryEntry{})
	state.Add("", 3, LibraryEntry{})

	if len(state.Library) != 0 {
		t.Errorf("Expected empty library, got %d entries", len(state.Library))
	}
}

func TestRemoveDeletesAtZero(t *testing.T) {
	state := NewState("Krenko, Mob Boss", []string{"R"}, nil)
	state.Add("Goblin Chieftain", 1, LibraryEntry{Role: RoleTheme})

	removed := state.Remove("Goblin Chieftain", 5)
	if removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if _, ok := state.Library["Goblin Chieftain"]; ok {
		t.Error("Entry with count 0 must be deleted, not retained")
	}
}

func TestTotalCards(t *testing.T) {
	state := NewState("Krenko, Mob Boss", []string{"R"}, nil)
	state.Add("Mountain", 30, LibraryEntry{Role: RoleLand})
	state.Add("Sol Ring", 1, LibraryEntry{Role: RoleSupport})

	if got := state.TotalCards(); got != 31 {
		t.Errorf("Expected 31 total cards, got %d", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	state := NewState("Krenko, Mob Boss", []string{"R"}, map[string]int{CategoryLands: 36})
	state.Add("Mountain", 10, LibraryEntry{Role: RoleLand})

	snapshot := state.Clone()
	state.Library["Mountain"].Count = 20
	state.IdealCounts[CategoryLands] = 0

	if snapshot.Library["Mountain"].Count != 10 {
		t.Errorf("Snapshot entry mutated through live state: got %d", snapshot.Library["Mountain"].Count)
	}
	if snapshot.IdealCounts[CategoryLands] != 36 {
		t.Errorf("Snapshot ideal counts mutated through live state: got %d", snapshot.IdealCounts[CategoryLands])
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Lowercases", input: "Sol Ring", want: "sol ring"},
		{name: "Trims whitespace", input: "  Sol Ring  ", want: "sol ring"},
		{name: "Already normalized", input: "sol ring", want: "sol ring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
