package combos

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLoaderParsesDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combos.yaml")

	data := `pairs:
  - a: Kiki-Jiki, Mirror Breaker
    b: Zealous Conscripts
    cheap_early: false
    setup_dependent: true
  - a: Thassa's Oracle
    b: Demonic Consultation
    cheap_early: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write dataset: %v", err)
	}

	loader := &FileLoader{Path: path}
	pairs, err := loader.LoadCombos()
	if err != nil {
		t.Fatalf("LoadCombos failed: %v", err)
	}

	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].A != "Kiki-Jiki, Mirror Breaker" || !pairs[0].SetupDependent {
		t.Errorf("First pair not parsed correctly: %+v", pairs[0])
	}
	if !pairs[1].CheapEarly || pairs[1].SetupDependent {
		t.Errorf("Second pair flags not parsed correctly: %+v", pairs[1])
	}
}

func TestFileLoaderMissingFile(t *testing.T) {
	loader := &FileLoader{Path: filepath.Join(t.TempDir(), "absent.yaml")}

	if _, err := loader.LoadCombos(); err == nil {
		t.Error("Expected error for missing dataset file")
	}
}

func TestCachedLoaderCachesAndInvalidates(t *testing.T) {
	calls := 0
	inner := loaderFunc(func() ([]Pair, error) {
		calls++
		return []Pair{{A: "A", B: "B"}}, nil
	})

	cached := NewCachedLoader(inner)

	for i := 0; i < 3; i++ {
		if _, err := cached.LoadCombos(); err != nil {
			t.Fatalf("LoadCombos failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 inner load, got %d", calls)
	}

	cached.Invalidate()
	if _, err := cached.LoadCombos(); err != nil {
		t.Fatalf("LoadCombos after invalidate failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected reload after invalidate, got %d calls", calls)
	}
}

func TestCachedLoaderCachesErrors(t *testing.T) {
	wantErr := errors.New("dataset unavailable")
	cached := NewCachedLoader(&StaticLoader{Err: wantErr})

	if _, err := cached.LoadCombos(); !errors.Is(err, wantErr) {
		t.Errorf("Expected wrapped unavailable error, got %v", err)
	}
}

// loaderFunc adapts a function to the Loader interface.
type loaderFunc func() ([]Pair, error)

func (f loaderFunc) LoadCombos() ([]Pair, error) { return f() }
