// Package combos loads the curated two-card combo dataset consumed by the
// auto-complete combos build stage. The dataset is a YAML file maintained
// alongside the card catalog; a Watcher can hot-reload it when the file
// changes on disk.
package combos

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Pair is one curated two-card combo.
type Pair struct {
	A              string `yaml:"a"`
	B              string `yaml:"b"`
	CheapEarly     bool   `yaml:"cheap_early"`     // cheap/fast, works with little setup
	SetupDependent bool   `yaml:"setup_dependent"` // needs board state or a developed game
}

// Dataset is the on-disk shape of the curated combo file.
type Dataset struct {
	Pairs []Pair `yaml:"pairs"`
}

// Loader supplies combo pairs to the build pipeline. Implementations
// return an error when the dataset is unavailable; the pipeline treats
// that as "no combos", not as a fatal condition.
type Loader interface {
	LoadCombos() ([]Pair, error)
}

// FileLoader loads the dataset from a YAML file.
type FileLoader struct {
	Path string
}

// LoadCombos reads and parses the dataset file.
func (l *FileLoader) LoadCombos() ([]Pair, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read combo dataset: %w", err)
	}

	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse combo dataset: %w", err)
	}

	return dataset.Pairs, nil
}

// StaticLoader serves a fixed pair list. Useful for tests and embedding.
type StaticLoader struct {
	Pairs []Pair
	Err   error
}

// LoadCombos returns the configured pairs or error.
func (l *StaticLoader) LoadCombos() ([]Pair, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Pairs, nil
}

// CachedLoader wraps another loader and caches its result until
// Invalidate is called (typically from a Watcher callback).
type CachedLoader struct {
	inner Loader

	mu     sync.Mutex
	loaded bool
	pairs  []Pair
	err    error
}

// NewCachedLoader wraps inner with a single-flight cache.
func NewCachedLoader(inner Loader) *CachedLoader {
	return &CachedLoader{inner: inner}
}

// LoadCombos returns the cached pairs, loading on first use.
func (l *CachedLoader) LoadCombos() ([]Pair, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		l.pairs, l.err = l.inner.LoadCombos()
		l.loaded = true
	}
	return l.pairs, l.err
}

// Invalidate drops the cached result so the next load re-reads the source.
func (l *CachedLoader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	l.pairs = nil
	l.err = nil
}
