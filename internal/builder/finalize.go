package builder

import (
	"sort"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// Exporter writes the finished deck to disk. Implementations live in
// internal/export; the finalizer only sees this interface.
type Exporter interface {
	ExportCSV(state *deck.State) (string, error)
	ExportText(state *deck.State, filename string) (string, error)
	ExportRunConfig(config RunConfig) (string, error)
}

// SummaryBuilder produces the structured deck summary attached to the
// terminal result. The shape is opaque to the pipeline.
type SummaryBuilder interface {
	BuildSummary(state *deck.State) map[string]any
}

// RunConfig echoes the build inputs for reproducibility.
type RunConfig struct {
	Commander   string         `json:"commander"`
	ThemeTags   []string       `json:"theme_tags"`
	Bracket     int            `json:"bracket,omitempty"`
	TagMode     TagMode        `json:"tag_mode"`
	IdealCounts map[string]int `json:"ideal_counts"`
	Locks       []string       `json:"locks,omitempty"`
	MultiCopy   string         `json:"multi_copy,omitempty"`
	ComboTarget int            `json:"combo_target,omitempty"`
}

// finalize runs once the stage catalog is exhausted: locked cards missing
// from the library get placeholder entries, export runs exactly once, and
// the terminal summary is attached.
func (c *Context) finalize() *StageResult {
	for locked := range c.Locks {
		exists := false
		for name := range c.Deck.Library {
			if deck.NormalizeName(name) == locked {
				exists = true
				break
			}
		}
		if exists {
			continue
		}

		card, ok := c.Pool.Lookup(locked)
		if !ok {
			// Unresolvable locks are skipped silently.
			continue
		}
		c.Deck.Add(card.Name, 1, deck.LibraryEntry{
			Role:     deck.RoleLocked,
			AddedBy:  "finalize",
			CardType: card.TypeLine,
			ManaCost: card.ManaCost,
		})
		c.logf("Inserted locked card %s", card.Name)
	}

	c.export()

	if c.summary == nil && c.Options.Summary != nil {
		c.summary = c.Options.Summary.BuildSummary(c.Deck)
	}

	return &StageResult{
		Done:        true,
		Label:       "Complete",
		LogDelta:    c.drainLog(),
		Cursor:      len(c.Stages),
		TotalStages: len(c.Stages),
		TotalCards:  c.Deck.TotalCards(),
		CSVPath:     c.csvPath,
		TextPath:    c.txtPath,
		Summary:     c.summary,
	}
}

// export delegates to the configured exporter at most once per context;
// repeated finalizer calls reuse the recorded paths.
func (c *Context) export() {
	if c.Options.Export == nil {
		return
	}

	if c.csvPath == "" {
		path, err := c.Options.Export.ExportCSV(c.Deck)
		if err != nil {
			c.logf("CSV export failed: %v", err)
		} else {
			c.csvPath = path
		}
	}

	if c.txtPath == "" {
		path, err := c.Options.Export.ExportText(c.Deck, c.Deck.Commander)
		if err != nil {
			c.logf("Text export failed: %v", err)
		} else {
			c.txtPath = path
		}
	}

	if !c.runConfigDone {
		config := RunConfig{
			Commander:   c.Deck.Commander,
			ThemeTags:   c.Options.ThemeTags,
			Bracket:     c.Options.Bracket,
			TagMode:     c.Options.TagMode,
			IdealCounts: c.Deck.IdealCounts,
			ComboTarget: c.Options.Combos.TargetTotal,
		}
		for locked := range c.Locks {
			config.Locks = append(config.Locks, locked)
		}
		sort.Strings(config.Locks)
		if c.Options.MultiCopy != nil {
			config.MultiCopy = c.Options.MultiCopy.Name
		}

		if _, err := c.Options.Export.ExportRunConfig(config); err != nil {
			c.logf("Run config export failed: %v", err)
		} else {
			c.runConfigDone = true
		}
	}
}
