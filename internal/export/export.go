// Package export writes finished decks to disk as CSV, plain text, and a
// run-config JSON that echoes the build inputs for reproducibility.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ramonehamilton/Commander-Companion/internal/builder"
	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// Options holds configuration for export operations.
type Options struct {
	// Dir is the directory export files are written into. Created on demand.
	Dir string

	// Timestamp appends a timestamp to generated filenames. Default true
	// via DefaultOptions.
	Timestamp bool

	// PrettyJSON indents the run-config JSON.
	PrettyJSON bool
}

// DefaultOptions returns sensible defaults rooted at the given directory.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:        dir,
		Timestamp:  true,
		PrettyJSON: true,
	}
}

// Exporter writes deck artifacts. It implements builder.Exporter.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// ExportCSV writes the deck as a CSV of one row per card.
func (e *Exporter) ExportCSV(state *deck.State) (string, error) {
	path, err := e.targetPath(state.Commander, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	writer := csv.NewWriter(file)
	header := []string{"Name", "Count", "Role", "Sub-Role", "Added By", "Type", "Mana Cost"}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, name := range state.Names() {
		entry := state.Library[name]
		row := []string{
			name,
			strconv.Itoa(entry.Count),
			string(entry.Role),
			entry.SubRole,
			entry.AddedBy,
			entry.CardType,
			entry.ManaCost,
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return path, nil
}

// ExportText writes a plain "N Card Name" decklist, commander first.
func (e *Exporter) ExportText(state *deck.State, filename string) (string, error) {
	base := filename
	if base == "" {
		base = state.Commander
	}
	path, err := e.targetPath(base, "txt")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if entry, ok := state.Library[state.Commander]; ok {
		sb.WriteString(fmt.Sprintf("%d %s\n", entry.Count, state.Commander))
	}
	for _, name := range state.Names() {
		if name == state.Commander {
			continue
		}
		sb.WriteString(fmt.Sprintf("%d %s\n", state.Library[name].Count, name))
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write decklist: %w", err)
	}

	return path, nil
}

// ExportRunConfig writes the build inputs as JSON.
func (e *Exporter) ExportRunConfig(config builder.RunConfig) (string, error) {
	path, err := e.targetPath(config.Commander+"_run_config", "json")
	if err != nil {
		return "", err
	}

	var data []byte
	if e.opts.PrettyJSON {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = json.Marshal(config)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal run config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run config: %w", err)
	}

	return path, nil
}

// targetPath builds the output path, creating the directory as needed.
func (e *Exporter) targetPath(base, extension string) (string, error) {
	dir := e.opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := sanitizeFilename(base)
	if e.opts.Timestamp {
		name = fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405"))
	}

	return filepath.Join(dir, name+"."+extension), nil
}

// sanitizeFilename replaces characters that are unsafe in filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
		",", "", "'", "",
	)
	cleaned := replacer.Replace(strings.TrimSpace(name))
	cleaned = strings.Join(strings.Fields(cleaned), "_")
	if cleaned == "" {
		cleaned = "deck"
	}
	return cleaned
}
