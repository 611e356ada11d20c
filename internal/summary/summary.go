// Package summary builds the structured deck summary attached to the
// terminal build result, plus an optional mana-curve chart rendered to
// HTML alongside the exports.
package summary

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// Builder computes deck summaries. It implements builder.SummaryBuilder.
type Builder struct{}

// NewBuilder creates a summary builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildSummary returns the structured summary consumed by the UI: total
// cards, type distribution, mana curve, and category fill versus targets.
func (b *Builder) BuildSummary(state *deck.State) map[string]any {
	typeCounts := make(map[string]int)
	curve := make(map[int]int)

	for name, entry := range state.Library {
		typeCounts[primaryType(entry.CardType)] += entry.Count
		if !strings.Contains(strings.ToLower(entry.CardType), "land") && name != state.Commander {
			curve[manaValue(entry.ManaCost)] += entry.Count
		}
	}

	categories := make(map[string]map[string]int, len(state.IdealCounts))
	for category, target := range state.IdealCounts {
		categories[category] = map[string]int{
			"target": target,
			"actual": state.CategoryCount(category),
		}
	}

	return map[string]any{
		"commander":   state.Commander,
		"total_cards": state.TotalCards(),
		"type_counts": typeCounts,
		"mana_curve":  curve,
		"categories":  categories,
	}
}

// RenderCurveChart writes the deck's mana curve as a bar chart HTML file.
func (b *Builder) RenderCurveChart(state *deck.State, outputPath string) error {
	summary := b.BuildSummary(state)
	curve, ok := summary["mana_curve"].(map[int]int)
	if !ok || len(curve) == 0 {
		return fmt.Errorf("deck has no nonland cards to chart")
	}

	values := make([]int, 0, len(curve))
	for value := range curve {
		values = append(values, value)
	}
	sort.Ints(values)

	xLabels := make([]string, len(values))
	yData := make([]opts.BarData, len(values))
	for i, value := range values {
		xLabels[i] = fmt.Sprintf("%d", value)
		yData[i] = opts.BarData{Value: curve[value]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "900px",
			Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s — Mana Curve", state.Commander),
			Subtitle: fmt.Sprintf("%d cards", state.TotalCards()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)

	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := bar.Render(file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// primaryType extracts the leading card type from a type line,
// e.g. "Legendary Creature — Goblin" -> "Creature".
func primaryType(typeLine string) string {
	main := typeLine
	if idx := strings.Index(main, "—"); idx >= 0 {
		main = main[:idx]
	}

	for _, word := range []string{"Creature", "Land", "Artifact", "Enchantment", "Instant", "Sorcery", "Planeswalker", "Battle"} {
		if strings.Contains(main, word) {
			return word
		}
	}
	if trimmed := strings.TrimSpace(main); trimmed != "" {
		return trimmed
	}
	return "Other"
}

// manaValue computes a card's converted mana cost from a cost string like
// "{2}{U}{U}". X counts as zero.
func manaValue(manaCost string) int {
	total := 0
	symbol := strings.NewReplacer("{", " ", "}", " ").Replace(manaCost)
	for _, token := range strings.Fields(symbol) {
		if n, err := parseUint(token); err == nil {
			total += n
			continue
		}
		switch strings.ToUpper(token) {
		case "X":
			// X is zero while not on the stack.
		default:
			// Colored, hybrid, and phyrexian symbols each cost one.
			total++
		}
	}
	return total
}

func parseUint(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %s", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
