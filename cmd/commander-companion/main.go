package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ramonehamilton/Commander-Companion/internal/builder"
	"github.com/ramonehamilton/Commander-Companion/internal/combos"
	"github.com/ramonehamilton/Commander-Companion/internal/config"
	"github.com/ramonehamilton/Commander-Companion/internal/export"
	"github.com/ramonehamilton/Commander-Companion/internal/pool"
	"github.com/ramonehamilton/Commander-Companion/internal/storage"
	"github.com/ramonehamilton/Commander-Companion/internal/summary"
)

// getDBPath returns the database path from environment variable, config,
// or the default location.
func getDBPath(cfg *config.Config) string {
	if dbPath := os.Getenv("COMMANDER_DB_PATH"); dbPath != "" {
		return dbPath
	}
	if cfg.Pool.DBPath != "" {
		return cfg.Pool.DBPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Error getting home directory: %v", err)
	}
	return filepath.Join(home, ".commander-companion", "pool.db")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "import":
			runImportCommand(os.Args[2:])
			return
		case "build":
			runBuildCommand(os.Args[2:])
			return
		case "config":
			runConfigCommand()
			return
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}

	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Commander Companion - staged Commander deck builder")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  commander-companion import -file <catalog.json>   Import a card catalog into the pool database")
	fmt.Println("  commander-companion build -commander <name> ...   Build a deck stage by stage")
	fmt.Println("  commander-companion config                        Write the default configuration file")
	fmt.Println()
	fmt.Println("Run 'commander-companion build -h' for build flags.")
}

// runImportCommand loads a JSON card catalog into the sqlite pool.
func runImportCommand(args []string) {
	flags := flag.NewFlagSet("import", flag.ExitOnError)
	filePath := flags.String("file", "", "Path to the JSON card catalog")
	dbPath := flags.String("db", "", "Pool database path (defaults to config)")
	if err := flags.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	if *filePath == "" {
		log.Fatal("Import requires -file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *dbPath == "" {
		*dbPath = getDBPath(cfg)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Error reading catalog: %v", err)
	}

	var cards []*pool.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		log.Fatalf("Error parsing catalog: %v", err)
	}

	dbConfig := storage.DefaultConfig(*dbPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	ctx := context.Background()
	for _, card := range cards {
		if err := db.SaveCard(ctx, card); err != nil {
			log.Fatalf("Error saving %s: %v", card.Name, err)
		}
	}

	log.Printf("Imported %d cards into %s", len(cards), *dbPath)
}

// runConfigCommand writes the default configuration file if none exists.
func runConfigCommand() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.Save(); err != nil {
		log.Fatalf("Error saving config: %v", err)
	}
	log.Println("Configuration written")
}

// runBuildCommand drives a full build, printing each visible stage.
func runBuildCommand(args []string) {
	flags := flag.NewFlagSet("build", flag.ExitOnError)
	commander := flags.String("commander", "", "Commander card name (required)")
	tags := flags.String("tags", "", "Comma-separated theme tags")
	tagMode := flags.String("tag-mode", "", "Tag combination mode: AND or OR")
	bracket := flags.Int("bracket", 0, "Power bracket 1-5 (0 = unset)")
	locks := flags.String("lock", "", "Comma-separated card names to lock into the deck")
	multiCopyName := flags.String("multi-copy", "", "Multi-copy package card name")
	multiCopyCount := flags.Int("multi-copy-count", 0, "Number of package copies")
	multiCopyCompanion := flags.Bool("multi-copy-companion", false, "Include the package companion card")
	combosEnabled := flags.Bool("combos", false, "Auto-complete curated combos")
	comboTarget := flags.Int("combo-target", 0, "Desired total complete combo pairs (defaults to config)")
	comboBalance := flags.String("combo-balance", "", "Combo balance: early, late, or mix (defaults to config)")
	showSkipped := flags.Bool("show-skipped", false, "Show stages that added nothing")
	debugMode := flags.Bool("debug-mode", false, "Enable verbose debug logging")
	if err := flags.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	if *commander == "" {
		log.Fatal("Build requires -commander")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	level := slog.LevelInfo
	if *debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	dbConfig := storage.DefaultConfig(getDBPath(cfg))
	dbConfig.AutoMigrate = cfg.Pool.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Error opening pool database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	provider, err := db.LoadProvider(context.Background())
	if err != nil {
		log.Fatalf("Error loading card pool: %v", err)
	}

	loader := buildComboLoader(cfg, logger)

	opts := builder.Options{
		Commander:   *commander,
		ThemeTags:   splitCSV(*tags),
		Bracket:     *bracket,
		Locks:       splitCSV(*locks),
		IdealCounts: cfg.Build.IdealCounts,
		TagMode:     builder.TagMode(strings.ToUpper(resolveString(*tagMode, cfg.Build.TagMode))),
		Combos: builder.ComboPrefs{
			Enabled:     *combosEnabled,
			TargetTotal: resolveInt(*comboTarget, cfg.Build.ComboTarget),
			Balance:     builder.BalancePolicy(resolveString(*comboBalance, cfg.Build.ComboBalance)),
		},
		Logger:  logger,
		Export:  export.NewExporter(export.DefaultOptions(cfg.Export.Dir)),
		Summary: summary.NewBuilder(),
	}
	if *multiCopyName != "" && *multiCopyCount > 0 {
		opts.MultiCopy = &builder.MultiCopySelection{
			ID:               strings.ToLower(strings.ReplaceAll(*multiCopyName, " ", "-")),
			Name:             *multiCopyName,
			Count:            *multiCopyCount,
			IncludeCompanion: *multiCopyCompanion,
		}
	}

	session, err := builder.Start(provider, loader, opts)
	if err != nil {
		log.Fatalf("Error starting build: %v", err)
	}

	final := runPipeline(session, *showSkipped)
	printFinal(cfg, session, final)
}

// buildComboLoader wires the dataset loader with optional hot reload.
func buildComboLoader(cfg *config.Config, logger *slog.Logger) combos.Loader {
	if cfg.Combos.FilePath == "" {
		return nil
	}

	fileLoader := &combos.FileLoader{Path: cfg.Combos.FilePath}
	if !cfg.Combos.Watch {
		return fileLoader
	}

	cached := combos.NewCachedLoader(fileLoader)
	watcher, err := combos.NewWatcher(combos.WatcherConfig{
		Path:   cfg.Combos.FilePath,
		Loader: cached,
		Logger: logger,
	})
	if err != nil {
		logger.Warn("combo dataset watcher unavailable", "error", err)
		return cached
	}
	// The watcher lives for the process; the build is a one-shot run.
	_ = watcher
	return cached
}

// runPipeline advances the build to completion, printing every visible
// stage's diff and log.
func runPipeline(session *builder.Context, showSkipped bool) *builder.StageResult {
	for {
		result := session.RunStage(false, showSkipped, false)
		if result.Done {
			return result
		}

		fmt.Printf("\n[%d/%d] %s (%d cards)\n", result.Cursor, result.TotalStages, result.Label, result.TotalCards)
		if result.MCSummary != "" {
			fmt.Printf("  Package: %s\n", result.MCSummary)
		}
		for _, adjustment := range result.MCAdjustments {
			fmt.Printf("  Target adjusted: %s\n", adjustment)
		}
		for _, card := range result.AddedCards {
			reason := card.Trigger
			if reason == "" {
				reason = card.AddedBy
			}
			fmt.Printf("  + %d %s (%s)\n", card.Count, card.Name, reason)
		}
		if result.ClampedOverflow > 0 {
			fmt.Printf("  Trimmed %d over-limit additions\n", result.ClampedOverflow)
		}
		for _, line := range result.LogDelta {
			fmt.Printf("  | %s\n", line)
		}
	}
}

func printFinal(cfg *config.Config, session *builder.Context, final *builder.StageResult) {
	fmt.Printf("\n%s: %d cards\n", final.Label, final.TotalCards)
	if final.CSVPath != "" {
		fmt.Printf("CSV:  %s\n", final.CSVPath)
	}
	if final.TextPath != "" {
		fmt.Printf("Text: %s\n", final.TextPath)
	}

	if cfg.Export.CurveChart {
		chartPath := filepath.Join(cfg.Export.Dir, "mana_curve.html")
		if err := summary.NewBuilder().RenderCurveChart(session.Deck, chartPath); err != nil {
			log.Printf("Curve chart skipped: %v", err)
		} else {
			fmt.Printf("Curve: %s\n", chartPath)
		}
	}
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func resolveString(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func resolveInt(flagValue, configValue int) int {
	if flagValue != 0 {
		return flagValue
	}
	return configValue
}
