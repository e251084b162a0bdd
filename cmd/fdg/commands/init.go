package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/flow-dep-graph/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize fdg configuration interactively",
	Long: `Guides you through setting up fdg configuration step by step.
Creates a config file with display, reload and cache settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()
	if appConfig != nil {
		*cfg = *appConfig
	}

	// === SECTION 1: Display ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Upgrade marker").
				Description("Shown before modules whose dependencies are all strict").
				Placeholder(cfg.UpgradeGlyph).
				Value(&cfg.UpgradeGlyph),
			huh.NewInput().
				Title("Path separator").
				Description("Joins module ids in paths, e.g. app>lib").
				Placeholder(cfg.PathSeparator).
				Value(&cfg.PathSeparator).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("separator must not be empty")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Loading ===
	debounce := strconv.Itoa(cfg.DebounceMS)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Watch graph files").
				Description("Reload the viewer when the file changes?").
				Value(&cfg.Watch),
			huh.NewInput().
				Title("Reload debounce (ms)").
				Value(&debounce).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative number")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Repair malformed JSON").
				Description("Retry hand-edited files with trailing commas or single quotes?").
				Value(&cfg.RepairJSON),
			huh.NewConfirm().
				Title("Cache parsed graphs").
				Description(fmt.Sprintf("Snapshots are stored in %s", cfg.CacheDir)).
				Value(&cfg.CacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.DebounceMS, _ = strconv.Atoi(debounce)

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.fdg/config.yaml)", "global"),
					huh.NewOption("Project (./.fdg/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Upgrade marker: %q\n", cfg.UpgradeGlyph)
	fmt.Printf("Path separator: %q\n", cfg.PathSeparator)
	fmt.Printf("Watch: %t (debounce %dms)\n", cfg.Watch, cfg.DebounceMS)
	fmt.Printf("Repair JSON: %t\n", cfg.RepairJSON)
	fmt.Printf("Cache: %t\n", cfg.CacheEnabled)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	if _, err := config.LoadFromFile(configPath); err != nil {
		return fmt.Errorf("verifying saved config: %w", err)
	}
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
