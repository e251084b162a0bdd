package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/flow-dep-graph/internal/config"
	"github.com/l3aro/flow-dep-graph/internal/log"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *log.DefaultLogger
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "fdg",
	Short: "flow-dep-graph - Explore module dependencies by flow strictness",
	Long: `flow-dep-graph renders a module dependency graph as a tree whose nodes are
colored by their flow type-checking level. Modules whose dependencies are all
strict are marked as ready to be upgraded.

Commands:
  view        Browse the graph interactively
  tree        Print the tree as text or JSON
  upgrades    List modules that could be made strict
  init        Create a configuration file

Use "fdg [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		level := log.ParseLevel(cfg.LogLevel)
		if verbose || cfg.Verbose {
			level = log.DebugLevel
		}
		logger = log.New(log.LoggerConfig{
			Level:      level,
			JSONOutput: cfg.LogJSON,
			Output:     cmd.ErrOrStderr(),
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default: ~/.fdg/config.yaml, ./.fdg/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}
