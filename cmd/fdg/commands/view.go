package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/l3aro/flow-dep-graph/internal/ingest"
	"github.com/l3aro/flow-dep-graph/internal/log"
	"github.com/l3aro/flow-dep-graph/internal/view"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
	"github.com/l3aro/flow-dep-graph/pkg/tree"
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Browse the dependency tree interactively",
	Long: `Opens a terminal UI over the graph file. Each row is one occurrence of a
module; expanding it reveals that occurrence's dependencies. With --watch the
file is reloaded whenever it changes, which resets expansion to the root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watch := appConfig.Watch
		if cmd.Flags().Changed("watch") {
			watch, _ = cmd.Flags().GetBool("watch")
		}
		root, _ := cmd.Flags().GetString("root")
		logFile, _ := cmd.Flags().GetString("log-file")
		return runView(cmd.Context(), args[0], graph.ModuleID(root), watch, logFile)
	},
}

func runView(ctx context.Context, path string, root graph.ModuleID, watch bool, logFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	uiLogger := log.Discard()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		uiLogger = log.New(log.LoggerConfig{
			Level:      log.ParseLevel(appConfig.LogLevel),
			JSONOutput: appConfig.LogJSON,
			Output:     f,
		})
		if verbose || appConfig.Verbose {
			uiLogger.SetLevel(log.DebugLevel)
		}
	}

	loader, err := newLoader(appConfig, uiLogger)
	if err != nil {
		return err
	}

	// The first load must succeed; later failures only update the status line.
	res, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	render := view.DefaultRenderOptions()
	render.UpgradeGlyph = appConfig.UpgradeGlyph
	render.Separator = appConfig.PathSeparator

	var model tea.Model = view.NewModel(tree.NewSession(), view.Options{
		Render: render,
		Root:   root,
		Logger: uiLogger,
	})
	model, _ = model.Update(view.GraphLoadedMsg{Result: res})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if watch {
		debounce := time.Duration(appConfig.DebounceMS) * time.Millisecond
		w, err := ingest.NewWatcher(loader, path, debounce, func(res *ingest.Result, err error) {
			p.Send(view.ReloadMsg(res, err))
		})
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		defer w.Stop()
		uiLogger.Info("watching graph file", "path", path)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}

func init() {
	viewCmd.Flags().BoolP("watch", "w", true, "Reload when the file changes (default from config)")
	viewCmd.Flags().String("root", "", "Module id to use as root (default: first module in the file)")
	viewCmd.Flags().String("log-file", "", "Write logs to this file while the viewer runs")
	RootCmd.AddCommand(viewCmd)
}
