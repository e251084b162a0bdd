package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/flow-dep-graph/pkg/graph"
)

// Upgrade is one module that could be made strict.
type Upgrade struct {
	ID    graph.ModuleID `json:"id"`
	Name  string         `json:"name"`
	Level string         `json:"flowLevel"`
}

// upgradesCmd represents the upgrades command
var upgradesCmd = &cobra.Command{
	Use:   "upgrades <file>",
	Short: "List modules that could be made strict",
	Long: `Lists every module whose direct dependencies are all strict or strict-local
while the module itself is not strict yet, in file order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return runUpgrades(cmd.OutOrStdout(), res.Graph, jsonOutput)
	},
}

func runUpgrades(w io.Writer, g *graph.Graph, jsonOutput bool) error {
	ids := g.Upgradeable()
	upgrades := make([]Upgrade, 0, len(ids))
	for _, id := range ids {
		upgrades = append(upgrades, Upgrade{
			ID:    id,
			Name:  g.DisplayName(id),
			Level: g.LevelOf(id).String(),
		})
	}

	if jsonOutput {
		data, err := json.MarshalIndent(upgrades, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(upgrades) == 0 {
		_, err := fmt.Fprintln(w, "No modules can be upgraded.")
		return err
	}
	for _, u := range upgrades {
		if _, err := fmt.Fprintf(w, "%s\t%s\t(%s)\n", u.ID, u.Name, u.Level); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	upgradesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(upgradesCmd)
}
