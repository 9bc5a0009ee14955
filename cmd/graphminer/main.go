package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/cmd/graphminer/commands"
	"github.com/teranos/graphminer/logger"
)

var rootCmd = &cobra.Command{
	Use:   "graphminer",
	Short: "graphminer - retrieve and catalog graphs from public repositories",
	Long: `graphminer - retrieve and catalog graphs from public repositories.

graphminer keeps a catalog of graphs published by NetworkRepository, STRING,
the Yue et al. biomedical benchmark and LINQS. It downloads a graph on demand,
works out how its files are laid out and loads the edge list.

Available commands:
  am       - Manage graphminer configuration ("I am")
  datasets - Browse the dataset catalog
  fetch    - Download and load one dataset
  mine     - Walk a repository and build catalog entries
  linqs    - Convert LINQS incidence matrices into edge and node lists
  runs     - Inspect mining runs

Examples:
  graphminer datasets ls --repository string   # List STRING graphs
  graphminer fetch Cora                        # Download Cora and print its report
  graphminer mine networkrepository --limit 10 # Mine the first ten graphs
  graphminer runs ls --status failed           # Show failed mining runs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringSlice("catalog", nil, "Extra catalog TOML files merged over the built-in one")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DatasetsCmd)
	rootCmd.AddCommand(commands.FetchCmd)
	rootCmd.AddCommand(commands.MineCmd)
	rootCmd.AddCommand(commands.LinqsCmd)
	rootCmd.AddCommand(commands.RunsCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
