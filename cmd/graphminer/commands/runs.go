package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/display"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/miner"
)

// RunsCmd inspects the runs recorded by mine
var RunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect mining runs",
	Long: `Every graph a mining batch touches is recorded with its outcome.

Statuses:
  running     - Being mined (or the batch was interrupted)
  completed   - Loaded and summarised; a catalog entry was written
  unsupported - Skipped: the layout is known to be unloadable
  failed      - Download or loading failed

Examples:
  graphminer runs ls                         # Latest runs
  graphminer runs ls --status failed         # Only failures
  graphminer runs ls --batch <batch-id>      # One batch
  graphminer runs show <run-id>              # Parameters and report of one run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List mining runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts miner.ListOptions
		status, _ := cmd.Flags().GetString("status")
		opts.Status = miner.Status(status)
		opts.Repository, _ = cmd.Flags().GetString("repository")
		opts.BatchID, _ = cmd.Flags().GetString("batch")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		return runRunsLs(cmd, opts)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one mining run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRunsShow(cmd, args[0])
	},
}

func init() {
	RunsCmd.PersistentFlags().String("db", "", "Run database (default: database.path)")

	runsLsCmd.Flags().String("status", "", "Filter by status (running, completed, unsupported, failed)")
	runsLsCmd.Flags().String("repository", "", "Filter by repository")
	runsLsCmd.Flags().String("batch", "", "Filter by batch id")
	runsLsCmd.Flags().Int("limit", 20, "Maximum number of runs to display")

	RunsCmd.AddCommand(runsLsCmd)
	RunsCmd.AddCommand(runsShowCmd)
}

func openStore(cmd *cobra.Command) (*miner.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dbPath, _ := cmd.Flags().GetString("db")
	database, err := openDatabase(cfg, dbPath)
	if err != nil {
		return nil, nil, err
	}
	return miner.NewStore(database), func() { database.Close() }, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runRunsLs(cmd *cobra.Command, opts miner.ListOptions) error {
	if opts.Status != "" && !opts.Status.Valid() {
		return errors.NewInvalidRequestError("unknown status %q", opts.Status)
	}

	store, closeDB, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := store.List(commandContext(cmd), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			truncate(run.ID, 13),
			run.Repository,
			truncate(run.Dataset, 30),
			string(run.Status),
			run.CreatedAt.Format("2006-01-02 15:04"),
			truncate(firstLine(run.Error), 50),
		})
	}
	if err := display.Table(out, []string{"RUN ID", "REPOSITORY", "DATASET", "STATUS", "CREATED", "ERROR"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d run(s)\n", len(runs))
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func runRunsShow(cmd *cobra.Command, id string) error {
	store, closeDB, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	run, err := store.Get(commandContext(cmd), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, run)
	}

	pairs := [][2]string{
		{"Run", run.ID},
		{"Batch", run.BatchID},
		{"Repository", run.Repository},
		{"Dataset", run.Dataset},
		{"Method", run.StoredName},
		{"Status", string(run.Status)},
		{"URLs", strings.Join(run.URLs, "\n")},
		{"Created", run.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	if run.CompletedAt != nil {
		pairs = append(pairs, [2]string{"Duration", run.Duration().String()})
	}
	if run.Error != "" {
		pairs = append(pairs, [2]string{"Error", run.Error})
	}
	if run.Parameters != nil {
		data, err := display.MarshalJSON(run.Parameters)
		if err != nil {
			return err
		}
		pairs = append(pairs, [2]string{"Parameters", string(data)})
	}
	if err := display.KeyValues(out, pairs); err != nil {
		return err
	}
	if run.Summary != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, run.Summary.Report())
	}
	return nil
}
