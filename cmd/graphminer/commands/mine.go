package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/am"
	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/display"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/internal/httpclient"
	"github.com/teranos/graphminer/miner"
	"github.com/teranos/graphminer/repository"
	"github.com/teranos/graphminer/repository/networkrepository"
	"github.com/teranos/graphminer/repository/stringdb"
	"github.com/teranos/graphminer/repository/yue"
	"github.com/teranos/graphminer/retrieval"
	"github.com/teranos/graphminer/sniff"
)

// MineCmd runs the batch preparation step over one repository
var MineCmd = &cobra.Command{
	Use:   "mine <networkrepository|string|yue>",
	Short: "Walk a repository and build catalog entries",
	Long: `Walk a repository's listing, download every graph, work out how to read
it, summarise it and write the resulting catalog entries as TOML.

Every graph gets a run row in the database, so failures can be inspected
later with 'graphminer runs'. Graphs whose layout cannot be loaded are
recorded as unsupported and skipped.

When a NetworkRepository layout is ambiguous an operator is asked, unless
--non-interactive is set (or mine.interactive is false), in which case the
graph is skipped. Interactive mining is serial; otherwise mine.workers graphs
are mined at once.

Examples:
  graphminer mine yue
  graphminer mine string --only "Fragaria vesca" --output string.toml
  graphminer mine networkrepository --limit 50 --non-interactive
  graphminer mine networkrepository --dry-run`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{networkrepository.Name, stringdb.Name, yue.Name},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMine(cmd, args[0])
	},
}

func init() {
	MineCmd.Flags().Int("limit", 0, "Mine at most this many graphs (0 = all)")
	MineCmd.Flags().StringSlice("only", nil, "Only mine these graph or method names")
	MineCmd.Flags().Bool("non-interactive", false, "Skip graphs whose layout would need an operator")
	MineCmd.Flags().Bool("dry-run", false, "List the graphs that would be mined")
	MineCmd.Flags().Int("workers", 0, "Graphs mined at once (default: mine.workers)")
	MineCmd.Flags().String("output", "", "Write the catalog entries here (default: mine.output, or stdout)")
	MineCmd.Flags().String("db", "", "Run database (default: database.path)")
}

// newRepository builds the named upstream source from configuration
func newRepository(name string, cfg *am.Config, client *httpclient.SaferClient, prompter sniff.Prompter) (repository.GraphRepository, error) {
	switch strings.ToLower(name) {
	case networkrepository.Name:
		return networkrepository.New(networkrepository.Options{
			Client:      client,
			Prompter:    prompter,
			DownloadURL: cfg.NetworkRepository.DownloadURL,
			PageURL:     cfg.NetworkRepository.PageURL,
			ListingURL:  cfg.NetworkRepository.ListingURL,
		}), nil
	case stringdb.Name:
		return stringdb.New(stringdb.Options{
			Client:     client,
			Version:    cfg.String.Version,
			SpeciesURL: cfg.String.SpeciesURL,
			LinksURL:   cfg.String.LinksURL,
		}), nil
	case yue.Name:
		return yue.New()
	}
	return nil, errors.WithHintf(
		errors.NewInvalidRequestError("unknown repository %q", name),
		"choose one of %s, %s, %s", networkrepository.Name, stringdb.Name, yue.Name)
}

func runMine(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	only, _ := cmd.Flags().GetStringSlice("only")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	output, _ := cmd.Flags().GetString("output")
	dbPath, _ := cmd.Flags().GetString("db")

	mineCfg := cfg.Mine
	if nonInteractive {
		mineCfg.Interactive = false
	}
	if cmd.Flags().Changed("workers") {
		mineCfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if output == "" {
		output = mineCfg.Output
	}

	var prompter sniff.Prompter = sniff.NonInteractive{}
	if mineCfg.Interactive {
		prompter = sniff.TerminalPrompter{}
	}

	client := newClient(cfg)
	repo, err := newRepository(name, cfg, client, prompter)
	if err != nil {
		return err
	}

	var store *miner.Store
	if !dryRun {
		database, err := openDatabase(cfg, dbPath)
		if err != nil {
			return err
		}
		defer database.Close()
		store = miner.NewStore(database)
	}

	m := miner.New(miner.Config{
		Repository: repo,
		Fetcher:    retrieval.NewDownloader(client),
		Store:      store,
		CachePath:  cfg.RepositoryCachePath(repo.Name()),
		Workers:    mineCfg.EffectiveWorkers(),
	})

	if !display.ShouldOutputJSON(cmd) {
		pterm.DefaultSection.Printfln("Mining %s", repo.DisplayName())
	}
	res, err := m.Run(ctx, miner.Options{Limit: limit, Only: only, DryRun: dryRun})
	if err != nil {
		return err
	}

	if dryRun {
		return printPlanned(cmd, res)
	}

	jsonOut := display.ShouldOutputJSON(cmd)
	// JSON output already carries the entries when there is no file to write
	if len(res.Catalog.Datasets) > 0 && (output != "" || !jsonOut) {
		if err := writeCatalog(output, res.Catalog); err != nil {
			return err
		}
	}

	if jsonOut {
		return display.OutputJSON(res)
	}
	printCounts(res)
	if output != "" && len(res.Catalog.Datasets) > 0 {
		pterm.Success.Printfln("Wrote %d catalog entries to %s", len(res.Catalog.Datasets), output)
	}
	return nil
}

func writeCatalog(output string, f catalog.File) error {
	if output == "" {
		return catalog.Write(os.Stdout, f)
	}
	return catalog.WriteFile(output, f)
}

func printPlanned(cmd *cobra.Command, res *miner.Result) error {
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(res.Runs)
	}
	rows := make([][]string, 0, len(res.Runs))
	for _, run := range res.Runs {
		note := ""
		if run.Status == miner.StatusUnsupported {
			note = "skipped: known unsupported"
		}
		rows = append(rows, []string{run.Dataset, run.StoredName, truncate(strings.Join(run.URLs, " "), 60), note})
	}
	if err := display.Table(nil, []string{"GRAPH", "METHOD", "URLS", "NOTE"}, rows); err != nil {
		return err
	}
	fmt.Printf("\n%d graph(s) would be mined\n", len(res.Runs))
	return nil
}

func printCounts(res *miner.Result) {
	counts := res.Counts()
	fmt.Printf("Batch %s: %d completed, %d unsupported, %d failed\n",
		res.BatchID,
		counts[miner.StatusCompleted],
		counts[miner.StatusUnsupported],
		counts[miner.StatusFailed])
	if counts[miner.StatusFailed] > 0 {
		fmt.Printf("See failures with: graphminer runs ls --batch %s --status failed\n", res.BatchID)
	}
}
