package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/display"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/repository"
	"github.com/teranos/graphminer/repository/networkrepository"
	"github.com/teranos/graphminer/retrieval"
	"github.com/teranos/graphminer/sniff"
)

// FetchCmd retrieves and loads one catalog dataset
var FetchCmd = &cobra.Command{
	Use:   "fetch <name>",
	Short: "Download and load one dataset",
	Long: `Download a catalog dataset into the cache (skipped when already there),
run any conversion it needs, load its edge list and print a report.

Build parameters can be overridden with repeated --arg key=value pairs
using the catalog's argument names.

--words-features prints, as JSON, the node x word matrix of graphs that
carry Word nodes (the LINQS citation graphs) instead of the report.

Examples:
  graphminer fetch Cora
  graphminer fetch FragariaVesca --cache-path /data/graphs --json
  graphminer fetch Bcspwr10 --arg default_weight=1.0
  graphminer fetch linqs/Cora --words-features > cora-words.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, args[0])
	},
}

func init() {
	FetchCmd.Flags().Bool("directed", false, "Load the graph as directed")
	FetchCmd.Flags().String("cache-path", "", "Directory to download into (default: <cache.path>/<repository>)")
	FetchCmd.Flags().StringArray("arg", nil, "Override a build parameter (key=value)")
	FetchCmd.Flags().Bool("interactive", false, "Ask when a sniffed layout is ambiguous")
	FetchCmd.Flags().Bool("words-features", false, "Print the node x word feature matrix as JSON")
}

// fetchOutput is the JSON shape of a fetch
type fetchOutput struct {
	*retrieval.Result
	Summary edgelist.Summary `json:"summary"`
}

func runFetch(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	directed, _ := cmd.Flags().GetBool("directed")
	cachePath, _ := cmd.Flags().GetString("cache-path")
	pairs, _ := cmd.Flags().GetStringArray("arg")
	interactive, _ := cmd.Flags().GetBool("interactive")
	wordsFeatures, _ := cmd.Flags().GetBool("words-features")

	args, err := edgelist.ParseArguments(pairs)
	if err != nil {
		return err
	}

	var prompter sniff.Prompter = sniff.NonInteractive{}
	if interactive {
		prompter = sniff.TerminalPrompter{}
	}

	client := newClient(cfg)
	sources := []repository.GraphRepository{
		networkrepository.New(networkrepository.Options{
			Client:      client,
			Prompter:    prompter,
			DownloadURL: cfg.NetworkRepository.DownloadURL,
			PageURL:     cfg.NetworkRepository.PageURL,
			ListingURL:  cfg.NetworkRepository.ListingURL,
		}),
	}
	r := retrieval.New(c, retrieval.NewDownloader(client), sources...)

	ds, err := c.Lookup(name)
	if err != nil {
		return err
	}
	if cachePath == "" {
		cachePath = cfg.RepositoryCachePath(ds.Repository)
	}

	out := cmd.OutOrStdout()
	jsonOut := display.ShouldOutputJSON(cmd)
	var spinner *pterm.SpinnerPrinter
	if !jsonOut && !wordsFeatures {
		spinner, _ = pterm.DefaultSpinner.Start(fmt.Sprintf("Retrieving %s", ds.Method))
	}

	// Qualified, so a method name shared by two repositories resolves to ds
	res, err := r.Retrieve(ctx, ds.Repository+"/"+ds.Method, retrieval.Options{
		Directed:  directed,
		CachePath: cachePath,
		Arguments: args,
	})
	if err != nil {
		if spinner != nil {
			spinner.Fail(fmt.Sprintf("Retrieving %s failed", ds.Method))
		}
		return err
	}
	if wordsFeatures {
		features, err := edgelist.WordsFeatures(res.Graph)
		if err != nil {
			return errors.WithHint(err, "--words-features needs a graph with Word nodes, such as linqs/Cora")
		}
		return display.WriteJSON(out, features)
	}
	summary := res.Graph.Summary()

	if jsonOut {
		return display.WriteJSON(out, fetchOutput{Result: res, Summary: summary})
	}
	spinner.Success(fmt.Sprintf("Retrieved %s into %s", ds.Method, res.Report.Destination))

	pterm.DefaultSection.WithWriter(out).Println(ds.Method)
	fmt.Fprintln(out, summary.Report())
	return nil
}
