package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/display"
	"github.com/teranos/graphminer/edgelist"
)

// DatasetsCmd browses the catalog
var DatasetsCmd = &cobra.Command{
	Use:     "datasets",
	Aliases: []string{"ds"},
	Short:   "Browse the dataset catalog",
	Long: `Browse the graphs graphminer knows how to retrieve.

Examples:
  graphminer datasets ls                         # Every dataset
  graphminer datasets ls --repository yue        # One repository
  graphminer datasets show Cora                  # Report, references, usage`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var datasetsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List catalog datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repository")
		return runDatasetsLs(cmd, repo)
	},
}

var datasetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Describe one dataset",
	Long: `Describe a dataset: where it comes from, the report captured when it
was last mined, the references to cite and how to retrieve it.

The name may be the method name (FragariaVesca), the upstream graph name
("Fragaria vesca") or repository/method.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDatasetsShow(cmd, args[0])
	},
}

func init() {
	datasetsLsCmd.Flags().String("repository", "", "Only list datasets of this repository")

	DatasetsCmd.AddCommand(datasetsLsCmd)
	DatasetsCmd.AddCommand(datasetsShowCmd)
}

func runDatasetsLs(cmd *cobra.Command, repository string) error {
	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	datasets := c.List(repository)

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, datasets)
	}
	if len(datasets) == 0 {
		fmt.Fprintln(out, "No datasets found")
		return nil
	}

	rows := make([][]string, 0, len(datasets))
	for _, ds := range datasets {
		rows = append(rows, []string{
			ds.Repository,
			ds.Method,
			truncate(ds.Name, 40),
			count(ds.Nodes),
			count(ds.Edges),
			densityLabel(ds),
		})
	}
	if err := display.Table(out, []string{"REPOSITORY", "METHOD", "NAME", "NODES", "EDGES", "DENSITY"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d dataset(s)\n", len(datasets))
	return nil
}

func count(n int64) string {
	if n == 0 {
		return "-"
	}
	return strconv.FormatInt(n, 10)
}

func densityLabel(ds catalog.Dataset) string {
	if ds.Nodes == 0 {
		return "-"
	}
	return edgelist.DensityLabel(ds.Density)
}

func runDatasetsShow(cmd *cobra.Command, name string) error {
	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	ds, err := c.Lookup(name)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), ds)
	}
	text, err := c.Describe(ds)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
