package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/linqs"
)

// LinqsCmd converts LINQS incidence matrices by hand, outside of a fetch
var LinqsCmd = &cobra.Command{
	Use:   "linqs <cora|citeseer|pubmed>",
	Short: "Convert LINQS incidence matrices into edge and node lists",
	Long: `Convert a LINQS dataset's .cites and .content files into a typed
edge list and node list. 'graphminer fetch' runs this automatically; use this
command on files obtained elsewhere.

Cora and Citeseer share one format; PubMed Diabetes has its own.

Example:
  graphminer linqs cora --cites cora/cora.cites --content cora/cora.content \
    --edges cora/edge_list.tsv --nodes cora/node_list.tsv`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"cora", "citeseer", "pubmed"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var p linqs.Paths
		p.Cites, _ = cmd.Flags().GetString("cites")
		p.Content, _ = cmd.Flags().GetString("content")
		p.EdgeList, _ = cmd.Flags().GetString("edges")
		p.NodeList, _ = cmd.Flags().GetString("nodes")
		return runLinqs(args[0], p)
	},
}

func init() {
	LinqsCmd.Flags().String("cites", "", "Citation file (.cites)")
	LinqsCmd.Flags().String("content", "", "Content file (.content)")
	LinqsCmd.Flags().String("edges", "", "Edge list to write")
	LinqsCmd.Flags().String("nodes", "", "Node list to write")
	for _, name := range []string{"cites", "content", "edges", "nodes"} {
		_ = LinqsCmd.MarkFlagRequired(name)
	}
}

// converterFor maps a dataset name to its converter's callback name
func converterFor(dataset string) (string, error) {
	switch strings.ToLower(dataset) {
	case "cora", "citeseer":
		return "parse_linqs_incidence_matrix", nil
	case "pubmed", "pubmeddiabetes":
		return "parse_linqs_pubmed_incidence_matrix", nil
	}
	return "", errors.WithHint(
		errors.NewInvalidRequestError("unknown LINQS dataset %q", dataset),
		"choose one of cora, citeseer, pubmed")
}

func runLinqs(dataset string, p linqs.Paths) error {
	name, err := converterFor(dataset)
	if err != nil {
		return err
	}
	convert, err := linqs.Lookup(name)
	if err != nil {
		return err
	}
	if err := convert(p); err != nil {
		return errors.Wrapf(err, "convert %s", dataset)
	}
	pterm.Success.Printfln("Wrote %s and %s", p.EdgeList, p.NodeList)
	return nil
}
