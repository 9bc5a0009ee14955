// Package sniff guesses which columns of an edge or node list hold sources,
// destinations, weights and types. Known shapes are recognised directly;
// anything else is handed to a Prompter.
package sniff

import (
	"context"
	"strings"
	"unicode"

	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/frame"
)

// TimestampThreshold separates plausible weights from epoch timestamps
const TimestampThreshold = 10_000_000

// MaxNodeTypes is the number of distinct values below which a second integer
// column of a node list is taken to be a node type
const MaxNodeTypes = 100

// EdgeLayout locates the columns of an edge list
type EdgeLayout struct {
	Sources       int      `json:"sources"`
	Destinations  int      `json:"destinations"`
	Weights       *int     `json:"weights,omitempty"`
	EdgeTypes     *int     `json:"edge_types,omitempty"`
	DefaultWeight *float64 `json:"default_weight,omitempty"`
}

// NodeLayout locates the columns of a node list. Nodes is nil when there is
// no node list.
type NodeLayout struct {
	Nodes     *int `json:"nodes,omitempty"`
	NodeTypes *int `json:"node_types,omitempty"`
}

// Apply writes the layout into p as headerless numbered columns
func (l EdgeLayout) Apply(p *edgelist.Parameters) {
	no := false
	p.EdgeHeader = &no
	p.SourcesColumnNumber = intPtr(l.Sources)
	p.DestinationsColumnNumber = intPtr(l.Destinations)
	p.WeightsColumnNumber = l.Weights
	p.EdgeTypesColumnNumber = l.EdgeTypes
	p.DefaultWeight = l.DefaultWeight
}

// Apply writes the layout into p as headerless numbered columns
func (l NodeLayout) Apply(p *edgelist.Parameters) {
	no := false
	p.NodeHeader = &no
	p.NodesColumnNumber = l.Nodes
	p.NodeTypesColumnNumber = l.NodeTypes
}

func intPtr(v int) *int { return &v }

func isTimestamp(v float64) bool { return v == 0 || v > TimestampThreshold }

func errTimestamps(graphName string) error {
	return errors.NewUnsupportedGraphError("graph %s: currently graphs with timestamps are not supported", graphName)
}

// numberedGraph matches names such as G43
func numberedGraph(name string) bool {
	if len(name) < 2 || name[0] != 'G' {
		return false
	}
	for _, r := range name[1:] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SniffEdges decides the edge layout of f. weighted is the repository's own
// claim that the graph has edge weights. The first matching rule wins:
//
//	int int all-ones             -> plain edges
//	int int {1,-1} (graph Gnnn)  -> third column is the edge type
//	int int all-ones all-NA      -> plain edges
//	int int float (or weighted)  -> third column is the weight
//	int int                      -> plain edges
//	int int int-timestamps       -> unsupported
//	int int float float          -> unsupported
//	int int int int-timestamps   -> unsupported (repeated endpoints)
//
// Anything else is asked of the prompter. A weights column holding a
// non-positive value makes the graph unsupported; one with missing values
// gets a default weight of 1.
func SniffEdges(ctx context.Context, graphName string, f *frame.Frame, weighted bool, p Prompter) (EdgeLayout, error) {
	layout, matched, err := matchEdgeRules(graphName, f, weighted)
	if err != nil {
		return EdgeLayout{}, err
	}
	if !matched {
		layout, err = askEdgeLayout(ctx, graphName, f, p)
		if err != nil {
			return EdgeLayout{}, err
		}
	}

	if layout.Weights != nil {
		weights := f.Col(*layout.Weights)
		if weights.AnyLE(0) {
			return EdgeLayout{}, errors.NewUnsupportedGraphError("Found illegal non-positive weight in graph %s!", graphName)
		}
		if weights.AnyNA() {
			layout.DefaultWeight = floatPtr(1.0)
		}
	}
	return layout, nil
}

func floatPtr(v float64) *float64 { return &v }

func matchEdgeRules(graphName string, f *frame.Frame, weighted bool) (EdgeLayout, bool, error) {
	plain := EdgeLayout{Sources: 0, Destinations: 1}
	width := f.Width()
	if width < 2 {
		return plain, false, nil
	}
	intEndpoints := f.Col(0).DType == frame.Int64 && f.Col(1).DType == frame.Int64

	switch {
	case width == 3 && intEndpoints && f.Col(2).AllEqual(1):
		return plain, true, nil

	case width == 3 && intEndpoints && numberedGraph(graphName) && isSignSet(f.Col(2)):
		plain.EdgeTypes = intPtr(2)
		return plain, true, nil

	case width == 4 && intEndpoints && f.Col(2).AllEqual(1) && f.Col(3).AllNA():
		return plain, true, nil

	case width == 3 && intEndpoints && (f.Col(2).DType == frame.Float64 || weighted):
		plain.Weights = intPtr(2)
		return plain, true, nil

	case width == 2 && intEndpoints:
		return plain, true, nil

	case width == 3 && allInt(f, 0, 1, 2) && f.Col(2).All(isTimestamp):
		return plain, false, errTimestamps(graphName)

	case width == 4 && intEndpoints && f.Col(2).DType == frame.Float64 && f.Col(3).DType == frame.Float64:
		return plain, false, errTimestamps(graphName)

	case width == 4 && allInt(f, 0, 1, 2, 3) &&
		!f.Col(0).IsUnique() && !f.Col(1).IsUnique() &&
		f.Col(3).All(isTimestamp):
		return plain, false, errTimestamps(graphName)
	}

	return plain, false, nil
}

// isSignSet reports whether the distinct values are exactly {1, -1}
func isSignSet(c *frame.Column) bool {
	if c.AnyNA() {
		return false
	}
	set := c.UniqueSet()
	_, pos := set[1]
	_, neg := set[-1]
	return len(set) == 2 && pos && neg
}

func allInt(f *frame.Frame, cols ...int) bool {
	for _, i := range cols {
		if f.Col(i).DType != frame.Int64 {
			return false
		}
	}
	return true
}

func askEdgeLayout(ctx context.Context, graphName string, f *frame.Frame, p Prompter) (EdgeLayout, error) {
	p.Preview(graphName, f)
	width := f.Width()

	var layout EdgeLayout
	var err error
	if layout.Sources, err = askColumn(ctx, p, "sources_column_number", 0, width); err != nil {
		return layout, err
	}
	if layout.Destinations, err = askColumn(ctx, p, "destinations_column_number", 1, width); err != nil {
		return layout, err
	}

	if width > 2 {
		hasWeight, err := p.Bool(ctx, "has_weight", true)
		if err != nil {
			return layout, err
		}
		if hasWeight {
			w, err := askColumn(ctx, p, "weights_column_number", 2, width)
			if err != nil {
				return layout, err
			}
			layout.Weights = &w
		}
	}

	if (width == 3 && layout.Weights == nil) || width > 3 {
		hasType, err := p.Bool(ctx, "has_edge_type", true)
		if err != nil {
			return layout, err
		}
		if hasType {
			def := 2
			if layout.Weights != nil {
				def = 3
			}
			et, err := askColumn(ctx, p, "edge_types_column_number", def, width)
			if err != nil {
				return layout, err
			}
			layout.EdgeTypes = &et
		}
	}
	return layout, nil
}

func askColumn(ctx context.Context, p Prompter, label string, def, width int) (int, error) {
	v, err := p.Int(ctx, label, def)
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= width {
		return 0, errors.NewInvalidRequestError("%s: column %d out of range (file has %d columns)", label, v, width)
	}
	return v, nil
}

// SniffNodes decides the node layout of f. Two integer columns whose second
// repeats fewer than MaxNodeTypes distinct values are read as id and type;
// anything else is asked of the prompter. Declining the node types question
// means the nodes are untyped.
func SniffNodes(ctx context.Context, graphName string, f *frame.Frame, p Prompter) (NodeLayout, error) {
	if f.Width() == 2 && allInt(f, 0, 1) && !f.Col(1).IsUnique() && len(f.Col(1).Unique()) < MaxNodeTypes {
		return NodeLayout{Nodes: intPtr(0), NodeTypes: intPtr(1)}, nil
	}
	if f.Width() == 0 {
		return NodeLayout{}, errors.NewInvalidRequestError("graph %s: empty node list", graphName)
	}

	p.Preview(graphName, f)
	nodes, err := askColumn(ctx, p, "nodes_column_number", 0, f.Width())
	if err != nil {
		return NodeLayout{}, err
	}
	layout := NodeLayout{Nodes: &nodes}

	if f.Width() > 1 {
		types, err := askColumn(ctx, p, "node_types_column_number", 1, f.Width())
		switch {
		case errors.IsAborted(err):
		case err != nil:
			return NodeLayout{}, err
		default:
			layout.NodeTypes = &types
		}
	}
	return layout, nil
}

// ChooseFile asks the prompter to pick one of files, offering def first
func ChooseFile(ctx context.Context, p Prompter, label string, files []string, def string) (string, error) {
	if len(files) == 0 {
		return "", errors.NewNotFoundError("%s: no candidate files", label)
	}
	choice, err := p.Choose(ctx, label, files, def)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f == choice {
			return choice, nil
		}
	}
	return "", errors.NewInvalidRequestError("%s: %q is not one of %s", label, choice, strings.Join(files, ", "))
}
