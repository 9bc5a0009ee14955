// Package edgelist loads a graph's edge list (and optional node list) into a
// plain in-memory form and summarises it.
package edgelist

import (
	"path/filepath"

	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/frame"
)

// Edge is one row of the edge list. Src and Dst index EdgeList.Nodes.
type Edge struct {
	Src    int
	Dst    int
	Weight float64
	Type   string
}

// EdgeList is a loaded graph. Nodes keeps first-seen order: node list rows
// first, then endpoints as they appear in the edge list.
type EdgeList struct {
	Name      string
	Directed  bool
	Weighted  bool
	Nodes     []string
	NodeTypes []string
	Edges     []Edge

	index map[string]int
}

// NodeID returns the index of a node name
func (el *EdgeList) NodeID(name string) (int, bool) {
	id, ok := el.index[name]
	return id, ok
}

// HasNodeTypes reports whether any node carries a type
func (el *EdgeList) HasNodeTypes() bool {
	for _, t := range el.NodeTypes {
		if t != "" {
			return true
		}
	}
	return false
}

// HasEdgeTypes reports whether any edge carries a type
func (el *EdgeList) HasEdgeTypes() bool {
	for _, e := range el.Edges {
		if e.Type != "" {
			return true
		}
	}
	return false
}

func (el *EdgeList) addNode(name, nodeType string) int {
	if id, ok := el.index[name]; ok {
		if nodeType != "" && el.NodeTypes[id] == "" {
			el.NodeTypes[id] = nodeType
		}
		return id
	}
	id := len(el.Nodes)
	el.index[name] = id
	el.Nodes = append(el.Nodes, name)
	el.NodeTypes = append(el.NodeTypes, nodeType)
	return id
}

// Load reads the files named by p. Relative paths are resolved against base.
func Load(p Parameters, base string, directed bool) (*EdgeList, error) {
	if p.EdgePath == "" {
		return nil, errors.NewInvalidRequestError("graph %q has no edge_path", p.Name)
	}

	el := &EdgeList{
		Name:     p.Name,
		Directed: directed,
		index:    make(map[string]int),
	}

	if p.NodePath != "" {
		if err := el.loadNodes(p, resolve(base, p.NodePath)); err != nil {
			return nil, err
		}
	}
	if err := el.loadEdges(p, resolve(base, p.EdgePath)); err != nil {
		return nil, err
	}
	return el, nil
}

func resolve(base, path string) string {
	if base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (el *EdgeList) loadNodes(p Parameters, path string) error {
	fr, err := frame.Read(path, frame.Options{
		Separator: p.NodeSeparator,
		Header:    deref(p.NodeHeader),
	})
	if err != nil {
		return errors.Wrap(err, "load node list")
	}

	nodes, err := column(fr, "nodes", p.NodesColumn, p.NodesColumnNumber, 0)
	if err != nil {
		return err
	}
	types, err := column(fr, "node_types", p.NodeTypesColumn, p.NodeTypesColumnNumber, -1)
	if err != nil {
		return err
	}

	for r := 0; r < fr.Len(); r++ {
		if nodes.IsNA(r) {
			return errors.Newf("%s: missing node name at row %d", path, r)
		}
		nodeType := ""
		if types != nil && !types.IsNA(r) {
			nodeType = types.Raw(r)
		}
		el.addNode(nodes.Raw(r), nodeType)
	}
	return nil
}

func (el *EdgeList) loadEdges(p Parameters, path string) error {
	fr, err := frame.Read(path, frame.Options{
		Separator: p.EdgeSeparator,
		Header:    deref(p.EdgeHeader),
	})
	if err != nil {
		return errors.Wrap(err, "load edge list")
	}

	sources, err := column(fr, "sources", p.SourcesColumn, p.SourcesColumnNumber, 0)
	if err != nil {
		return err
	}
	destinations, err := column(fr, "destinations", p.DestinationsColumn, p.DestinationsColumnNumber, 1)
	if err != nil {
		return err
	}
	weights, err := column(fr, "weights", p.WeightsColumn, p.WeightsColumnNumber, -1)
	if err != nil {
		return err
	}
	edgeTypes, err := column(fr, "edge_types", p.EdgeTypesColumn, p.EdgeTypesColumnNumber, -1)
	if err != nil {
		return err
	}
	if weights != nil && weights.DType == frame.String {
		return errors.NewInvalidRequestError("%s: weights column %q is not numeric", path, weights.Name)
	}

	el.Weighted = weights != nil
	el.Edges = make([]Edge, 0, fr.Len())
	for r := 0; r < fr.Len(); r++ {
		if sources.IsNA(r) || destinations.IsNA(r) {
			return errors.Newf("%s: missing endpoint at row %d", path, r)
		}
		e := Edge{
			Src:    el.addNode(sources.Raw(r), ""),
			Dst:    el.addNode(destinations.Raw(r), ""),
			Weight: 1,
		}
		if weights != nil {
			switch {
			case !weights.IsNA(r):
				e.Weight = weights.Float(r)
			case p.DefaultWeight != nil:
				e.Weight = *p.DefaultWeight
			default:
				return errors.Newf("%s: missing weight at row %d and no default_weight", path, r)
			}
		}
		if edgeTypes != nil && !edgeTypes.IsNA(r) {
			e.Type = edgeTypes.Raw(r)
		}
		el.Edges = append(el.Edges, e)
	}
	return nil
}

// column resolves a column by name, then number, then fallback (-1 = none)
func column(fr *frame.Frame, what, name string, number *int, fallback int) (*frame.Column, error) {
	if name != "" {
		i, ok := fr.ColumnIndex(name)
		if !ok {
			return nil, errors.NewInvalidRequestError("%s column %q not found", what, name)
		}
		return fr.Col(i), nil
	}
	i := fallback
	if number != nil {
		i = *number
	}
	if i < 0 {
		return nil, nil
	}
	if i >= fr.Width() {
		return nil, errors.NewInvalidRequestError("%s column %d out of range (file has %d columns)", what, i, fr.Width())
	}
	return fr.Col(i), nil
}

func deref(b *bool) bool {
	return b != nil && *b
}
