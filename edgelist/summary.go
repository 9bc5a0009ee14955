package edgelist

import (
	"fmt"
	"sort"
	"strings"
)

// Summary holds the statistics printed after loading a graph
type Summary struct {
	Name          string         `json:"name"`
	Directed      bool           `json:"directed"`
	Weighted      bool           `json:"weighted"`
	Nodes         int            `json:"nodes"`
	Edges         int            `json:"edges"`
	SelfLoops     int            `json:"self_loops"`
	Singletons    int            `json:"singletons"`
	Density       float64        `json:"density"`
	Components    int            `json:"components"`
	MaxComponent  int            `json:"max_component"`
	MinComponent  int            `json:"min_component"`
	MedianDegree  int            `json:"median_degree"`
	MeanDegree    float64        `json:"mean_degree"`
	ModeDegree    int            `json:"mode_degree"`
	TopCentral    []NodeDegree   `json:"top_central,omitempty"`
	NodeTypes     map[string]int `json:"node_types,omitempty"`
	EdgeTypes     map[string]int `json:"edge_types,omitempty"`
	nodeTypeOrder []string
	edgeTypeOrder []string
}

// NodeDegree pairs a node name with its degree
type NodeDegree struct {
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}

type pair struct{ a, b int }

// Summary computes graph statistics. Duplicate edges are counted once;
// undirected edges are unordered pairs. Density divides the number of
// directed arcs (an undirected edge is two arcs, a self-loop one) by n(n-1).
func (el *EdgeList) Summary() Summary {
	s := Summary{
		Name:     el.Name,
		Directed: el.Directed,
		Weighted: el.Weighted,
		Nodes:    len(el.Nodes),
	}

	n := len(el.Nodes)
	seen := make(map[pair]struct{}, len(el.Edges))
	neighbours := make([]map[int]struct{}, n)
	for i := range neighbours {
		neighbours[i] = make(map[int]struct{})
	}
	uf := newUnionFind(n)
	linked := make([]bool, n)
	edgeTypes := make(map[string]int)

	for _, e := range el.Edges {
		key := pair{e.Src, e.Dst}
		if !el.Directed && key.a > key.b {
			key.a, key.b = key.b, key.a
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if e.Type != "" {
			if edgeTypes[e.Type] == 0 {
				s.edgeTypeOrder = append(s.edgeTypeOrder, e.Type)
			}
			edgeTypes[e.Type]++
		}
		if e.Src == e.Dst {
			s.SelfLoops++
		} else {
			linked[e.Src], linked[e.Dst] = true, true
		}
		neighbours[e.Src][e.Dst] = struct{}{}
		if !el.Directed {
			neighbours[e.Dst][e.Src] = struct{}{}
		}
		uf.union(e.Src, e.Dst)
	}
	s.Edges = len(seen)
	if len(edgeTypes) > 0 {
		s.EdgeTypes = edgeTypes
	}

	arcs := s.Edges
	if !el.Directed {
		arcs = 2*s.Edges - s.SelfLoops
	}
	if n > 1 {
		s.Density = float64(arcs) / float64(n*(n-1))
	}

	degrees := make([]int, n)
	for i, nb := range neighbours {
		degrees[i] = len(nb)
		if !linked[i] {
			s.Singletons++
		}
	}
	if n > 0 {
		s.MeanDegree = float64(arcs) / float64(n)
		s.MedianDegree, s.ModeDegree = medianMode(degrees)
		s.TopCentral = topCentral(el.Nodes, degrees, 5)
	}

	s.Components, s.MaxComponent, s.MinComponent = uf.components()

	nodeTypes := make(map[string]int)
	for _, t := range el.NodeTypes {
		if t == "" {
			continue
		}
		if nodeTypes[t] == 0 {
			s.nodeTypeOrder = append(s.nodeTypeOrder, t)
		}
		nodeTypes[t]++
	}
	if len(nodeTypes) > 0 {
		s.NodeTypes = nodeTypes
	}

	return s
}

func medianMode(degrees []int) (int, int) {
	sorted := append([]int(nil), degrees...)
	sort.Ints(sorted)
	median := sorted[(len(sorted)-1)/2]

	counts := make(map[int]int)
	mode, best := sorted[0], 0
	for _, d := range sorted {
		counts[d]++
		if counts[d] > best {
			mode, best = d, counts[d]
		}
	}
	return median, mode
}

func topCentral(names []string, degrees []int, k int) []NodeDegree {
	idx := make([]int, len(names))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return degrees[idx[a]] > degrees[idx[b]] })
	if len(idx) > k {
		idx = idx[:k]
	}
	out := make([]NodeDegree, len(idx))
	for i, id := range idx {
		out[i] = NodeDegree{Name: names[id], Degree: degrees[id]}
	}
	return out
}

// DensityLabel describes a density in words
func DensityLabel(density float64) string {
	switch {
	case density <= 0.0001:
		return "extremely sparse"
	case density < 0.001:
		return "quite sparse"
	case density < 0.01:
		return "sparse"
	case density < 0.1:
		return "dense"
	case density < 0.5:
		return "quite dense"
	default:
		return "extremely dense"
	}
}

// Report renders the summary as a paragraph
func (s Summary) Report() string {
	var b strings.Builder

	direction := "undirected"
	if s.Directed {
		direction = "directed"
	}
	weighted := "unweighted"
	if s.Weighted {
		weighted = "weighted"
	}

	fmt.Fprintf(&b, "The %s graph %s has %d nodes", direction, s.Name, s.Nodes)
	if len(s.NodeTypes) > 0 {
		fmt.Fprintf(&b, " with %s", typeList(len(s.NodeTypes), "node", s.nodeTypeOrder, s.NodeTypes, "nodes"))
	}
	if s.Singletons > 0 {
		fmt.Fprintf(&b, ", of which %d are singletons,", s.Singletons)
	}
	fmt.Fprintf(&b, " and %d %s edges", s.Edges, weighted)
	if len(s.EdgeTypes) > 0 {
		fmt.Fprintf(&b, " with %s", typeList(len(s.EdgeTypes), "edge", s.edgeTypeOrder, s.EdgeTypes, "edges"))
	}
	if s.SelfLoops == 0 {
		b.WriteString(", of which none are self-loops.")
	} else {
		fmt.Fprintf(&b, ", of which %d are self-loops.", s.SelfLoops)
	}

	fmt.Fprintf(&b, " The graph is %s as it has a density of %.5f and ", DensityLabel(s.Density), s.Density)
	if s.Components == 1 {
		b.WriteString("is connected, as it has a single component.")
	} else {
		fmt.Fprintf(&b, "has %d connected components, where the component with most nodes has %s and the component with the least nodes has %s.",
			s.Components, nodeCount(s.MaxComponent), nodeCount(s.MinComponent))
	}

	if s.Nodes > 0 {
		fmt.Fprintf(&b, " The graph median node degree is %d, the mean node degree is %.2f, and the node degree mode is %d.",
			s.MedianDegree, s.MeanDegree, s.ModeDegree)
		parts := make([]string, len(s.TopCentral))
		for i, nd := range s.TopCentral {
			parts[i] = fmt.Sprintf("%s (degree %d)", nd.Name, nd.Degree)
		}
		fmt.Fprintf(&b, " The top %d most central nodes are %s.", len(parts), joinAnd(parts))
	}

	return b.String()
}

func typeList(total int, kind string, order []string, counts map[string]int, unit string) string {
	sorted := append([]string(nil), order...)
	// order is lost when a summary is decoded from JSON
	if len(sorted) == 0 {
		for t := range counts {
			sorted = append(sorted, t)
		}
		sort.Strings(sorted)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return counts[sorted[i]] > counts[sorted[j]] })

	prefix := ""
	if len(sorted) > 5 {
		sorted = sorted[:5]
		prefix = "the 5 most common are "
	}
	parts := make([]string, len(sorted))
	for i, t := range sorted {
		parts[i] = fmt.Sprintf("%s (%s number %d)", t, unit, counts[t])
	}
	return fmt.Sprintf("%d different %s types: %s%s", total, kind, prefix, joinAnd(parts))
}

func nodeCount(n int) string {
	if n == 1 {
		return "a single node"
	}
	return fmt.Sprintf("%d nodes", n)
}

func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// components returns the component count and the largest and smallest sizes
func (uf *unionFind) components() (count, max, min int) {
	for i := range uf.parent {
		if uf.find(i) != i {
			continue
		}
		count++
		size := uf.size[i]
		if size > max {
			max = size
		}
		if min == 0 || size < min {
			min = size
		}
	}
	return count, max, min
}
