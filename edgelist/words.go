package edgelist

import (
	"github.com/teranos/graphminer/errors"
)

// WordNodeType is the node type LINQS conversions give to vocabulary nodes
const WordNodeType = "Word"

// Features is a dense node x word matrix
type Features struct {
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// WordsFeatures extracts, for every node linked to a Word node, the weight of
// that link (1 in unweighted graphs). Missing links are 0. Rows follow the
// order in which nodes are first met, columns follow the node order of the
// words.
func WordsFeatures(el *EdgeList) (*Features, error) {
	wordColumn := make(map[int]int)
	f := &Features{}
	for id, t := range el.NodeTypes {
		if t == WordNodeType {
			wordColumn[id] = len(f.Columns)
			f.Columns = append(f.Columns, el.Nodes[id])
		}
	}
	if len(f.Columns) == 0 {
		return nil, errors.NewNotFoundError("graph %s has no %s nodes", el.Name, WordNodeType)
	}

	rowOf := make(map[int]int)
	for _, e := range el.Edges {
		word, other := -1, -1
		if col, ok := wordColumn[e.Dst]; ok {
			word, other = col, e.Src
		} else if col, ok := wordColumn[e.Src]; ok {
			word, other = col, e.Dst
		}
		if word < 0 {
			continue
		}
		if _, isWord := wordColumn[other]; isWord {
			continue
		}

		row, ok := rowOf[other]
		if !ok {
			row = len(f.Rows)
			rowOf[other] = row
			f.Rows = append(f.Rows, el.Nodes[other])
			f.Values = append(f.Values, make([]float64, len(f.Columns)))
		}
		weight := 1.0
		if el.Weighted {
			weight = e.Weight
		}
		f.Values[row][word] = weight
	}
	return f, nil
}
