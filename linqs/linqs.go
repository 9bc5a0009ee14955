// Package linqs converts the LINQS bibliographic datasets (Cora, Citeseer,
// PubMed Diabetes) into a typed edge list and node list. Papers and words
// both become nodes; citations are Paper2Paper edges and word occurrences
// Paper2Word edges.
package linqs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/graphminer/am"
	"github.com/teranos/graphminer/errors"
)

// Node and edge types written by the converters
const (
	PaperToPaper = "Paper2Paper"
	PaperToWord  = "Paper2Word"
	WordType     = "Word"
	UnknownType  = "Unknown"

	separator = "\t"
)

// PubMedLabels names the numeric PubMed Diabetes labels, 1-based
var PubMedLabels = []string{
	"Diabetes Mellitus, Experimental",
	"Diabetes Mellitus Type 1",
	"Diabetes Mellitus Type 2",
}

// Paths locates the input and output files of one conversion
type Paths struct {
	Cites    string
	Content  string
	EdgeList string
	NodeList string
}

// Converter turns LINQS input files into an edge list and a node list
type Converter func(Paths) error

// Converters by callback name
var Converters = map[string]Converter{
	"parse_linqs_incidence_matrix":        ParseIncidenceMatrix,
	"parse_linqs_pubmed_incidence_matrix": ParsePubMedIncidenceMatrix,
}

// Lookup returns the converter registered under name
func Lookup(name string) (Converter, error) {
	c, ok := Converters[name]
	if !ok {
		return nil, errors.NewNotFoundError("no LINQS converter %q", name)
	}
	return c, nil
}

func makeOutputDirs(p Paths) error {
	for _, path := range []string{p.EdgeList, p.NodeList} {
		if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
			return errors.Wrapf(err, "create directory for %s", path)
		}
	}
	return nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}

// tsvWriter writes tab separated rows, keeping the first error
type tsvWriter struct {
	path string
	f    *os.File
	w    *bufio.Writer
	err  error
}

// partSuffix marks an output still being written
const partSuffix = ".part"

func createTSV(path string, header ...string) (*tsvWriter, error) {
	f, err := os.Create(path + partSuffix)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	t := &tsvWriter{path: path, f: f, w: bufio.NewWriter(f)}
	t.row(header...)
	return t, nil
}

func (t *tsvWriter) row(cells ...string) {
	if t.err != nil {
		return
	}
	_, t.err = io.WriteString(t.w, strings.Join(cells, separator)+"\n")
}

func (t *tsvWriter) Close() error {
	if t.err == nil {
		t.err = t.w.Flush()
	}
	if err := t.f.Close(); t.err == nil {
		t.err = err
	}
	return errors.Wrapf(t.err, "write %s", t.path)
}

// writeOutputs fills the edge and node lists through fill. The files only
// appear under their final names once fill and both writes succeed, so an
// existing pair of outputs is always a finished conversion.
func writeOutputs(p Paths, edgeHeader, nodeHeader []string, fill func(edges, nodes *tsvWriter) error) error {
	if err := makeOutputDirs(p); err != nil {
		return err
	}
	// Stale outputs from an older conversion must not survive a failed one
	for _, path := range []string{p.EdgeList, p.NodeList} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove %s", path)
		}
	}

	edges, err := createTSV(p.EdgeList, edgeHeader...)
	if err != nil {
		return err
	}
	defer os.Remove(edges.f.Name())
	nodes, err := createTSV(p.NodeList, nodeHeader...)
	if err != nil {
		edges.Close()
		return err
	}
	defer os.Remove(nodes.f.Name())

	fillErr := fill(edges, nodes)
	edgesErr := edges.Close()
	nodesErr := nodes.Close()
	switch {
	case fillErr != nil:
		return fillErr
	case edgesErr != nil:
		return edgesErr
	case nodesErr != nil:
		return nodesErr
	}

	for _, t := range []*tsvWriter{nodes, edges} {
		if err := os.Rename(t.f.Name(), t.path); err != nil {
			return errors.Wrapf(err, "move %s into place", t.path)
		}
	}
	return nil
}

// ParseIncidenceMatrix converts the Cora and Citeseer layout. The content
// file holds one paper per line (id, one 0/1 cell per word, label); the
// cites file holds tab separated paper pairs. Cited papers missing from the
// content file become Unknown nodes.
func ParseIncidenceMatrix(p Paths) error {
	contentLines, err := readLines(p.Content)
	if err != nil {
		return err
	}
	citesLines, err := readLines(p.Cites)
	if err != nil {
		return err
	}

	type paper struct {
		id, label string
		words     []int
	}
	var papers []paper
	known := make(map[string]bool)
	maxWord := -1
	for i, line := range contentLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, separator)
		if len(cells) < 2 {
			return errors.NewInvalidRequestError("%s:%d: expected an id and a label", p.Content, i+1)
		}
		pp := paper{id: cells[0], label: cells[len(cells)-1]}
		for w, cell := range cells[1 : len(cells)-1] {
			v, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return errors.Wrapf(errors.ErrInvalidRequest, "%s:%d: word cell %q: %v", p.Content, i+1, cell, err)
			}
			if v == 1 {
				pp.words = append(pp.words, w)
				if w > maxWord {
					maxWord = w
				}
			}
		}
		papers = append(papers, pp)
		known[pp.id] = true
	}
	if maxWord < 0 {
		return errors.NewInvalidRequestError("%s: no paper contains any word", p.Content)
	}

	var citations [][2]string
	unknown := make(map[string]bool)
	for i, line := range citesLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, separator)
		if len(cells) != 2 {
			return errors.NewInvalidRequestError("%s:%d: expected two paper ids", p.Cites, i+1)
		}
		citations = append(citations, [2]string{cells[0], cells[1]})
		for _, id := range cells {
			if !known[id] {
				unknown[id] = true
			}
		}
	}

	return writeOutputs(p,
		[]string{"subject", "object", "edge_type"},
		[]string{"id", "node_type"},
		func(edges, nodes *tsvWriter) error {
			for _, pp := range papers {
				nodes.row(pp.id, pp.label)
			}
			for w := 0; w <= maxWord; w++ {
				nodes.row(wordName(w), WordType)
			}
			for _, id := range sortedKeys(unknown) {
				nodes.row(id, UnknownType)
			}

			for _, c := range citations {
				edges.row(c[0], c[1], PaperToPaper)
			}
			for _, pp := range papers {
				for _, w := range pp.words {
					edges.row(pp.id, wordName(w), PaperToWord)
				}
			}
			return nil
		})
}

func wordName(i int) string { return "word_" + strconv.Itoa(i) }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var (
	pubMedEdge = regexp.MustCompile(`paper:(\d+)`)
	pubMedNode = regexp.MustCompile(`(\d+)\s+label=(\d+)`)
	pubMedWord = regexp.MustCompile(`w-(\w+)=(\S+)`)
)

// ParsePubMedIncidenceMatrix converts the PubMed Diabetes layout. Both files
// start with two header lines. Word occurrences carry their TF-IDF value as
// the edge weight; citations have no weight. Reading the content stops at
// the first line that is not a labelled paper.
func ParsePubMedIncidenceMatrix(p Paths) error {
	contentLines, err := readLines(p.Content)
	if err != nil {
		return err
	}
	citesLines, err := readLines(p.Cites)
	if err != nil {
		return err
	}

	return writeOutputs(p,
		[]string{"subject", "object", "edge_type", "weight"},
		[]string{"id", "node_type"},
		func(edges, nodes *tsvWriter) error {
			// The last cites line is dropped along with the two header lines
			if len(citesLines) > 2 {
				for _, line := range citesLines[2 : len(citesLines)-1] {
					pair := pubMedEdge.FindAllStringSubmatch(line, -1)
					if len(pair) != 2 {
						continue
					}
					edges.row(pair[0][1], pair[1][1], PaperToPaper, "")
				}
			}

			var words []string
			seen := make(map[string]bool)
			if len(contentLines) > 2 {
				for i, line := range contentLines[2:] {
					match := pubMedNode.FindAllStringSubmatch(line, -1)
					if len(match) != 1 {
						break
					}
					id, label := match[0][1], match[0][2]
					n, _ := strconv.Atoi(label)
					if n < 1 || n > len(PubMedLabels) {
						return errors.NewInvalidRequestError("%s:%d: unknown label %s", p.Content, i+3, label)
					}
					nodes.row(id, PubMedLabels[n-1])

					for _, w := range pubMedWord.FindAllStringSubmatch(line, -1) {
						edges.row(id, w[1], PaperToWord, w[2])
						if !seen[w[1]] {
							seen[w[1]] = true
							words = append(words, w[1])
						}
					}
				}
			}

			for _, w := range words {
				nodes.row(w, WordType)
			}
			return nil
		})
}
