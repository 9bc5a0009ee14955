// Package repository defines how graphs are listed, named, located and
// described for each supported upstream source. The miner walks a
// GraphRepository to turn an upstream listing into catalog entries.
package repository

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
)

// GraphData is one row of an upstream listing: a table row, a species line
// or a JSON entry, keyed by column name
type GraphData map[string]string

// Report describes what a download produced
type Report struct {
	Destination string   `json:"destination"` // directory holding the extracted files
	Files       []string `json:"files"`
}

// GraphRepository is an upstream source of graphs
type GraphRepository interface {
	// Name is the short lowercase key used in the catalog and the cache
	Name() string
	// DisplayName is the human spelling, e.g. NetworkRepository
	DisplayName() string
	// StoredGraphName turns an upstream graph name into a method name
	StoredGraphName(graphName string) string

	GraphList(ctx context.Context) ([]GraphData, error)
	GraphName(data GraphData) string
	GraphURLs(data GraphData) []string
	Citations(ctx context.Context, data GraphData) ([]string, error)

	// IsUnsupported reports graphs known to be unloadable before download
	IsUnsupported(graphName string) bool

	EdgeListPath(ctx context.Context, graphName string, report Report) (string, error)
	// NodeListPath returns "" when the graph has no node list
	NodeListPath(ctx context.Context, graphName string, report Report) (string, error)
	BuildParameters(ctx context.Context, graphName, edgePath, nodePath string) (edgelist.Parameters, error)
}

// BaseParameters are the parameters every repository starts from
func BaseParameters(graphName, edgePath, nodePath string) edgelist.Parameters {
	return edgelist.Parameters{
		Name:     graphName,
		EdgePath: edgePath,
		NodePath: nodePath,
	}
}

// ListDataFiles returns the sorted names of the files in dir, leaving out
// readme files and hidden download markers
func ListDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.Contains(strings.ToLower(e.Name()), "readme") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Capitalize upper-cases the first rune of term and lower-cases the rest
func Capitalize(term string) string {
	if term == "" {
		return ""
	}
	runes := []rune(strings.ToLower(term))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// CapitalizeTerms joins capitalised terms. A result starting with a digit
// is prefixed with "Graph" so it stays a valid identifier.
func CapitalizeTerms(terms []string) string {
	var b strings.Builder
	for _, t := range terms {
		b.WriteString(Capitalize(t))
	}
	name := b.String()
	if name != "" && unicode.IsDigit([]rune(name)[0]) {
		name = "Graph" + name
	}
	return name
}

// Join resolves name against the download destination
func (r Report) Join(name string) string {
	return filepath.Join(r.Destination, name)
}
