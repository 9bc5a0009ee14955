// Package yue serves the biomedical benchmark graphs collected by Yue et al.
// (BioNEV). The collection is small and fixed, so it ships embedded.
package yue

import (
	"context"
	_ "embed"
	"encoding/json"
	"sort"

	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/repository"
)

const (
	Name        = "yue"
	DisplayName = "Yue"

	nameKey     = "name"
	citationKey = "yue2020graph"
)

//go:embed yue.json
var embedded []byte

type entry struct {
	URLs      []string            `json:"urls"`
	Arguments edgelist.Parameters `json:"arguments"`
}

// Repository implements repository.GraphRepository over the embedded table
type Repository struct {
	graphs map[string]entry
}

var _ repository.GraphRepository = (*Repository)(nil)

// New decodes the embedded graph table
func New() (*Repository, error) {
	var graphs map[string]entry
	if err := json.Unmarshal(embedded, &graphs); err != nil {
		return nil, errors.Wrap(err, "decode yue.json")
	}
	return &Repository{graphs: graphs}, nil
}

func (r *Repository) Name() string        { return Name }
func (r *Repository) DisplayName() string { return DisplayName }

// StoredGraphName keeps the upstream name
func (r *Repository) StoredGraphName(graphName string) string { return graphName }

// GraphList returns the graphs sorted by name
func (r *Repository) GraphList(context.Context) ([]repository.GraphData, error) {
	names := make([]string, 0, len(r.graphs))
	for name := range r.graphs {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]repository.GraphData, len(names))
	for i, name := range names {
		rows[i] = repository.GraphData{nameKey: name}
	}
	return rows, nil
}

func (r *Repository) GraphName(data repository.GraphData) string { return data[nameKey] }

func (r *Repository) GraphURLs(data repository.GraphData) []string {
	return r.graphs[r.GraphName(data)].URLs
}

func (r *Repository) Citations(context.Context, repository.GraphData) ([]string, error) {
	bib, err := catalog.Citation(citationKey)
	if err != nil {
		return nil, err
	}
	return []string{bib}, nil
}

func (r *Repository) IsUnsupported(string) bool { return false }

func (r *Repository) lookup(graphName string) (entry, error) {
	e, ok := r.graphs[graphName]
	if !ok {
		return entry{}, errors.NewNotFoundError("yue has no graph %q", graphName)
	}
	return e, nil
}

func (r *Repository) EdgeListPath(_ context.Context, graphName string, report repository.Report) (string, error) {
	e, err := r.lookup(graphName)
	if err != nil {
		return "", err
	}
	return report.Join(e.Arguments.EdgePath), nil
}

func (r *Repository) NodeListPath(_ context.Context, graphName string, report repository.Report) (string, error) {
	e, err := r.lookup(graphName)
	if err != nil {
		return "", err
	}
	if e.Arguments.NodePath == "" {
		return "", nil
	}
	return report.Join(e.Arguments.NodePath), nil
}

// BuildParameters applies the stored arguments, leaving the paths to the
// ones resolved against the download
func (r *Repository) BuildParameters(_ context.Context, graphName, edgePath, nodePath string) (edgelist.Parameters, error) {
	e, err := r.lookup(graphName)
	if err != nil {
		return edgelist.Parameters{}, err
	}
	args := e.Arguments
	args.EdgePath, args.NodePath = "", ""
	return repository.BaseParameters(graphName, edgePath, nodePath).Merge(args), nil
}
