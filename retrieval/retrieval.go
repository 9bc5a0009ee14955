// Package retrieval fetches a catalog dataset and loads its edge list:
// download into the cache, run conversion callbacks, work out the build
// parameters and read the files.
package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/linqs"
	"github.com/teranos/graphminer/logger"
	"github.com/teranos/graphminer/repository"
)

// Options mirrors the knobs every retrievable graph accepts
type Options struct {
	Directed bool
	// CachePath overrides the repository's cache directory
	CachePath string
	// Arguments override the stored build parameters
	Arguments edgelist.Parameters
}

// Result is a retrieved graph together with how it was read
type Result struct {
	Dataset    catalog.Dataset     `json:"dataset"`
	Parameters edgelist.Parameters `json:"parameters"`
	Report     repository.Report   `json:"report"`
	Graph      *edgelist.EdgeList  `json:"-"`
}

// Retriever resolves catalog names into loaded graphs
type Retriever struct {
	catalog    *catalog.Catalog
	downloader *Downloader
	sources    map[string]repository.GraphRepository
	logger     *zap.SugaredLogger
}

// New creates a Retriever. sources are consulted for datasets whose column
// layout is not stored in the catalog.
func New(c *catalog.Catalog, d *Downloader, sources ...repository.GraphRepository) *Retriever {
	r := &Retriever{
		catalog:    c,
		downloader: d,
		sources:    make(map[string]repository.GraphRepository, len(sources)),
		logger:     logger.ComponentLogger("retrieval"),
	}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

// Retrieve downloads (or reuses) the files of the named dataset and loads
// its edge list
func (r *Retriever) Retrieve(ctx context.Context, name string, opts Options) (*Result, error) {
	ds, err := r.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithDataset(ctx, ds.Method)
	log := logger.FromContext(ctx, r.logger)

	cache := opts.CachePath
	if cache == "" {
		cache = r.catalog.CachePath(ds)
	}
	dest, err := filepath.Abs(filepath.Join(cache, ds.Method))
	if err != nil {
		return nil, errors.Wrapf(err, "resolve cache for %s", ds.Method)
	}

	report, err := r.downloader.Fetch(ctx, ds.URLs, dest)
	if err != nil {
		return nil, errors.Wrapf(err, "retrieve %s", ds.Method)
	}
	if err := runCallbacks(ds.Callbacks, dest); err != nil {
		return nil, errors.Wrapf(err, "retrieve %s", ds.Method)
	}

	params, err := r.parameters(ctx, ds, report)
	if err != nil {
		return nil, errors.Wrapf(err, "retrieve %s", ds.Method)
	}
	params = params.Merge(opts.Arguments)

	start := time.Now()
	graph, err := edgelist.Load(params, dest, opts.Directed)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", ds.Method)
	}
	log.Infow("graph loaded",
		logger.FieldNodes, len(graph.Nodes),
		logger.FieldEdges, len(graph.Edges),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	return &Result{Dataset: ds, Parameters: params, Report: report, Graph: graph}, nil
}

// parameters returns the stored layout, or asks the dataset's repository to
// work it out from the downloaded files
func (r *Retriever) parameters(ctx context.Context, ds catalog.Dataset, report repository.Report) (edgelist.Parameters, error) {
	if r.catalog.HasStoredLayout(ds) {
		params := r.catalog.Parameters(ds)
		if params.EdgePath == "" {
			if len(report.Files) == 0 {
				return params, errors.NewNotFoundError("%s: nothing was downloaded", ds.Method)
			}
			params.EdgePath = report.Files[0]
		}
		return params, nil
	}

	src, ok := r.sources[ds.Repository]
	if !ok {
		return edgelist.Parameters{}, errors.WithHintf(
			errors.NewNotFoundError("%s: no stored layout and no %s source to sniff it", ds.Method, ds.Repository),
			"add sources_column_number and destinations_column_number to the dataset arguments")
	}
	edgePath, err := src.EdgeListPath(ctx, ds.Name, report)
	if err != nil {
		return edgelist.Parameters{}, err
	}
	nodePath, err := src.NodeListPath(ctx, ds.Name, report)
	if err != nil {
		return edgelist.Parameters{}, err
	}
	params, err := src.BuildParameters(ctx, ds.Name, edgePath, nodePath)
	if err != nil {
		return edgelist.Parameters{}, err
	}
	params.Name = ds.Method
	return params, nil
}

// runCallbacks converts downloaded files whose outputs are not cached yet
func runCallbacks(callbacks []catalog.Callback, dest string) error {
	for _, cb := range callbacks {
		convert, err := linqs.Lookup(cb.Name)
		if err != nil {
			return err
		}
		paths := linqs.Paths{
			Cites:    filepath.Join(dest, cb.CitesPath),
			Content:  filepath.Join(dest, cb.ContentPath),
			EdgeList: filepath.Join(dest, cb.EdgeListPath),
			NodeList: filepath.Join(dest, cb.NodeListPath),
		}
		if exists(paths.EdgeList) && exists(paths.NodeList) {
			continue
		}
		if err := convert(paths); err != nil {
			return errors.Wrapf(err, "callback %s", cb.Name)
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
