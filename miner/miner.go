// Package miner is the batch preparation step: it walks a repository's
// listing, downloads each graph, works out how to read it, summarises it and
// emits catalog entries. Every dataset gets a run row so a batch can be
// inspected and resumed.
package miner

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/db"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/logger"
	"github.com/teranos/graphminer/repository"
)

// RenderedAtLayout formats the time a dataset was mined
const RenderedAtLayout = "2006-01-02 15:04:05.000000"

// Fetcher downloads graph files into a directory
type Fetcher interface {
	Fetch(ctx context.Context, urls []string, dest string) (repository.Report, error)
}

// Options selects what a batch mines
type Options struct {
	// Limit caps the number of graphs considered; 0 means all
	Limit int
	// Only restricts the batch to these graph or method names
	Only []string
	// DryRun lists the selection without downloading anything
	DryRun bool
}

// Result is the outcome of one batch
type Result struct {
	BatchID string       `json:"batch_id"`
	Runs    []*Run       `json:"runs"`
	Catalog catalog.File `json:"catalog"`
}

// Counts tallies the runs by status
func (r *Result) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, run := range r.Runs {
		counts[run.Status]++
	}
	return counts
}

// Miner mines one repository
type Miner struct {
	repo      repository.GraphRepository
	fetcher   Fetcher
	store     *Store
	cachePath string
	workers   int
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// Config wires a Miner. Store may be nil to skip persistence; Workers below
// one means serial mining, which interactive prompting requires.
type Config struct {
	Repository repository.GraphRepository
	Fetcher    Fetcher
	Store      *Store
	CachePath  string
	Workers    int
}

// New creates a Miner
func New(cfg Config) *Miner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Miner{
		repo:      cfg.Repository,
		fetcher:   cfg.Fetcher,
		store:     cfg.Store,
		cachePath: cfg.CachePath,
		workers:   workers,
		logger:    logger.ComponentLogger("miner"),
		now:       time.Now,
	}
}

// Select applies Only and Limit to the repository listing
func (m *Miner) Select(ctx context.Context, opts Options) ([]repository.GraphData, error) {
	graphs, err := m.repo.GraphList(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s graphs", m.repo.DisplayName())
	}

	if len(opts.Only) > 0 {
		var kept []repository.GraphData
		for _, g := range graphs {
			name := m.repo.GraphName(g)
			if matchesAny(opts.Only, name, m.repo.StoredGraphName(name)) {
				kept = append(kept, g)
			}
		}
		graphs = kept
	}
	if opts.Limit > 0 && len(graphs) > opts.Limit {
		graphs = graphs[:opts.Limit]
	}
	return graphs, nil
}

func matchesAny(wanted []string, names ...string) bool {
	for _, w := range wanted {
		for _, n := range names {
			if strings.EqualFold(strings.TrimSpace(w), n) {
				return true
			}
		}
	}
	return false
}

// Run mines the selected graphs. A failing or unsupported graph is recorded
// and skipped; only store errors and cancellation stop the batch.
func (m *Miner) Run(ctx context.Context, opts Options) (*Result, error) {
	graphs, err := m.Select(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{BatchID: uuid.NewString()}
	ctx = logger.WithRunID(ctx, result.BatchID)
	log := logger.FromContext(ctx, m.logger)
	log.Infow("mining batch",
		logger.FieldRepository, m.repo.Name(),
		logger.FieldCount, len(graphs),
		"workers", m.workers,
		"dry_run", opts.DryRun)

	runs := make([]*Run, len(graphs))
	entries := make([]*catalog.Dataset, len(graphs))

	if opts.DryRun {
		for i, g := range graphs {
			runs[i] = m.newRun(result.BatchID, g)
			if m.repo.IsUnsupported(runs[i].Dataset) {
				runs[i].Status = StatusUnsupported
			}
		}
		result.Runs = runs
		return result, nil
	}

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(m.workers)
	for i, g := range graphs {
		i, g := i, g
		group.Go(func() error {
			run, entry, err := m.mineOne(gctx, result.BatchID, g)
			mu.Lock()
			runs[i], entries[i] = run, entry
			mu.Unlock()
			return err
		})
	}
	err = group.Wait()

	for i, run := range runs {
		if run == nil {
			continue
		}
		result.Runs = append(result.Runs, run)
		if entries[i] != nil {
			result.Catalog.Datasets = append(result.Catalog.Datasets, *entries[i])
		}
	}
	if errors.Is(err, db.ErrDatabaseClosed) {
		return result, errors.WithHint(err, "the run database was closed mid-batch; rerun the batch to record the remaining graphs")
	}
	if err != nil {
		return result, err
	}

	counts := result.Counts()
	log.Infow("mining batch finished",
		string(StatusCompleted), counts[StatusCompleted],
		string(StatusUnsupported), counts[StatusUnsupported],
		string(StatusFailed), counts[StatusFailed])
	return result, nil
}

func (m *Miner) newRun(batchID string, g repository.GraphData) *Run {
	name := m.repo.GraphName(g)
	now := m.now()
	return &Run{
		ID:         uuid.NewString(),
		BatchID:    batchID,
		Repository: m.repo.Name(),
		Dataset:    name,
		StoredName: m.repo.StoredGraphName(name),
		Status:     StatusRunning,
		URLs:       m.repo.GraphURLs(g),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// mineOne processes one graph. The returned error is non-nil only when the
// batch must stop.
func (m *Miner) mineOne(ctx context.Context, batchID string, g repository.GraphData) (*Run, *catalog.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	run := m.newRun(batchID, g)
	started := m.now()
	run.StartedAt = &started
	ctx = logger.WithDataset(ctx, run.Dataset)
	log := logger.FromContext(ctx, m.logger)

	if err := m.create(ctx, run); err != nil {
		return run, nil, err
	}

	entry, err := m.prepare(ctx, run, g)
	switch {
	case err == nil:
		run.Status = StatusCompleted
	case errors.IsUnsupportedGraph(err):
		run.Status = StatusUnsupported
		run.Error = err.Error()
		log.Infow("graph skipped", logger.FieldError, err)
	case ctx.Err() != nil:
		return run, nil, ctx.Err()
	default:
		run.Status = StatusFailed
		run.Error = err.Error()
		log.Warnw("graph failed", logger.FieldError, err)
	}

	completed := m.now()
	run.CompletedAt = &completed
	run.UpdatedAt = completed
	if err := m.update(ctx, run); err != nil {
		return run, nil, err
	}
	log.Debugw("graph mined",
		logger.FieldStatus, run.Status,
		logger.FieldDurationMS, run.Duration().Milliseconds())
	return run, entry, nil
}

func (m *Miner) create(ctx context.Context, run *Run) error {
	if m.store == nil {
		return nil
	}
	return m.store.Create(ctx, run)
}

func (m *Miner) update(ctx context.Context, run *Run) error {
	if m.store == nil {
		return nil
	}
	return m.store.Update(ctx, run)
}

// prepare downloads, reads and summarises one graph, filling run as it goes
func (m *Miner) prepare(ctx context.Context, run *Run, g repository.GraphData) (*catalog.Dataset, error) {
	if m.repo.IsUnsupported(run.Dataset) {
		return nil, errors.NewUnsupportedGraphError("graph %s is known to be unsupported", run.Dataset)
	}

	dest, err := filepath.Abs(filepath.Join(m.cachePath, run.StoredName))
	if err != nil {
		return nil, errors.Wrap(err, "resolve cache")
	}
	report, err := m.fetcher.Fetch(ctx, run.URLs, dest)
	if err != nil {
		return nil, err
	}

	edgePath, err := m.repo.EdgeListPath(ctx, run.Dataset, report)
	if err != nil {
		return nil, err
	}
	nodePath, err := m.repo.NodeListPath(ctx, run.Dataset, report)
	if err != nil {
		return nil, err
	}
	params, err := m.repo.BuildParameters(ctx, run.Dataset, edgePath, nodePath)
	if err != nil {
		return nil, err
	}
	run.Parameters = &params

	graph, err := edgelist.Load(params, "", false)
	if err != nil {
		return nil, err
	}
	summary := graph.Summary()
	run.Summary = &summary

	citations, err := m.repo.Citations(ctx, g)
	if err != nil {
		return nil, err
	}
	run.Citations = citations

	return m.entry(run, g, params, summary, dest), nil
}

// entry builds the catalog record of a mined graph. Paths are stored
// relative to the dataset's cache directory.
func (m *Miner) entry(run *Run, g repository.GraphData, params edgelist.Parameters, summary edgelist.Summary, dest string) *catalog.Dataset {
	args := params
	args.Name = ""
	args.EdgePath = relativeTo(dest, params.EdgePath)
	args.NodePath = relativeTo(dest, params.NodePath)

	ds := &catalog.Dataset{
		Name:       run.Dataset,
		Method:     run.StoredName,
		Repository: run.Repository,
		Type:       g["Type"],
		Taxon:      g["taxon_id"],
		URLs:       run.URLs,
		Directed:   false,
		Weighted:   summary.Weighted,
		Nodes:      int64(summary.Nodes),
		Edges:      int64(summary.Edges),
		Density:    summary.Density,
		RenderedAt: m.now().Format(RenderedAtLayout),
		Report:     summary.Report(),
		Arguments:  args,
	}
	for _, c := range run.Citations {
		if key := catalog.BibKey(c); key != "" {
			ds.Citations = append(ds.Citations, key)
		} else {
			ds.Quotes = append(ds.Quotes, c)
		}
	}
	return ds
}

func relativeTo(base, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
