package miner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphminer/db"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	dbtest "github.com/teranos/graphminer/internal/testing"
	"github.com/teranos/graphminer/repository"
)

const toyBib = `@misc{toy2024graphs,
  title = {Toy graphs}
}`

// fakeRepo lists a fixed set of graphs whose files are written by fakeFetcher
type fakeRepo struct {
	graphs []repository.GraphData
}

func (f *fakeRepo) Name() string                               { return "fake" }
func (f *fakeRepo) DisplayName() string                        { return "Fake" }
func (f *fakeRepo) StoredGraphName(name string) string         { return repository.CapitalizeTerms(strings.Split(name, "-")) }
func (f *fakeRepo) GraphName(data repository.GraphData) string { return data["name"] }
func (f *fakeRepo) IsUnsupported(name string) bool             { return strings.HasPrefix(name, "bad") }

func (f *fakeRepo) GraphList(context.Context) ([]repository.GraphData, error) {
	return f.graphs, nil
}

func (f *fakeRepo) GraphURLs(data repository.GraphData) []string {
	return []string{"http://example.org/" + data["name"] + ".edges"}
}

func (f *fakeRepo) Citations(_ context.Context, data repository.GraphData) ([]string, error) {
	return []string{toyBib, "Quoted by " + data["name"]}, nil
}

func (f *fakeRepo) EdgeListPath(_ context.Context, name string, report repository.Report) (string, error) {
	if strings.HasPrefix(name, "idx") {
		return "", errors.NewUnsupportedGraphError("%s only ships a graph index", name)
	}
	return report.Files[0], nil
}

func (f *fakeRepo) NodeListPath(context.Context, string, repository.Report) (string, error) {
	return "", nil
}

func (f *fakeRepo) BuildParameters(_ context.Context, name, edgePath, nodePath string) (edgelist.Parameters, error) {
	p := repository.BaseParameters(name, edgePath, nodePath)
	header := false
	src, dst := 0, 1
	p.EdgeHeader = &header
	p.EdgeSeparator = " "
	p.SourcesColumnNumber = &src
	p.DestinationsColumnNumber = &dst
	return p, nil
}

// fakeFetcher writes a triangle, or fails for graphs named broken-*
type fakeFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, urls []string, dest string) (repository.Report, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	name := filepath.Base(urls[0])
	if strings.HasPrefix(name, "broken") {
		return repository.Report{}, errors.Newf("download %s: 404", name)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return repository.Report{}, err
	}
	path := filepath.Join(dest, name)
	if err := os.WriteFile(path, []byte("1 2\n2 3\n3 1\n"), 0644); err != nil {
		return repository.Report{}, err
	}
	return repository.Report{Destination: dest, Files: []string{path}}, nil
}

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(dbtest.CreateMigratedTestDB(t))
}

func graphs(names ...string) []repository.GraphData {
	var out []repository.GraphData
	for _, n := range names {
		out = append(out, repository.GraphData{"name": n, "Type": "misc"})
	}
	return out
}

func TestRun_RecordsEveryOutcome(t *testing.T) {
	for _, workers := range []int{1, 3} {
		store := newStore(t)
		fetcher := &fakeFetcher{}
		m := New(Config{
			Repository: &fakeRepo{graphs: graphs("toy-one", "bad-graph", "broken-link", "idx-only", "toy-two")},
			Fetcher:    fetcher,
			Store:      store,
			CachePath:  t.TempDir(),
			Workers:    workers,
		})

		res, err := m.Run(context.Background(), Options{})
		require.NoError(t, err)
		require.Len(t, res.Runs, 5)
		assert.NotEmpty(t, res.BatchID)

		byName := map[string]*Run{}
		for _, r := range res.Runs {
			byName[r.Dataset] = r
		}
		assert.Equal(t, StatusCompleted, byName["toy-one"].Status)
		assert.Equal(t, StatusUnsupported, byName["bad-graph"].Status)
		assert.Equal(t, StatusFailed, byName["broken-link"].Status)
		assert.Contains(t, byName["broken-link"].Error, "404")
		assert.Equal(t, StatusUnsupported, byName["idx-only"].Status)
		assert.Equal(t, 4, fetcher.calls, "known unsupported graphs are not downloaded")

		// listing order survives concurrent mining
		assert.Equal(t, "toy-one", res.Runs[0].Dataset)
		assert.Equal(t, "toy-two", res.Runs[4].Dataset)

		counts, err := store.Counts(context.Background(), res.BatchID)
		require.NoError(t, err)
		assert.Equal(t, map[Status]int{
			StatusCompleted:   2,
			StatusUnsupported: 2,
			StatusFailed:      1,
		}, counts)
		assert.Equal(t, counts, res.Counts())
	}
}

func TestRun_CatalogEntries(t *testing.T) {
	cache := t.TempDir()
	m := New(Config{
		Repository: &fakeRepo{graphs: graphs("toy-one")},
		Fetcher:    &fakeFetcher{},
		CachePath:  cache,
	})
	m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	res, err := m.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Catalog.Datasets, 1)

	ds := res.Catalog.Datasets[0]
	assert.Equal(t, "toy-one", ds.Name)
	assert.Equal(t, "ToyOne", ds.Method)
	assert.Equal(t, "fake", ds.Repository)
	assert.Equal(t, "misc", ds.Type)
	assert.EqualValues(t, 3, ds.Nodes)
	assert.EqualValues(t, 3, ds.Edges)
	assert.InDelta(t, 1.0, ds.Density, 1e-9)
	assert.Equal(t, "2024-05-01 12:00:00.000000", ds.RenderedAt)
	assert.Equal(t, []string{"toy2024graphs"}, ds.Citations)
	assert.Equal(t, []string{"Quoted by toy-one"}, ds.Quotes)
	assert.Equal(t, "toy-one.edges", ds.Arguments.EdgePath, "paths are relative to the dataset directory")
	assert.Empty(t, ds.Arguments.Name)
	assert.NotEmpty(t, ds.Report)

	run := res.Runs[0]
	require.NotNil(t, run.Summary)
	assert.Equal(t, 3, run.Summary.Nodes)
	assert.True(t, filepath.IsAbs(run.Parameters.EdgePath))
}

func TestRun_SelectAndDryRun(t *testing.T) {
	fetcher := &fakeFetcher{}
	m := New(Config{
		Repository: &fakeRepo{graphs: graphs("toy-one", "bad-graph", "toy-two", "toy-three")},
		Fetcher:    fetcher,
		CachePath:  t.TempDir(),
	})

	res, err := m.Run(context.Background(), Options{Only: []string{"ToyTwo", "bad-graph"}, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Runs, 2)
	assert.Equal(t, "bad-graph", res.Runs[0].Dataset)
	assert.Equal(t, StatusUnsupported, res.Runs[0].Status)
	assert.Equal(t, StatusRunning, res.Runs[1].Status)
	assert.Zero(t, fetcher.calls)

	selected, err := m.Select(context.Background(), Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New(Config{
		Repository: &fakeRepo{graphs: graphs("toy-one", "toy-two")},
		Fetcher:    &fakeFetcher{},
		CachePath:  t.TempDir(),
	})
	_, err := m.Run(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_StoreFailureStopsBatch(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("INSERT INTO mining_runs").WillReturnError(errors.New("disk I/O error"))

	m := New(Config{
		Repository: &fakeRepo{graphs: graphs("toy-one")},
		Fetcher:    &fakeFetcher{},
		Store:      NewStore(conn),
		CachePath:  t.TempDir(),
	})
	res, err := m.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create run")
	require.Len(t, res.Runs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ClosedDatabase(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.db.Close())

	m := New(Config{
		Repository: &fakeRepo{graphs: graphs("toy-one")},
		Fetcher:    &fakeFetcher{},
		Store:      store,
		CachePath:  t.TempDir(),
	})
	_, err := m.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrDatabaseClosed))
	assert.NotEmpty(t, errors.GetAllHints(err))
}
