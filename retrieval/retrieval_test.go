package retrieval

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/internal/httpclient"
	"github.com/teranos/graphminer/repository/networkrepository"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

type fixture struct {
	srv       *httptest.Server
	client    *httpclient.SaferClient
	catalog   *catalog.Catalog
	downloads atomic.Int32
}

const extraCatalog = `
[[dataset]]
name = "toy"
method = "ToyEdgelist"
repository = "yue"
urls = ["%[1]s/toy.edgelist"]

[dataset.arguments]
edge_path = "toy.edgelist"
edge_header = false
edge_separator = "\t"
sources_column_number = 0
destinations_column_number = 1

[[dataset]]
name = "misc-toy"
method = "MiscToy"
repository = "networkrepository"
type = "misc"
urls = ["%[1]s/misc-toy.zip"]

[[dataset]]
name = "minicora"
method = "MiniCora"
repository = "linqs"
urls = ["%[1]s/minicora.zip"]

[dataset.arguments]
edge_path = "minicora/edge_list.tsv"
node_path = "minicora/node_list.tsv"

[[dataset.callbacks]]
name = "parse_linqs_incidence_matrix"
cites_path = "minicora/minicora.cites"
content_path = "minicora/minicora.content"
edge_list_path = "minicora/edge_list.tsv"
node_list_path = "minicora/node_list.tsv"
`

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{}

	nrZip := zipOf(t, map[string]string{
		"misc-toy.edges": "% toy\n1 2\n2 3\n3 1\n",
		"readme.html":    "<p>toy</p>",
	})
	coraZip := zipOf(t, map[string]string{
		"minicora/minicora.content": "10\t1\t0\tA\n20\t0\t1\tB\n",
		"minicora/minicora.cites":   "10\t20\n30\t10\n",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/toy.edgelist", func(w http.ResponseWriter, _ *http.Request) {
		fx.downloads.Add(1)
		_, _ = w.Write([]byte("a\tb\nb\tc\n"))
	})
	mux.HandleFunc("/misc-toy.zip", func(w http.ResponseWriter, _ *http.Request) {
		fx.downloads.Add(1)
		_, _ = w.Write(nrZip)
	})
	mux.HandleFunc("/minicora.zip", func(w http.ResponseWriter, _ *http.Request) {
		fx.downloads.Add(1)
		_, _ = w.Write(coraZip)
	})
	fx.srv = httptest.NewServer(mux)
	t.Cleanup(fx.srv.Close)
	fx.client = httpclient.WrapClient(fx.srv.Client())

	path := filepath.Join(t.TempDir(), "extra.toml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(extraCatalog, fx.srv.URL)), 0644))
	c, err := catalog.Load(path)
	require.NoError(t, err)
	fx.catalog = c
	return fx
}

func (fx *fixture) retriever() *Retriever {
	nr := networkrepository.New(networkrepository.Options{
		Client:  fx.client,
		PageURL: fx.srv.URL + "/pages/{name}.php",
	})
	return New(fx.catalog, NewDownloader(fx.client), nr)
}

func TestRetrieve_StoredLayoutAndCache(t *testing.T) {
	fx := newFixture(t)
	r := fx.retriever()
	cache := t.TempDir()

	res, err := r.Retrieve(context.Background(), "ToyEdgelist", Options{CachePath: cache})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, res.Graph.Nodes)
	assert.Len(t, res.Graph.Edges, 2)
	assert.Equal(t, filepath.Join(cache, "ToyEdgelist"), res.Report.Destination)

	_, err = r.Retrieve(context.Background(), "toy", Options{CachePath: cache})
	require.NoError(t, err)
	assert.Equal(t, int32(1), fx.downloads.Load(), "second retrieval is served from the cache")
}

func TestRetrieve_SniffedArchive(t *testing.T) {
	fx := newFixture(t)
	cache := t.TempDir()

	res, err := fx.retriever().Retrieve(context.Background(), "MiscToy", Options{CachePath: cache})
	require.NoError(t, err)
	assert.Equal(t, "MiscToy", res.Parameters.Name)
	require.NotNil(t, res.Parameters.SourcesColumnNumber)
	assert.Equal(t, 0, *res.Parameters.SourcesColumnNumber)
	assert.Nil(t, res.Parameters.WeightsColumnNumber)
	assert.Len(t, res.Graph.Nodes, 3)
	assert.Len(t, res.Graph.Edges, 3)

	// Extraction happens once
	_, err = fx.retriever().Retrieve(context.Background(), "MiscToy", Options{CachePath: cache})
	require.NoError(t, err)
	assert.Equal(t, int32(1), fx.downloads.Load())
}

func TestRetrieve_Callbacks(t *testing.T) {
	fx := newFixture(t)

	res, err := fx.retriever().Retrieve(context.Background(), "MiniCora", Options{CachePath: t.TempDir()})
	require.NoError(t, err)
	require.True(t, res.Graph.HasNodeTypes())
	require.True(t, res.Graph.HasEdgeTypes())

	id, ok := res.Graph.NodeID("30")
	require.True(t, ok)
	assert.Equal(t, "Unknown", res.Graph.NodeTypes[id])
	// two citations plus one word per paper
	assert.Len(t, res.Graph.Edges, 4)
}

func TestRetrieve_AdditionalArguments(t *testing.T) {
	fx := newFixture(t)
	dw := 2.5

	var opts Options
	opts.CachePath = t.TempDir()
	opts.Arguments.DefaultWeight = &dw
	res, err := fx.retriever().Retrieve(context.Background(), "ToyEdgelist", opts)
	require.NoError(t, err)
	require.NotNil(t, res.Parameters.DefaultWeight)
	assert.Equal(t, 2.5, *res.Parameters.DefaultWeight)
	assert.Equal(t, 1, *res.Parameters.DestinationsColumnNumber, "stored arguments survive")
}

func TestRetrieve_Errors(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.retriever().Retrieve(context.Background(), "NoSuchGraph", Options{})
	assert.True(t, errors.IsNotFoundError(err))

	bare := New(fx.catalog, NewDownloader(fx.client))
	_, err = bare.Retrieve(context.Background(), "MiscToy", Options{CachePath: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestFetch_TruncatedDownloadIsRetried(t *testing.T) {
	const body = "1 2\n2 3\n3 4\n4 5\n5 6\n6 7\n7 8\n8 9\n9 1\n"
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		if requests.Add(1) == 1 {
			// connection drops after the first lines
			_, _ = w.Write([]byte(body[:8]))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	d := NewDownloader(httpclient.WrapClient(srv.Client()))
	dest := t.TempDir()
	urls := []string{srv.URL + "/links.txt"}

	_, err := d.Fetch(context.Background(), urls, dest)
	require.Error(t, err)
	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is left behind by a failed download")

	report, err := d.Fetch(context.Background(), urls, dest)
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	require.Equal(t, []string{filepath.Join(dest, "links.txt")}, report.Files)
	data, err := os.ReadFile(report.Files[0])
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestFetch_CancelledDownloadIsNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a\tb\n"))
	}))
	defer srv.Close()

	d := NewDownloader(httpclient.WrapClient(srv.Client()))
	dest := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Fetch(ctx, []string{srv.URL + "/toy.edgelist"}, dest)
	require.Error(t, err)
	_, err = os.Stat(filepath.Join(dest, "toy.edgelist"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCallbacks_FailedConversionIsRerun(t *testing.T) {
	dest := t.TempDir()
	cites := "DIRECTED\tcites\nNO_FEATURES\n1\tpaper:1\t|\tpaper:2\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(dest, "pubmed.cites"), []byte(cites), 0644))
	content := "NODE\tpaper\ncat=numeric\n1\tlabel=1\tw-a=0.5\n2\tlabel=7\tw-b=0.1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dest, "pubmed.content"), []byte(content), 0644))

	callbacks := []catalog.Callback{{
		Name:         "parse_linqs_pubmed_incidence_matrix",
		CitesPath:    "pubmed.cites",
		ContentPath:  "pubmed.content",
		EdgeListPath: "out/edge_list.tsv",
		NodeListPath: "out/node_list.tsv",
	}}

	err := runCallbacks(callbacks, dest)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
	assert.False(t, exists(filepath.Join(dest, "out", "edge_list.tsv")))
	assert.False(t, exists(filepath.Join(dest, "out", "node_list.tsv")))

	// Still failing: the earlier attempt must not count as a conversion
	require.Error(t, runCallbacks(callbacks, dest))

	content = "NODE\tpaper\ncat=numeric\n1\tlabel=1\tw-a=0.5\n2\tlabel=3\tw-b=0.1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dest, "pubmed.content"), []byte(content), 0644))
	require.NoError(t, runCallbacks(callbacks, dest))

	nodes, err := os.ReadFile(filepath.Join(dest, "out", "node_list.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(nodes), "2\tDiabetes Mellitus Type 2")
}

func TestFileName(t *testing.T) {
	name, err := fileName("http://nrvis.com/download/data/misc/bcspwr10.zip")
	require.NoError(t, err)
	assert.Equal(t, "bcspwr10.zip", name)

	_, err = fileName("http://example.org/")
	assert.Error(t, err)
}
