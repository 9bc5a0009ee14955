package commands

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
)

// Two repositories publish a graph under the same method name
const fetchCatalog = `
[[dataset]]
name = "toy-a"
method = "Toy"
repository = "yue"
urls = ["%[1]s/a.edgelist"]

[dataset.arguments]
edge_path = "a.edgelist"
edge_header = false
edge_separator = "\t"
sources_column_number = 0
destinations_column_number = 1

[[dataset]]
name = "toy-b"
method = "Toy"
repository = "networkrepository"
urls = ["%[1]s/b.edgelist"]

[dataset.arguments]
edge_path = "b.edgelist"
edge_header = false
edge_separator = "\t"
sources_column_number = 0
destinations_column_number = 1

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

type fetchJSON struct {
	Dataset catalog.Dataset  `json:"dataset"`
	Summary edgelist.Summary `json:"summary"`
}

// fetchServer serves the files of fetchCatalog and returns the catalog path
func fetchServer(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"minicora/minicora.content": "10\t1\t0\tA\n20\t0\t1\tB\n",
		"minicora/minicora.cites":   "10\t20\n30\t10\n",
	} {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	mux := http.NewServeMux()
	mux.HandleFunc("/a.edgelist", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("a\tb\n"))
	})
	mux.HandleFunc("/b.edgelist", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x\ty\ny\tz\n"))
	})
	mux.HandleFunc("/minicora.zip", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(buf.Bytes())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return writeTestCatalog(t, fmt.Sprintf(fetchCatalog, srv.URL))
}

// fetchConfig lets downloads reach the loopback test server and keeps the
// cache in a temporary directory
func fetchConfig(t *testing.T) string {
	return fmt.Sprintf("[cache]\npath = %q\n\n[http]\nblock_private_ip = false\n", t.TempDir())
}

func TestFetch_JSON(t *testing.T) {
	extra := fetchServer(t)
	isolate(t, fetchConfig(t))

	tests := []struct {
		name      string
		dataset   string
		wantName  string
		wantNodes int
		wantEdges int
	}{
		{name: "first loaded wins", dataset: "Toy", wantName: "toy-a", wantNodes: 2, wantEdges: 1},
		{name: "qualified by repository", dataset: "networkrepository/Toy", wantName: "toy-b", wantNodes: 3, wantEdges: 2},
		{name: "qualified, other repository", dataset: "YUE/toy", wantName: "toy-a", wantNodes: 2, wantEdges: 1},
		{name: "linqs conversion", dataset: "MiniCora", wantName: "minicora", wantNodes: 5, wantEdges: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := testCommand(t, "--json", "--catalog", extra)
			require.NoError(t, runFetch(cmd, tt.dataset))

			var got fetchJSON
			require.NoError(t, json.Unmarshal(out.Bytes(), &got))
			assert.Equal(t, tt.wantName, got.Dataset.Name)
			assert.Equal(t, tt.wantNodes, got.Summary.Nodes)
			assert.Equal(t, tt.wantEdges, got.Summary.Edges)
		})
	}
}

func TestFetch_Arguments(t *testing.T) {
	extra := fetchServer(t)
	isolate(t, fetchConfig(t))

	cmd, out := testCommand(t, "--json", "--directed", "--catalog", extra,
		"--cache-path", t.TempDir(), "--arg", "default_weight=2.5")
	require.NoError(t, runFetch(cmd, "networkrepository/Toy"))

	var got struct {
		Parameters edgelist.Parameters `json:"parameters"`
		Summary    edgelist.Summary    `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.NotNil(t, got.Parameters.DefaultWeight)
	assert.Equal(t, 2.5, *got.Parameters.DefaultWeight)
	assert.True(t, got.Summary.Directed)

	cmd, _ = testCommand(t, "--catalog", extra, "--arg", "no_such_key=1")
	assert.True(t, errors.IsInvalidRequestError(runFetch(cmd, "Toy")))
}

func TestFetch_WordsFeatures(t *testing.T) {
	extra := fetchServer(t)
	isolate(t, fetchConfig(t))

	cmd, out := testCommand(t, "--words-features", "--catalog", extra)
	require.NoError(t, runFetch(cmd, "linqs/MiniCora"))

	var features edgelist.Features
	require.NoError(t, json.Unmarshal(out.Bytes(), &features))
	assert.Equal(t, []string{"word_0", "word_1"}, features.Columns)
	assert.Equal(t, []string{"10", "20"}, features.Rows)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, features.Values)

	cmd, _ = testCommand(t, "--words-features", "--catalog", extra)
	err := runFetch(cmd, "networkrepository/Toy")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestFetch_UnknownDataset(t *testing.T) {
	isolate(t, "")
	cmd, out := testCommand(t)
	err := runFetch(cmd, "NoSuchGraph")
	assert.True(t, errors.IsNotFoundError(err))
	assert.Empty(t, out.String())
}
