package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/internal/util"
)

func load(t *testing.T, extra ...string) *Catalog {
	t.Helper()
	c, err := Load(extra...)
	require.NoError(t, err)
	return c
}

func TestLoad_Embedded(t *testing.T) {
	c := load(t)

	assert.Greater(t, c.Len(), 200)
	assert.Equal(t, []string{"linqs", "networkrepository", "string", "yue"}, c.Repositories())
	assert.NotEmpty(t, c.List("networkrepository"))
	assert.NotEmpty(t, c.List("string"))
	assert.Len(t, c.List("linqs"), 3)

	// Every citation key resolves
	for _, ds := range c.List("") {
		_, err := References(ds)
		assert.NoError(t, err, ds.Method)
		assert.NotEmpty(t, ds.URLs, ds.Method)
	}
}

func TestLookup(t *testing.T) {
	c := load(t)

	tests := []struct {
		query  string
		method string
	}{
		{"Bcspwr10", "Bcspwr10"},
		{"bcspwr10", "Bcspwr10"},
		{"bio-SC-HT", "BioScHt"},
		{"networkrepository/BioScHt", "BioScHt"},
		{"Acetivibrio cellulolyticus", "AcetivibrioCellulolyticus"},
		{"cora", "Cora"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ds, err := c.Lookup(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.method, ds.Method)
		})
	}

	_, err := c.Lookup("Bcspwr1O")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestParameters(t *testing.T) {
	c := load(t)

	ds, err := c.Lookup("AcetivibrioCellulolyticus")
	require.NoError(t, err)
	p := c.Parameters(ds)
	assert.Equal(t, "AcetivibrioCellulolyticus", p.Name)
	assert.Equal(t, "protein1", p.SourcesColumn)
	assert.Equal(t, "combined_score", p.WeightsColumn)
	assert.Equal(t, " ", p.EdgeSeparator)
	require.NotNil(t, p.EdgeHeader)
	assert.True(t, *p.EdgeHeader)
	assert.True(t, c.HasStoredLayout(ds))
	assert.Equal(t, "graphs/string", c.CachePath(ds))
	assert.Equal(t, "509191", ds.Taxon)

	cora, err := c.Lookup("Cora")
	require.NoError(t, err)
	p = c.Parameters(cora)
	assert.Equal(t, "cora/edge_list.tsv", p.EdgePath)
	assert.Equal(t, "node_type", p.NodeTypesColumn)
	require.Len(t, cora.Callbacks, 1)
	assert.Equal(t, "parse_linqs_incidence_matrix", cora.Callbacks[0].Name)

	nr, err := c.Lookup("Bcspwr10")
	require.NoError(t, err)
	assert.False(t, c.HasStoredLayout(nr), "NetworkRepository layouts are sniffed")
}

func TestMergeOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[dataset]]
name = "bcspwr10"
method = "Bcspwr10"
repository = "networkrepository"
urls = ["http://mirror.example.org/bcspwr10.zip"]
directed = false
weighted = false

[dataset.arguments]
sources_column_number = 0
destinations_column_number = 1

[[dataset]]
name = "local"
method = "LocalGraph"
repository = "local"
urls = ["https://example.org/local.tsv"]
`), 0644))

	base := load(t)
	c := load(t, path)

	assert.Equal(t, base.Len()+1, c.Len())
	ds, err := c.Lookup("Bcspwr10")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://mirror.example.org/bcspwr10.zip"}, ds.URLs)
	assert.True(t, c.HasStoredLayout(ds))
	assert.Equal(t, "graphs/local", c.CachePath(mustLookup(t, c, "LocalGraph")))
}

func mustLookup(t *testing.T, c *Catalog, name string) Dataset {
	t.Helper()
	ds, err := c.Lookup(name)
	require.NoError(t, err)
	return ds
}

func TestLoad_BadExtra(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[dataset]\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestCitation(t *testing.T) {
	bib, err := Citation("nr")
	require.NoError(t, err)
	assert.Contains(t, bib, "@inproceedings{nr,")

	_, err = Citation("nope")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDescribe(t *testing.T) {
	c := load(t)
	ds := mustLookup(t, c, "Bcsstm11")

	doc, err := c.Describe(ds)
	require.NoError(t, err)
	assert.Contains(t, doc, "The graph bcsstm11 is automatically retrieved from the NetworkRepository repository.")
	assert.Contains(t, doc, "Datetime: 2021-02-06 08:06:31.949034")
	assert.Contains(t, doc, "Please cite the following if you use the data:")
	assert.Contains(t, doc, "    graphminer fetch Bcsstm11")
	for _, line := range bytes.Split([]byte(doc), []byte("\n")) {
		if bytes.HasPrefix(line, []byte("The undirected")) {
			assert.LessOrEqual(t, len(line), wrapWidth)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	f := File{
		Datasets: []Dataset{{
			Name:       "toy",
			Method:     "Toy",
			Repository: "networkrepository",
			Type:       "misc",
			URLs:       []string{"http://nrvis.com/download/data/misc/toy.zip"},
			Citations:  []string{"nr"},
		}},
	}
	f.Datasets[0].Arguments.WeightsColumnNumber = util.Ptr(2)

	path := filepath.Join(t.TempDir(), "mined.toml")
	require.NoError(t, WriteFile(path, f))

	c := load(t, path)
	ds := mustLookup(t, c, "networkrepository/Toy")
	require.NotNil(t, ds.Arguments.WeightsColumnNumber)
	assert.Equal(t, 2, *ds.Arguments.WeightsColumnNumber)
	assert.Nil(t, ds.Arguments.EdgeHeader)
}

func TestBibKeyAndQuotes(t *testing.T) {
	bib, err := Citation("nr")
	require.NoError(t, err)
	assert.Equal(t, "nr", BibKey(bib))
	assert.Equal(t, "", BibKey("Some paper, 2004."))

	refs, err := References(Dataset{Method: "Toy", Citations: []string{"nr"}, Quotes: []string{"Some paper, 2004."}})
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix([]byte(refs), []byte("\n\nSome paper, 2004.")))
}
