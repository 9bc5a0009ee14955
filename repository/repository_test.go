package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalizeTerms(t *testing.T) {
	tests := []struct {
		terms []string
		want  string
	}{
		{[]string{"bio", "SC", "HT"}, "BioScHt"},
		{[]string{"bcspwr10"}, "Bcspwr10"},
		{[]string{"3elt"}, "Graph3elt"},
		{[]string{"Fragaria", "vesca"}, "FragariaVesca"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CapitalizeTerms(tt.terms))
	}
}

func TestListDataFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.edges", "README.txt", "a.nodes", "readme.md", ".g.zip.done"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	files, err := ListDataFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.nodes", "b.edges"}, files)

	_, err = ListDataFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestBaseParameters(t *testing.T) {
	p := BaseParameters("G1", "e.txt", "")
	assert.Equal(t, "G1", p.Name)
	assert.Equal(t, "e.txt", p.EdgePath)
	assert.Empty(t, p.NodePath)
	assert.Equal(t, "/tmp/x/e.txt", Report{Destination: "/tmp/x"}.Join("e.txt"))
}
