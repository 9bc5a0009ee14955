package sniff

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/frame"
)

func mustParse(t *testing.T, text string) *frame.Frame {
	t.Helper()
	f, err := frame.Parse(strings.NewReader(text), frame.Options{})
	require.NoError(t, err)
	return f
}

func ip(v int) *int { return &v }

func TestSniffEdges_Rules(t *testing.T) {
	tests := []struct {
		name     string
		graph    string
		input    string
		weighted bool
		want     EdgeLayout
	}{
		{
			name:  "constant ones column is ignored",
			graph: "bcspwr10",
			input: "1 2 1\n2 3 1\n",
			want:  EdgeLayout{Sources: 0, Destinations: 1},
		},
		{
			name:  "signed edges of numbered graph are types",
			graph: "G43",
			input: "1 2 1\n2 3 -1\n",
			want:  EdgeLayout{Sources: 0, Destinations: 1, EdgeTypes: ip(2)},
		},
		{
			name:  "trailing empty column",
			graph: "web-it-2004",
			input: "1\t2\t1\t\n2\t3\t1\t\n",
			want:  EdgeLayout{Sources: 0, Destinations: 1},
		},
		{
			name:  "float third column is weight",
			graph: "bio-SC-HT",
			input: "1 2 0.5\n2 3 1.5\n",
			want:  EdgeLayout{Sources: 0, Destinations: 1, Weights: ip(2)},
		},
		{
			name:     "page says weighted",
			graph:    "misc-lesmis",
			input:    "1 2 3\n2 3 7\n",
			weighted: true,
			want:     EdgeLayout{Sources: 0, Destinations: 1, Weights: ip(2)},
		},
		{
			name:  "two integer columns",
			graph: "road-minnesota",
			input: "1 2\n2 3\n",
			want:  EdgeLayout{Sources: 0, Destinations: 1},
		},
		{
			name:  "missing weights get a default",
			graph: "soc-physicians",
			input: "1\t2\t0.5\n2\t3\t\n",
			want:  EdgeLayout{Sources: 0, Destinations: 1, Weights: ip(2), DefaultWeight: floatPtr(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Scripted{Strict: true}
			got, err := SniffEdges(context.Background(), tt.graph, mustParse(t, tt.input), tt.weighted, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, p.Asked, "known shapes never prompt")
		})
	}
}

func TestSniffEdges_SignedNeedsNumberedName(t *testing.T) {
	p := &Scripted{Bools: map[string]bool{"has_weight": false, "has_edge_type": false}}
	got, err := SniffEdges(context.Background(), "signed-graph", mustParse(t, "1 2 1\n2 3 -1\n"), false, p)
	require.NoError(t, err)
	assert.Equal(t, EdgeLayout{Sources: 0, Destinations: 1}, got)
	assert.Equal(t, 1, p.Previews)
	assert.Contains(t, p.Asked, "has_weight")
}

func TestSniffEdges_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"int timestamps", "1 2 1300000000\n2 3 0\n", "timestamps"},
		{"float pairs", "1 2 0.5 1.5\n2 3 0.5 2.5\n", "timestamps"},
		{"repeated endpoints with timestamps", "1 2 3 1300000000\n1 2 4 1300000001\n", "timestamps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SniffEdges(context.Background(), "ia-contacts", mustParse(t, tt.input), false, &Scripted{Strict: true})
			require.Error(t, err)
			assert.True(t, errors.IsUnsupportedGraph(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSniffEdges_NonPositiveWeight(t *testing.T) {
	_, err := SniffEdges(context.Background(), "neg", mustParse(t, "1 2 0.5\n2 3 -0.5\n"), false, &Scripted{Strict: true})
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedGraph(err))
	assert.Contains(t, err.Error(), "Found illegal non-positive weight in graph neg!")
}

func TestSniffEdges_Prompted(t *testing.T) {
	f := mustParse(t, "a b 2 x\nb c 3 y\n")

	p := &Scripted{}
	got, err := SniffEdges(context.Background(), "strings", f, false, p)
	require.NoError(t, err)
	assert.Equal(t, EdgeLayout{Sources: 0, Destinations: 1, Weights: ip(2), EdgeTypes: ip(3)}, got)
	assert.Equal(t, []string{
		"sources_column_number",
		"destinations_column_number",
		"has_weight",
		"weights_column_number",
		"has_edge_type",
		"edge_types_column_number",
	}, p.Asked)

	p = &Scripted{Ints: map[string]int{"sources_column_number": 9}}
	_, err = SniffEdges(context.Background(), "strings", f, false, p)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestSniffEdges_NonInteractiveSkips(t *testing.T) {
	_, err := SniffEdges(context.Background(), "odd", mustParse(t, "a b\nb c\n"), false, NonInteractive{})
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedGraph(err))
	assert.True(t, errors.IsAborted(err))
}

func TestSniffNodes(t *testing.T) {
	t.Run("typed integer node list", func(t *testing.T) {
		p := &Scripted{Strict: true}
		got, err := SniffNodes(context.Background(), "DD6", mustParse(t, "1 1\n2 1\n3 2\n"), p)
		require.NoError(t, err)
		assert.Equal(t, NodeLayout{Nodes: ip(0), NodeTypes: ip(1)}, got)
	})

	t.Run("unique second column is asked", func(t *testing.T) {
		p := &Scripted{}
		got, err := SniffNodes(context.Background(), "x", mustParse(t, "1 10\n2 11\n"), p)
		require.NoError(t, err)
		assert.Equal(t, NodeLayout{Nodes: ip(0), NodeTypes: ip(1)}, got)
		assert.Equal(t, []string{"nodes_column_number", "node_types_column_number"}, p.Asked)
	})

	t.Run("declined node types", func(t *testing.T) {
		p := &Scripted{Abort: map[string]bool{"node_types_column_number": true}}
		got, err := SniffNodes(context.Background(), "x", mustParse(t, "a 10\nb 11\n"), p)
		require.NoError(t, err)
		assert.Equal(t, NodeLayout{Nodes: ip(0)}, got)
	})

	t.Run("single column", func(t *testing.T) {
		p := &Scripted{}
		got, err := SniffNodes(context.Background(), "x", mustParse(t, "a\nb\n"), p)
		require.NoError(t, err)
		assert.Equal(t, NodeLayout{Nodes: ip(0)}, got)
	})
}

func TestLayoutApply(t *testing.T) {
	var p edgelist.Parameters
	EdgeLayout{Sources: 0, Destinations: 1, Weights: ip(2)}.Apply(&p)
	NodeLayout{Nodes: ip(0), NodeTypes: ip(1)}.Apply(&p)

	require.NotNil(t, p.EdgeHeader)
	assert.False(t, *p.EdgeHeader)
	assert.Equal(t, 0, *p.SourcesColumnNumber)
	assert.Equal(t, 2, *p.WeightsColumnNumber)
	assert.Nil(t, p.EdgeTypesColumnNumber)
	assert.Equal(t, 1, *p.NodeTypesColumnNumber)
}

func TestChooseFile(t *testing.T) {
	files := []string{"a.edges", "b.txt"}

	got, err := ChooseFile(context.Background(), &Scripted{}, "edge_list_path", files, "a.edges")
	require.NoError(t, err)
	assert.Equal(t, "a.edges", got)

	_, err = ChooseFile(context.Background(), &Scripted{Choices: map[string]string{"edge_list_path": "c"}}, "edge_list_path", files, "")
	assert.True(t, errors.IsInvalidRequestError(err))

	_, err = ChooseFile(context.Background(), &Scripted{}, "edge_list_path", nil, "")
	assert.True(t, errors.IsNotFoundError(err))
}
