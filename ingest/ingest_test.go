package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/ingest"
)

const sampleDoc = `{
  "name": "sample",
  "width": 640,
  "height": 480,
  "nodes": [
    {"id": "a", "label": "Alpha", "x": 10, "y": 20, "size": 15},
    {"id": "b", "label": "Beta", "fx": 100, "fy": 100},
    {"id": "c", "mass": 3}
  ],
  "edges": [
    {"source": "a", "target": "b", "weight": 2},
    {"source": "b", "target": "c"}
  ]
}`

func TestProcessData(t *testing.T) {
	g, err := ingest.NewJSONProcessor(nil).ProcessData([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "sample", g.Name)
	assert.Equal(t, 640.0, g.Width)
	assert.Equal(t, 480.0, g.Height)
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)

	a := g.Nodes[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "Alpha", a.Label)
	assert.Equal(t, 10.0, a.X)
	assert.Equal(t, 15.0, a.Size)
	assert.NotEmpty(t, a.Color)

	b := g.Nodes[1]
	require.NotNil(t, b.FX)
	require.NotNil(t, b.FY)
	assert.Equal(t, 100.0, *b.FX)
	assert.Equal(t, 100.0, *b.FY)

	assert.Equal(t, 3.0, g.Nodes[2].Mass)

	// Omitted weight defaults to 1 so degree-based masses stay positive.
	assert.Equal(t, 2.0, g.Edges[0].Weight)
	assert.Equal(t, 1.0, g.Edges[1].Weight)
}

func TestProcessDataErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"InvalidJSON", `{"nodes": [`},
		{"MissingNodeID", `{"nodes": [{"label": "x"}]}`},
		{"DuplicateNodeID", `{"nodes": [{"id": "a"}, {"id": "a"}]}`},
		{"DanglingEdge", `{"nodes": [{"id": "a"}], "edges": [{"source": "a", "target": "zz"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ingest.NewJSONProcessor(nil).ProcessData([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}
