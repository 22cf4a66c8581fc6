// Package graph provides the small collaborators the physics engine consumes
// before a run starts: a stable id-to-index lookup, per-node degree records,
// and an accessor that resolves edge terminals regardless of how the edge
// stores them.
package graph

import (
	"fmt"

	"github.com/TFMV/forcegraph/models"
)

// End names one terminal of an edge.
type End string

const (
	// Source is the edge's origin terminal.
	Source End = "source"
	// Target is the edge's destination terminal.
	Target End = "target"
)

// Degree holds the precomputed edge counts for one node.
type Degree struct {
	In  float64
	Out float64
	All float64
}

// Index maps node ids to their position in the node sequence and carries the
// per-node degree records. It is built once per layout run and must not be
// reused after nodes are inserted or removed.
type Index struct {
	Of      map[string]int
	Degrees []Degree
}

// Terminal returns the node id at the given end of an edge. It prefers the
// raw id field and falls back to the resolved node pointer, so callers may
// populate either.
func Terminal(e *models.Edge, end End) string {
	switch end {
	case Source:
		if e.Source != "" {
			return e.Source
		}
		if e.FromNode != nil {
			return e.FromNode.ID
		}
	case Target:
		if e.Target != "" {
			return e.Target
		}
		if e.ToNode != nil {
			return e.ToNode.ID
		}
	}
	return ""
}

// BuildIndex builds the id lookup and degree records for a graph.
// Edges referencing ids absent from the node set are reported as an error
// rather than silently skipped.
func BuildIndex(g *models.Graph) (*Index, error) {
	idx := &Index{
		Of:      make(map[string]int, len(g.Nodes)),
		Degrees: make([]Degree, len(g.Nodes)),
	}
	for i := range g.Nodes {
		idx.Of[g.Nodes[i].ID] = i
	}

	edges := make([]*models.Edge, len(g.Edges))
	for i := range g.Edges {
		edges[i] = &g.Edges[i]
	}
	degrees, err := Degrees(len(g.Nodes), idx.Of, edges)
	if err != nil {
		return nil, err
	}
	idx.Degrees = degrees
	return idx, nil
}

// Degrees computes per-node degree records from the edge list. The id map
// must cover every terminal referenced by the edges.
func Degrees(nodeCount int, indexOf map[string]int, edges []*models.Edge) ([]Degree, error) {
	degrees := make([]Degree, nodeCount)
	for _, e := range edges {
		sourceID := Terminal(e, Source)
		targetID := Terminal(e, Target)

		si, ok := indexOf[sourceID]
		if !ok {
			return nil, fmt.Errorf("graph: edge %s references unknown source node %q", e.ID, sourceID)
		}
		ti, ok := indexOf[targetID]
		if !ok {
			return nil, fmt.Errorf("graph: edge %s references unknown target node %q", e.ID, targetID)
		}

		degrees[si].Out++
		degrees[si].All++
		degrees[ti].In++
		degrees[ti].All++
	}
	return degrees, nil
}
