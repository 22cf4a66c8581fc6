package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewNode creates a new node with a unique ID and timestamps.
// Position is left at the zero value; the layout engine seeds unset
// positions with a random point inside the canvas before a run.
func NewNode(nodeType, label string, properties map[string]any) *Node {
	now := time.Now()
	return &Node{
		ID:         uuid.New().String(),
		Type:       nodeType,
		Label:      label,
		Properties: properties,
		Size:       1.0,
		Color:      "#808080",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewEdge creates a new edge with a unique ID and timestamps.
func NewEdge(source, target, edgeType string, weight float64, properties map[string]any) *Edge {
	now := time.Now()
	return &Edge{
		ID:         uuid.New().String(),
		Source:     source,
		Target:     target,
		Type:       edgeType,
		Weight:     weight,
		Color:      "#000000",
		Style:      "solid",
		Properties: properties,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewGraph creates a new empty graph with a unique ID and timestamps.
func NewGraph(name string) *Graph {
	now := time.Now()
	return &Graph{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     []Node{},
		Edges:     []Edge{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(node *Node) {
	g.Nodes = append(g.Nodes, *node)
	g.UpdatedAt = time.Now()
}

// AddEdge adds an edge to the graph. Both terminals must already exist.
func (g *Graph) AddEdge(edge *Edge) error {
	sourceExists, targetExists := false, false
	for i := range g.Nodes {
		if g.Nodes[i].ID == edge.Source {
			sourceExists = true
		}
		if g.Nodes[i].ID == edge.Target {
			targetExists = true
		}
		if sourceExists && targetExists {
			break
		}
	}

	if !sourceExists {
		return fmt.Errorf("source node with ID %s does not exist in the graph", edge.Source)
	}
	if !targetExists {
		return fmt.Errorf("target node with ID %s does not exist in the graph", edge.Target)
	}

	g.Edges = append(g.Edges, *edge)
	g.UpdatedAt = time.Now()
	return nil
}

// RemoveNode removes a node and all connected edges from the graph.
// Must not be called while a layout run is in progress.
func (g *Graph) RemoveNode(nodeID string) {
	var newNodes []Node
	for _, node := range g.Nodes {
		if node.ID != nodeID {
			newNodes = append(newNodes, node)
		}
	}
	g.Nodes = newNodes

	var newEdges []Edge
	for _, edge := range g.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			newEdges = append(newEdges, edge)
		}
	}
	g.Edges = newEdges

	g.UpdatedAt = time.Now()
}

// RemoveEdge removes an edge from the graph.
func (g *Graph) RemoveEdge(edgeID string) {
	var newEdges []Edge
	for _, edge := range g.Edges {
		if edge.ID != edgeID {
			newEdges = append(newEdges, edge)
		}
	}
	g.Edges = newEdges
	g.UpdatedAt = time.Now()
}

// SetDimensions sets the canvas bounds used to seed initial positions.
func (g *Graph) SetDimensions(width, height float64) {
	g.Width = width
	g.Height = height
	g.UpdatedAt = time.Now()
}

// SetPosition sets the position of a node.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.UpdatedAt = time.Now()
}

// Pin fixes the node at (x, y). A pinned node snaps to its pinned
// coordinates every integration step regardless of accumulated force.
func (n *Node) Pin(x, y float64) {
	n.FX = &x
	n.FY = &y
	n.X = x
	n.Y = y
	n.UpdatedAt = time.Now()
}

// Unpin releases a pinned node back to the simulation.
func (n *Node) Unpin() {
	n.FX = nil
	n.FY = nil
	n.UpdatedAt = time.Now()
}

// SetAppearance sets the visual properties of a node.
func (n *Node) SetAppearance(size float64, color string) {
	n.Size = size
	n.Color = color
	n.UpdatedAt = time.Now()
}

// SetAppearance sets the visual properties of an edge.
func (e *Edge) SetAppearance(color, style string) {
	e.Color = color
	e.Style = style
	e.UpdatedAt = time.Now()
}
