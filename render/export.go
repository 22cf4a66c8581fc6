package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/TFMV/forcegraph/models"
)

// JSONRenderer outputs the laid-out graph as JSON.
type JSONRenderer struct{}

// Name returns the name of the renderer.
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer.
func (r *JSONRenderer) Description() string {
	return "Renders graphs as JSON with computed node positions"
}

// Render serializes the graph, including the positions computed by the
// layout, as indented JSON.
func (r *JSONRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	type jsonNode struct {
		ID    string  `json:"id"`
		Label string  `json:"label,omitempty"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Size  float64 `json:"size,omitempty"`
		Color string  `json:"color,omitempty"`
	}
	type jsonEdge struct {
		Source string  `json:"source"`
		Target string  `json:"target"`
		Weight float64 `json:"weight,omitempty"`
	}
	out := struct {
		Name   string     `json:"name,omitempty"`
		Width  float64    `json:"width"`
		Height float64    `json:"height"`
		Nodes  []jsonNode `json:"nodes"`
		Edges  []jsonEdge `json:"edges"`
	}{
		Name:   graph.Name,
		Width:  options.Width,
		Height: options.Height,
		Nodes:  make([]jsonNode, 0, len(graph.Nodes)),
		Edges:  make([]jsonEdge, 0, len(graph.Edges)),
	}

	for _, n := range graph.Nodes {
		out.Nodes = append(out.Nodes, jsonNode{
			ID:    n.ID,
			Label: n.Label,
			X:     n.X,
			Y:     n.Y,
			Size:  n.Size,
			Color: n.Color,
		})
	}
	for _, e := range graph.Edges {
		out.Edges = append(out.Edges, jsonEdge{
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize graph: %w", err)
	}
	return data, nil
}

// DOTRenderer outputs Graphviz DOT format with pinned positions.
type DOTRenderer struct{}

// Name returns the name of the renderer.
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer.
func (r *DOTRenderer) Description() string {
	return "Renders graphs in Graphviz DOT format with pos attributes from the layout"
}

// Render writes a digraph whose nodes carry pos attributes, so Graphviz
// tools can reuse the computed layout with -Kneato -n.
func (r *DOTRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	name := graph.Name
	if name == "" {
		name = "forcegraph"
	}
	buf.WriteString(fmt.Sprintf("digraph %q {\n", name))
	buf.WriteString("  node [shape=circle];\n")

	for _, node := range graph.Nodes {
		label := node.Label
		if label == "" {
			label = node.ID
		}
		// %q quotes and escapes the label for DOT.
		buf.WriteString(fmt.Sprintf("  %q [label=%q, pos=\"%f,%f!\"];\n",
			node.ID, label, node.X, node.Y))
	}
	for _, edge := range graph.Edges {
		if edge.Weight > 0 && edge.Weight != 1 {
			buf.WriteString(fmt.Sprintf("  %q -> %q [weight=%f];\n", edge.Source, edge.Target, edge.Weight))
		} else {
			buf.WriteString(fmt.Sprintf("  %q -> %q;\n", edge.Source, edge.Target))
		}
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
