// Package ingest converts external graph descriptions into models.Graph
// values ready for layout.
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/TFMV/forcegraph/models"
)

// DataProcessor is implemented by all input format processors.
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a graph representation
	ProcessData(data []byte) (*models.Graph, error)

	// GetName returns the name of the processor
	GetName() string
}

// Palette provides color schemes for graph visualization.
type Palette struct {
	NodeColors []string
	EdgeColors []string
	Background string
}

// DefaultPalette returns a default color palette with vibrant colors.
func DefaultPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#4285F4", // Google Blue
			"#EA4335", // Google Red
			"#FBBC05", // Google Yellow
			"#34A853", // Google Green
			"#673AB7", // Purple
			"#3F51B5", // Indigo
			"#00BCD4", // Cyan
			"#009688", // Teal
			"#FF5722", // Deep Orange
		},
		EdgeColors: []string{
			"#666666",
			"#888888",
			"#AAAAAA",
		},
		Background: "#f8f8f8",
	}
}

// JSONProcessor handles JSON graph documents of the form
//
//	{
//	  "name": "...", "width": 800, "height": 600,
//	  "nodes": [{"id": "a", "label": "A", "x": 1, "y": 2,
//	             "fx": 10, "fy": 10, "mass": 2, "size": 12}],
//	  "edges": [{"source": "a", "target": "b", "weight": 1}]
//	}
//
// Omitted positions are seeded by the layout engine; fx/fy pin the node.
type JSONProcessor struct {
	palette *Palette
}

// NewJSONProcessor creates a new JSON processor with the specified palette.
func NewJSONProcessor(palette *Palette) *JSONProcessor {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &JSONProcessor{palette: palette}
}

// GetName returns the name of the processor.
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData parses a JSON graph document.
func (p *JSONProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var graphData struct {
		Name   string  `json:"name"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Nodes  []struct {
			ID    string         `json:"id"`
			Label string         `json:"label"`
			X     float64        `json:"x"`
			Y     float64        `json:"y"`
			FX    *float64       `json:"fx"`
			FY    *float64       `json:"fy"`
			Mass  float64        `json:"mass"`
			Size  float64        `json:"size"`
			Data  map[string]any `json:"data,omitempty"`
		} `json:"nodes"`
		Edges []struct {
			Source string  `json:"source"`
			Target string  `json:"target"`
			Weight float64 `json:"weight"`
		} `json:"edges"`
	}

	if err := json.Unmarshal(data, &graphData); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	name := graphData.Name
	if name == "" {
		name = "JSON Import"
	}
	graph := models.NewGraph(name)
	graph.Width = graphData.Width
	graph.Height = graphData.Height

	seen := make(map[string]bool, len(graphData.Nodes))
	for i, n := range graphData.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d has no id", i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true

		node := models.NewNode("default", n.Label, nil)
		node.ID = n.ID
		node.X = n.X
		node.Y = n.Y
		node.FX = n.FX
		node.FY = n.FY
		node.Mass = n.Mass
		node.Size = n.Size
		if node.Size == 0 {
			node.Size = 12.0
		}
		node.Color = p.palette.NodeColors[i%len(p.palette.NodeColors)]
		node.Data = n.Data

		graph.AddNode(node)
	}

	for _, e := range graphData.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			return nil, fmt.Errorf("edge references non-existent node: %s -> %s", e.Source, e.Target)
		}
		weight := e.Weight
		if weight == 0 {
			weight = 1.0
		}
		edge := models.NewEdge(e.Source, e.Target, "default", weight, nil)
		edge.Color = p.palette.EdgeColors[0]
		if err := graph.AddEdge(edge); err != nil {
			return nil, err
		}
	}

	return graph, nil
}
