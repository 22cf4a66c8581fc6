package render

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/TFMV/forcegraph/models"
)

// SVGRenderer outputs SVG format.
type SVGRenderer struct{}

// Name returns the name of the renderer.
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer.
func (r *SVGRenderer) Description() string {
	return "Renders graphs as Scalable Vector Graphics (SVG) for high-quality vector output"
}

// Render creates an SVG representation of the graph.
func (r *SVGRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%f" height="%f" viewBox="0 0 %f %f" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height, options.Background))

	// Nodes indexed by id so edge endpoints resolve in constant time.
	byID := make(map[string]*models.Node, len(graph.Nodes))
	for i := range graph.Nodes {
		byID[graph.Nodes[i].ID] = &graph.Nodes[i]
	}

	// Draw edges first so nodes paint over them.
	for _, edge := range graph.Edges {
		sourceNode := byID[edge.Source]
		targetNode := byID[edge.Target]
		if sourceNode == nil || targetNode == nil {
			continue
		}

		edgeColor := "#666666"
		if edge.Color != "" {
			edgeColor = edge.Color
		}

		strokeWidth := options.EdgeWidth
		if edge.Weight > 0 {
			strokeWidth = math.Max(0.5, edge.Weight*options.EdgeWidth*0.5)
		}

		dashArray := ""
		if edge.Style == "dashed" {
			dashArray = `stroke-dasharray="5,3"`
		} else if edge.Style == "dotted" {
			dashArray = `stroke-dasharray="1,3"`
		}

		buf.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f"
  stroke="%s" stroke-width="%f" %s />
`, sourceNode.X, sourceNode.Y, targetNode.X, targetNode.Y, edgeColor, strokeWidth, dashArray))

		if options.ShowEdgeLabels && edge.Type != "" {
			midX := (sourceNode.X + targetNode.X) / 2
			midY := (sourceNode.Y + targetNode.Y) / 2
			buf.WriteString(fmt.Sprintf(`<text x="%f" y="%f" font-family="sans-serif" font-size="%f"
  fill="%s" text-anchor="middle" alignment-baseline="middle">%s</text>
`, midX, midY, options.FontSize, edgeColor, edge.Type))
		}
	}

	// Draw nodes.
	for _, node := range graph.Nodes {
		nodeColor := "#4285F4"
		if node.Color != "" {
			nodeColor = node.Color
		}

		radius := node.Size
		if radius <= 0 {
			radius = options.NodeSize
		}

		buf.WriteString(fmt.Sprintf(`<circle cx="%f" cy="%f" r="%f" fill="%s"
  stroke="rgba(0,0,0,0.3)" stroke-width="0.5" />
`, node.X, node.Y, radius, nodeColor))

		if options.ShowLabels && node.Label != "" {
			labelY := node.Y + radius + options.FontSize + 2
			buf.WriteString(fmt.Sprintf(`<text x="%f" y="%f" font-family="sans-serif" font-size="%f"
  fill="#333333" text-anchor="middle">%s</text>
`, node.X, labelY, options.FontSize, node.Label))
		}
	}

	if options.Timestamp {
		timeStr := time.Now().Format("2006-01-02 15:04:05")
		buf.WriteString(fmt.Sprintf(`<text x="5" y="%f" font-family="sans-serif" font-size="8" fill="#808080">%s</text>
`, options.Height-5, timeStr))
	}

	buf.WriteString(`</svg>`)

	return buf.Bytes(), nil
}
