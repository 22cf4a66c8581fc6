// Package render turns a laid-out graph into an output document. It ships
// SVG, JSON, and DOT backends behind a common Renderer interface.
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

// OutputOptions defines rendering configuration options.
type OutputOptions struct {
	Format         string  // Output format (svg, json, dot)
	Width          float64 // Width of the output
	Height         float64 // Height of the output
	Background     string  // Background color
	NodeSize       float64 // Default node radius
	EdgeWidth      float64 // Default edge width
	FontSize       float64 // Font size for labels
	ShowLabels     bool    // Show node labels
	ShowEdgeLabels bool    // Show edge labels
	Timestamp      bool    // Include timestamp in visualization
}

// Renderer is implemented by all rendering backends.
type Renderer interface {
	// Render creates a visualization of the graph using the provided options
	Render(graph *models.Graph, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// NewDefaultOptions creates a default set of output options.
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Background: "#f8f8f8",
		NodeSize:   12.0,
		EdgeWidth:  1.0,
		FontSize:   10.0,
		ShowLabels: true,
		Timestamp:  true,
	}
}

// GetRenderer returns the appropriate renderer based on format.
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Generate runs the force layout on the graph and renders the result.
func Generate(ctx context.Context, graph *models.Graph, options *OutputOptions, layoutOpts physics.Options) ([]byte, error) {
	layout := physics.NewForceLayout(layoutOpts)
	if err := layout.Initialize(graph); err != nil {
		return nil, fmt.Errorf("layout initialization failed: %w", err)
	}
	if err := layout.Execute(ctx); err != nil {
		return nil, fmt.Errorf("layout failed: %w", err)
	}

	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(graph, options)
	if err != nil {
		return nil, fmt.Errorf("rendering failed: %w", err)
	}
	return output, nil
}
