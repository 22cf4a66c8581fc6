// Package models provides the data structures shared by the forcegraph
// packages: graph nodes and edges, and the container that holds them while
// the physics engine mutates node positions in place.
package models

import (
	"time"
)

// Node represents a node in the graph.
//
// The layout engine only ever writes X and Y. FX/FY, when both are set,
// pin the node: the integrator snaps the position to them every step and
// ignores accumulated forces. Mass of zero means "unset" and is resolved
// from the node's degree before a run starts.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type,omitempty"`
	Label      string         `json:"label,omitempty"`
	Data       interface{}    `json:"data,omitempty"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	FX         *float64       `json:"fx,omitempty"` // pinned x, overrides simulation
	FY         *float64       `json:"fy,omitempty"` // pinned y, overrides simulation
	Mass       float64        `json:"mass,omitempty"`
	Size       float64        `json:"size,omitempty"`
	Width      float64        `json:"width,omitempty"`
	Height     float64        `json:"height,omitempty"`
	Color      string         `json:"color,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at,omitempty"`
}

// Edge represents an edge between two nodes.
//
// Terminals may be stored either as raw Source/Target ids or as resolved
// FromNode/ToNode pointers; graph.Terminal abstracts over both. Edges are
// read-only to the layout engine.
type Edge struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`              // ID of the source node
	Target     string         `json:"target"`              // ID of the target node
	FromNode   *Node          `json:"from_node,omitempty"` // resolved source node, optional
	ToNode     *Node          `json:"to_node,omitempty"`   // resolved target node, optional
	Type       string         `json:"type,omitempty"`
	Weight     float64        `json:"weight,omitempty"`
	Color      string         `json:"color,omitempty"`
	Style      string         `json:"style,omitempty"` // e.g., "solid", "dashed", "dotted"
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at,omitempty"`
}

// Graph represents a collection of nodes and edges.
//
// Node order must stay fixed while a layout run is in progress; the engine
// addresses nodes by their slice position.
type Graph struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Width     float64   `json:"width,omitempty"`  // canvas width, 0 means use the layout default
	Height    float64   `json:"height,omitempty"` // canvas height, 0 means use the layout default
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
