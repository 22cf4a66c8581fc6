package models

import (
	"fmt"
)

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// EdgeFilter is a function type used to filter edges in queries
type EdgeFilter func(edge *Edge) bool

// FindNodeByID returns a node by its ID
func (g *Graph) FindNodeByID(id string) (*Node, error) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("node with ID %s not found", id)
}

// FindEdgeByID returns an edge by its ID
func (g *Graph) FindEdgeByID(id string) (*Edge, error) {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i], nil
		}
	}
	return nil, fmt.Errorf("edge with ID %s not found", id)
}

// FindOutgoingEdges returns all edges originating from a node
func (g *Graph) FindOutgoingEdges(nodeID string) []Edge {
	var result []Edge
	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			result = append(result, edge)
		}
	}
	return result
}

// FindIncomingEdges returns all edges targeting a node
func (g *Graph) FindIncomingEdges(nodeID string) []Edge {
	var result []Edge
	for _, edge := range g.Edges {
		if edge.Target == nodeID {
			result = append(result, edge)
		}
	}
	return result
}

// FindConnectedNodes returns all nodes directly connected to a node
func (g *Graph) FindConnectedNodes(nodeID string) []Node {
	var result []Node
	nodeMap := make(map[string]bool)

	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			nodeMap[edge.Target] = true
		}
		if edge.Target == nodeID {
			nodeMap[edge.Source] = true
		}
	}

	for _, node := range g.Nodes {
		if nodeMap[node.ID] {
			result = append(result, node)
		}
	}

	return result
}

// FilterNodes returns nodes that match the provided filter function
func (g *Graph) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i, node := range g.Nodes {
		if filter(&g.Nodes[i]) {
			result = append(result, node)
		}
	}
	return result
}

// FilterEdges returns edges that match the provided filter function
func (g *Graph) FilterEdges(filter EdgeFilter) []Edge {
	var result []Edge
	for i, edge := range g.Edges {
		if filter(&g.Edges[i]) {
			result = append(result, edge)
		}
	}
	return result
}

// PinnedNodes returns the nodes whose positions are fixed.
func (g *Graph) PinnedNodes() []Node {
	return g.FilterNodes(func(n *Node) bool {
		return n.FX != nil && n.FY != nil
	})
}
