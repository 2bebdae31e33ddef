// Package graph converts a schema record into a directed graph model
// and computes structural metrics over it: weak connectivity, degree
// centrality, and the most central node.
package graph

import (
	"strings"

	"github.com/c360studio/schemalab/schema"
)

// Edge is a directed relation between two entities.
type Edge struct {
	Source string
	Target string
}

// Graph is the directed graph derived from a schema record. Node and
// edge order follow declaration order; parallel duplicate edges are
// collapsed. A Graph is owned by the Build call that produced it and
// is never mutated afterwards.
type Graph struct {
	nodes   []string
	nodeSet map[string]bool
	edges   []Edge
	edgeSet map[Edge]bool

	// undirected adjacency, for connectivity and degree
	adjacent map[string]map[string]bool
}

// Build constructs a Graph from a schema record. The builder is total:
// malformed edge declarations are skipped and edges referencing
// undeclared entities still produce graph nodes, with each tolerated
// violation reported as an integrity warning alongside the result.
func Build(s *schema.Schema) (*Graph, []Warning) {
	g := &Graph{
		nodeSet:  make(map[string]bool),
		edgeSet:  make(map[Edge]bool),
		adjacent: make(map[string]map[string]bool),
	}
	var warnings []Warning

	for _, name := range s.Nodes {
		if g.nodeSet[name] {
			warnings = append(warnings, Warning{
				Kind:    WarnDuplicateNode,
				Subject: name,
			})
			continue
		}
		g.addNode(name)
	}

	for _, raw := range s.Edges {
		source, target, ok := splitEdge(raw)
		if !ok {
			warnings = append(warnings, Warning{
				Kind:    WarnMalformedEdge,
				Subject: raw,
			})
			continue
		}

		for _, endpoint := range []string{source, target} {
			if !g.nodeSet[endpoint] {
				warnings = append(warnings, Warning{
					Kind:    WarnUndeclaredNode,
					Subject: endpoint,
					Edge:    raw,
				})
				g.addNode(endpoint)
			}
		}

		g.addEdge(source, target)
	}

	return g, warnings
}

// splitEdge parses a "Source -> Target" declaration. Both sides are
// trimmed; an edge without exactly one separator or with an empty side
// is malformed.
func splitEdge(raw string) (source, target string, ok bool) {
	before, after, found := strings.Cut(raw, "->")
	if !found || strings.Contains(after, "->") {
		return "", "", false
	}
	source = strings.TrimSpace(before)
	target = strings.TrimSpace(after)
	if source == "" || target == "" {
		return "", "", false
	}
	return source, target, true
}

func (g *Graph) addNode(name string) {
	g.nodes = append(g.nodes, name)
	g.nodeSet[name] = true
	g.adjacent[name] = make(map[string]bool)
}

func (g *Graph) addEdge(source, target string) {
	edge := Edge{Source: source, Target: target}
	if g.edgeSet[edge] {
		return
	}
	g.edges = append(g.edges, edge)
	g.edgeSet[edge] = true
	g.adjacent[source][target] = true
	g.adjacent[target][source] = true
}

// Nodes returns node labels in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns directed edges in insertion order, duplicates collapsed.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct directed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasNode reports whether the graph contains the named node.
func (g *Graph) HasNode(name string) bool { return g.nodeSet[name] }

// Neighbors returns the undirected neighbor set of a node in no
// particular order, or nil for an unknown node.
func (g *Graph) Neighbors(name string) []string {
	adj, ok := g.adjacent[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	return out
}

// Degree returns the degree of a node counting in- and out-edges.
// A self-loop contributes two.
func (g *Graph) Degree(name string) int {
	degree := 0
	for _, e := range g.edges {
		if e.Source == name {
			degree++
		}
		if e.Target == name {
			degree++
		}
	}
	return degree
}
