package graph

// Stats holds the structural metrics computed over a graph.
type Stats struct {
	NodeCount int
	EdgeCount int

	// WeaklyConnected is true when every pair of nodes is connected
	// ignoring edge direction. A single-node graph is trivially
	// connected; an empty graph is not considered connected.
	WeaklyConnected bool

	// HasCentrality is false for graphs with fewer than two nodes,
	// where degree centrality is undefined. DegreeCentrality and
	// MostCentral are only meaningful when it is true.
	HasCentrality bool

	// DegreeCentrality maps each node to degree / (n-1), in [0,1] for
	// graphs without self-loops.
	DegreeCentrality map[string]float64

	// MostCentral is the node with maximum degree centrality. Ties are
	// broken by declaration order.
	MostCentral string
}

// Analyze computes connectivity and centrality metrics. It never
// faults: empty and single-node graphs yield a result with
// HasCentrality false instead of dividing by zero.
func Analyze(g *Graph) Stats {
	stats := Stats{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
	}

	stats.WeaklyConnected = g.isWeaklyConnected()

	if stats.NodeCount < 2 {
		return stats
	}

	stats.HasCentrality = true
	stats.DegreeCentrality = make(map[string]float64, stats.NodeCount)

	denominator := float64(stats.NodeCount - 1)
	best := -1.0
	for _, node := range g.nodes {
		centrality := float64(g.Degree(node)) / denominator
		stats.DegreeCentrality[node] = centrality
		// strict greater-than keeps the first-declared node on ties
		if centrality > best {
			best = centrality
			stats.MostCentral = node
		}
	}

	return stats
}

// isWeaklyConnected runs a breadth-first traversal over the undirected
// adjacency starting from the first declared node.
func (g *Graph) isWeaklyConnected() bool {
	if len(g.nodes) == 0 {
		return false
	}
	if len(g.nodes) == 1 {
		return true
	}

	visited := make(map[string]bool, len(g.nodes))
	queue := []string{g.nodes[0]}
	visited[g.nodes[0]] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for neighbor := range g.adjacent[current] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return len(visited) == len(g.nodes)
}
