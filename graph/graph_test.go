package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/schemalab/schema"
)

func compile(t *testing.T, text string) *schema.Schema {
	t.Helper()
	s, err := schema.Compile(text)
	require.NoError(t, err)
	return s
}

func TestBuildPreservesDeclarationOrder(t *testing.T) {
	s := compile(t, schema.DefaultText)
	g, warnings := Build(s)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"Customer", "Order", "Product", "Category"}, g.Nodes())
	assert.Equal(t, []Edge{
		{Source: "Customer", Target: "Order"},
		{Source: "Order", Target: "Product"},
		{Source: "Product", Target: "Category"},
		{Source: "Customer", Target: "Product"},
	}, g.Edges())
}

func TestBuildSkipsMalformedEdges(t *testing.T) {
	s := compile(t, "nodes:\n  - A\n  - B\nedges:\n  - A -> B\n  - A to B\n  - 'A -> '\n  - A -> B -> A\n")
	g, warnings := Build(s)

	assert.Equal(t, 1, g.EdgeCount())
	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.Equal(t, WarnMalformedEdge, w.Kind)
	}
}

func TestBuildFlagsUndeclaredEndpoints(t *testing.T) {
	s := compile(t, "nodes:\n  - A\nedges:\n  - A -> Ghost\n")
	g, warnings := Build(s)

	// the endpoint is tolerated, not silently dropped
	assert.True(t, g.HasNode("Ghost"))
	assert.Equal(t, []string{"A", "Ghost"}, g.Nodes())

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnUndeclaredNode, warnings[0].Kind)
	assert.Equal(t, "Ghost", warnings[0].Subject)
	assert.Equal(t, "A -> Ghost", warnings[0].Edge)
}

func TestBuildFlagsDuplicateNodes(t *testing.T) {
	s := compile(t, "nodes:\n  - A\n  - A\n  - B\n")
	g, warnings := Build(s)

	assert.Equal(t, []string{"A", "B"}, g.Nodes())
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnDuplicateNode, warnings[0].Kind)
}

func TestBuildCollapsesDuplicateEdges(t *testing.T) {
	s := compile(t, "nodes:\n  - A\n  - B\nedges:\n  - A -> B\n  - A->B\n")
	g, _ := Build(s)

	assert.Equal(t, 1, g.EdgeCount())
}

func TestBuildSplitsWithoutSurroundingSpaces(t *testing.T) {
	s := compile(t, "nodes:\n  - A\n  - B\nedges:\n  - A->B\n")
	g, warnings := Build(s)

	assert.Empty(t, warnings)
	assert.Equal(t, []Edge{{Source: "A", Target: "B"}}, g.Edges())
}

func TestAnalyzeTwoNodeGraph(t *testing.T) {
	s := compile(t, "nodes:\n  - Customer\n  - Order\nedges:\n  - Customer -> Order\n")
	g, _ := Build(s)
	stats := Analyze(g)

	assert.Equal(t, 2, stats.NodeCount)
	assert.Equal(t, 1, stats.EdgeCount)
	assert.True(t, stats.WeaklyConnected)
	require.True(t, stats.HasCentrality)
	assert.InDelta(t, 1.0, stats.DegreeCentrality["Customer"], 1e-9)
	assert.InDelta(t, 1.0, stats.DegreeCentrality["Order"], 1e-9)
	// both nodes have degree 1; the tie-break picks the first declared
	assert.Equal(t, "Customer", stats.MostCentral)
}

func TestAnalyzeDisconnectedGraph(t *testing.T) {
	s := compile(t, "nodes:\n  - A\n  - B\n  - C\nedges:\n  - A -> B\n")
	g, _ := Build(s)
	stats := Analyze(g)

	assert.False(t, stats.WeaklyConnected)
}

func TestAnalyzeDirectionIgnoredForConnectivity(t *testing.T) {
	s := compile(t, "nodes:\n  - A\n  - B\n  - C\nedges:\n  - B -> A\n  - B -> C\n")
	g, _ := Build(s)
	stats := Analyze(g)

	assert.True(t, stats.WeaklyConnected)
	assert.Equal(t, "B", stats.MostCentral)
}

func TestAnalyzeCentralityBounds(t *testing.T) {
	s := compile(t, schema.DefaultText)
	g, _ := Build(s)
	stats := Analyze(g)

	require.True(t, stats.HasCentrality)
	for node, c := range stats.DegreeCentrality {
		assert.GreaterOrEqual(t, c, 0.0, "node %s", node)
		assert.LessOrEqual(t, c, 1.0, "node %s", node)
	}
}

func TestAnalyzeSmallGraphs(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantConnected bool
	}{
		{name: "empty", text: "", wantConnected: false},
		{name: "single node", text: "nodes:\n  - A\n", wantConnected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := Build(compile(t, tt.text))
			stats := Analyze(g)

			assert.Equal(t, tt.wantConnected, stats.WeaklyConnected)
			assert.False(t, stats.HasCentrality)
			assert.Empty(t, stats.MostCentral)
			assert.Nil(t, stats.DegreeCentrality)
		})
	}
}

func TestNeighborsAndDegree(t *testing.T) {
	s := compile(t, schema.DefaultText)
	g, _ := Build(s)

	assert.ElementsMatch(t, []string{"Order", "Product"}, g.Neighbors("Customer"))
	assert.Equal(t, 2, g.Degree("Customer"))
	assert.Equal(t, 3, g.Degree("Product"))
	assert.Nil(t, g.Neighbors("Ghost"))
}
