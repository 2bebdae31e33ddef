package graph

import "fmt"

// WarningKind classifies integrity warnings emitted by the builder.
type WarningKind string

const (
	// WarnMalformedEdge marks an edge declaration that could not be
	// split on the "->" separator and was skipped.
	WarnMalformedEdge WarningKind = "malformed_edge"

	// WarnUndeclaredNode marks an edge endpoint that does not appear in
	// the declared node list. The node is still added to the graph.
	WarnUndeclaredNode WarningKind = "undeclared_node"

	// WarnDuplicateNode marks a repeated node declaration. The first
	// occurrence wins.
	WarnDuplicateNode WarningKind = "duplicate_node"
)

// Warning is a non-fatal integrity finding from graph construction.
// Warnings accompany the built graph rather than aborting the build.
type Warning struct {
	Kind    WarningKind
	Subject string // the offending node name or raw edge string
	Edge    string // the raw edge declaration, for endpoint warnings
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnMalformedEdge:
		return fmt.Sprintf("malformed edge %q skipped", w.Subject)
	case WarnUndeclaredNode:
		return fmt.Sprintf("edge %q references undeclared node %q", w.Edge, w.Subject)
	case WarnDuplicateNode:
		return fmt.Sprintf("duplicate node declaration %q ignored", w.Subject)
	default:
		return string(w.Kind)
	}
}
