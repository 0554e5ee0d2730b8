package query

import (
	"strings"

	"github.com/text2trait/traitkg/graph"
)

// NodeView is a subgraph node with full display data.
type NodeView struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`

	// Type is the enrichment classification: "gene", "protein", "trait",
	// or "other".
	Type string `json:"type"`
}

// EdgeView is a subgraph edge with its full attribute set.
type EdgeView struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Type   string         `json:"type,omitempty"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// Subgraph is the bounded node/edge set returned by expansion, suitable for
// direct rendering.
type Subgraph struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// Expand returns the one-hop neighborhood of the focus nodes: the focus set
// plus every direct successor and predecessor, and every edge incident to a
// focus node regardless of relation type.
//
// Edges sharing endpoints but differing in type all appear; exact duplicates
// traversed from both endpoints appear once. The source graph is never
// mutated. A focus node with no neighbors yields a subgraph of just that
// node. Focus IDs absent from the graph are skipped.
func Expand(g *graph.Graph, focus []string) Subgraph {
	nodeOrder := make([]string, 0, len(focus))
	seenNode := make(map[string]bool)
	addNode := func(id string) {
		if _, ok := g.Node(id); !ok || seenNode[id] {
			return
		}
		seenNode[id] = true
		nodeOrder = append(nodeOrder, id)
	}

	edges := make([]EdgeView, 0)
	seenEdge := make(map[[3]string]bool)
	addEdge := func(e *graph.Edge) {
		key := [3]string{e.Source, e.Target, e.Type}
		if seenEdge[key] {
			return
		}
		seenEdge[key] = true
		edges = append(edges, EdgeView{
			Source: e.Source,
			Target: e.Target,
			Type:   e.Type,
			Attrs:  e.Attrs,
		})
	}

	for _, id := range focus {
		addNode(id)
	}
	for _, id := range focus {
		if !seenNode[id] {
			continue
		}
		for _, e := range g.OutEdges(id) {
			addNode(e.Target)
			addEdge(e)
		}
		for _, e := range g.InEdges(id) {
			addNode(e.Source)
			addEdge(e)
		}
	}

	sub := Subgraph{Nodes: make([]NodeView, 0, len(nodeOrder)), Edges: edges}
	for _, id := range nodeOrder {
		n, _ := g.Node(id)
		sub.Nodes = append(sub.Nodes, NodeView{
			ID:     n.ID,
			Label:  n.Label,
			Text:   n.Name(),
			Source: n.Source,
			Type:   string(n.Kind()),
		})
	}
	return sub
}

// RelationClass normalizes a relation type into a display class token:
// trimmed, lowercased, spaces collapsed to underscores.
func RelationClass(relationType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(relationType)), " ", "_")
}
