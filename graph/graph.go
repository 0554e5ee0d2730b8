package graph

// Graph is an immutable directed knowledge graph.
//
// Iteration order over nodes and over a node's incident edges follows
// insertion order from the input data, which keeps resolution tie-breaking
// and subgraph output deterministic across runs.
type Graph struct {
	nodes map[string]*Node
	order []string

	out map[string][]*Edge
	in  map[string][]*Edge

	edges []*Edge

	// skippedEdges counts dangling edges dropped at load time.
	skippedEdges int
}

func newGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		out:   make(map[string][]*Edge),
		in:    make(map[string][]*Edge),
	}
}

func (g *Graph) addNode(n *Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

// addEdge wires an edge into both adjacency maps. Returns false when either
// endpoint is missing or the exact (source, target, type) triple already
// exists.
func (g *Graph) addEdge(e *Edge) bool {
	if _, ok := g.nodes[e.Source]; !ok {
		g.skippedEdges++
		return false
	}
	if _, ok := g.nodes[e.Target]; !ok {
		g.skippedEdges++
		return false
	}
	for _, existing := range g.out[e.Source] {
		if existing.key() == e.key() {
			return false
		}
	}
	g.edges = append(g.edges, e)
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
	return true
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// OutEdges returns the edges originating at the given node ID.
func (g *Graph) OutEdges(id string) []*Edge {
	edges := g.out[id]
	out := make([]*Edge, len(edges))
	copy(out, edges)
	return out
}

// InEdges returns the edges terminating at the given node ID.
func (g *Graph) InEdges(id string) []*Edge {
	edges := g.in[id]
	out := make([]*Edge, len(edges))
	copy(out, edges)
	return out
}

// Successors returns the distinct IDs of nodes reachable by one outgoing
// edge, in encounter order.
func (g *Graph) Successors(id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range g.out[id] {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	return out
}

// Predecessors returns the distinct IDs of nodes with one edge into the
// given node, in encounter order.
func (g *Graph) Predecessors(id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range g.in[id] {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	return out
}

// Neighbors returns the distinct IDs adjacent to the node in either
// direction: predecessors first, then successors, each in encounter order.
func (g *Graph) Neighbors(id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range g.in[id] {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	for _, e := range g.out[id] {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges retained in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SkippedEdges returns how many dangling edges were dropped at load time.
func (g *Graph) SkippedEdges() int { return g.skippedEdges }
