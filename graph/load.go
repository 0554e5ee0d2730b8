package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrDataLoad indicates a missing, unreadable, or malformed graph source.
// Load failures are fatal to graph initialization: a caller must not serve
// queries against a partially loaded graph.
//
// Check with errors.Is:
//
//	g, err := graph.LoadFile(path)
//	if errors.Is(err, graph.ErrDataLoad) {
//	    log.Fatal(err)
//	}
var ErrDataLoad = errors.New("graph: data load failed")

// document is the combined input shape: {"nodes": [...], "edges": [...]}.
type document struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Load reads a combined nodes+edges JSON document and builds the graph.
//
// Nodes must carry an "id"; edges must carry "source" and "target". Any
// additional attributes are preserved. Edges referencing a node absent from
// the node list are logged and skipped, not fatal.
func Load(r io.Reader) (*Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parsing combined source: %v", ErrDataLoad, err)
	}
	return build(doc.Nodes, doc.Edges)
}

// LoadSplit reads separate node and edge JSON arrays and builds the graph.
func LoadSplit(nodes, edges io.Reader) (*Graph, error) {
	var nodeList []*Node
	if err := json.NewDecoder(nodes).Decode(&nodeList); err != nil {
		return nil, fmt.Errorf("%w: parsing nodes source: %v", ErrDataLoad, err)
	}
	var edgeList []*Edge
	if err := json.NewDecoder(edges).Decode(&edgeList); err != nil {
		return nil, fmt.Errorf("%w: parsing edges source: %v", ErrDataLoad, err)
	}
	return build(nodeList, edgeList)
}

// LoadFile loads a combined nodes+edges document from disk.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrDataLoad, path, err)
	}
	defer f.Close()
	return Load(f)
}

// LoadSplitFiles loads separate node and edge array files from disk.
func LoadSplitFiles(nodesPath, edgesPath string) (*Graph, error) {
	nf, err := os.Open(nodesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrDataLoad, nodesPath, err)
	}
	defer nf.Close()

	ef, err := os.Open(edgesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrDataLoad, edgesPath, err)
	}
	defer ef.Close()

	return LoadSplit(nf, ef)
}

func build(nodes []*Node, edges []*Edge) (*Graph, error) {
	g := newGraph()

	for i, n := range nodes {
		if n == nil || n.ID == "" {
			return nil, fmt.Errorf("%w: node %d is missing an id", ErrDataLoad, i)
		}
		g.addNode(n)
	}

	for i, e := range edges {
		if e == nil || e.Source == "" || e.Target == "" {
			return nil, fmt.Errorf("%w: edge %d is missing source or target", ErrDataLoad, i)
		}
		if _, ok := g.nodes[e.Source]; !ok {
			slog.Warn("skipping dangling edge", "source", e.Source, "target", e.Target, "type", e.Type)
		} else if _, ok := g.nodes[e.Target]; !ok {
			slog.Warn("skipping dangling edge", "source", e.Source, "target", e.Target, "type", e.Type)
		}
		g.addEdge(e)
	}

	return g, nil
}
