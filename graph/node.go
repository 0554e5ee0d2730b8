package graph

import "encoding/json"

// NodeKind classifies a node for resolution and enrichment routing.
// The underlying label vocabulary is open; unrecognized labels map to
// KindOther rather than failing.
type NodeKind string

const (
	// KindTrait marks phenotype/trait nodes, the primary search targets.
	KindTrait NodeKind = "trait"

	// KindGene marks gene nodes, eligible for NCBI gene enrichment.
	KindGene NodeKind = "gene"

	// KindProtein marks protein nodes, eligible for NCBI protein enrichment.
	KindProtein NodeKind = "protein"

	// KindOther covers every label outside the recognized sets.
	KindOther NodeKind = "other"
)

// traitLabels are the label spellings the corpus uses for trait nodes.
var traitLabels = map[string]bool{
	"Trait":             true,
	"Trait / Phenotype": true,
}

// KindOf maps a raw node label to its NodeKind.
func KindOf(label string) NodeKind {
	switch {
	case traitLabels[label]:
		return KindTrait
	case label == "Gene":
		return KindGene
	case label == "Protein":
		return KindProtein
	default:
		return KindOther
	}
}

// Node is a biological entity in the knowledge graph.
type Node struct {
	// ID is the opaque stable identifier, unique within a graph instance.
	ID string `json:"id"`

	// Label is the category tag (e.g., "Trait", "Gene", "Protein").
	// The set is open; unrecognized labels are carried as-is.
	Label string `json:"label,omitempty"`

	// Text is the human-readable display name used for fuzzy matching
	// and rendering. Empty Text falls back to ID, see Name.
	Text string `json:"text,omitempty"`

	// Source is optional provenance carried through from ingestion.
	Source string `json:"source,omitempty"`

	// Attrs holds any additional fields present on the ingested node.
	Attrs map[string]any `json:"-"`
}

// Name returns the display name, falling back to the ID when the node
// has no text attribute.
func (n *Node) Name() string {
	if n.Text != "" {
		return n.Text
	}
	return n.ID
}

// Kind returns the NodeKind for the node's label.
func (n *Node) Kind() NodeKind {
	return KindOf(n.Label)
}

// IsTrait reports whether the node is a trait/phenotype node.
func (n *Node) IsTrait() bool { return n.Kind() == KindTrait }

// IsGene reports whether the node is a gene node.
func (n *Node) IsGene() bool { return n.Kind() == KindGene }

// IsProtein reports whether the node is a protein node.
func (n *Node) IsProtein() bool { return n.Kind() == KindProtein }

// nodeFields are the keys lifted into struct fields; everything else
// lands in Attrs.
var nodeFields = map[string]bool{"id": true, "label": true, "text": true, "source": true}

// UnmarshalJSON decodes a node, preserving unknown attributes in Attrs.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	asString := func(key string) string {
		msg, ok := raw[key]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return ""
		}
		return s
	}

	n.ID = asString("id")
	n.Label = asString("label")
	n.Text = asString("text")
	n.Source = asString("source")

	for key, msg := range raw {
		if nodeFields[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			continue
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]any)
		}
		n.Attrs[key] = v
	}
	return nil
}

// MarshalJSON encodes the node with its preserved extra attributes inlined.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Attrs)+4)
	for k, v := range n.Attrs {
		out[k] = v
	}
	out["id"] = n.ID
	if n.Label != "" {
		out["label"] = n.Label
	}
	if n.Text != "" {
		out["text"] = n.Text
	}
	if n.Source != "" {
		out["source"] = n.Source
	}
	return json.Marshal(out)
}
