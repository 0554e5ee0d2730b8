package graph

import "encoding/json"

// Edge is a directed relation between two node IDs.
//
// Multiple edges between the same ordered pair are permitted as long as
// their Type differs; exact (Source, Target, Type) duplicates are collapsed
// at load time.
type Edge struct {
	// Source is the origin node ID.
	Source string `json:"source"`

	// Target is the destination node ID.
	Target string `json:"target"`

	// Type is the relation label (e.g., "ASSOCIATED_WITH", "REGULATES").
	// The vocabulary is open; unrecognized types stay queryable.
	Type string `json:"type,omitempty"`

	// Attrs holds any additional fields present on the ingested edge.
	Attrs map[string]any `json:"-"`
}

// key identifies an edge for exact-duplicate collapsing.
func (e *Edge) key() [3]string {
	return [3]string{e.Source, e.Target, e.Type}
}

var edgeFields = map[string]bool{"source": true, "target": true, "type": true}

// UnmarshalJSON decodes an edge, preserving unknown attributes in Attrs.
func (e *Edge) UnmarshalJSON(data []byte) error {
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

	e.Source = asString("source")
	e.Target = asString("target")
	e.Type = asString("type")

	for key, msg := range raw {
		if edgeFields[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			continue
		}
		if e.Attrs == nil {
			e.Attrs = make(map[string]any)
		}
		e.Attrs[key] = v
	}
	return nil
}

// MarshalJSON encodes the edge with its preserved extra attributes inlined.
func (e *Edge) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attrs)+3)
	for k, v := range e.Attrs {
		out[k] = v
	}
	out["source"] = e.Source
	out["target"] = e.Target
	if e.Type != "" {
		out["type"] = e.Type
	}
	return json.Marshal(out)
}
