package ncbi

import (
	"fmt"
	"strconv"
	"strings"
)

// Entity types routed to a real NCBI database. Anything else short-circuits
// to a NotFound record without a network call.
const (
	TypeGene    = "gene"
	TypeProtein = "protein"
)

// Entity identifies one graph node to enrich.
type Entity struct {
	// Name is the display name used as the search term.
	Name string `json:"name"`

	// Type is the entity type (TypeGene, TypeProtein, or other).
	Type string `json:"type"`

	// ID is the graph node ID; it keys the result. Falls back to Name
	// when empty.
	ID string `json:"id"`
}

// Key returns the composite cache/result key "{type}:{id-or-name}".
func (e Entity) Key() string {
	id := e.ID
	if id == "" {
		id = e.Name
	}
	return e.Type + ":" + id
}

// Record is the normalized result of one external lookup. Gene and protein
// lookups populate their type-specific fields; the rest stay zero.
type Record struct {
	// Key is the composite identity "{type}:{id}" set on batch results so
	// callers can index records without relying on order.
	Key string `json:"_key,omitempty"`

	// GraphID and GraphName echo the graph node the lookup was made for.
	GraphID   string `json:"graph_id,omitempty"`
	GraphName string `json:"graph_name,omitempty"`

	// Query is the search term that produced this record.
	Query string `json:"query,omitempty"`

	// Type is the entity type the lookup was routed as.
	Type string `json:"type,omitempty"`

	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Organism    string `json:"organism,omitempty"`

	// Gene fields.
	GeneID      string `json:"gene_id,omitempty"`
	Chromosome  string `json:"chromosome,omitempty"`
	Aliases     string `json:"aliases,omitempty"`
	GenomicInfo string `json:"genomic_info,omitempty"`
	Summary     string `json:"summary,omitempty"`

	// Protein fields.
	AccessionVersion string `json:"accession_version,omitempty"`
	SequenceLength   int    `json:"sequence_length,omitempty"`

	// NotFound marks a lookup that completed with no external match.
	NotFound bool `json:"not_found,omitempty"`

	// Error carries a per-entity failure message inside batch results.
	Error string `json:"error,omitempty"`
}

// Defaulted accessors over the loosely-typed esummary documents. NCBI's
// response shapes drift between databases, so no accessor ever fails on a
// missing or oddly-typed field.

func docString(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func docInt(doc map[string]any, key string) int {
	switch v := doc[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func docList(doc map[string]any, key string) []map[string]any {
	raw, ok := doc[key].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// docOrganism extracts the scientific name whether organism is the gene
// database's nested object or the protein database's plain string.
func docOrganism(doc map[string]any) string {
	switch v := doc["organism"].(type) {
	case map[string]any:
		return docString(v, "scientificname")
	case string:
		return v
	default:
		return ""
	}
}

// normalizeGene flattens a gene esummary document.
func normalizeGene(doc map[string]any) Record {
	rec := Record{
		Type:        TypeGene,
		GeneID:      docString(doc, "uid"),
		Name:        docString(doc, "name"),
		Description: docString(doc, "description"),
		Chromosome:  docString(doc, "chromosome"),
		Aliases:     docString(doc, "otheraliases"),
		Summary:     docString(doc, "summary"),
		Organism:    docOrganism(doc),
	}

	var locations []string
	for _, gi := range docList(doc, "genomicinfo") {
		acc := docString(gi, "chraccver")
		start := docString(gi, "chrstart")
		stop := docString(gi, "chrstop")
		strand := docString(gi, "chrstrand")

		var parts []string
		if acc != "" {
			parts = append(parts, acc)
		}
		if start != "" && stop != "" {
			parts = append(parts, start+"-"+stop)
		}
		if strand != "" {
			parts = append(parts, "strand="+strand)
		}
		if len(parts) == 0 {
			continue
		}
		loc := parts[0]
		if len(parts) > 1 {
			loc += ":" + strings.Join(parts[1:], " ")
		}
		locations = append(locations, loc)
	}
	rec.GenomicInfo = strings.Join(locations, "; ")

	return rec
}

// normalizeProtein flattens a protein esummary document.
func normalizeProtein(doc map[string]any) Record {
	return Record{
		Type:             TypeProtein,
		AccessionVersion: docString(doc, "accessionversion"),
		Description:      docString(doc, "title"),
		SequenceLength:   docInt(doc, "slen"),
		Organism:         docOrganism(doc),
	}
}
