// Package query composes resolution, neighborhood expansion, and metadata
// key extraction into the single pipeline the presentation layer consumes.
//
// Run resolves a free-text trait query (optionally narrowed by a gene
// query), expands the resolved focus nodes to their one-hop neighborhood,
// classifies every subgraph node for enrichment routing, and emits the
// deduplicated list of entities that need external metadata lookups.
//
// A query that resolves to nothing produces a neutral Result with Found set
// to false — renderable as "no results" — never an error. Only graph loading
// can fail hard; by the time a Graph exists, every query is answerable.
package query
