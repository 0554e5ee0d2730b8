// Package graph provides the in-memory knowledge graph consumed by the
// trait–gene browsing engine.
//
// A Graph is loaded once from static JSON input and is read-only afterwards:
// there are no exported mutators, and every accessor returns copies or
// read-only views. The node and edge schemas are forward-compatible — any
// attribute beyond the required fields is preserved verbatim and round-trips
// through JSON marshalling.
//
// # Loading
//
// Two input shapes are supported, because the upstream corpus pipeline
// produces both:
//
//   - a single combined document: {"nodes": [...], "edges": [...]}
//   - two separate documents, one JSON array of nodes and one of edges
//
// Use Load / LoadFile for the combined shape and LoadSplit / LoadSplitFiles
// for the separate shape. Load failures wrap ErrDataLoad and are fatal to
// graph initialization; by contrast an edge that references a missing node is
// a tolerated data-integrity defect, logged and skipped.
//
// # Labels
//
// Node labels form an open set. Trait, gene, and protein labels are
// recognized for resolution and enrichment routing; anything else is treated
// as KindOther, never rejected.
package graph
