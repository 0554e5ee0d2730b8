// Package ncbi fetches gene and protein reference records from the NCBI
// E-utilities API and normalizes them into flat records for display.
//
// Lookups are name-based: a query term scoped by an organism filter is sent
// to esearch, the candidate IDs are expanded through esummary, and the best
// candidate is selected — an exact case-insensitive name (gene) or accession
// (protein) match when one exists, otherwise the first candidate the service
// returned. A search with zero candidates produces a record flagged
// NotFound, which is a normal result, not an error.
//
// Every normalized record, including not-found markers, is written through
// an injected cache keyed by "{entityType}:{identifier}". Cache hits return
// immediately and never touch the network or the rate limiter.
//
// Network calls are paced by a fixed-interval rate limiter (about three
// requests per second, NCBI's unauthenticated allowance). Batch lookups via
// FetchMany are strictly sequential for the same reason, so callers should
// treat a batch as a potentially multi-second blocking operation and run it
// off any latency-sensitive path.
package ncbi
