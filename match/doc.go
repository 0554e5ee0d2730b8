// Package match resolves free-text trait and gene queries against canonical
// graph nodes using fuzzy string matching.
//
// Scores live on a 0–100 scale. The scorer composes several string-similarity
// metrics so that word reordering, partial substrings, and case differences
// still score highly; exact score values are not a contract — only the
// ordering of candidates and the threshold semantics are.
//
// Resolution follows a strict precedence: a query that exactly equals an
// existing node ID of the right kind short-circuits with score 100, bypassing
// fuzzy scoring entirely. This keeps behavior unambiguous when IDs and
// display names collide.
//
// "No match" is a normal outcome, not an error: ResolveTrait returns an empty
// slice and ResolveTraitAndGenes returns nil when nothing clears the score
// floor.
package match
