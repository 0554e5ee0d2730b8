package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Scorer computes a 0–100 similarity between a query and a candidate name.
//
// The score is the best of three views of the pair:
//
//   - edit-distance similarity of the normalized strings
//   - edit-distance similarity after sorting tokens, tolerating reordering
//   - n-gram overlap, discounted, tolerating partial/substring matches
//
// Normalization lowercases and collapses whitespace, so case never affects
// the score. Equal normalized strings always score 100.
type Scorer struct {
	lev     *metrics.Levenshtein
	overlap *metrics.OverlapCoefficient
}

// NewScorer returns a Scorer with default metrics.
func NewScorer() *Scorer {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false

	overlap := metrics.NewOverlapCoefficient()
	overlap.CaseSensitive = false

	return &Scorer{lev: lev, overlap: overlap}
}

// Score returns the 0–100 similarity between query and candidate.
func (s *Scorer) Score(query, candidate string) int {
	q := normalize(query)
	c := normalize(candidate)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 100
	}

	best := strutil.Similarity(q, c, s.lev)

	if sorted := strutil.Similarity(tokenSort(q), tokenSort(c), s.lev); sorted > best {
		best = sorted
	}

	// Partial-substring view, discounted so a loose n-gram overlap never
	// outranks a close full-string match.
	if partial := 0.9 * strutil.Similarity(q, c, s.overlap); partial > best {
		best = partial
	}

	score := int(best*100 + 0.5)
	if score > 100 {
		score = 100
	}
	return score
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
