package match

import (
	"sort"

	"github.com/text2trait/traitkg/graph"
)

// Default thresholds for fuzzy resolution.
const (
	// DefaultMinScore is the similarity floor below which candidates are
	// discarded.
	DefaultMinScore = 70

	// DefaultLimit caps how many trait candidates ResolveTrait returns.
	DefaultLimit = 5
)

// Edge direction annotations carried on matched genes.
const (
	// DirGeneToTrait marks a gene with an edge into the trait.
	DirGeneToTrait = "gene->trait"

	// DirTraitToGene marks a gene the trait has an edge into.
	DirTraitToGene = "trait->gene"
)

// Candidate is a fuzzy-resolution result: a node ID and its 0–100 score.
type Candidate struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// GeneMatch is a gene connected to a resolved trait.
type GeneMatch struct {
	// ID is the gene node's graph ID.
	ID string `json:"gene_id"`

	// Name is the gene's display name.
	Name string `json:"gene_name"`

	// RelationType is the type of the first edge encountered between the
	// gene and the trait.
	RelationType string `json:"relation_type,omitempty"`

	// Direction is DirGeneToTrait or DirTraitToGene.
	Direction string `json:"direction,omitempty"`
}

// TraitResolution is the outcome of resolving a trait query plus its
// connected genes. A nil *TraitResolution means the trait query matched
// nothing above the floor — a normal "no results" outcome, never an error.
type TraitResolution struct {
	TraitID      string      `json:"trait_id"`
	TraitName    string      `json:"trait_name"`
	MatchedGenes []GeneMatch `json:"matched_genes"`
}

// Resolver resolves free-text queries against graph nodes.
type Resolver struct {
	scorer    *Scorer
	minScore  int
	limit     int
	relations map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMinScore sets the similarity floor (0–100). Candidates scoring below
// it are discarded.
func WithMinScore(min int) Option {
	return func(r *Resolver) {
		r.minScore = min
	}
}

// WithLimit caps how many trait candidates ResolveTrait returns.
func WithLimit(limit int) Option {
	return func(r *Resolver) {
		r.limit = limit
	}
}

// WithScorer replaces the default fuzzy scorer.
func WithScorer(s *Scorer) Option {
	return func(r *Resolver) {
		r.scorer = s
	}
}

// WithInfluenceRelations restricts matched genes to edges whose type is in
// the given set. By default every relation type counts.
func WithInfluenceRelations(relations ...string) Option {
	return func(r *Resolver) {
		r.relations = make(map[string]bool, len(relations))
		for _, rel := range relations {
			r.relations[rel] = true
		}
	}
}

// NewResolver returns a Resolver with the default scorer and thresholds.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		scorer:   NewScorer(),
		minScore: DefaultMinScore,
		limit:    DefaultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveTrait returns trait candidates for a free-text query, ordered by
// descending score with ties broken by node insertion order.
//
// A query exactly equal to an existing trait node's ID short-circuits with
// score 100. The result is empty, never nil-vs-error ambiguous, when nothing
// clears the floor.
func (r *Resolver) ResolveTrait(g *graph.Graph, query string) []Candidate {
	if n, ok := g.Node(query); ok && n.IsTrait() {
		return []Candidate{{ID: n.ID, Score: 100}}
	}

	var out []Candidate
	for _, n := range g.Nodes() {
		if !n.IsTrait() {
			continue
		}
		if score := r.scorer.Score(query, n.Name()); score >= r.minScore {
			out = append(out, Candidate{ID: n.ID, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > r.limit {
		out = out[:r.limit]
	}
	return out
}

// FilterGenes narrows a caller-supplied gene candidate set to the best match
// for a query. A query equal to a candidate's ID wins outright; otherwise the
// single best fuzzy name match above the floor is kept. Returns an empty
// slice when nothing qualifies.
func (r *Resolver) FilterGenes(candidates []GeneMatch, query string) []GeneMatch {
	for _, g := range candidates {
		if g.ID == query {
			return []GeneMatch{g}
		}
	}

	bestScore := -1
	bestIdx := -1
	for i, g := range candidates {
		if score := r.scorer.Score(query, g.Name); score >= r.minScore && score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return []GeneMatch{}
	}
	return []GeneMatch{candidates[bestIdx]}
}

// ResolveTraitAndGenes resolves a trait query, collects every gene adjacent
// to the trait in either direction, and optionally narrows to the gene best
// matching geneQuery.
//
// Returns nil when the trait query resolves to nothing. An unresolvable
// geneQuery yields an empty MatchedGenes slice, not nil.
func (r *Resolver) ResolveTraitAndGenes(g *graph.Graph, traitQuery, geneQuery string) *TraitResolution {
	var traitID string
	if n, ok := g.Node(traitQuery); ok && n.IsTrait() {
		traitID = n.ID
	} else {
		matches := r.ResolveTrait(g, traitQuery)
		if len(matches) == 0 {
			return nil
		}
		traitID = matches[0].ID
	}

	traitNode, _ := g.Node(traitID)
	res := &TraitResolution{
		TraitID:      traitID,
		TraitName:    traitNode.Name(),
		MatchedGenes: []GeneMatch{},
	}

	seen := make(map[string]bool)
	collect := func(geneID, relType, direction string) {
		if r.relations != nil && !r.relations[relType] {
			return
		}
		n, ok := g.Node(geneID)
		if !ok || !n.IsGene() || seen[geneID] {
			return
		}
		seen[geneID] = true
		res.MatchedGenes = append(res.MatchedGenes, GeneMatch{
			ID:           geneID,
			Name:         n.Name(),
			RelationType: relType,
			Direction:    direction,
		})
	}

	for _, e := range g.InEdges(traitID) {
		collect(e.Source, e.Type, DirGeneToTrait)
	}
	for _, e := range g.OutEdges(traitID) {
		collect(e.Target, e.Type, DirTraitToGene)
	}

	if geneQuery != "" && len(res.MatchedGenes) > 0 {
		res.MatchedGenes = r.FilterGenes(res.MatchedGenes, geneQuery)
	}
	return res
}

// TraitGenePair is one row of the bulk trait–gene listing.
type TraitGenePair struct {
	TraitID   string `json:"trait_id"`
	TraitName string `json:"trait_name"`
	GeneID    string `json:"gene_id"`
	GeneName  string `json:"gene_name"`
}

// AllTraitGenePairs lists every trait–gene adjacency in the graph, in node
// insertion order.
func (r *Resolver) AllTraitGenePairs(g *graph.Graph) []TraitGenePair {
	var out []TraitGenePair
	for _, n := range g.Nodes() {
		if !n.IsTrait() {
			continue
		}
		res := r.ResolveTraitAndGenes(g, n.ID, "")
		if res == nil {
			continue
		}
		for _, gene := range res.MatchedGenes {
			out = append(out, TraitGenePair{
				TraitID:   res.TraitID,
				TraitName: res.TraitName,
				GeneID:    gene.ID,
				GeneName:  gene.Name,
			})
		}
	}
	return out
}
