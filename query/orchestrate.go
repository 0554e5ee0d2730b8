package query

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/text2trait/traitkg/graph"
	"github.com/text2trait/traitkg/match"
	"github.com/text2trait/traitkg/ncbi"
)

// Request is a single browsing query from the presentation layer.
type Request struct {
	// Trait is the free-text trait query. Required.
	Trait string `json:"trait"`

	// Gene optionally narrows the matched genes to one best match.
	Gene string `json:"gene,omitempty"`
}

// Result is the orchestrated answer to one Request.
type Result struct {
	// QueryID correlates this result with asynchronous enrichment the
	// caller may trigger afterwards.
	QueryID string `json:"query_id"`

	// Found is false when the trait query resolved to nothing; the rest
	// of the result is then neutral and renderable as "no results".
	Found bool `json:"found"`

	TraitID      string            `json:"trait_id,omitempty"`
	TraitName    string            `json:"trait_name,omitempty"`
	MatchedGenes []match.GeneMatch `json:"matched_genes"`

	// Subgraph is the one-hop neighborhood of the trait and its matched
	// genes, ready for rendering.
	Subgraph Subgraph `json:"subgraph"`

	// Entities lists the gene/protein nodes needing external metadata,
	// deduplicated by (type, id). Matched genes come first.
	Entities []ncbi.Entity `json:"entities"`
}

// Orchestrator runs the resolve → expand → classify pipeline.
type Orchestrator struct {
	resolver *match.Resolver
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithResolver replaces the default resolver.
func WithResolver(r *match.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = r
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithTracer enables a span per query run.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// New returns an Orchestrator with default settings.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: match.NewResolver(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one query against the graph.
//
// Resolution misses are not errors: the result comes back with Found false
// and empty collections so the caller renders "no results" instead of
// crashing. Metadata enrichment is intentionally not performed here — the
// caller feeds Result.Entities to the NCBI client on its own schedule,
// typically after the subgraph is already on screen.
func (o *Orchestrator) Run(ctx context.Context, g *graph.Graph, req Request) Result {
	if o.tracer != nil {
		_, span := o.tracer.Start(ctx, "query.run")
		span.SetAttributes(
			attribute.String("query.trait", req.Trait),
			attribute.Bool("query.has_gene_filter", req.Gene != ""),
		)
		defer span.End()
	}

	res := Result{
		QueryID:      uuid.NewString(),
		MatchedGenes: []match.GeneMatch{},
		Subgraph:     Subgraph{Nodes: []NodeView{}, Edges: []EdgeView{}},
		Entities:     []ncbi.Entity{},
	}

	resolution := o.resolver.ResolveTraitAndGenes(g, req.Trait, req.Gene)
	if resolution == nil {
		o.logger.Info("trait query resolved to nothing", "trait", req.Trait)
		return res
	}

	res.Found = true
	res.TraitID = resolution.TraitID
	res.TraitName = resolution.TraitName
	res.MatchedGenes = resolution.MatchedGenes

	focus := make([]string, 0, len(resolution.MatchedGenes)+1)
	focus = append(focus, resolution.TraitID)
	for _, gm := range resolution.MatchedGenes {
		focus = append(focus, gm.ID)
	}
	res.Subgraph = Expand(g, focus)

	seen := make(map[string]bool)
	add := func(e ncbi.Entity) {
		key := e.Key()
		if seen[key] {
			return
		}
		seen[key] = true
		res.Entities = append(res.Entities, e)
	}

	for _, gm := range resolution.MatchedGenes {
		add(ncbi.Entity{Name: gm.Name, Type: ncbi.TypeGene, ID: gm.ID})
	}
	for _, n := range res.Subgraph.Nodes {
		if n.Type == ncbi.TypeGene || n.Type == ncbi.TypeProtein {
			add(ncbi.Entity{Name: n.Text, Type: n.Type, ID: n.ID})
		}
	}

	return res
}
