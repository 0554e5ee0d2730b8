// Package traitkg is a knowledge-graph browsing and enrichment engine for
// biological trait–gene research.
//
// The engine answers the question "which genes influence this trait?" over a
// static directed knowledge graph: a free-text trait query (optionally
// narrowed by a gene query) is fuzzy-resolved to canonical graph nodes, the
// match is expanded to its one-hop neighborhood for visualization, and the
// gene/protein nodes in that neighborhood are enriched with reference
// records fetched from NCBI and cached locally.
//
// # Components
//
// The engine composes the leaf packages; each is usable on its own:
//
//   - graph: the immutable directed knowledge graph and its JSON loaders
//   - match: fuzzy trait/gene resolution with deterministic tie-breaking
//   - query: one-hop neighborhood expansion and the query orchestrator
//   - ncbi: the rate-limited external metadata client
//   - cache: pluggable key-value persistence for metadata records
//   - config: YAML configuration for all of the above
//
// # Usage
//
//	engine, err := traitkg.New(
//	    traitkg.WithGraphFile("data/arabidopsis_kg.json"),
//	    traitkg.WithFileCache("data/ncbi_cache.json"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	res := engine.Query(ctx, "flowering time", "FT")
//	if !res.Found {
//	    // render "no results"
//	}
//	records := engine.Enrich(ctx, res.Entities) // slow path, run it async
//
// # Error model
//
// Only graph loading fails hard (graph.ErrDataLoad). Once an Engine exists,
// queries always return a renderable result: resolution misses come back as
// neutral results, and per-entity metadata failures surface as error-flagged
// records inside the batch, never as panics or aborted queries.
package traitkg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/text2trait/traitkg/cache"
	"github.com/text2trait/traitkg/config"
	"github.com/text2trait/traitkg/graph"
	"github.com/text2trait/traitkg/match"
	"github.com/text2trait/traitkg/ncbi"
	"github.com/text2trait/traitkg/query"
)

// ErrNoGraphSource indicates New was called without any graph input: no
// graph file, no split node/edge files, no pre-built graph, and no config
// file naming one.
var ErrNoGraphSource = errors.New("traitkg: no graph source configured")

// Engine wires the graph, resolver, orchestrator, metadata client, and
// cache into one facade for the presentation layer.
//
// An Engine is safe for concurrent queries: the graph is immutable after
// New, and the metadata client serializes its own cache access.
type Engine struct {
	graph        *graph.Graph
	orchestrator *query.Orchestrator
	client       *ncbi.Client
	cache        cache.Cache
	logger       *slog.Logger
}

// New builds an Engine from the given options, loading the graph eagerly.
// A graph that cannot be loaded is a fatal construction error; see the
// package error model.
func New(opts ...Option) (*Engine, error) {
	cfg := newEngineConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.configPath != "" {
		fileCfg, err := config.Load(cfg.configPath)
		if err != nil {
			return nil, err
		}
		cfg.applyFileConfig(fileCfg)
	}

	store := cfg.cache
	if store == nil {
		var err error
		store, err = cfg.buildCache()
		if err != nil {
			return nil, err
		}
	}

	g, err := cfg.loadGraph()
	if err != nil {
		return nil, err
	}

	resolver := match.NewResolver(cfg.resolverOptions()...)

	ncbiOpts := cfg.ncbi
	ncbiOpts.Cache = store
	if ncbiOpts.Logger == nil {
		ncbiOpts.Logger = cfg.logger
	}
	if ncbiOpts.Tracer == nil {
		ncbiOpts.Tracer = cfg.tracer
	}

	orchestratorOpts := []query.Option{
		query.WithResolver(resolver),
		query.WithLogger(cfg.logger),
	}
	if cfg.tracer != nil {
		orchestratorOpts = append(orchestratorOpts, query.WithTracer(cfg.tracer))
	}

	return &Engine{
		graph:        g,
		orchestrator: query.New(orchestratorOpts...),
		client:       ncbi.NewClient(ncbiOpts),
		cache:        store,
		logger:       cfg.logger,
	}, nil
}

// Graph returns the loaded knowledge graph.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Query resolves a trait (and optional gene) and expands its neighborhood.
// Always returns a renderable result; see query.Orchestrator.Run.
func (e *Engine) Query(ctx context.Context, trait, gene string) query.Result {
	return e.orchestrator.Run(ctx, e.graph, query.Request{Trait: trait, Gene: gene})
}

// Enrich fetches external metadata for the given entities, sequentially and
// rate-limited. Treat this as a multi-second blocking call and keep it off
// latency-sensitive paths; results index by Record.Key.
func (e *Engine) Enrich(ctx context.Context, entities []ncbi.Entity) []ncbi.Record {
	return e.client.FetchMany(ctx, entities)
}

// Metadata exposes the underlying NCBI client for direct lookups (for
// example FetchGeneByID).
func (e *Engine) Metadata() *ncbi.Client {
	return e.client
}

// Close flushes and releases the metadata cache.
func (e *Engine) Close() error {
	if err := e.cache.Flush(context.Background()); err != nil {
		return fmt.Errorf("traitkg: flushing cache: %w", err)
	}
	return e.cache.Close()
}
