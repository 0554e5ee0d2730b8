package traitkg

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/text2trait/traitkg/cache"
	"github.com/text2trait/traitkg/config"
	"github.com/text2trait/traitkg/graph"
	"github.com/text2trait/traitkg/match"
	"github.com/text2trait/traitkg/ncbi"
)

// Option configures an Engine.
type Option func(*engineConfig)

// engineConfig accumulates options before construction. Explicit options
// win over values from a config file.
type engineConfig struct {
	configPath string

	graphPath string
	nodesPath string
	edgesPath string
	prebuilt  *graph.Graph

	minScore           int
	limit              int
	influenceRelations []string

	ncbi ncbi.Options

	cacheBackend string
	cachePath    string
	redisURL     string
	cache        cache.Cache

	logger *slog.Logger
	tracer trace.Tracer
}

func newEngineConfig() *engineConfig {
	return &engineConfig{
		minScore: -1,
		limit:    -1,
		logger:   slog.Default(),
	}
}

// WithConfigFile loads engine settings from a YAML file. Explicit options
// passed alongside it take precedence.
func WithConfigFile(path string) Option {
	return func(c *engineConfig) {
		c.configPath = path
	}
}

// WithGraphFile sets a combined nodes+edges JSON document as the graph
// source.
func WithGraphFile(path string) Option {
	return func(c *engineConfig) {
		c.graphPath = path
	}
}

// WithGraphFiles sets separate node and edge JSON array files as the graph
// source.
func WithGraphFiles(nodesPath, edgesPath string) Option {
	return func(c *engineConfig) {
		c.nodesPath = nodesPath
		c.edgesPath = edgesPath
	}
}

// WithGraph supplies an already-loaded graph, bypassing file loading.
func WithGraph(g *graph.Graph) Option {
	return func(c *engineConfig) {
		c.prebuilt = g
	}
}

// WithMinScore sets the fuzzy-matching similarity floor (0–100).
func WithMinScore(min int) Option {
	return func(c *engineConfig) {
		c.minScore = min
	}
}

// WithMatchLimit caps trait candidates per query.
func WithMatchLimit(limit int) Option {
	return func(c *engineConfig) {
		c.limit = limit
	}
}

// WithInfluenceRelations restricts matched genes to edges of the given
// relation types.
func WithInfluenceRelations(relations ...string) Option {
	return func(c *engineConfig) {
		c.influenceRelations = relations
	}
}

// WithNCBI overrides the metadata client options. The engine always injects
// its own cache; a Cache set here is ignored in favor of WithCache.
func WithNCBI(opts ncbi.Options) Option {
	return func(c *engineConfig) {
		c.ncbi = opts
	}
}

// WithCache injects a metadata cache backend, overriding any backend named
// in the config file.
func WithCache(store cache.Cache) Option {
	return func(c *engineConfig) {
		c.cache = store
	}
}

// WithFileCache persists metadata records to a JSON file at the given path.
func WithFileCache(path string) Option {
	return func(c *engineConfig) {
		c.cacheBackend = config.BackendFile
		c.cachePath = path
	}
}

// WithRedisCache persists metadata records in Redis.
func WithRedisCache(url string) Option {
	return func(c *engineConfig) {
		c.cacheBackend = config.BackendRedis
		c.redisURL = url
	}
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}

// WithTracer enables OpenTelemetry spans around query runs and NCBI
// round-trips.
func WithTracer(t trace.Tracer) Option {
	return func(c *engineConfig) {
		c.tracer = t
	}
}

// applyFileConfig fills every setting the caller did not set explicitly.
func (c *engineConfig) applyFileConfig(fc *config.Config) {
	if c.graphPath == "" && c.nodesPath == "" && c.prebuilt == nil {
		c.graphPath = fc.Graph.Path
		c.nodesPath = fc.Graph.NodesPath
		c.edgesPath = fc.Graph.EdgesPath
	}

	if c.minScore < 0 && fc.Match.MinScore > 0 {
		c.minScore = fc.Match.MinScore
	}
	if c.limit < 0 && fc.Match.Limit > 0 {
		c.limit = fc.Match.Limit
	}
	if c.influenceRelations == nil {
		c.influenceRelations = fc.Match.InfluenceRelations
	}

	if c.ncbi.BaseURL == "" {
		c.ncbi.BaseURL = fc.NCBI.BaseURL
	}
	if c.ncbi.Email == "" {
		c.ncbi.Email = fc.NCBI.Email
	}
	if c.ncbi.APIKey == "" {
		c.ncbi.APIKey = fc.NCBI.APIKey
	}
	if c.ncbi.Organism == "" {
		c.ncbi.Organism = fc.NCBI.Organism
	}
	if c.ncbi.RetMax == 0 {
		c.ncbi.RetMax = fc.NCBI.RetMax
	}
	if c.ncbi.CallInterval == 0 {
		// Validate() already vetted the duration string.
		if d, err := fc.NCBICallInterval(); err == nil && d > 0 {
			c.ncbi.CallInterval = d
		}
	}

	if c.cache == nil && c.cacheBackend == "" {
		c.cacheBackend = fc.Cache.Backend
		c.cachePath = fc.Cache.Path
		c.redisURL = fc.Cache.RedisURL
	}
}

func (c *engineConfig) resolverOptions() []match.Option {
	var opts []match.Option
	if c.minScore >= 0 {
		opts = append(opts, match.WithMinScore(c.minScore))
	}
	if c.limit > 0 {
		opts = append(opts, match.WithLimit(c.limit))
	}
	if len(c.influenceRelations) > 0 {
		opts = append(opts, match.WithInfluenceRelations(c.influenceRelations...))
	}
	return opts
}

func (c *engineConfig) buildCache() (cache.Cache, error) {
	switch c.cacheBackend {
	case config.BackendFile:
		return cache.NewFile(cache.FileOptions{Path: c.cachePath})
	case config.BackendRedis:
		return cache.NewRedis(cache.RedisOptions{URL: c.redisURL})
	default:
		return cache.NewMemory(), nil
	}
}

func (c *engineConfig) loadGraph() (*graph.Graph, error) {
	switch {
	case c.prebuilt != nil:
		return c.prebuilt, nil
	case c.graphPath != "":
		return graph.LoadFile(c.graphPath)
	case c.nodesPath != "" && c.edgesPath != "":
		return graph.LoadSplitFiles(c.nodesPath, c.edgesPath)
	default:
		return nil, ErrNoGraphSource
	}
}
