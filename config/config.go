// Package config provides loading and parsing of the engine's YAML
// configuration file: graph sources, matching thresholds, NCBI access, and
// the cache backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backend names accepted in configuration.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// ErrInvalidConfig wraps every validation failure; check with errors.Is.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root of an engine configuration file.
type Config struct {
	Graph GraphConfig `yaml:"graph"`
	Match MatchConfig `yaml:"match"`
	NCBI  NCBIConfig  `yaml:"ncbi"`
	Cache CacheConfig `yaml:"cache"`
}

// GraphConfig locates the knowledge-graph input. Either a single combined
// file or a nodes/edges pair must be given.
type GraphConfig struct {
	// Path is a combined {"nodes": [...], "edges": [...]} document.
	Path string `yaml:"path,omitempty"`

	// NodesPath and EdgesPath are separate JSON arrays. Both must be set
	// together.
	NodesPath string `yaml:"nodes_path,omitempty"`
	EdgesPath string `yaml:"edges_path,omitempty"`
}

// MatchConfig tunes fuzzy resolution.
type MatchConfig struct {
	// MinScore is the 0–100 similarity floor. Default: 70.
	MinScore int `yaml:"min_score,omitempty"`

	// Limit caps trait candidates per query. Default: 5.
	Limit int `yaml:"limit,omitempty"`

	// InfluenceRelations, when non-empty, restricts matched genes to
	// edges of these types. Default: every relation counts.
	InfluenceRelations []string `yaml:"influence_relations,omitempty"`
}

// NCBIConfig configures the external metadata client.
type NCBIConfig struct {
	// BaseURL overrides the E-utilities endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// Email and APIKey are forwarded to NCBI per its usage policy.
	Email  string `yaml:"email,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`

	// Organism is the search scope filter term.
	// Default: "txid33090[Organism:exp]" (green plants).
	Organism string `yaml:"organism,omitempty"`

	// RetMax caps search candidates per lookup. Default: 5.
	RetMax int `yaml:"retmax,omitempty"`

	// CallInterval spaces network calls. Go duration string
	// (e.g., "300ms"). Default: 300ms.
	CallInterval string `yaml:"call_interval,omitempty"`
}

// CacheConfig selects and configures the metadata cache backend.
type CacheConfig struct {
	// Backend is "memory", "file", or "redis". Default: "memory".
	Backend string `yaml:"backend,omitempty"`

	// Path is the cache file location for the file backend.
	Path string `yaml:"path,omitempty"`

	// RedisURL is the connection string for the redis backend.
	RedisURL string `yaml:"redis_url,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
}

// Validate checks cross-field consistency. Zero values that have defaults
// downstream are left alone.
func (c *Config) Validate() error {
	if c.Graph.Path == "" && (c.Graph.NodesPath == "" || c.Graph.EdgesPath == "") {
		return fmt.Errorf("%w: graph requires either path or both nodes_path and edges_path", ErrInvalidConfig)
	}
	if c.Graph.Path != "" && c.Graph.NodesPath != "" {
		return fmt.Errorf("%w: graph path and nodes_path are mutually exclusive", ErrInvalidConfig)
	}

	if c.Match.MinScore < 0 || c.Match.MinScore > 100 {
		return fmt.Errorf("%w: match min_score must be within 0-100, got %d", ErrInvalidConfig, c.Match.MinScore)
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Cache.Path == "" {
			return fmt.Errorf("%w: file cache backend requires path", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("%w: redis cache backend requires redis_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}

	if _, err := c.NCBICallInterval(); err != nil {
		return err
	}
	return nil
}

// NCBICallInterval parses the configured call interval, zero when unset.
func (c *Config) NCBICallInterval() (time.Duration, error) {
	if c.NCBI.CallInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.NCBI.CallInterval)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid ncbi call_interval %q: %v", ErrInvalidConfig, c.NCBI.CallInterval, err)
	}
	return d, nil
}
