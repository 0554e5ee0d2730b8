package ncbi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/text2trait/traitkg/cache"
)

// ErrLookupFailed indicates a transient network or parsing failure during a
// metadata call. Single-entity methods return it wrapped; FetchMany converts
// it into a per-entity error record instead so one failure never aborts a
// batch.
var ErrLookupFailed = errors.New("ncbi: lookup failed")

// Defaults applied by NewClient.
const (
	// DefaultBaseURL is the public E-utilities endpoint.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultOrganism scopes gene and protein searches to green plants.
	DefaultOrganism = "txid33090[Organism:exp]"

	// DefaultRetMax caps how many search candidates are considered.
	DefaultRetMax = 5

	// DefaultCallInterval spaces network calls at roughly three per
	// second, NCBI's unauthenticated rate allowance.
	DefaultCallInterval = 300 * time.Millisecond
)

// Options configures a Client. The zero value is usable: every field has a
// default.
type Options struct {
	// BaseURL overrides the E-utilities endpoint, mainly for tests.
	BaseURL string

	// Email and APIKey are forwarded on every request when set, per NCBI
	// usage policy.
	Email  string
	APIKey string

	// Organism is the search scope filter term (e.g., "txid4081[Organism:exp]"
	// for tomato). Defaults to the green-plant scope.
	Organism string

	// RetMax caps search candidates per lookup.
	RetMax int

	// CallInterval is the minimum spacing between network calls. Cache
	// hits are never delayed.
	CallInterval time.Duration

	// Cache stores normalized records. Defaults to an in-memory cache,
	// so results are at least deduplicated within the process.
	Cache cache.Cache

	// HTTPClient overrides the default 15s-timeout client.
	HTTPClient *http.Client

	// Logger receives warnings for non-fatal degradations (cache write
	// failures). Defaults to slog.Default().
	Logger *slog.Logger

	// Tracer, when set, records a span per network round-trip.
	Tracer trace.Tracer
}

// Client looks up gene and protein records through NCBI E-utilities.
// Construct with NewClient; the zero Client is not usable.
type Client struct {
	baseURL  string
	email    string
	apiKey   string
	organism string
	retMax   int

	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewClient creates a Client, applying defaults for unset options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Organism == "" {
		opts.Organism = DefaultOrganism
	}
	if opts.RetMax <= 0 {
		opts.RetMax = DefaultRetMax
	}
	if opts.CallInterval <= 0 {
		opts.CallInterval = DefaultCallInterval
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		email:      opts.Email,
		apiKey:     opts.APIKey,
		organism:   opts.Organism,
		retMax:     opts.RetMax,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Every(opts.CallInterval), 1),
		cache:      opts.Cache,
		logger:     opts.Logger,
		tracer:     opts.Tracer,
	}
}

// FetchByName looks up one entity by display name using the client's
// configured organism scope. See FetchByNameScoped.
func (c *Client) FetchByName(ctx context.Context, name, entityType string) (Record, error) {
	return c.FetchByNameScoped(ctx, name, entityType, c.organism)
}

// FetchByNameScoped looks up one entity by display name within an explicit
// organism scope.
//
// Gene and protein types hit the network on a cache miss; any other type
// returns a NotFound record immediately. A search with zero candidates also
// yields a NotFound record (cached), not an error. Only transport and
// decoding failures return an error, wrapped around ErrLookupFailed.
func (c *Client) FetchByNameScoped(ctx context.Context, name, entityType, organism string) (Record, error) {
	if entityType != TypeGene && entityType != TypeProtein {
		return Record{Query: name, Type: entityType, NotFound: true}, nil
	}

	key := entityType + ":" + name
	if rec, ok := c.cached(ctx, key); ok {
		return rec, nil
	}

	var term, db string
	if entityType == TypeGene {
		db = "gene"
		term = fmt.Sprintf("%s[Gene] AND %s", name, organism)
	} else {
		db = "protein"
		term = fmt.Sprintf("%s AND %s", name, organism)
	}

	ids, err := c.search(ctx, db, term)
	if err != nil {
		return Record{}, err
	}
	if len(ids) == 0 {
		rec := Record{Query: name, Type: entityType, NotFound: true}
		c.store(ctx, key, rec)
		return rec, nil
	}

	docs, err := c.summaries(ctx, db, ids)
	if err != nil {
		return Record{}, err
	}
	if len(docs) == 0 {
		rec := Record{Query: name, Type: entityType, NotFound: true}
		c.store(ctx, key, rec)
		return rec, nil
	}

	var rec Record
	if entityType == TypeGene {
		rec = normalizeGene(bestGeneDoc(docs, name))
	} else {
		rec = normalizeProtein(bestProteinDoc(docs, name))
	}
	rec.Query = name

	c.store(ctx, key, rec)
	return rec, nil
}

// FetchGeneByID looks up a gene by its numeric NCBI GeneID, bypassing the
// name search. Cached under "gid:{id}".
func (c *Client) FetchGeneByID(ctx context.Context, geneID string) (Record, error) {
	key := "gid:" + geneID
	if rec, ok := c.cached(ctx, key); ok {
		return rec, nil
	}

	docs, err := c.summaries(ctx, "gene", []string{geneID})
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if len(docs) == 0 {
		rec = Record{GeneID: geneID, Type: TypeGene, NotFound: true}
	} else {
		rec = normalizeGene(docs[0])
	}

	c.store(ctx, key, rec)
	return rec, nil
}

// FetchMany looks up a batch of entities sequentially, respecting the rate
// limit between network calls.
//
// Every input produces exactly one output record carrying Key, GraphID, and
// GraphName, so callers can index results by key regardless of order. A
// failure on one entity is converted into an error record and never aborts
// its siblings.
func (c *Client) FetchMany(ctx context.Context, entities []Entity) []Record {
	out := make([]Record, 0, len(entities))
	for _, e := range entities {
		rec, err := c.FetchByName(ctx, e.Name, e.Type)
		if err != nil {
			c.logger.Warn("metadata lookup failed", "entity", e.Key(), "error", err)
			out = append(out, Record{
				Key:      e.Key(),
				Type:     e.Type,
				NotFound: true,
				Error:    err.Error(),
			})
			continue
		}
		rec.Key = e.Key()
		rec.GraphID = e.ID
		if rec.GraphID == "" {
			rec.GraphID = e.Name
		}
		rec.GraphName = e.Name
		out = append(out, rec)
	}
	return out
}

// cached returns a previously stored record for key. Cache backend failures
// degrade to a miss.
func (c *Client) cached(ctx context.Context, key string) (Record, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("metadata cache read failed", "key", key, "error", err)
		}
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		c.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return Record{}, false
	}
	return rec, true
}

// store writes a record through the cache. Failures are logged, not fatal:
// the lookup itself succeeded.
func (c *Client) store(ctx context.Context, key string, rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		c.logger.Warn("metadata cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.cache.Put(ctx, key, data); err != nil {
		c.logger.Warn("metadata cache write failed", "key", key, "error", err)
	}
}

// esearchResponse is the envelope of an esearch retmode=json reply.
type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// search runs esearch and returns candidate UIDs, at most retMax.
func (c *Client) search(ctx context.Context, db, term string) ([]string, error) {
	params := url.Values{}
	params.Set("db", db)
	params.Set("term", term)
	params.Set("retmax", fmt.Sprint(c.retMax))

	var resp esearchResponse
	if err := c.get(ctx, "esearch.fcgi", params, &resp); err != nil {
		return nil, err
	}
	return resp.Result.IDList, nil
}

// esummaryResponse is the envelope of an esummary retmode=json reply: the
// result object maps each UID to its document summary.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

// summaries runs esummary and returns the documents in the service's UID
// order.
func (c *Client) summaries(ctx context.Context, db string, ids []string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("db", db)
	params.Set("id", strings.Join(ids, ","))

	var resp esummaryResponse
	if err := c.get(ctx, "esummary.fcgi", params, &resp); err != nil {
		return nil, err
	}

	var uids []string
	if raw, ok := resp.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &uids); err != nil {
			uids = nil
		}
	}
	if uids == nil {
		uids = ids
	}

	var docs []map[string]any
	for _, uid := range uids {
		raw, ok := resp.Result[uid]
		if !ok {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if _, hasError := doc["error"]; hasError {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// get performs one rate-limited E-utilities request and decodes the JSON
// reply. Every call through here counts against the rate limit; cache hits
// never reach this path.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	params.Set("retmode", "json")
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "ncbi."+strings.TrimSuffix(endpoint, ".fcgi"))
		span.SetAttributes(
			attribute.String("ncbi.db", params.Get("db")),
			attribute.String("ncbi.endpoint", endpoint),
		)
		defer span.End()
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrLookupFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrLookupFailed, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s reply: %v", ErrLookupFailed, endpoint, err)
	}
	return nil
}

// bestGeneDoc prefers an exact case-insensitive name match, falling back to
// the first candidate the service returned.
func bestGeneDoc(docs []map[string]any, name string) map[string]any {
	for _, d := range docs {
		if strings.EqualFold(docString(d, "name"), name) {
			return d
		}
	}
	return docs[0]
}

// bestProteinDoc prefers an accession match ignoring the version suffix,
// falling back to the first candidate.
func bestProteinDoc(docs []map[string]any, name string) map[string]any {
	want := strings.ToLower(strings.SplitN(name, ".", 2)[0])
	for _, d := range docs {
		acc := strings.ToLower(strings.SplitN(docString(d, "accessionversion"), ".", 2)[0])
		if acc != "" && acc == want {
			return d
		}
	}
	return docs[0]
}
