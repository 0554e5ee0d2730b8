package ncbi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/text2trait/traitkg/cache"
)

// fakeEutils is a minimal E-utilities stand-in. It serves one gene ("FT",
// two candidates so best-match selection is observable), one protein, and
// returns a server error for any term containing "BOOM".
type fakeEutils struct {
	mu           sync.Mutex
	searchCalls  int
	summaryCalls int
	server       *httptest.Server
}

func newFakeEutils(t *testing.T) *fakeEutils {
	t.Helper()
	f := &fakeEutils{}

	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", f.handleSearch)
	mux.HandleFunc("/esummary.fcgi", f.handleSummary)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeEutils) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls, f.summaryCalls
}

func (f *fakeEutils) handleSearch(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()

	term := r.URL.Query().Get("term")
	if strings.Contains(term, "BOOM") {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var ids []string
	switch {
	case strings.HasPrefix(term, "FT[Gene]"):
		ids = []string{"101", "102"}
	case strings.HasPrefix(term, "NP_001"):
		ids = []string{"901", "902"}
	}

	resp := map[string]any{"esearchresult": map[string]any{"idlist": ids}}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeEutils) handleSummary(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.summaryCalls++
	f.mu.Unlock()

	db := r.URL.Query().Get("db")
	result := map[string]any{}

	if db == "gene" {
		result["uids"] = []string{"101", "102"}
		result["101"] = map[string]any{
			"uid": "101", "name": "FT-LIKE", "description": "FT-like paralog",
			"organism": map[string]any{"scientificname": "Arabidopsis thaliana"},
		}
		result["102"] = map[string]any{
			"uid": "102", "name": "FT", "description": "flowering locus T",
			"chromosome":   "1",
			"otheraliases": "AGL20, FLOWERING LOCUS T",
			"summary":      "Promotes the transition to flowering.",
			"organism":     map[string]any{"scientificname": "Arabidopsis thaliana", "taxid": 3702},
			"genomicinfo": []any{
				map[string]any{"chraccver": "NC_003070.9", "chrstart": 3631, "chrstop": 5899, "chrstrand": 1},
			},
		}
	} else {
		result["uids"] = []string{"901", "902"}
		result["901"] = map[string]any{
			"uid": "901", "accessionversion": "XP_999.1", "title": "unrelated protein",
			"slen": 120, "organism": "Solanum lycopersicum",
		}
		result["902"] = map[string]any{
			"uid": "902", "accessionversion": "NP_001.3", "title": "flowering locus T protein",
			"slen": 175, "organism": "Arabidopsis thaliana",
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func newTestClient(t *testing.T, f *fakeEutils) *Client {
	t.Helper()
	return NewClient(Options{
		BaseURL:      f.server.URL,
		CallInterval: time.Millisecond,
		Cache:        cache.NewMemory(),
	})
}

func TestFetchByName_Gene(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)

	rec, err := c.FetchByName(context.Background(), "FT", TypeGene)
	require.NoError(t, err)

	// Exact name match must beat the first candidate.
	assert.Equal(t, "FT", rec.Name)
	assert.Equal(t, "102", rec.GeneID)
	assert.Equal(t, "flowering locus T", rec.Description)
	assert.Equal(t, "1", rec.Chromosome)
	assert.Equal(t, "AGL20, FLOWERING LOCUS T", rec.Aliases)
	assert.Equal(t, "Arabidopsis thaliana", rec.Organism)
	assert.Equal(t, "NC_003070.9:3631-5899 strand=1", rec.GenomicInfo)
	assert.Equal(t, "FT", rec.Query)
	assert.False(t, rec.NotFound)
}

// Property: two identical lookups issue exactly one set of network calls.
func TestFetchByName_CacheIdempotent(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	first, err := c.FetchByName(ctx, "FT", TypeGene)
	require.NoError(t, err)

	searches, summaries := f.calls()
	require.Equal(t, 1, searches)
	require.Equal(t, 1, summaries)

	second, err := c.FetchByName(ctx, "FT", TypeGene)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	searches, summaries = f.calls()
	assert.Equal(t, 1, searches, "cache hit must not issue a search")
	assert.Equal(t, 1, summaries, "cache hit must not issue a summary fetch")
}

func TestFetchByName_NotFoundCached(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	rec, err := c.FetchByName(ctx, "UNKNOWN_GENE", TypeGene)
	require.NoError(t, err)
	assert.True(t, rec.NotFound)
	assert.Equal(t, "UNKNOWN_GENE", rec.Query)

	_, err = c.FetchByName(ctx, "UNKNOWN_GENE", TypeGene)
	require.NoError(t, err)

	searches, _ := f.calls()
	assert.Equal(t, 1, searches, "not-found results are cached too")
}

func TestFetchByName_UnknownTypeShortCircuits(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)

	rec, err := c.FetchByName(context.Background(), "Arabidopsis thaliana", "organism")
	require.NoError(t, err)
	assert.True(t, rec.NotFound)
	assert.Equal(t, "organism", rec.Type)

	searches, summaries := f.calls()
	assert.Zero(t, searches)
	assert.Zero(t, summaries)
}

func TestFetchByName_Protein(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)

	rec, err := c.FetchByName(context.Background(), "NP_001.1", TypeProtein)
	require.NoError(t, err)

	// Accession match ignores the version suffix.
	assert.Equal(t, "NP_001.3", rec.AccessionVersion)
	assert.Equal(t, "flowering locus T protein", rec.Description)
	assert.Equal(t, 175, rec.SequenceLength)
	assert.Equal(t, "Arabidopsis thaliana", rec.Organism)
}

func TestFetchByName_ServerError(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)

	_, err := c.FetchByName(context.Background(), "BOOM", TypeGene)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLookupFailed)
}

// Property: a failing entity yields an error record, never aborts the batch,
// and the output length always equals the input length.
func TestFetchMany_BatchRobustness(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)

	entities := []Entity{
		{Name: "FT", Type: TypeGene, ID: "G1"},
		{Name: "BOOM", Type: TypeGene, ID: "G2"},
		{Name: "evening complex", Type: "complex", ID: "X1"},
	}

	records := c.FetchMany(context.Background(), entities)
	require.Len(t, records, len(entities))

	byKey := make(map[string]Record)
	for _, r := range records {
		byKey[r.Key] = r
	}

	ok := byKey["gene:G1"]
	assert.Equal(t, "FT", ok.Name)
	assert.Equal(t, "G1", ok.GraphID)
	assert.Equal(t, "FT", ok.GraphName)

	failed := byKey["gene:G2"]
	assert.True(t, failed.NotFound)
	assert.NotEmpty(t, failed.Error)

	skipped := byKey["complex:X1"]
	assert.True(t, skipped.NotFound)
	assert.Empty(t, skipped.Error)
}

func TestFetchGeneByID(t *testing.T) {
	f := newFakeEutils(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	rec, err := c.FetchGeneByID(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "FT-LIKE", rec.Name)

	_, err = c.FetchGeneByID(ctx, "101")
	require.NoError(t, err)

	_, summaries := f.calls()
	assert.Equal(t, 1, summaries, "second fetch must be a cache hit")
}

func TestFetchByName_SharedCacheAcrossClients(t *testing.T) {
	f := newFakeEutils(t)
	shared := cache.NewMemory()

	mk := func() *Client {
		return NewClient(Options{
			BaseURL:      f.server.URL,
			CallInterval: time.Millisecond,
			Cache:        shared,
		})
	}

	_, err := mk().FetchByName(context.Background(), "FT", TypeGene)
	require.NoError(t, err)
	_, err = mk().FetchByName(context.Background(), "FT", TypeGene)
	require.NoError(t, err)

	searches, _ := f.calls()
	assert.Equal(t, 1, searches)
}

func TestNewClient_AppliesDefaults(t *testing.T) {
	c := NewClient(Options{})

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultOrganism, c.organism)
	assert.Equal(t, DefaultRetMax, c.retMax)
	assert.NotNil(t, c.cache)
	assert.NotNil(t, c.httpClient)
}

func TestClient_CredentialsForwarded(t *testing.T) {
	var gotEmail, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = r.URL.Query().Get("email")
		gotKey = r.URL.Query().Get("api_key")
		fmt.Fprint(w, `{"esearchresult":{"idlist":[]}}`)
	}))
	defer srv.Close()

	c := NewClient(Options{
		BaseURL:      srv.URL,
		Email:        "lab@example.org",
		APIKey:       "k-123",
		CallInterval: time.Millisecond,
	})

	_, err := c.FetchByName(context.Background(), "FT", TypeGene)
	require.NoError(t, err)
	assert.Equal(t, "lab@example.org", gotEmail)
	assert.Equal(t, "k-123", gotKey)
}
