// Package market provides ticker autocomplete against an external symbol
// search API.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/interfaces"
	"github.com/jcarver/folio/internal/models"
)

const (
	DefaultSearchURL = "https://query1.finance.yahoo.com/v1/finance/search"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultCacheTTL  = 5 * time.Minute
	maxResults       = 10
)

var _ interfaces.MarketSearcher = (*Searcher)(nil)

// Searcher queries the symbol search API with rate limiting and a short TTL
// cache keyed by the normalized query.
type Searcher struct {
	searchURL  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	cacheTTL   time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	matches []models.TickerMatch
	expires time.Time
}

// SearcherOption configures the searcher
type SearcherOption func(*Searcher)

// WithSearchURL sets the search endpoint
func WithSearchURL(searchURL string) SearcherOption {
	return func(s *Searcher) {
		if searchURL != "" {
			s.searchURL = searchURL
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) SearcherOption {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) SearcherOption {
	return func(s *Searcher) {
		if requestsPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) SearcherOption {
	return func(s *Searcher) {
		if timeout > 0 {
			s.httpClient.Timeout = timeout
		}
	}
}

// WithCacheTTL sets how long search responses are reused
func WithCacheTTL(ttl time.Duration) SearcherOption {
	return func(s *Searcher) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewSearcher creates a new symbol searcher
func NewSearcher(opts ...SearcherOption) *Searcher {
	s := &Searcher{
		searchURL: DefaultSearchURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:   common.NewSilentLogger(),
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// searchResponse is the upstream payload shape.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search returns up to 10 ticker matches for the query. Empty or whitespace
// queries return an empty list without a network call.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.TickerMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.TickerMatch{}, nil
	}
	key := strings.ToLower(query)

	if matches, ok := s.cached(key); ok {
		return matches, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", fmt.Sprintf("%d", maxResults))
	params.Set("newsCount", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("symbol search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("symbol search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	matches := make([]models.TickerMatch, 0, len(parsed.Quotes))
	for _, q := range parsed.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		matches = append(matches, models.TickerMatch{
			Ticker:       q.Symbol,
			CompanyName:  name,
			Exchange:     q.Exchange,
			SecurityType: models.NormalizeSecurityType(q.QuoteType),
		})
		if len(matches) >= maxResults {
			break
		}
	}

	s.logger.Debug().
		Str("query", query).
		Int("matches", len(matches)).
		Dur("elapsed", time.Since(start)).
		Msg("Symbol search completed")

	s.store(key, matches)
	return matches, nil
}

func (s *Searcher) cached(key string) ([]models.TickerMatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.matches, true
}

func (s *Searcher) store(key string, matches []models.TickerMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{matches: matches, expires: time.Now().Add(s.cacheTTL)}
}
