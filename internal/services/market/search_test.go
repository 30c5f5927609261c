package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const searchPayload = `{
	"quotes": [
		{"symbol": "VAS.AX", "longname": "Vanguard Australian Shares Index ETF", "exchange": "ASX", "quoteType": "ETF"},
		{"symbol": "VASA.AX", "shortname": "Vanguard Something Else", "exchange": "ASX", "quoteType": "EQUITY"},
		{"symbol": "", "longname": "no symbol, should be skipped"}
	]
}`

func newTestSearcher(t *testing.T, handler http.HandlerFunc, opts ...SearcherOption) *Searcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSearcher(append([]SearcherOption{WithSearchURL(srv.URL)}, opts...)...)
}

func TestSearch_ParsesMatches(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "vas" {
			t.Errorf("expected q=vas, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchPayload))
	})

	matches, err := s.Search(context.Background(), "vas")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Ticker != "VAS.AX" {
		t.Errorf("expected VAS.AX, got %s", matches[0].Ticker)
	}
	if matches[0].CompanyName != "Vanguard Australian Shares Index ETF" {
		t.Errorf("unexpected company name %q", matches[0].CompanyName)
	}
	if matches[1].CompanyName != "Vanguard Something Else" {
		t.Errorf("expected shortname fallback, got %q", matches[1].CompanyName)
	}
}

func TestSearch_EmptyQuerySkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"quotes":[]}`))
	})

	matches, err := s.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
	if calls.Load() != 0 {
		t.Errorf("expected no upstream calls, got %d", calls.Load())
	}
}

func TestSearch_CachesByNormalizedQuery(t *testing.T) {
	var calls atomic.Int32
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(searchPayload))
	}, WithCacheTTL(time.Minute))

	ctx := context.Background()
	for _, query := range []string{"vas", "VAS", "  vas "} {
		if _, err := s.Search(ctx, query); err != nil {
			t.Fatalf("search %q: %v", query, err)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 upstream call for equivalent queries, got %d", calls.Load())
	}
}

func TestSearch_UpstreamErrorSurfaces(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := s.Search(context.Background(), "vas"); err == nil {
		t.Error("expected error for non-200 upstream response")
	}
}

func TestSearch_RateLimiterHonorsContext(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quotes":[]}`))
	}, WithRateLimit(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Burst is consumed by the first call; the cancelled context fails the wait.
	_, _ = s.Search(context.Background(), "first")
	if _, err := s.Search(ctx, "second"); err == nil {
		t.Error("expected rate limit wait to fail with cancelled context")
	}
}
