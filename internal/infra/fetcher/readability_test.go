package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikinotes/internal/infra/fetcher"
	"wikinotes/internal/repository/repotest"
	artUC "wikinotes/internal/usecase/article"
)

func testConfig() fetcher.Config {
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false // httptest listens on loopback
	cfg.Timeout = 2 * time.Second
	cfg.Retry.InitialDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond
	return cfg
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPage_Success(t *testing.T) {
	var gotUA string
	html := repotest.ArticlePage(repotest.PageOptions{
		Title:       "Ada Lovelace",
		Description: "English mathematician and writer.",
		ImageURL:    "/images/ada.jpg",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	page, err := fetcher.NewReadabilityFetcher(testConfig()).FetchPage(context.Background(), srv.URL+"/wiki/Ada")
	require.NoError(t, err)

	assert.Equal(t, "wikinotes-importer/1.0", gotUA)
	assert.Equal(t, "Ada Lovelace", page.Title)
	assert.Equal(t, "English mathematician and writer.", page.Description)
	assert.Equal(t, srv.URL+"/images/ada.jpg", page.ImageURL)
	assert.Equal(t, "Founded: 1901\nRegion: Worldwide", page.KeyFacts)
	assert.Equal(t, srv.URL+"/wiki/Ada", page.URL)
	assert.Equal(t, len(html), page.Size)
}

func TestFetchPage_FollowsRedirect(t *testing.T) {
	html := repotest.ArticlePage(repotest.PageOptions{Title: "Target"})
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(html))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := fetcher.NewReadabilityFetcher(testConfig()).FetchPage(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new", page.URL)
	assert.Equal(t, "Target", page.Title)
}

func TestFetchPage_Errors(t *testing.T) {
	loop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	}))
	defer loop.Close()

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()

	big := serveHTML(t, "<html><body>"+strings.Repeat("x", 4096)+"</body></html>")
	untitled := serveHTML(t, "<html><head></head><body></body></html>")

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	tests := []struct {
		name    string
		url     string
		modify  func(*fetcher.Config)
		wantErr error
	}{
		{name: "unsupported scheme", url: "ftp://example.org/a", wantErr: artUC.ErrInvalidURL},
		{name: "redirect loop", url: loop.URL + "/a", modify: func(c *fetcher.Config) { c.MaxRedirects = 2 }, wantErr: artUC.ErrTooManyRedirects},
		{name: "not found", url: missing.URL, wantErr: artUC.ErrUpstreamStatus},
		{name: "body too large", url: big.URL, modify: func(c *fetcher.Config) { c.MaxBodySize = 1024 }, wantErr: artUC.ErrBodyTooLarge},
		{name: "no title", url: untitled.URL, wantErr: artUC.ErrExtractionFailed},
		{name: "timeout", url: slow.URL, modify: func(c *fetcher.Config) { c.Timeout = 50 * time.Millisecond }, wantErr: artUC.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.modify != nil {
				tt.modify(&cfg)
			}
			_, err := fetcher.NewReadabilityFetcher(cfg).FetchPage(context.Background(), tt.url)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchPage_DeniesLoopback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.DenyPrivateIPs = true
	_, err := fetcher.NewReadabilityFetcher(cfg).FetchPage(context.Background(), srv.URL)

	assert.ErrorIs(t, err, artUC.ErrPrivateIP)
	assert.False(t, called, "no request may reach a private address")
}

func TestFetchPage_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	html := repotest.ArticlePage(repotest.PageOptions{Title: "Flaky"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	page, err := fetcher.NewReadabilityFetcher(testConfig()).FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Flaky", page.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPage_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	_, err := fetcher.NewReadabilityFetcher(testConfig()).FetchPage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, artUC.ErrUpstreamStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPage_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Retry.MaxAttempts = 2
	_, err := fetcher.NewReadabilityFetcher(cfg).FetchPage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, artUC.ErrUpstreamStatus)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchPage_MissingPagesDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := fetcher.NewReadabilityFetcher(testConfig())
	for range 15 {
		_, err := f.FetchPage(context.Background(), srv.URL+"/wiki/Missing")
		require.ErrorIs(t, err, artUC.ErrUpstreamStatus)
	}
	assert.Equal(t, int32(15), calls.Load())
}

func TestFetchPage_OutagesOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Retry.MaxAttempts = 1
	f := fetcher.NewReadabilityFetcher(cfg)
	for range 10 {
		_, _ = f.FetchPage(context.Background(), srv.URL)
	}

	_, err := f.FetchPage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(10), calls.Load())
}
