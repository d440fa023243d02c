package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/models"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

func newTestFetcher(base string) *HTTPFetcher {
	return New(Config{
		Timeout:           2 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             10,
		MaxRetries:        2,
		YouTubeBaseURL:    base,
	}, nil)
}

func TestDetectSourceType(t *testing.T) {
	assert.Equal(t, models.SourceYouTubeVideo, DetectSourceType("https://www.youtube.com/watch?v=abc"))
	assert.Equal(t, models.SourceYouTubeVideo, DetectSourceType("https://youtu.be/abc"))
	assert.Equal(t, models.SourceWebArticle, DetectSourceType("https://example.com/youtube"))
}

func TestVideoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=abc&t=10", "abc", true},
		{"https://youtu.be/xyz", "xyz", true},
		{"https://youtu.be/", "", false},
		{"https://www.youtube.com/watch", "", false},
		{"https://example.com/watch?v=abc", "", false},
	}
	for _, c := range cases {
		got, ok := VideoID(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestFetchArticle(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.UserAgent()
		_, _ = w.Write([]byte(`<html><head><title> Go Post </title></head><body>
<nav>menu</nav><article><h1>Go</h1><p>Go is great.</p></article></body></html>`))
	}))
	defer srv.Close()

	res, err := newTestFetcher(srv.URL).Fetch(context.Background(), srv.URL+"/post", models.SourceWebArticle)
	require.NoError(t, err)
	assert.Equal(t, "Go Post", res.Title)
	assert.Equal(t, "<h1>Go</h1><p>Go is great.</p>", res.Body)
	assert.Equal(t, "reinforcer/1.0", ua)
}

func TestFetchArticleFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>plain</p></body></html>`))
	}))
	defer srv.Close()

	res, err := newTestFetcher(srv.URL).Fetch(context.Background(), srv.URL, models.SourceWebArticle)
	require.NoError(t, err)
	assert.Equal(t, "<p>plain</p>", res.Body)
	assert.Equal(t, "", res.Title)
}

func TestFetchArticleHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).Fetch(context.Background(), srv.URL, models.SourceWebArticle)
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
}

func TestFetchRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`<html><body><p>ok</p></body></html>`))
	}))
	defer srv.Close()

	res, err := newTestFetcher(srv.URL).Fetch(context.Background(), srv.URL, models.SourceWebArticle)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", res.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).Fetch(context.Background(), srv.URL, models.SourceWebArticle)
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchZeroRetriesDisablesRetrying(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(Config{RequestsPerSecond: 1000, Burst: 10, MaxRetries: 0}, nil)
	_, err := f.Fetch(context.Background(), srv.URL, models.SourceWebArticle)
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNegativeRetriesUseDefault(t *testing.T) {
	f := New(Config{MaxRetries: -1}, nil)
	assert.Equal(t, DefaultMaxRetries, f.cfg.MaxRetries)
}

func youtubeServer(t *testing.T, watch http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "vid123" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.5">Hello there</text>
<text start="1.5" dur="2">it&amp;#39;s a video</text>
</transcript>`))
	})
	mux.HandleFunc("/watch", watch)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchVideo(t *testing.T) {
	srv := youtubeServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Great Talk - YouTube</title></head></html>`))
	})

	res, err := newTestFetcher(srv.URL).Fetch(context.Background(), "https://youtu.be/vid123", models.SourceYouTubeVideo)
	require.NoError(t, err)
	assert.Equal(t, "Hello there it's a video", res.Body)
	assert.Equal(t, "Great Talk", res.Title)
}

func TestFetchVideoTitleFallback(t *testing.T) {
	srv := youtubeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res, err := newTestFetcher(srv.URL).Fetch(context.Background(), "https://www.youtube.com/watch?v=vid123", models.SourceYouTubeVideo)
	require.NoError(t, err)
	assert.Equal(t, "YouTube Video Transcript (vid123)", res.Title)
}

func TestFetchVideoErrors(t *testing.T) {
	srv := youtubeServer(t, func(w http.ResponseWriter, r *http.Request) {})
	f := newTestFetcher(srv.URL)

	_, err := f.Fetch(context.Background(), "https://youtu.be/", models.SourceYouTubeVideo)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.Fetch(context.Background(), "https://youtu.be/unknown", models.SourceYouTubeVideo)
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
}

func TestFetchUnsupportedType(t *testing.T) {
	_, err := newTestFetcher("http://unused").Fetch(context.Background(), "x", models.SourceDirectText)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
