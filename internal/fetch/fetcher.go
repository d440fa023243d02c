// Package fetch retrieves remote content for submission: web pages and
// YouTube transcripts.
package fetch

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/models"
)

const maxBodyBytes = 10 << 20

// Fetcher retrieves the content behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, st models.SourceType) (*models.FetchResult, error)
}

// Config holds fetcher settings.
type Config struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	// MaxRetries bounds retries after HTTP 429. Zero disables retrying and a
	// negative value selects DefaultMaxRetries.
	MaxRetries        int
	// YouTubeBaseURL serves watch pages; TranscriptBaseURL serves the
	// timedtext endpoint. Both default to https://www.youtube.com.
	YouTubeBaseURL    string
	TranscriptBaseURL string
}

// HTTPFetcher is the default Fetcher. Requests share one token bucket.
type HTTPFetcher struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates an HTTPFetcher, filling unset fields with defaults.
func New(cfg Config, logger *slog.Logger) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "reinforcer/1.0"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.YouTubeBaseURL == "" {
		cfg.YouTubeBaseURL = "https://www.youtube.com"
	}
	if cfg.TranscriptBaseURL == "" {
		cfg.TranscriptBaseURL = cfg.YouTubeBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPFetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}
}

// Fetch retrieves rawURL according to st.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, st models.SourceType) (*models.FetchResult, error) {
	switch st {
	case models.SourceWebArticle:
		return f.fetchArticle(ctx, rawURL)
	case models.SourceYouTubeVideo:
		return f.fetchVideo(ctx, rawURL)
	}
	return nil, fmt.Errorf("fetch: source type %q: %w", st, apperr.ErrInvalidInput)
}

func (f *HTTPFetcher) fetchArticle(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	data, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fetch: parse %s: %w", rawURL, apperr.ErrFetchFailed)
	}
	content := findFirst(root, atom.Article)
	if content == nil {
		content = findFirst(root, atom.Main)
	}
	if content == nil {
		content = findFirst(root, atom.Body)
	}
	var body strings.Builder
	if content != nil {
		for c := content.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&body, c); err != nil {
				return nil, fmt.Errorf("fetch: render %s: %w", rawURL, err)
			}
		}
	}
	return &models.FetchResult{Body: strings.TrimSpace(body.String()), Title: pageTitle(root)}, nil
}

type transcript struct {
	Texts []string `xml:"text"`
}

func (f *HTTPFetcher) fetchVideo(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	id, ok := VideoID(rawURL)
	if !ok {
		return nil, fmt.Errorf("fetch: no video id in %q: %w", rawURL, apperr.ErrInvalidInput)
	}

	q := url.Values{"lang": {"en"}, "v": {id}}
	data, err := f.get(ctx, strings.TrimRight(f.cfg.TranscriptBaseURL, "/")+"/api/timedtext?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var tr transcript
	if err := xml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("fetch: transcript for %s: %w", id, apperr.ErrFetchFailed)
	}
	parts := make([]string, 0, len(tr.Texts))
	for _, t := range tr.Texts {
		if t = strings.TrimSpace(html.UnescapeString(t)); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("fetch: empty transcript for %s: %w", id, apperr.ErrFetchFailed)
	}

	return &models.FetchResult{Body: strings.Join(parts, " "), Title: f.videoTitle(ctx, id)}, nil
}

// videoTitle reads the watch page title, best effort.
func (f *HTTPFetcher) videoTitle(ctx context.Context, id string) string {
	fallback := fmt.Sprintf("YouTube Video Transcript (%s)", id)
	data, err := f.get(ctx, strings.TrimRight(f.cfg.YouTubeBaseURL, "/")+"/watch?v="+url.QueryEscape(id))
	if err != nil {
		f.logger.Debug("fetch: video title unavailable", slog.String("id", id), slog.String("error", err.Error()))
		return fallback
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return fallback
	}
	title := strings.TrimSpace(strings.TrimSuffix(pageTitle(root), " - YouTube"))
	if title == "" {
		return fallback
	}
	return title
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %q: %w", rawURL, apperr.ErrInvalidInput)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := doWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("fetch: get %s: %v: %w", rawURL, err, apperr.ErrFetchFailed)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: get %s: status %d: %w", rawURL, resp.StatusCode, apperr.ErrFetchFailed)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read %s: %v: %w", rawURL, err, apperr.ErrFetchFailed)
	}
	return data, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func pageTitle(root *html.Node) string {
	t := findFirst(root, atom.Title)
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(t.FirstChild.Data)
}
