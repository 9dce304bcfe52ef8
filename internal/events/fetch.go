package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	appLog "folklist/internal/log"
)

const (
	fetchTimeout  = 15 * time.Second
	fetchAttempts = 3
	retryBackoff  = 2 * time.Second
)

// FetchResult is the outcome of fetching one events source over HTTP.
type FetchResult struct {
	Body      []byte
	FromCache bool
}

// cacheMeta holds HTTP cache metadata for one source URL.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads events source files with conditional requests
// (ETag / Last-Modified), a disk-backed body cache, and retries on
// transient failure. When the network is down entirely it falls back to
// the last cached body so a refresh degrades rather than fails.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/events-cache"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: fetchTimeout},
		cacheDir: cacheDir,
	}
}

// Fetch retrieves the body for url. Transient errors are retried with a
// short backoff before the cached body (if any) is used.
func (f *Fetcher) Fetch(ctx context.Context, url string) (FetchResult, error) {
	if url == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	cachePath := filepath.Join(f.cacheDir, hashURL(url))
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return FetchResult{}, err
	}
	meta, _ := f.loadMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.yaml"))

	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		res, err := f.fetchOnce(ctx, url, cachePath, meta, cachedBody)
		if err == nil {
			return res, nil
		}
		lastErr = err
		appLog.Warn("events fetch attempt failed", "url", url, "attempt", attempt, "err", err)
		if attempt < fetchAttempts {
			select {
			case <-ctx.Done():
				return FetchResult{}, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}

	if len(cachedBody) > 0 {
		appLog.Warn("events fetch failed, serving cached body", "url", url, "err", lastErr)
		return FetchResult{Body: cachedBody, FromCache: true}, nil
	}
	return FetchResult{}, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, cachePath string, meta cacheMeta, cachedBody []byte) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, readErr
		}
		newMeta := cacheMeta{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			appLog.Warn("events cache save failed", "url", url, "err", err)
		}
		return FetchResult{Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("304 Not Modified but no cached body")
		}
		return FetchResult{Body: cachedBody, FromCache: true}, nil

	default:
		return FetchResult{}, errors.New(resp.Status)
	}
}

func (f *Fetcher) loadMeta(cachePath string) (cacheMeta, error) {
	var meta cacheMeta
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}, err
	}
	return meta, nil
}

func (f *Fetcher) saveCache(cachePath string, meta cacheMeta, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.yaml"), body, 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}
