// Package artwork fetches station artwork over HTTP.
package artwork

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// maxImageBytes caps a single artwork download.
const maxImageBytes = 4 << 20

// Fetcher implements ports.ArtworkProvider with an in-memory cache keyed by URL.
//
// Thread-safe: the cache is protected by sync.RWMutex. Concurrent misses for the
// same URL may both download; the last one wins.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewFetcher creates an artwork fetcher.
// A nil client gets a default one with a 15 second timeout.
func NewFetcher(logger *slog.Logger, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{
		client: client,
		logger: logger.With(slog.String("adapter", "artwork")),
		cache:  make(map[string][]byte),
	}
}

// Fetch returns the image bytes behind url, downloading them on first use.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("fetch artwork: empty url")
	}

	f.mu.RLock()
	data, ok := f.cache[url]
	f.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := f.download(ctx, url)
	if err != nil {
		f.logger.Warn("artwork download failed", slog.String("url", url), slog.Any("error", err))
		return nil, err
	}

	f.mu.Lock()
	f.cache[url] = data
	f.mu.Unlock()

	f.logger.Debug("artwork cached", slog.String("url", url), slog.Int("bytes", len(data)))
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch artwork: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read artwork: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("read artwork: image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

// Cached reports how many images are held in memory.
func (f *Fetcher) Cached() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}

// Verify interface implementation
var _ ports.ArtworkProvider = (*Fetcher)(nil)
