package fetcher

import (
	"context"
	"fmt"
	"time"

	"compensation-dashboard/apperr"
	"compensation-dashboard/cache"
	"compensation-dashboard/models"
	"compensation-dashboard/utils"
)

// Options configures remote locations and download behaviour.
type Options struct {
	BLSBaseURL string
	H1BBaseURL string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Fetcher retrieves source payloads, mirroring them into a cache store.
type Fetcher struct {
	store     cache.Store
	transport Transport
	sources   map[models.SourceID]Source
	timeout   time.Duration
	retry     *utils.RetryConfig
	logger    *utils.Logger
}

// New creates a Fetcher backed by the given cache store and transport.
func New(store cache.Store, transport Transport, opts Options, logger *utils.Logger) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		store:     store,
		transport: transport,
		sources: map[models.SourceID]Source{
			models.SourceBLS: blsSource(opts.BLSBaseURL),
			models.SourceH1B: h1bSource(opts.H1BBaseURL),
		},
		timeout: timeout,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   opts.RetryDelay,
			Logger:      logger,
			Retryable: func(err error) bool {
				return apperr.IsKind(err, apperr.KindNetwork)
			},
		},
		logger: logger,
	}
}

// Source returns the definition of a known source.
func (f *Fetcher) Source(id models.SourceID) (Source, error) {
	src, ok := f.sources[id]
	if !ok {
		return Source{}, apperr.InvalidInput(fmt.Sprintf("unknown source %q", id), nil)
	}
	return src, nil
}

// FetchSource returns the parsed table for a source and year. A cached
// payload is parsed without network I/O; otherwise the payload is
// downloaded, validated by parsing, and only then committed to the cache.
func (f *Fetcher) FetchSource(ctx context.Context, id models.SourceID, year int) (*models.RawTable, error) {
	src, err := f.Source(id)
	if err != nil {
		return nil, err
	}
	if err := src.validateYear(year); err != nil {
		return nil, err
	}

	key := src.CacheKey(year)
	cached, err := f.store.Exists(ctx, key)
	if err != nil {
		return nil, apperr.Storage("checking cache entry "+key, err)
	}

	if cached {
		data, err := f.store.Get(ctx, key)
		if err != nil {
			return nil, apperr.Storage("reading cache entry "+key, err)
		}
		f.logger.Debug("[fetcher] Cache hit for %s (%d bytes)", key, len(data))
		table, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("cached %s: %w", key, err)
		}
		return table, nil
	}

	url := src.URL(year)
	f.logger.Info("[fetcher] Downloading %s %d from %s", id, year, url)

	var data []byte
	err = f.retry.Do(ctx, "download "+key, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		body, err := f.transport.Get(attemptCtx, url)
		if err != nil {
			return err
		}
		data = body
		return nil
	})
	if err != nil {
		return nil, err
	}

	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("downloaded %s: %w", key, err)
	}

	if err := f.store.Put(ctx, key, data); err != nil {
		f.logger.Warn("[fetcher] Could not cache %s, it will be downloaded again next run: %v", key, err)
	} else {
		f.logger.Info("[fetcher] Cached %s (%d bytes, %d rows)", key, len(data), table.Len())
	}
	return table, nil
}
