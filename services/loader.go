package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
	"compensation-dashboard/utils"
)

// SourceFetcher retrieves the raw table of one source for one year.
type SourceFetcher interface {
	FetchSource(ctx context.Context, id models.SourceID, year int) (*models.RawTable, error)
}

// Loader builds the unified dataset from every source for a set of years.
type Loader struct {
	fetcher        SourceFetcher
	normalizer     *Normalizer
	maxConcurrency int
	rateLimitMs    int
	logger         *utils.Logger
}

func NewLoader(fetcher SourceFetcher, normalizer *Normalizer, maxConcurrency, rateLimitMs int, logger *utils.Logger) *Loader {
	return &Loader{
		fetcher:        fetcher,
		normalizer:     normalizer,
		maxConcurrency: maxConcurrency,
		rateLimitMs:    rateLimitMs,
		logger:         logger,
	}
}

type loadJob struct {
	source models.SourceID
	year   int
}

// Load fetches and normalizes every (source, year) pair and combines them,
// sources in their fixed order and years ascending. Any failure aborts the
// whole load; no partial dataset is returned.
func (l *Loader) Load(ctx context.Context, years []int) (*models.Dataset, error) {
	years = uniqueSorted(years)
	if len(years) == 0 {
		return nil, apperr.InvalidInput("at least one year is required", nil)
	}

	var jobs []loadJob
	for _, src := range models.Sources {
		for _, y := range years {
			jobs = append(jobs, loadJob{source: src, year: y})
		}
	}

	l.logger.Info("[loader] Loading %d source files for years %v", len(jobs), years)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parts := make([][]models.CompensationRecord, len(jobs))
	errs := make([]error, len(jobs))
	var once sync.Once

	pool := utils.NewWorkerPool(l.maxConcurrency, l.rateLimitMs)
	for i, job := range jobs {
		i, job := i, job
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			records, err := l.loadOne(ctx, job)
			if err != nil {
				errs[i] = err
				once.Do(cancel)
				return
			}
			parts[i] = records
		})
	}
	pool.Wait()

	if err := firstCause(errs); err != nil {
		return nil, err
	}

	ds := models.Combine(parts...)
	l.logger.Info("[loader] Unified dataset ready: %d records", ds.Len())
	return ds, nil
}

func (l *Loader) loadOne(ctx context.Context, job loadJob) ([]models.CompensationRecord, error) {
	table, err := l.fetcher.FetchSource(ctx, job.source, job.year)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %d: %w", job.source, job.year, err)
	}
	records, err := l.normalizer.Normalize(job.source, table, job.year)
	if err != nil {
		return nil, fmt.Errorf("normalize %s %d: %w", job.source, job.year, err)
	}
	return records, nil
}

// firstCause prefers a real failure over the cancellations it triggered.
func firstCause(errs []error) error {
	var cancelled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
		if cancelled == nil {
			cancelled = err
		}
	}
	return cancelled
}

func uniqueSorted(years []int) []int {
	seen := make(map[int]struct{}, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
