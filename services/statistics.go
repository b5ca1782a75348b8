package services

import (
	"fmt"
	"math"
	"sort"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
	"compensation-dashboard/utils"
)

// confidenceZ scales the historical spread into a ~95% band.
const confidenceZ = 1.96

// StatsEngine answers benchmark, comparison, forecast and market position
// queries against one immutable dataset. It keeps no per-query state.
type StatsEngine struct {
	data   *models.Dataset
	logger *utils.Logger
}

func NewStatsEngine(data *models.Dataset, logger *utils.Logger) *StatsEngine {
	if data == nil {
		data = models.Combine()
	}
	return &StatsEngine{data: data, logger: logger}
}

// Dataset returns the dataset the engine reads.
func (e *StatsEngine) Dataset() *models.Dataset {
	return e.data
}

// ComputeBenchmarks returns quartiles, mean and sample standard deviation of
// the salaries matching the job category and, when non-empty, the location
// and experience level.
func (e *StatsEngine) ComputeBenchmarks(job, location, experience string) (models.BenchmarkResult, error) {
	return e.Benchmarks(ForJob(job).InLocation(location).AtLevel(experience))
}

// Benchmarks computes benchmarks for an explicit query.
func (e *StatsEngine) Benchmarks(c Criteria) (models.BenchmarkResult, error) {
	if c.JobCategory == "" {
		return models.BenchmarkResult{}, apperr.InvalidInput("job category is required", nil)
	}

	salaries := c.Salaries(e.data)
	if len(salaries) == 0 {
		return models.BenchmarkResult{}, apperr.EmptyResult(describe(c))
	}

	sorted := sortedCopy(salaries)
	return models.BenchmarkResult{
		P25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.50),
		P75:    quantile(sorted, 0.75),
		Mean:   mean(sorted),
		Std:    stdDev(sorted, 1),
		Count:  len(sorted),
	}, nil
}

// CompareLocations benchmarks the job category in each location, keeping
// the requested order. Locations without data are skipped with a warning.
func (e *StatsEngine) CompareLocations(job string, locations []string) ([]models.LocationBenchmark, error) {
	out := make([]models.LocationBenchmark, 0, len(locations))
	for _, loc := range locations {
		b, err := e.ComputeBenchmarks(job, loc, "")
		if apperr.IsKind(err, apperr.KindEmptyResult) {
			e.logger.Warn("[stats] No %q records in %q, skipping location", job, loc)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.LocationBenchmark{Location: loc, BenchmarkResult: b})
	}
	return out, nil
}

// Forecast fits a line through the per-year mean salaries of a job category,
// indexed 0..n-1, and projects yearsAhead further points. The band
// half-width is 1.96 times the spread of the historical means.
func (e *StatsEngine) Forecast(job string, yearsAhead int) (models.ForecastResult, error) {
	if job == "" {
		return models.ForecastResult{}, apperr.InvalidInput("job category is required", nil)
	}
	if yearsAhead < 1 {
		return models.ForecastResult{}, apperr.InvalidInput(fmt.Sprintf("years ahead must be at least 1, got %d", yearsAhead), nil)
	}

	history := e.yearlyMeans(ForJob(job))
	if len(history) == 0 {
		return models.ForecastResult{}, apperr.EmptyResult(describe(ForJob(job)))
	}
	if len(history) < 2 {
		return models.ForecastResult{}, apperr.InsufficientData(
			fmt.Sprintf("forecast for %q needs at least 2 years of data, have %d", job, len(history)))
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, ym := range history {
		xs[i] = float64(i)
		ys[i] = ym.Mean
	}

	fit, err := FitLine(xs, ys)
	if err != nil {
		return models.ForecastResult{}, apperr.InsufficientData(err.Error())
	}

	points := make([]float64, yearsAhead)
	for i := range points {
		points[i] = fit.Predict(float64(len(history) + i))
	}

	return models.ForecastResult{
		Points:    points,
		HalfWidth: confidenceZ * stdDev(ys, 0),
		History:   history,
		Slope:     fit.Slope,
		Intercept: fit.Intercept,
	}, nil
}

// yearlyMeans groups matching records by year, ascending.
func (e *StatsEngine) yearlyMeans(c Criteria) []models.YearMean {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	e.data.Each(func(r models.CompensationRecord) bool {
		if c.Matches(r) {
			sums[r.Year] += r.Salary
			counts[r.Year]++
		}
		return true
	})

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]models.YearMean, len(years))
	for i, y := range years {
		out[i] = models.YearMean{Year: y, Mean: sums[y] / float64(counts[y]), Count: counts[y]}
	}
	return out
}

// MarketPosition returns the percentile rank (0-100) of salary among the job
// category's salaries, optionally within one location.
func (e *StatsEngine) MarketPosition(salary float64, job, location string) (float64, error) {
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		return 0, apperr.InvalidInput(fmt.Sprintf("salary must be a finite number, got %v", salary), nil)
	}
	if job == "" {
		return 0, apperr.InvalidInput("job category is required", nil)
	}

	c := ForJob(job).InLocation(location)
	salaries := c.Salaries(e.data)
	if len(salaries) == 0 {
		return 0, apperr.EmptyResult(describe(c))
	}
	return percentileOfScore(salaries, salary), nil
}

// Recommend turns a market position into a short verdict.
func Recommend(position float64) string {
	switch {
	case position > 75:
		return "Above market"
	case position > 25:
		return "At market"
	default:
		return "Below market"
	}
}

// Categories returns the distinct job categories, sorted.
func (e *StatsEngine) Categories() []string {
	return e.distinct(func(r models.CompensationRecord) string { return r.JobCategory })
}

// Locations returns the distinct locations, sorted.
func (e *StatsEngine) Locations() []string {
	return e.distinct(func(r models.CompensationRecord) string { return r.Location })
}

// ExperienceLevels returns the distinct non-empty experience levels, sorted.
func (e *StatsEngine) ExperienceLevels() []string {
	return e.distinct(func(r models.CompensationRecord) string { return r.ExperienceLevel })
}

func (e *StatsEngine) distinct(field func(models.CompensationRecord) string) []string {
	seen := make(map[string]struct{})
	e.data.Each(func(r models.CompensationRecord) bool {
		if v := field(r); v != "" {
			seen[v] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// TopLocations returns up to n locations ordered by record volume across the
// whole dataset, ties broken by name. n <= 0 returns all locations.
func (e *StatsEngine) TopLocations(n int) []string {
	counts := make(map[string]int)
	e.data.Each(func(r models.CompensationRecord) bool {
		counts[r.Location]++
		return true
	})

	locs := make([]string, 0, len(counts))
	for loc := range counts {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		if counts[locs[i]] != counts[locs[j]] {
			return counts[locs[i]] > counts[locs[j]]
		}
		return locs[i] < locs[j]
	})

	if n > 0 && len(locs) > n {
		locs = locs[:n]
	}
	return locs
}

func describe(c Criteria) string {
	msg := fmt.Sprintf("no records for job category %q", c.JobCategory)
	if c.Location != "" {
		msg += fmt.Sprintf(" in %q", c.Location)
	}
	if c.ExperienceLevel != "" {
		msg += fmt.Sprintf(" at level %q", c.ExperienceLevel)
	}
	return msg
}
