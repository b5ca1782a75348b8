package models

import "math"

// SourceID identifies one of the remote salary survey sources.
type SourceID string

const (
	SourceBLS SourceID = "bls"
	SourceH1B SourceID = "h1b"
)

// Sources lists the known sources in load order.
var Sources = []SourceID{SourceBLS, SourceH1B}

// Valid reports whether id is a known source.
func (id SourceID) Valid() bool {
	return id == SourceBLS || id == SourceH1B
}

// CompensationRecord is one row of the unified dataset.
// ExperienceLevel is empty when the source does not report one.
type CompensationRecord struct {
	JobCategory     string   `json:"job_category"`
	Location        string   `json:"location"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Salary          float64  `json:"salary"`
	Year            int      `json:"year"`
	Source          SourceID `json:"source"`
}

// Valid reports whether the record satisfies the unified schema invariants.
func (r CompensationRecord) Valid() bool {
	if r.JobCategory == "" || r.Location == "" {
		return false
	}
	if math.IsNaN(r.Salary) || math.IsInf(r.Salary, 0) {
		return false
	}
	return r.Salary >= 0
}

// BenchmarkResult holds the descriptive statistics of a filtered salary subset.
type BenchmarkResult struct {
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Count  int     `json:"count"`
}

// IQR returns the interquartile range.
func (b BenchmarkResult) IQR() float64 {
	return b.P75 - b.P25
}

// LowerFence is the box-plot whisker bound below P25.
func (b BenchmarkResult) LowerFence() float64 {
	return b.P25 - 1.5*b.IQR()
}

// UpperFence is the box-plot whisker bound above P75.
func (b BenchmarkResult) UpperFence() float64 {
	return b.P75 + 1.5*b.IQR()
}

// LocationBenchmark pairs a location with its benchmarks.
type LocationBenchmark struct {
	Location string `json:"location"`
	BenchmarkResult
}

// YearMean is one point of the per-year mean salary series.
type YearMean struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// ForecastResult holds projected salaries and a symmetric confidence band.
type ForecastResult struct {
	Points    []float64  `json:"points"`
	HalfWidth float64    `json:"half_width"`
	History   []YearMean `json:"history"`
	Slope     float64    `json:"slope"`
	Intercept float64    `json:"intercept"`
}

// Lower returns the lower band for every forecast point.
func (f ForecastResult) Lower() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p - f.HalfWidth
	}
	return out
}

// Upper returns the upper band for every forecast point.
func (f ForecastResult) Upper() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p + f.HalfWidth
	}
	return out
}
