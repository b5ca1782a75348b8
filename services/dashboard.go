package services

import (
	"errors"
	"strings"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
)

const (
	// AllOption is the filter value meaning "no restriction".
	AllOption = "All"

	DefaultTopLocations   = 10
	DefaultScenarioSalary = 100000
)

// DashboardQuery captures the filter widget selections.
type DashboardQuery struct {
	JobCategory     string  `json:"job_category"`
	Location        string  `json:"location"`
	ExperienceLevel string  `json:"experience_level"`
	YearsAhead      int     `json:"years_ahead"`
	Salary          float64 `json:"salary"`
	TargetLocation  string  `json:"target_location"`
}

// WidgetError reports why one widget has no data.
type WidgetError struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

func widgetError(err error) *WidgetError {
	if err == nil {
		return nil
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return &WidgetError{Kind: e.Kind, Message: e.Message}
	}
	return &WidgetError{Message: err.Error()}
}

type BenchmarkWidget struct {
	Result     *models.BenchmarkResult `json:"result,omitempty"`
	LowerFence float64                 `json:"lower_fence"`
	UpperFence float64                 `json:"upper_fence"`
	Error      *WidgetError            `json:"error,omitempty"`
}

// GeographyWidget is only shown when no single location is selected.
type GeographyWidget struct {
	Shown     bool                       `json:"shown"`
	Locations []models.LocationBenchmark `json:"locations,omitempty"`
	Error     *WidgetError               `json:"error,omitempty"`
}

type ForecastWidget struct {
	Result *models.ForecastResult `json:"result,omitempty"`
	Lower  []float64              `json:"lower,omitempty"`
	Upper  []float64              `json:"upper,omitempty"`
	Error  *WidgetError           `json:"error,omitempty"`
}

type ScenarioWidget struct {
	Salary         float64      `json:"salary"`
	TargetLocation string       `json:"target_location"`
	Position       float64      `json:"position"`
	Recommendation string       `json:"recommendation,omitempty"`
	Error          *WidgetError `json:"error,omitempty"`
}

// DashboardView is the full set of widget results for one query.
type DashboardView struct {
	Query      DashboardQuery  `json:"query"`
	Benchmarks BenchmarkWidget `json:"benchmarks"`
	Geography  GeographyWidget `json:"geography"`
	Forecast   ForecastWidget  `json:"forecast"`
	Scenario   ScenarioWidget  `json:"scenario"`
}

// BuildDashboard evaluates every widget independently; a failing widget
// carries its own error and never prevents the others from rendering.
func BuildDashboard(e *StatsEngine, q DashboardQuery) DashboardView {
	q.Location = normaliseOption(q.Location)
	q.ExperienceLevel = normaliseOption(q.ExperienceLevel)
	q.TargetLocation = normaliseOption(q.TargetLocation)
	if q.YearsAhead < 1 {
		q.YearsAhead = 1
	}

	view := DashboardView{Query: q}

	if b, err := e.ComputeBenchmarks(q.JobCategory, q.Location, q.ExperienceLevel); err != nil {
		view.Benchmarks.Error = widgetError(err)
	} else {
		view.Benchmarks.Result = &b
		view.Benchmarks.LowerFence = b.LowerFence()
		view.Benchmarks.UpperFence = b.UpperFence()
	}

	if q.Location == "" {
		view.Geography.Shown = true
		locs, err := e.CompareLocations(q.JobCategory, e.TopLocations(DefaultTopLocations))
		if err != nil {
			view.Geography.Error = widgetError(err)
		} else {
			view.Geography.Locations = locs
		}
	}

	if f, err := e.Forecast(q.JobCategory, q.YearsAhead); err != nil {
		view.Forecast.Error = widgetError(err)
	} else {
		view.Forecast.Result = &f
		view.Forecast.Lower = f.Lower()
		view.Forecast.Upper = f.Upper()
	}

	view.Scenario.Salary = q.Salary
	view.Scenario.TargetLocation = q.TargetLocation
	if pos, err := e.MarketPosition(q.Salary, q.JobCategory, q.TargetLocation); err != nil {
		view.Scenario.Error = widgetError(err)
	} else {
		view.Scenario.Position = pos
		view.Scenario.Recommendation = Recommend(pos)
	}

	return view
}

func normaliseOption(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, AllOption) {
		return ""
	}
	return v
}
