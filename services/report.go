package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"compensation-dashboard/models"
)

// Report renders a dashboard view as a terminal printout.
type Report struct {
	w io.Writer
}

func NewReport(w io.Writer) *Report {
	return &Report{w: w}
}

func (r *Report) Print(v DashboardView) {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	r.printf("\n\033[1;35m%s\033[0m\n", sep)
	r.printf("\033[1;35m  COMPENSATION DASHBOARD: %s\033[0m\n", v.Query.JobCategory)
	r.printf("\033[1;35m%s\033[0m\n", sep)
	r.printf("  Location: %s | Experience: %s\n\n", orAll(v.Query.Location), orAll(v.Query.ExperienceLevel))

	// Benchmarks
	r.printf("\033[1;33m  Market Benchmarks\033[0m\n")
	r.printf("  %s\n", thin)
	if b := v.Benchmarks.Result; b != nil {
		r.printf("  25th percentile : \033[1;32m%s\033[0m\n", money(b.P25))
		r.printf("  Median          : \033[1;32m%s\033[0m\n", money(b.Median))
		r.printf("  75th percentile : \033[1;32m%s\033[0m\n", money(b.P75))
		r.printf("  Mean            : %s\n", money(b.Mean))
		r.printf("  Std deviation   : %s\n", money(b.Std))
		r.printf("  Fences          : %s .. %s\n", money(v.Benchmarks.LowerFence), money(v.Benchmarks.UpperFence))
		r.printf("  Records         : %d\n", b.Count)
	} else {
		r.printf("  No data: %s\n", errText(v.Benchmarks.Error))
	}
	r.printf("\n")

	// Geography
	if v.Geography.Shown {
		r.printf("\033[1;33m  Median Salaries by Location\033[0m\n")
		r.printf("  %s\n", thin)
		switch {
		case v.Geography.Error != nil:
			r.printf("  No data: %s\n", errText(v.Geography.Error))
		case len(v.Geography.Locations) == 0:
			r.printf("  No location data\n")
		default:
			r.printBars(v.Geography.Locations)
		}
		r.printf("\n")
	}

	// Forecast
	r.printf("\033[1;33m  Salary Trends and Forecast\033[0m\n")
	r.printf("  %s\n", thin)
	if f := v.Forecast.Result; f != nil {
		for _, h := range f.History {
			r.printf("  %d (actual)   : %s  (%d records)\n", h.Year, money(h.Mean), h.Count)
		}
		lower, upper := f.Lower(), f.Upper()
		for i, p := range f.Points {
			r.printf("  +%d (forecast) : \033[1;36m%s\033[0m  [%s .. %s]\n", i+1, money(p), money(lower[i]), money(upper[i]))
		}
	} else {
		r.printf("  No forecast: %s\n", errText(v.Forecast.Error))
	}
	r.printf("\n")

	// Scenario
	r.printf("\033[1;33m  Scenario Analysis\033[0m\n")
	r.printf("  %s\n", thin)
	if v.Scenario.Error == nil {
		r.printf("  Salary %s in %s is at the \033[1m%.1fth percentile\033[0m\n",
			money(v.Scenario.Salary), orAll(v.Scenario.TargetLocation), v.Scenario.Position)
		r.printf("  Salary is %s for %s\n", v.Scenario.Recommendation, v.Query.JobCategory)
	} else {
		r.printf("  No data: %s\n", errText(v.Scenario.Error))
	}

	r.printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func (r *Report) printBars(locs []models.LocationBenchmark) {
	maxMedian := 0.0
	for _, l := range locs {
		maxMedian = math.Max(maxMedian, l.Median)
	}
	for _, l := range locs {
		width := 0
		if maxMedian > 0 {
			width = int(math.Round(l.Median / maxMedian * 30))
		}
		r.printf("  %-22s %s %s ±%s\n", truncate(l.Location, 20), strings.Repeat("█", width), money(l.Median), money(l.Std))
	}
}

func (r *Report) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// money formats an amount as whole dollars with thousands separators.
func money(v float64) string {
	neg := v < 0
	n := int64(math.Round(math.Abs(v)))
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := "$" + strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func orAll(v string) string {
	if v == "" {
		return AllOption
	}
	return v
}

func errText(e *WidgetError) string {
	if e == nil {
		return "unknown"
	}
	return e.Message
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
