package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
	"compensation-dashboard/services"
)

type optionsResponse struct {
	Categories       []string `json:"categories"`
	Locations        []string `json:"locations"`
	ExperienceLevels []string `json:"experience_levels"`
	Records          int      `json:"records"`
}

type compareResponse struct {
	JobCategory string                     `json:"job_category"`
	Locations   []models.LocationBenchmark `json:"locations"`
}

type forecastResponse struct {
	JobCategory string `json:"job_category"`
	models.ForecastResult
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

type positionResponse struct {
	JobCategory    string  `json:"job_category"`
	Location       string  `json:"location,omitempty"`
	Salary         float64 `json:"salary"`
	Position       float64 `json:"position"`
	Recommendation string  `json:"recommendation"`
}

type reloadResponse struct {
	Records int `json:"records"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.Engine().Dataset().Len(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	writeJSON(w, http.StatusOK, optionsResponse{
		Categories:       e.Categories(),
		Locations:        e.Locations(),
		ExperienceLevels: e.ExperienceLevels(),
		Records:          e.Dataset().Len(),
	})
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b, err := s.Engine().ComputeBenchmarks(q.Get("job"), option(q.Get("location")), option(q.Get("experience")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	job := q.Get("job")
	e := s.Engine()

	locations := q["location"]
	if len(locations) == 0 {
		locations = e.TopLocations(services.DefaultTopLocations)
	}

	out, err := e.CompareLocations(job, locations)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{JobCategory: job, Locations: out})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ahead, err := intParam(q.Get("years_ahead"), 1)
	if err != nil {
		s.writeError(w, err)
		return
	}

	f, err := s.Engine().Forecast(q.Get("job"), ahead)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecastResponse{
		JobCategory:    q.Get("job"),
		ForecastResult: f,
		Lower:          f.Lower(),
		Upper:          f.Upper(),
	})
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	salary, err := floatParam(q.Get("salary"), services.DefaultScenarioSalary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	job, loc := q.Get("job"), option(q.Get("location"))

	pos, err := s.Engine().MarketPosition(salary, job, loc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{
		JobCategory:    job,
		Location:       loc,
		Salary:         salary,
		Position:       pos,
		Recommendation: services.Recommend(pos),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("job") == "" {
		s.writeError(w, apperr.InvalidInput("job is required", nil))
		return
	}
	ahead, err := intParam(q.Get("years_ahead"), 1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	salary, err := floatParam(q.Get("salary"), services.DefaultScenarioSalary)
	if err != nil {
		s.writeError(w, err)
		return
	}

	view := services.BuildDashboard(s.Engine(), services.DashboardQuery{
		JobCategory:     q.Get("job"),
		Location:        q.Get("location"),
		ExperienceLevel: q.Get("experience"),
		YearsAhead:      ahead,
		Salary:          salary,
		TargetLocation:  q.Get("target_location"),
	})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		s.writeError(w, apperr.InvalidInput("reload is not enabled", nil))
		return
	}

	var years []int
	for _, raw := range r.URL.Query()["year"] {
		y, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			s.writeError(w, apperr.InvalidInput(fmt.Sprintf("invalid year %q", raw), err))
			return
		}
		years = append(years, y)
	}

	engine, err := s.reload(r.Context(), years)
	if err != nil {
		s.logger.Error("[api] Reload failed: %v", err)
		s.writeError(w, err)
		return
	}
	s.engine.Store(engine)
	s.logger.Info("[api] Reloaded dataset: %d records", engine.Dataset().Len())
	writeJSON(w, http.StatusOK, reloadResponse{Records: engine.Dataset().Len()})
}

// option maps the "All" sentinel to no restriction.
func option(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, services.AllOption) {
		return ""
	}
	return v
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidInput(fmt.Sprintf("invalid integer %q", raw), err)
	}
	return v, nil
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.InvalidInput(fmt.Sprintf("invalid number %q", raw), err)
	}
	return v, nil
}
