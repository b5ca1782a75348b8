package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"compensation-dashboard/apperr"
	"compensation-dashboard/services"
	"compensation-dashboard/utils"
)

// ReloadFunc rebuilds the statistics engine for the given years.
// An empty slice means the configured default years.
type ReloadFunc func(ctx context.Context, years []int) (*services.StatsEngine, error)

// Server exposes the statistics engine over a JSON HTTP interface.
// The engine is swapped atomically on reload, readers never block.
type Server struct {
	engine atomic.Pointer[services.StatsEngine]
	reload ReloadFunc
	logger *utils.Logger
}

func NewServer(engine *services.StatsEngine, reload ReloadFunc, logger *utils.Logger) *Server {
	s := &Server{reload: reload, logger: logger}
	s.engine.Store(engine)
	return s
}

// Engine returns the engine currently serving queries.
func (s *Server) Engine() *services.StatsEngine {
	return s.engine.Load()
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(s.logMiddleware)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/options", s.handleOptions).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/benchmarks", s.handleBenchmarks).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/compare", s.handleCompare).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/position", s.handlePosition).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reload", s.handleReload).Methods(http.MethodPost, http.MethodOptions)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("[api] %s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{
			Error:   http.StatusText(status),
			Message: "encoding response: " + err.Error(),
		})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

type errorBody struct {
	Error   string      `json:"error"`
	Kind    apperr.Kind `json:"kind,omitempty"`
	Message string      `json:"message"`
}

// writeError maps err to a status and JSON body. Server-side failures
// also get their captured stack logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		s.logger.Error("[api] %v", err)
		s.logger.Stack(err)
	}
	writeJSON(w, status, errorBody{
		Error:   http.StatusText(status),
		Kind:    kind,
		Message: err.Error(),
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindEmptyResult:
		return http.StatusNotFound
	case apperr.KindInsufficientData:
		return http.StatusUnprocessableEntity
	case apperr.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
