// Package serve implements the HTTP solve service.
//
// The service accepts audit problems over REST, solves them through the
// shared pipeline (so results are cached exactly as in the CLI), archives
// every solution, and serves past records back as JSON or CSV.
//
// # Endpoints
//
//	POST   /api/v1/solve            solve a problem document, archive the record
//	GET    /api/v1/solves           list archived solve summaries
//	GET    /api/v1/solves/{id}      fetch one record (problem + solution)
//	GET    /api/v1/solves/{id}/csv  per-assertion CSV summary
//	DELETE /api/v1/solves/{id}      drop a record
//	GET    /healthz                 liveness probe
//
// Failed solves return the engine's typed error code in the response body;
// the HTTP status distinguishes caller mistakes (422) from timeouts (504)
// and internal faults (500).
package serve

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/io"
	"github.com/matzehuels/irvaudit/pkg/pipeline"
	"github.com/matzehuels/irvaudit/pkg/raire"
	"github.com/matzehuels/irvaudit/pkg/store"
)

// Service-level error codes, used alongside the engine's taxonomy.
const (
	errCodeBadRequest     = "BAD_REQUEST"
	errCodeRecordNotFound = "RECORD_NOT_FOUND"
	errCodeInternal       = "INTERNAL_ERROR"
)

// Server wires the pipeline and the record archive behind a chi router.
type Server struct {
	runner  *pipeline.Runner
	archive store.Store
	logger  *log.Logger
}

// New creates a server. The runner and archive must be non-nil; the logger
// defaults to the package-level default when nil.
func New(runner *pipeline.Runner, archive store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, archive: archive, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Get("/solves", s.handleList)
		r.Get("/solves/{id}", s.handleGet)
		r.Get("/solves/{id}/csv", s.handleCSV)
		r.Delete("/solves/{id}", s.handleDelete)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// solveResponse is the POST /solve reply.
type solveResponse struct {
	ID       string       `json:"id"`
	Contest  string       `json:"contest,omitempty"`
	CacheHit bool         `json:"cache_hit"`
	Solution *io.Solution `json:"result"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	problem, err := io.ReadProblem(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errCodeBadRequest, err)
		return
	}

	outcome, solveErr := s.runner.Execute(r.Context(), problem)
	if solveErr != nil {
		envelope, err := io.NewSolution(problem, nil, solveErr)
		if err != nil {
			// Not a typed solver error: something in the plumbing broke.
			s.writeError(w, http.StatusInternalServerError, errCodeInternal, err)
			return
		}
		writeJSON(w, statusForSolveError(solveErr), solveResponse{Solution: envelope})
		return
	}

	envelope, err := io.NewSolution(problem, outcome.Solution, nil)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, errCodeInternal, err)
		return
	}

	contest := contestName(r, problem)
	record := store.NewRecord(contest, problem, outcome.Solution)
	if err := s.archive.Put(r.Context(), record); err != nil {
		s.writeError(w, http.StatusInternalServerError, errCodeInternal, err)
		return
	}
	s.logger.Info("solved and archived",
		"id", record.ID,
		"contest", contest,
		"cache_hit", outcome.CacheHit,
		"assertions", len(outcome.Solution.Assertions))

	writeJSON(w, http.StatusOK, solveResponse{
		ID:       record.ID,
		Contest:  contest,
		CacheHit: outcome.CacheHit,
		Solution: envelope,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.archive.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, errCodeInternal, err)
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"solves": summaries})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetch(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="assertions-`+record.ID+`.csv"`)
	if err := store.WriteAssertionsCSV(w, record); err != nil {
		s.logger.Error("write csv", "id", record.ID, "err", err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	switch err := s.archive.Delete(r.Context(), id); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case store.ErrNotFound:
		s.writeError(w, http.StatusNotFound, errCodeRecordNotFound, err)
	default:
		s.writeError(w, http.StatusInternalServerError, errCodeInternal, err)
	}
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	id := chi.URLParam(r, "id")
	record, err := s.archive.Get(r.Context(), id)
	switch err {
	case nil:
		return record, true
	case store.ErrNotFound:
		s.writeError(w, http.StatusNotFound, errCodeRecordNotFound, err)
	default:
		s.writeError(w, http.StatusInternalServerError, errCodeInternal, err)
	}
	return nil, false
}

// contestName picks the record's display name: the contest query parameter
// wins, then a "contest" string in the problem metadata.
func contestName(r *http.Request, problem *raire.Problem) string {
	if name := r.URL.Query().Get("contest"); name != "" {
		return name
	}
	if name, ok := problem.Metadata["contest"].(string); ok {
		return name
	}
	return ""
}

// statusForSolveError maps the engine's taxonomy onto HTTP statuses:
// problems the caller can fix are 422, exhausted budgets are 504,
// everything else is a server fault.
func statusForSolveError(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeInvalidNumberOfCandidates,
		errors.CodeInvalidTimeout,
		errors.CodeInvalidCandidateNumber,
		errors.CodeTiedWinners,
		errors.CodeWrongWinner,
		errors.CodeCouldNotRuleOut:
		return http.StatusUnprocessableEntity
	case errors.CodeTimeoutCheckingWinner, errors.CodeTimeoutFindingAssertions:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string, err error) {
	s.logger.Warn("request failed", "code", code, "err", err)
	var body errorBody
	body.Error.Code = code
	body.Error.Message = err.Error()
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

// ListenAndServe runs the service until the listener fails. Timeouts guard
// against slow clients holding connections open.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	return server.ListenAndServe()
}
