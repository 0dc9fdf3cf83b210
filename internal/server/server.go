// Package server implements the HTTP transpile service behind webby serve.
//
// The service exposes two endpoints:
//
//	POST /v1/transpile  transpile a markup document and return the rewritten markup
//	GET  /healthz       liveness probe with version information
//
// Errors are returned as JSON bodies carrying the machine-readable code from
// the errors package, mapped onto an HTTP status.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/benilovj/webby/pkg/buildinfo"
	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/observability"
	"github.com/benilovj/webby/pkg/transpile"
)

// maxBodySize caps transpile request bodies at 10 MiB.
const maxBodySize = 10 << 20

// Options configures the HTTP server.
type Options struct {
	Addr      string            // listen address, e.g. ":8080"
	Transpile transpile.Options // defaults applied to every request
	Logger    *log.Logger
}

// Server wires the transpile runner into an HTTP API.
type Server struct {
	opts   Options
	runner *transpile.Runner
	http   *http.Server
}

// New creates a Server with its routes registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		opts:   opts,
		runner: transpile.NewRunner(opts.Logger),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/v1/transpile", s.handleTranspile)

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts the server and blocks until ctx is canceled or the listener
// fails. Cancellation triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(errors.ErrCodeInternal, err, "serve on %s", s.opts.Addr)
	case <-ctx.Done():
	}

	s.opts.Logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

// TranspileRequest is the body of POST /v1/transpile.
type TranspileRequest struct {
	Markup  string   `json:"markup"`
	Filters []string `json:"filters,omitempty"`
}

// TranspileResponse is the success body of POST /v1/transpile.
type TranspileResponse struct {
	Markup string `json:"markup"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

func (s *Server) handleTranspile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req TranspileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if req.Markup == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "markup is required"))
		return
	}
	if err := errors.ValidateFilterNames(req.Filters); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.opts.Transpile
	if req.Filters != nil {
		// Request filters replace the configured defaults.
		opts.Filters = req.Filters
	}

	result, err := s.runner.Execute(r.Context(), req.Markup, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TranspileResponse{Markup: result.Markup})
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the request id attached by the middleware, or "" when
// none is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID assigns each request a UUID unless the client already sent one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.opts.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", RequestID(r.Context()),
			"duration", elapsed)
	})
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: errors.UserMessage(err), Code: code})
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFilter:
		return http.StatusBadRequest
	case errors.ErrCodeMalformedGraphSource:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeFragmentNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRendererNotFound:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRenderTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
