// Package api exposes the job fabric over HTTP: idempotent enqueue,
// pollable status and cancel. Authentication and the user-facing facade
// live outside this process.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/jobs"
)

// ANSI escape codes for request log coloring.
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server handles the job API routes.
type Server struct {
	dispatcher *jobs.Dispatcher
}

// NewServer wraps a running dispatcher.
func NewServer(d *jobs.Dispatcher) *Server {
	return &Server{dispatcher: d}
}

// ServeMux builds the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs", s.handleEnqueue)
	mux.HandleFunc("/api/jobs/", s.handleJobByID)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Handler is the fully wrapped HTTP surface: routes plus correlation and
// request logging middleware.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(CorrelationMiddleware(s.ServeMux()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, correlation id and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s corr=%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			r.Header.Get(config.CorrelationHeader),
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// CorrelationMiddleware assigns a correlation id when the caller did not
// send one and echoes it on the response.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := r.Header.Get(config.CorrelationHeader)
		if corr == "" {
			corr = uuid.NewString()
			r.Header.Set(config.CorrelationHeader, corr)
		}
		w.Header().Set(config.CorrelationHeader, corr)
		next.ServeHTTP(w, r)
	})
}
