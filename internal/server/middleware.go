package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// exposedHeaders are the response headers browsers may read cross origin.
//
//nolint:gochecknoglobals // Built once from the header constants
var exposedHeaders = strings.Join([]string{
	"Content-Disposition",
	headerDetectedFormat,
	headerOutputFilename,
	headerSettingsCount,
	headerRequestID,
}, ", ")

// requestIDKey is the context key holding the request id.
type requestIDKey struct{}

// requestIDFrom returns the request id stored in ctx, or "" if there isn't one.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestID tags every request with a unique id, echoed back in the
// X-Request-Id header and available to handlers through the context.
//
// A valid UUID sent by the client in X-Request-Id is reused.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if err := uuid.Validate(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder is an [http.ResponseWriter] that remembers the status code.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

// WriteHeader implements [http.ResponseWriter].
func (s *statusRecorder) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}

	s.ResponseWriter.WriteHeader(status)
}

// Write implements [http.ResponseWriter].
func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}

	return s.ResponseWriter.Write(b)
}

// Unwrap allows [http.ResponseController] to reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// logRequests logs one line per request and records it in the metrics.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(recorder, r)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}

		s.metrics.ObserveRequest(route(r), status)

		s.logger.Info(
			"Request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("took", time.Since(start)),
			slog.String("request_id", requestIDFrom(r.Context())),
		)
	})
}

// route returns the label a request is recorded under, the fixed API paths
// as they are and everything else (static files, unknown paths) grouped
// together to bound the label cardinality.
func route(r *http.Request) string {
	switch path := r.URL.Path; path {
	case "/api/convert", "/api/health", "/metrics":
		return path
	default:
		if strings.HasPrefix(path, "/api/") {
			return "/api/*"
		}

		return "/*"
	}
}

// cors allows the API to be called from any origin, answering preflight
// requests directly.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Expose-Headers", exposedHeaders)

		if r.Method == http.MethodOptions {
			header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			header.Set("Access-Control-Allow-Headers", "Content-Type, "+headerRequestID)
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
