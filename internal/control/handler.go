package control

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Error is an error carrying the HTTP status it maps to.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// handlerFuncE is an http.HandlerFunc that returns an error.
type handlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (s *Server) errHandler(f handlerFuncE) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			writeError(w, s.logger, err)
		}
	})
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	cErr := &Error{}
	if !errors.As(err, &cErr) {
		logger.Error("request failed", "error", err)
		cErr = &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
	} else if cErr.cause != nil {
		logger.Warn("request failed", "status", cErr.Status, "error", err)
	}

	if err := writeJSON(w, cErr.Status, cErr); err != nil {
		logger.Error("error writing response", "error", err)
	}
}

// statusWriter traps the response status code for the access log.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		writer := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(writer, r)

		s.logger.InfoContext(r.Context(), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", writer.code,
			"duration", time.Since(start),
		)
	})
}
