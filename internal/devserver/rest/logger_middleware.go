package rest

import (
	"net/http"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/port"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// LoggerMiddleware кладет в контекст запроса логгер с trace_id и пишет итог запроса.
// Клиент присылает свой trace_id; чужой формат заменяется новым uuid.
func LoggerMiddleware(logger port.LoggerPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.NewString()
			}

			reqLogger := logger.WithFields(port.Fields{"trace_id": traceID})
			ctx := contextkeys.ContextWithTraceID(contextkeys.ContextWithLogger(r.Context(), reqLogger), traceID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set(traceHeader, traceID)
			started := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := port.Fields{
				"http_method": r.Method,
				"http_path":   r.URL.Path,
				"status_code": ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(started).Milliseconds(),
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				reqLogger.Warn("Request failed", fields)
			case strings.HasPrefix(r.URL.Path, "/metrics"):
				// опрос Prometheus
				reqLogger.Debug("Request finished", fields)
			default:
				reqLogger.Info("Request finished", fields)
			}
		})
	}
}
