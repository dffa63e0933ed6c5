package logger

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const entryContextKey contextKey = "logger"

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLog is the entry shared by every handler of one request; fields
// added downstream show up on the completion line.
type requestLog struct {
	mu    sync.Mutex
	entry *logrus.Entry
}

func (l *requestLog) get() *logrus.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entry
}

func (l *requestLog) set(entry *logrus.Entry) {
	l.mu.Lock()
	l.entry = entry
	l.mu.Unlock()
}

// Middleware attaches a request-scoped entry to the context and logs each
// request once it completes.
func Middleware(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLog := &requestLog{entry: WithComponent(logger, "http").WithField(FieldRequestID, requestID)}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), entryContextKey, reqLog)))

			entry := reqLog.get()

			fields := logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			switch {
			case rec.status >= 500:
				entry.WithFields(fields).Error("request completed")
			case rec.status >= 400:
				entry.WithFields(fields).Warn("request completed")
			default:
				entry.WithFields(fields).Info("request completed")
			}
		})
	}
}

// WithEntry makes entry the context's logger. Inside Middleware it replaces
// the request entry, so the completion line carries entry's fields too.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	if reqLog, ok := ctx.Value(entryContextKey).(*requestLog); ok {
		reqLog.set(entry)
		return ctx
	}
	return context.WithValue(ctx, entryContextKey, entry)
}

// FromContext returns the request entry, or one on the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	switch v := ctx.Value(entryContextKey).(type) {
	case *requestLog:
		return v.get()
	case *logrus.Entry:
		return v
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
