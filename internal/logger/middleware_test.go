package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LogsRequestAndPropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "info", "json")

	var entryInHandler bool
	handler := Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := FromContext(r.Context())
		entryInHandler = entry.Data[FieldRequestID] == "req-42"
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, entryInHandler)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["msg"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/api/ready", line["path"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, "http", line[FieldComponent])
}

func TestMiddleware_CompletionLineCarriesDownstreamFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "info", "json")

	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithEntry(r.Context(), FromContext(r.Context()).WithField(FieldUserID, "user-7"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	var seenUserID interface{}
	handler := Middleware(log)(authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = FromContext(r.Context()).Data[FieldUserID]
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/protected/profile", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "user-7", seenUserID)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request completed", line["msg"])
	assert.Equal(t, "user-7", line[FieldUserID])
	assert.Equal(t, "req-7", line[FieldRequestID])
}

func TestWithEntry_OutsideMiddleware(t *testing.T) {
	entry := Discard().WithField(FieldUserID, "user-1")
	ctx := WithEntry(context.Background(), entry)
	assert.Same(t, entry, FromContext(ctx))
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	handler := Middleware(Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestFromContext_FallsBackToStandardLogger(t *testing.T) {
	entry := FromContext(context.Background())
	assert.NotNil(t, entry)
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := New("chatty", "text")
	assert.Equal(t, "info", log.GetLevel().String())
}
