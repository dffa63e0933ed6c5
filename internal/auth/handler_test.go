package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/logger"
	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	manager *JWTManager
	service Service
	handler *Handler
	user    *user.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := user.HashPassword("secret123")
	require.NoError(t, err)

	stored := &user.User{ID: "0b6f4b4e-3c4f-4a36-9d4e-6a1d2a0c7b11", Email: "jane@example.com", Login: "jane", PasswordHash: hash, HashToken: "hash-token"}
	log := logger.WithComponent(logger.Discard(), "test")
	userService := user.NewUserService(user.NewMockRepository(stored), log)
	manager := NewJWTManager("secret", time.Minute, time.Hour)
	service := NewAuthService(userService, manager, log)

	return &authFixture{
		manager: manager,
		service: service,
		handler: NewHandler(service, log),
		user:    stored,
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandleLogin(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"email_or_login":"jane","password":"secret123"}`))
	rr := httptest.NewRecorder()
	f.handler.HandleLogin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	userID, err := f.manager.ValidateAccessToken(data["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, userID)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, refreshCookieName, cookies[0].Name)
	assert.Equal(t, refreshCookiePath, cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
	assert.NoError(t, f.manager.ValidateRefreshToken(cookies[0].Value, f.user.HashToken))
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)

	for _, payload := range []string{
		`{"email_or_login":"jane","password":"wrong"}`,
		`{"email_or_login":"nobody","password":"secret123"}`,
	} {
		rr := httptest.NewRecorder()
		f.handler.HandleLogin(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(payload)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, payload)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rr)["message"])
	}

	rr := httptest.NewRecorder()
	f.handler.HandleLogin(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJWTAccessTokenMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	var seenUserID string
	protected := f.service.JWTAccessTokenMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = user.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := f.manager.GenerateAccessJWT(f.user.ID)
	require.NoError(t, err)
	refreshToken, err := f.manager.GenerateRefreshJWT(f.user.ID, f.user.HashToken)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", token, http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"refresh token as bearer", "Bearer " + refreshToken, http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/protected/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
	assert.Equal(t, f.user.ID, seenUserID)
}

func TestJWTAccessTokenMiddleware_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	protected := f.service.JWTAccessTokenMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	token, err := f.manager.GenerateAccessJWT("5d1c1a7e-8e0a-4d1b-9f3c-2b7e9c4d6a22")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/protected/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func refreshRequest(method, token string) *http.Request {
	req := httptest.NewRequest(method, refreshCookiePath, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: token})
	}
	return req
}

func refreshCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, refreshCookieName, cookies[0].Name)
	return cookies[0]
}

func TestRefreshAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	refresh := f.service.JWTRefreshTokenMiddleware()(http.HandlerFunc(f.handler.RefreshAccessToken))

	token, err := f.manager.GenerateRefreshJWT(f.user.ID, f.user.HashToken)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, token))
	require.Equal(t, http.StatusOK, rr.Code)
	rotated := refreshCookie(t, rr).Value
	assert.NotEqual(t, token, rotated)

	// the used token is revoked, the rotated one works exactly once
	rr = httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, token))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, rotated))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, rotated))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	stale, err := f.manager.GenerateRefreshJWT(f.user.ID, "rotated")
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, stale))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	access, err := f.manager.GenerateAccessJWT(f.user.ID)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, access))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleLogout_RevokesRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	logout := f.service.JWTRefreshTokenMiddleware()(http.HandlerFunc(f.handler.HandleLogout))
	refresh := f.service.JWTRefreshTokenMiddleware()(http.HandlerFunc(f.handler.RefreshAccessToken))

	token, err := f.manager.GenerateRefreshJWT(f.user.ID, f.user.HashToken)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	logout.ServeHTTP(rr, refreshRequest(http.MethodDelete, token))
	assert.Equal(t, http.StatusOK, rr.Code)
	cleared := refreshCookie(t, rr)
	assert.Equal(t, "", cleared.Value)
	assert.True(t, cleared.MaxAge < 0)

	rr = httptest.NewRecorder()
	refresh.ServeHTTP(rr, refreshRequest(http.MethodPut, token))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	logout.ServeHTTP(rr, refreshRequest(http.MethodDelete, token))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleLogout_WithoutRefreshSession(t *testing.T) {
	f := newAuthFixture(t)

	rr := httptest.NewRecorder()
	f.handler.HandleLogout(rr, httptest.NewRequest(http.MethodDelete, refreshCookiePath, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
