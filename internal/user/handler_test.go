package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sebuszqo/FinanceTracker/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(repo *MockRepository) *Handler {
	log := logger.WithComponent(logger.Discard(), "test")
	return NewHandler(NewUserService(repo, log), log)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandleRegister(t *testing.T) {
	repo := NewMockRepository()
	handler := newTestHandler(repo)

	payload := `{"name":"Jane","email":"jane@example.com","login":"jane","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, repo.Users[0].ID, data["user_id"])

	rr = httptest.NewRecorder()
	handler.HandleRegister(rr, httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(payload)))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandleRegister_BadRequest(t *testing.T) {
	handler := newTestHandler(NewMockRepository())

	rr := httptest.NewRecorder()
	handler.HandleRegister(rr, httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rr)["message"])

	rr = httptest.NewRecorder()
	handler.HandleRegister(rr, httptest.NewRequest(http.MethodPost, "/api/register",
		bytes.NewBufferString(`{"email":"nope","password":"secret123"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleGetUserProfile(t *testing.T) {
	repo := NewMockRepository(&User{ID: "u-1", Name: "Jane", Email: "jane@example.com", Login: "jane", PasswordHash: "hash"})
	handler := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/protected/profile", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "u-1"))
	rr := httptest.NewRecorder()
	handler.HandleGetUserProfile(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, "jane@example.com", data["email"])
	assert.NotContains(t, data, "PasswordHash")

	rr = httptest.NewRecorder()
	handler.HandleGetUserProfile(rr, httptest.NewRequest(http.MethodGet, "/api/protected/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
