package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/sirupsen/logrus"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/refresh/token"
)

type Handler struct {
	authService Service
	log         *logrus.Entry
}

func NewHandler(authService Service, log *logrus.Entry) *Handler {
	return &Handler{
		authService: authService,
		log:         log,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.WithError(err).Error("JSON encoding error")
	}
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Path:     refreshCookiePath,
		MaxAge:   maxAge,
	})
}

func (h *Handler) respondTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	h.setRefreshCookie(w, refreshToken, h.authService.RefreshTTL())
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
		},
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrLogin string `json:"email_or_login"`
		Password     string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EmailOrLogin == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Email or login and password are required")
		return
	}

	accessToken, refreshToken, err := h.authService.Login(r.Context(), req.EmailOrLogin, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Could not log in")
		return
	}

	h.respondTokens(w, accessToken, refreshToken)
}

func refreshSession(r *http.Request) (userID, hashToken string, ok bool) {
	userID, ok = user.UserIDFromContext(r.Context())
	if !ok {
		return "", "", false
	}
	hashToken, ok = r.Context().Value(hashTokenKey).(string)
	return userID, hashToken, ok && hashToken != ""
}

func (h *Handler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, hashToken, ok := refreshSession(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(r.Context(), userID, hashToken)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Could not refresh token")
		return
	}

	h.respondTokens(w, accessToken, refreshToken)
}

// HandleLogout sits behind the refresh-token middleware: the refresh cookie is
// only sent on its path.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, hashToken, ok := refreshSession(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.authService.Logout(r.Context(), userID, hashToken); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.setRefreshCookie(w, "", -1)
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Could not log out")
		return
	}

	h.setRefreshCookie(w, "", -1)
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Logged out",
	})
}
