package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/logger"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

type healthReporter interface {
	LastHealth(ctx context.Context) map[string]string
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router             *http.ServeMux
	authHandler        *auth.Handler
	userHandler        *user.Handler
	authService        auth.Service
	transactionHandler *interfaces.TransactionHandler
	budgetHandler      *interfaces.BudgetHandler
	health             healthReporter
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.Service,
	userHandler *user.Handler,
	transactionHandler *interfaces.TransactionHandler,
	budgetHandler *interfaces.BudgetHandler,
	health healthReporter,
) *Server {
	return &Server{
		authHandler:        authHandler,
		userHandler:        userHandler,
		authService:        authService,
		transactionHandler: transactionHandler,
		budgetHandler:      budgetHandler,
		health:             health,
		router:             http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

// handleReady reports the cached database probe kept fresh by the health scheduler.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.health.LastHealth(r.Context())
	if stats["status"] != "up" {
		logger.FromContext(r.Context()).WithField("database", stats["error"]).Warn("readiness check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not ready",
			"database": stats,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"database": stats,
	})
}

func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return s.authService.JWTAccessTokenMiddleware()(h)
}

func (s *Server) protectedWithID(h http.HandlerFunc, param string) http.Handler {
	return s.authService.JWTAccessTokenMiddleware()(interfaces.ValidatePathParamsMiddleware(respondError, h, param))
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile", s.protected(s.userHandler.HandleGetUserProfile))

	// TRANSACTIONS
	protectedRoutes.Handle("GET /api/protected/transactions", s.protected(s.transactionHandler.GetTransactions))
	protectedRoutes.Handle("GET /api/protected/transactions/summary", s.protected(s.transactionHandler.GetSummary))
	protectedRoutes.Handle("POST /api/protected/transactions", s.protected(s.transactionHandler.CreateTransaction))
	protectedRoutes.Handle("PUT /api/protected/transactions/{transactionID}",
		s.protectedWithID(s.transactionHandler.UpdateTransaction, "transactionID"))
	protectedRoutes.Handle("DELETE /api/protected/transactions/{transactionID}",
		s.protectedWithID(s.transactionHandler.DeleteTransaction, "transactionID"))

	// BUDGETS
	protectedRoutes.Handle("GET /api/protected/budgets", s.protected(s.budgetHandler.GetBudgets))
	protectedRoutes.Handle("GET /api/protected/budgets/status", s.protected(s.budgetHandler.GetBudgetStatuses))
	protectedRoutes.Handle("POST /api/protected/budgets", s.protected(s.budgetHandler.CreateBudget))
	protectedRoutes.Handle("PUT /api/protected/budgets/{budgetID}",
		s.protectedWithID(s.budgetHandler.UpdateBudget, "budgetID"))
	protectedRoutes.Handle("DELETE /api/protected/budgets/{budgetID}",
		s.protectedWithID(s.budgetHandler.DeleteBudget, "budgetID"))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token",
		s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))
	refreshTokenRoutes.Handle("DELETE /api/refresh/token",
		s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleLogout)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}
