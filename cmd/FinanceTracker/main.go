package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	database "github.com/sebuszqo/FinanceTracker/db"
	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/logger"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Missing configuration, update to start server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbService, err := database.NewDBService(ctx, cfg.DBConnectionString, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, logger.WithComponent(log, "database"))
	if err != nil {
		log.WithError(err).Fatal("Could not initialize database")
	}
	defer dbService.Close()

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(dbService.DB); err != nil {
			log.WithError(err).Fatal("Could not apply migrations")
		}
		log.Info("database migrations applied")
	}

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo, logger.WithComponent(log, "user"))
	userHandler := user.NewHandler(userService, logger.WithComponent(log, "user"))

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := auth.NewAuthService(userService, jwtManager, logger.WithComponent(log, "auth"))
	authHandler := auth.NewHandler(authService, logger.WithComponent(log, "auth"))

	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	budgetRepo := infrastructure.NewBudgetRepository(dbService.DB)

	transactionService := application.NewTransactionService(transactionRepo, logger.WithComponent(log, "transactions"))
	budgetService := application.NewBudgetService(budgetRepo, transactionRepo, cfg.BudgetSpendScope, logger.WithComponent(log, "budgets"))

	transactionHandler := interfaces.NewTransactionHandler(transactionService, respondJSON, respondError)
	budgetHandler := interfaces.NewBudgetHandler(budgetService, respondJSON, respondError)

	server := NewServer(authHandler, authService, userHandler, transactionHandler, budgetHandler, dbService)
	server.RegisterRoutes()

	scheduler, err := StartHealthCheckScheduler(cfg.HealthCheckSchedule, dbService, logger.WithComponent(log, "scheduler"))
	if err != nil {
		log.WithError(err).Fatal("Scheduler didn't start, stopping the app ...")
	}
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: logger.Middleware(log)(server.router),
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
