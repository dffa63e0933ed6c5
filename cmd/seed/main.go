package main

import (
	"context"
	"flag"
	"time"

	database "github.com/sebuszqo/FinanceTracker/db"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/logger"
	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/sirupsen/logrus"
)

func main() {
	opts := seedOptions{Now: time.Now().UTC()}
	flag.StringVar(&opts.Name, "name", "Demo User", "name of the seeded user")
	flag.StringVar(&opts.Email, "email", "demo@example.com", "email of the seeded user")
	flag.StringVar(&opts.Password, "password", "password123", "password of the seeded user")
	flag.IntVar(&opts.Expenses, "expenses", 20, "number of random expenses to create")
	flag.Int64Var(&opts.Seed, "seed", 1, "random seed for generated expenses")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	dbService, err := database.NewDBService(ctx, cfg.DBConnectionString, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, logger.WithComponent(log, "database"))
	if err != nil {
		log.WithError(err).Fatal("Could not initialize database")
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB); err != nil {
		log.WithError(err).Fatal("Could not apply migrations")
	}

	seedLog := logger.WithComponent(log, "seed")
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	s := &seeder{
		users:        user.NewUserService(user.NewUserRepository(dbService.DB), seedLog),
		transactions: application.NewTransactionService(transactionRepo, seedLog),
		budgets: application.NewBudgetService(infrastructure.NewBudgetRepository(dbService.DB),
			transactionRepo, cfg.BudgetSpendScope, seedLog),
		log: seedLog,
	}

	result, err := s.run(ctx, opts)
	if err != nil {
		log.WithError(err).Fatal("seeding failed")
	}
	log.WithFields(logrus.Fields{
		"user_id":      result.UserID,
		"budgets":      result.Budgets,
		"transactions": result.Transactions,
	}).Info("seed completed")
}
