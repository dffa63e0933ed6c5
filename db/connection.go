package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// PoolConfig mirrors the database/sql pool knobs exposed through configuration.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DBService represents a service that interacts with a database.
type DBService struct {
	DB  *sql.DB
	log *logrus.Entry

	mu         sync.RWMutex
	lastHealth map[string]string
}

// NewDBService opens a pgx-backed connection pool and pings it.
func NewDBService(ctx context.Context, connStr string, pool PoolConfig, log *logrus.Entry) (*DBService, error) {
	if connStr == "" {
		return nil, fmt.Errorf("missing database connection string")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	return &DBService{DB: db, log: log}, nil
}

// Health pings the database and returns a small status map.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.DB.PingContext(pingCtx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
	} else {
		dbStats := s.DB.Stats()
		stats["status"] = "up"
		stats["message"] = "It's healthy"
		stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
		stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	}

	s.mu.Lock()
	s.lastHealth = stats
	s.mu.Unlock()
	return stats
}

// LastHealth returns the result of the most recent Health call, probing if there is none yet.
func (s *DBService) LastHealth(ctx context.Context) map[string]string {
	s.mu.RLock()
	last := s.lastHealth
	s.mu.RUnlock()
	if last == nil {
		return s.Health(ctx)
	}
	return last
}

// Close closes the database connection.
func (s *DBService) Close() error {
	s.log.Info("closing database connection")
	return s.DB.Close()
}
