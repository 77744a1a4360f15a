package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tienda-catalog/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service exposes the process-wide database handle plus a health report.
type Service interface {
	DB() *sql.DB
	Health() map[string]string
	Close() error
}

type service struct {
	db *sql.DB
}

var (
	once     sync.Once
	instance *service
	openErr  error
)

// New opens the connection pool exactly once per process; concurrent first
// callers share the same initialization instead of racing to open duplicate
// pools. The handle is injected into repositories rather than read from
// ambient state.
func New(cfg config.DatabaseConfig) (Service, error) {
	once.Do(func() {
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema,
		)
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			openErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		db.SetMaxOpenConns(25)
		db.SetConnMaxIdleTime(5 * time.Minute)
		instance = &service{db: db}
	})
	if openErr != nil {
		return nil, openErr
	}
	return instance, nil
}

func (s *service) DB() *sql.DB {
	return s.db
}

// Health pings the database and reports pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	poolStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(poolStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(poolStats.InUse)
	stats["idle"] = strconv.Itoa(poolStats.Idle)

	return stats
}

func (s *service) Close() error {
	return s.db.Close()
}
