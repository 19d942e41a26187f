package connection

import (
	"context"
	"fmt"
	"time"

	dbMonitoring "github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess/monitoring"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// DriverNameSQLite is the database/sql driver name registered by modernc.org/sqlite.
const DriverNameSQLite = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

func init() {
	sqlx.BindDriver(DriverNameSQLite, sqlx.QUESTION)
}

type SQLite struct {
	// Path is the database file. Use MemoryPath for an in-memory database.
	Path string

	// BusyTimeout is how long a connection waits on a locked database.
	BusyTimeout time.Duration
}

// DSN returns the data source name for the driver.
func (s *SQLite) DSN() string {
	timeout := s.BusyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_time_format=sqlite", s.Path, timeout.Milliseconds())
}

func (s *SQLite) Ping(ctx context.Context, db *sqlx.DB) error {
	// Create a new timer to measure the latency of the check.
	t := prometheus.NewTimer(dbMonitoring.StoreLatency.WithLabelValues(DriverNameSQLite, "health_check", "ping", "-"))
	defer t.ObserveDuration()
	dbMonitoring.StoreTotalRequests.WithLabelValues(DriverNameSQLite, "health_check", "ping", "-").Inc()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("error pinging sqlite: %w", err)
	}
	return nil
}

func (s *SQLite) Connect(ctx context.Context) (*sqlx.DB, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	db, err := sqlx.Open(DriverNameSQLite, s.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite: %w", err)
	}

	// Every connection to :memory: is its own database.
	if s.Path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := s.Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
