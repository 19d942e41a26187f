package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const (
	// DriverSQLite stores everything in a single SQLite file.
	DriverSQLite = connection.DriverNameSQLite

	// DriverMongo stores everything in a MongoDB database.
	DriverMongo = connection.DriverNameMongo
)

const (
	tableCategories = "categories"
	tableConfig     = "config"
	tableAdmins     = "admins"
)

// Store is every data access layer the bot needs behind a single handle.
type Store interface {
	CategoryDal
	ConfigDal
	AdminDal

	// Driver is the name of the backing driver.
	Driver() string

	// Ping checks the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing connection.
	Close(ctx context.Context) error
}

// StoreConfig selects and configures the backing database.
type StoreConfig struct {
	// Driver is DriverSQLite or DriverMongo.
	Driver string

	// SQLitePath is the SQLite database file.
	SQLitePath string

	// MongoURI is the MongoDB connection string.
	MongoURI string

	// MongoDatabase is the MongoDB database name.
	MongoDatabase string
}

// NewStore connects to the configured database and prepares it for use.
func NewStore(ctx context.Context, l *slog.Logger, cfg *StoreConfig) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		conn := &connection.SQLite{Path: cfg.SQLitePath}
		db, err := conn.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("error connecting to sqlite: %w", err)
		}

		s, err := NewSQLiteStore(ctx, l, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		l.Info("Connected to sqlite", slog.String("path", cfg.SQLitePath))
		return s, nil
	case DriverMongo:
		conn := &connection.MongoDB{ConnectionString: cfg.MongoURI}
		client, err := conn.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("error connecting to mongo: %w", err)
		}

		l.Info("Connected to mongo", slog.String("database", cfg.MongoDatabase))
		return NewMongoStore(l, client, cfg.MongoDatabase), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

type sqliteStore struct {
	*categoryDalSQLite
	*configDalSQLite
	*adminDalSQLite

	db *sqlx.DB
}

// NewSQLiteStore creates the schema if needed and returns a store over db.
func NewSQLiteStore(ctx context.Context, l *slog.Logger, db *sqlx.DB) (Store, error) {
	if err := migrateSQLite(ctx, db); err != nil {
		return nil, fmt.Errorf("error migrating sqlite: %w", err)
	}

	return &sqliteStore{
		categoryDalSQLite: &categoryDalSQLite{l: l.With(slog.String(logging.KeyDal, categoryDalName)), db: db},
		configDalSQLite:   &configDalSQLite{l: l.With(slog.String(logging.KeyDal, configDalName)), db: db},
		adminDalSQLite:    &adminDalSQLite{l: l.With(slog.String(logging.KeyDal, adminDalName)), db: db},
		db:                db,
	}, nil
}

func (s *sqliteStore) Driver() string {
	return DriverSQLite
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return new(connection.SQLite).Ping(ctx, s.db)
}

func (s *sqliteStore) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("error closing sqlite: %w", err)
	}
	return nil
}

type mongoStore struct {
	*categoryDalMongo
	*configDalMongo
	*adminDalMongo

	client *mongo.Client
}

// NewMongoStore returns a store over the given database.
func NewMongoStore(l *slog.Logger, client *mongo.Client, database string) Store {
	db := client.Database(database)
	return &mongoStore{
		categoryDalMongo: &categoryDalMongo{l: l.With(slog.String(logging.KeyDal, categoryDalName)), db: db},
		configDalMongo:   &configDalMongo{l: l.With(slog.String(logging.KeyDal, configDalName)), db: db},
		adminDalMongo:    &adminDalMongo{l: l.With(slog.String(logging.KeyDal, adminDalName)), db: db},
		client:           client,
	}
}

func (s *mongoStore) Driver() string {
	return DriverMongo
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return new(connection.MongoDB).Ping(ctx, s.client)
}

func (s *mongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("error disconnecting from mongo: %w", err)
	}
	return nil
}
