package dataaccess

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketdesk/pkg/entities"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const configDalName = "config_dal"

type ConfigDal interface {
	// SetConfig sets a config value, replacing any existing value.
	SetConfig(ctx context.Context, key, value string) error

	// GetConfig gets a config value. ErrNotFound is returned when the key is not set.
	GetConfig(ctx context.Context, key string) (string, error)
}

type configDalSQLite struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *sqlx.DB
}

func (d *configDalSQLite) SetConfig(ctx context.Context, key, value string) error {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverSQLite, configDalName, "set_config", tableConfig).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverSQLite, configDalName, "set_config", tableConfig))
	defer t.ObserveDuration()

	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverSQLite, configDalName, "set_config", tableConfig).Inc()
		return fmt.Errorf("error setting config %s: %w", key, err)
	}
	return nil
}

func (d *configDalSQLite) GetConfig(ctx context.Context, key string) (string, error) {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverSQLite, configDalName, "get_config", tableConfig).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverSQLite, configDalName, "get_config", tableConfig))
	defer t.ObserveDuration()

	entry := new(entities.ConfigEntry)
	err := d.db.GetContext(ctx, entry, `SELECT key, value FROM config WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("config %s: %w", key, ErrNotFound)
	} else if err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverSQLite, configDalName, "get_config", tableConfig).Inc()
		return "", fmt.Errorf("error getting config %s: %w", key, err)
	}
	return entry.Value, nil
}

type configDalMongo struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

func (d *configDalMongo) SetConfig(ctx context.Context, key, value string) error {
	// Get the config collection.
	collection := d.db.Collection(tableConfig)

	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverMongo, configDalName, "set_config", tableConfig).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverMongo, configDalName, "set_config", tableConfig))
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	entry := &entities.ConfigEntry{Key: key, Value: value}
	if _, err := collection.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$set": entry}, opts); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverMongo, configDalName, "set_config", tableConfig).Inc()
		return fmt.Errorf("error setting config %s: %w", key, err)
	}
	return nil
}

func (d *configDalMongo) GetConfig(ctx context.Context, key string) (string, error) {
	// Get the config collection.
	collection := d.db.Collection(tableConfig)

	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverMongo, configDalName, "get_config", tableConfig).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverMongo, configDalName, "get_config", tableConfig))
	defer t.ObserveDuration()

	entry := new(entities.ConfigEntry)
	err := collection.FindOne(ctx, bson.M{"key": key}).Decode(entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("config %s: %w", key, ErrNotFound)
	} else if err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverMongo, configDalName, "get_config", tableConfig).Inc()
		return "", fmt.Errorf("error getting config %s: %w", key, err)
	}
	return entry.Value, nil
}
