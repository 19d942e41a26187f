package dataaccess

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/ticketdesk/pkg/custom"
	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketdesk/pkg/entities"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const adminDalName = "admin_dal"

type AdminDal interface {
	// SaveAdmin registers an admin grant. Saving an existing grant refreshes its registration time.
	SaveAdmin(ctx context.Context, admin *entities.AdminGrant) error

	// GetAdmins gets every admin grant in first registration order.
	GetAdmins(ctx context.Context) ([]*entities.AdminGrant, error)
}

type adminDalSQLite struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *sqlx.DB
}

func (d *adminDalSQLite) SaveAdmin(ctx context.Context, admin *entities.AdminGrant) error {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverSQLite, adminDalName, "save_admin", tableAdmins).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverSQLite, adminDalName, "save_admin", tableAdmins))
	defer t.ObserveDuration()

	if time.Time(admin.RegisteredAt).IsZero() {
		admin.RegisteredAt = custom.NewDatetime(time.Now())
	}

	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO admins (id, registered_at) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET registered_at = excluded.registered_at`,
		admin.ID, admin.RegisteredAt,
	); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverSQLite, adminDalName, "save_admin", tableAdmins).Inc()
		return fmt.Errorf("error saving admin %s: %w", admin.ID, err)
	}
	return nil
}

func (d *adminDalSQLite) GetAdmins(ctx context.Context) ([]*entities.AdminGrant, error) {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverSQLite, adminDalName, "get_admins", tableAdmins).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverSQLite, adminDalName, "get_admins", tableAdmins))
	defer t.ObserveDuration()

	admins := make([]*entities.AdminGrant, 0)
	if err := d.db.SelectContext(ctx, &admins,
		`SELECT id, registered_at FROM admins ORDER BY rowid`,
	); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverSQLite, adminDalName, "get_admins", tableAdmins).Inc()
		return nil, fmt.Errorf("error getting admins: %w", err)
	}
	return admins, nil
}

type adminDalMongo struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

func (d *adminDalMongo) SaveAdmin(ctx context.Context, admin *entities.AdminGrant) error {
	// Get the admin collection.
	collection := d.db.Collection(tableAdmins)

	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverMongo, adminDalName, "save_admin", tableAdmins).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverMongo, adminDalName, "save_admin", tableAdmins))
	defer t.ObserveDuration()

	if time.Time(admin.RegisteredAt).IsZero() {
		admin.RegisteredAt = custom.NewDatetime(time.Now())
	}

	// Save the admin.
	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, bson.M{"id": admin.ID}, bson.M{"$set": admin}, opts); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverMongo, adminDalName, "save_admin", tableAdmins).Inc()
		return fmt.Errorf("error saving admin %s: %w", admin.ID, err)
	}
	return nil
}

func (d *adminDalMongo) GetAdmins(ctx context.Context) ([]*entities.AdminGrant, error) {
	// Get the admin collection.
	collection := d.db.Collection(tableAdmins)

	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverMongo, adminDalName, "get_admins", tableAdmins).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverMongo, adminDalName, "get_admins", tableAdmins))
	defer t.ObserveDuration()

	// The upsert keeps the _id of the first registration.
	cur, err := collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverMongo, adminDalName, "get_admins", tableAdmins).Inc()
		return nil, fmt.Errorf("error getting admins: %w", err)
	}

	admins := make([]*entities.AdminGrant, 0)
	if err := cur.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("error decoding admins: %w", err)
	}
	return admins, nil
}
