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

const categoryDalName = "category_dal"

type CategoryDal interface {
	// AddCategory appends a category row. Duplicates are allowed.
	AddCategory(ctx context.Context, category *entities.Category) error

	// GetCategories gets every category row in registration order.
	GetCategories(ctx context.Context) ([]*entities.Category, error)

	// GetCategoriesByMain gets the rows registered under a main category in registration order.
	GetCategoriesByMain(ctx context.Context, main string) ([]*entities.Category, error)
}

type categoryDalSQLite struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *sqlx.DB
}

func (d *categoryDalSQLite) AddCategory(ctx context.Context, category *entities.Category) error {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverSQLite, categoryDalName, "add_category", tableCategories).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverSQLite, categoryDalName, "add_category", tableCategories))
	defer t.ObserveDuration()

	if time.Time(category.CreatedAt).IsZero() {
		category.CreatedAt = custom.NewDatetime(time.Now())
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO categories (main, sub, created_at) VALUES (?, ?, ?)`,
		category.Main, category.Sub, category.CreatedAt,
	)
	if err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverSQLite, categoryDalName, "add_category", tableCategories).Inc()
		return fmt.Errorf("error inserting category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error getting category id: %w", err)
	}
	category.ID = id
	return nil
}

func (d *categoryDalSQLite) GetCategories(ctx context.Context) ([]*entities.Category, error) {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverSQLite, categoryDalName, "get_categories", tableCategories).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverSQLite, categoryDalName, "get_categories", tableCategories))
	defer t.ObserveDuration()

	categories := make([]*entities.Category, 0)
	if err := d.db.SelectContext(ctx, &categories,
		`SELECT id, main, sub, created_at FROM categories ORDER BY id`,
	); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverSQLite, categoryDalName, "get_categories", tableCategories).Inc()
		return nil, fmt.Errorf("error getting categories: %w", err)
	}
	return categories, nil
}

func (d *categoryDalSQLite) GetCategoriesByMain(ctx context.Context, main string) ([]*entities.Category, error) {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverSQLite, categoryDalName, "get_categories_by_main", tableCategories).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverSQLite, categoryDalName, "get_categories_by_main", tableCategories))
	defer t.ObserveDuration()

	categories := make([]*entities.Category, 0)
	if err := d.db.SelectContext(ctx, &categories,
		`SELECT id, main, sub, created_at FROM categories WHERE main = ? ORDER BY id`, main,
	); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverSQLite, categoryDalName, "get_categories_by_main", tableCategories).Inc()
		return nil, fmt.Errorf("error getting categories for %s: %w", main, err)
	}
	return categories, nil
}

type categoryDalMongo struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

// categorySort orders rows by registration.
var categorySort = bson.D{{Key: "seq", Value: 1}, {Key: "_id", Value: 1}}

func (d *categoryDalMongo) AddCategory(ctx context.Context, category *entities.Category) error {
	// Get the category collection.
	collection := d.db.Collection(tableCategories)

	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverMongo, categoryDalName, "add_category", tableCategories).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverMongo, categoryDalName, "add_category", tableCategories))
	defer t.ObserveDuration()

	now := time.Now()
	if time.Time(category.CreatedAt).IsZero() {
		category.CreatedAt = custom.NewDatetime(now)
	}

	// Mongo has no autoincrement, so order by insertion time.
	category.ID = now.UnixNano()

	if _, err := collection.InsertOne(ctx, category); err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverMongo, categoryDalName, "add_category", tableCategories).Inc()
		return fmt.Errorf("error inserting category: %w", err)
	}
	return nil
}

func (d *categoryDalMongo) GetCategories(ctx context.Context) ([]*entities.Category, error) {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverMongo, categoryDalName, "get_categories", tableCategories).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverMongo, categoryDalName, "get_categories", tableCategories))
	defer t.ObserveDuration()

	categories, err := d.find(ctx, bson.M{})
	if err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverMongo, categoryDalName, "get_categories", tableCategories).Inc()
		return nil, fmt.Errorf("error getting categories: %w", err)
	}
	return categories, nil
}

func (d *categoryDalMongo) GetCategoriesByMain(ctx context.Context, main string) ([]*entities.Category, error) {
	// Start the prometheus metrics.
	monitoring.StoreTotalRequests.WithLabelValues(DriverMongo, categoryDalName, "get_categories_by_main", tableCategories).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(DriverMongo, categoryDalName, "get_categories_by_main", tableCategories))
	defer t.ObserveDuration()

	categories, err := d.find(ctx, bson.M{"main": main})
	if err != nil {
		monitoring.StoreTotalErrors.WithLabelValues(DriverMongo, categoryDalName, "get_categories_by_main", tableCategories).Inc()
		return nil, fmt.Errorf("error getting categories for %s: %w", main, err)
	}
	return categories, nil
}

func (d *categoryDalMongo) find(ctx context.Context, filter bson.M) ([]*entities.Category, error) {
	cur, err := d.db.Collection(tableCategories).Find(ctx, filter, options.Find().SetSort(categorySort))
	if err != nil {
		return nil, err
	}

	categories := make([]*entities.Category, 0)
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
