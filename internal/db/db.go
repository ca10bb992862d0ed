package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"venue-occupancy-backend/config"
	"venue-occupancy-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Zone{},
		&model.Resource{},
		&model.Reservation{},
		&model.OverrideEvent{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.EnableRangeIndexes {
		log.Println("Range indexes are enabled, applying Postgres-specific DDL...")
		if err := applyRangeDDL(db); err != nil {
			log.Printf("Warning: failed to apply some range DDL: %v. Continuing without them.", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// applyRangeDDL sets up range-aware indexing on reservations so overlap
// queries (conflict detection, window scans) stay cheap on Postgres.
func applyRangeDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		// Half-open ranges must have positive length; the application
		// rejects violations at ingest, this backstops direct writes.
		"ALTER TABLE reservations " +
			"ADD CONSTRAINT reservations_range_valid CHECK (start_date < end_date);",

		// Expression GIST index over daterange(start, end, '[)') keyed by
		// resource: supports @> and && for overlap lookups.
		"CREATE INDEX idx_reservations_range_expr ON reservations " +
			"USING GIST (resource_id, daterange(start_date::date, end_date::date, '[)'));",

		// Common scan: latest reservations per resource.
		"CREATE INDEX idx_reservations_resource_start ON reservations (resource_id, start_date DESC);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
