package db

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/agenda-scheduler/internal/config"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := BackfillTimezone(db, cfg.DefaultTimezone); err != nil {
		return nil, err
	}

	return db, nil
}

// BackfillTimezone gives businesses stored without a timezone the
// configured default.
func BackfillTimezone(db *gorm.DB, tz string) error {
	if tz == "" {
		return nil
	}
	if err := db.Model(&models.Business{}).
		Where("timezone IS NULL OR timezone = ''").
		Update("timezone", tz).Error; err != nil {
		return fmt.Errorf("backfill timezone: %w", err)
	}
	return nil
}

// Migrate creates the schema. It runs on both PostgreSQL and SQLite; the
// overlap exclusion constraint is only installed on PostgreSQL.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Service{},
		&models.OperatingHours{},
		&models.OperatingBreak{},
		&models.Appointment{},
		&models.BookingLock{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	// No two confirmed appointments may overlap in the same (business, staff) lane.
	if err := db.Exec(`
        DO $$
        BEGIN
            ALTER TABLE appointments
            ADD CONSTRAINT appointments_no_overlap
            EXCLUDE USING gist (
                business_id WITH =,
                staff_id WITH =,
                tstzrange(start_time, end_time, '[)') WITH &&
            ) WHERE (status = 'confirmed');
        EXCEPTION
            WHEN duplicate_object THEN NULL;
        END $$;
    `).Error; err != nil {
		return fmt.Errorf("create overlap constraint: %w", err)
	}

	return nil
}
