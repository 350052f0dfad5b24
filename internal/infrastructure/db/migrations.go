package db

import (
	"github.com/reportdash/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.AlertSnapshot{},
		&domain.TimelineEvent{},
		&domain.SystemSetting{},
	)
	if err != nil {
		return err
	}

	return createCustomIndexes(db)
}

func createCustomIndexes(db *gorm.DB) error {
	// Statistics walk snapshots per location in date order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_alert_snapshots_location_date
		ON alert_snapshots (location, date)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_timeline_events_resource
		ON timeline_events (resource_type, resource_id)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	return nil
}
