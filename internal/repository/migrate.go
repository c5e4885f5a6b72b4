package repository

import (
	"fmt"

	"gorm.io/gorm"
)

const bookingOverlapConstraint = "bookings_no_overlap"

// Postgres enforces the no-overlap invariant itself as a backstop for the
// service-level check.
const bookingOverlapDDL = `ALTER TABLE bookings ADD CONSTRAINT ` + bookingOverlapConstraint + `
  EXCLUDE USING gist (amenity_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&)
  WHERE (deleted_at IS NULL AND status IN ('PENDING', 'APPROVED'))`

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&apartmentModel{},
		&amenityModel{},
		&bookingModel{},
		&preApprovalModel{},
		&visitorModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		return ensureBookingOverlapConstraint(db)
	}
	return nil
}

func ensureBookingOverlapConstraint(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	var cnt int64
	if err := db.Raw("SELECT COUNT(1) FROM pg_constraint WHERE conname = ?", bookingOverlapConstraint).Scan(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}
	if err := db.Exec(bookingOverlapDDL).Error; err != nil {
		return fmt.Errorf("create %s: %w", bookingOverlapConstraint, err)
	}
	return nil
}
