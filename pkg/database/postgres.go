package database

import (
	"log"

	"github.com/calbook/booking-engine/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.TimeSlotRule{}, &models.Booking{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial index backing the capacity count: only pending and
	// confirmed rows occupy a slot cell.
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_booking_active_cell
		ON bookings (calendar_id, slot_date, slot_time)
		WHERE status IN ('pending', 'confirmed')
	`)

	return db
}
