package repository

import (
	"context"

	"github.com/calbook/booking-engine/internal/models"
	"gorm.io/gorm"
)

var activeStatuses = []models.BookingStatus{models.StatusPending, models.StatusConfirmed}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	// FindInRange returns active bookings for a calendar between two
	// dates inclusive, ordered by date then time.
	FindInRange(ctx context.Context, calendarID, startDate, endDate string) ([]models.Booking, error)
	CountActiveForSlot(ctx context.Context, tx *gorm.DB, calendarID, date, tm string) (int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) error
	// DecideFromPending flips a booking's status only while it is still
	// pending and reports how many rows changed. Zero rows means another
	// decision got there first; the status guard lives in the UPDATE
	// itself so concurrent decisions cannot both win.
	DecideFromPending(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) (int64, error)
	// Transaction runs fn inside a database transaction. Services depend on
	// this instead of the raw handle so tests can substitute a no-op.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindInRange(ctx context.Context, calendarID, startDate, endDate string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("calendar_id = ? AND slot_date >= ? AND slot_date <= ? AND status IN ?",
			calendarID, startDate, endDate, activeStatuses).
		Order("slot_date ASC, slot_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountActiveForSlot(ctx context.Context, tx *gorm.DB, calendarID, date, tm string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("calendar_id = ? AND slot_date = ? AND slot_time = ? AND status IN ?",
			calendarID, date, tm, activeStatuses).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

func (r *bookingRepository) DecideFromPending(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.StatusPending).
		Update("status", status)
	return result.RowsAffected, result.Error
}
