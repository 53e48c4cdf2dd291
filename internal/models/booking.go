package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	// StatusCompleted is terminal and reserved for an external job;
	// nothing in this engine assigns it.
	StatusCompleted BookingStatus = "completed"
)

// Active reports whether the status counts against slot capacity.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Booking struct {
	ID                string        `gorm:"type:uuid;primaryKey" json:"id"`
	CalendarID        string        `gorm:"not null;index:idx_booking_slot" json:"calendar_id"`
	BookingLinkID     string        `gorm:"not null" json:"booking_link_id"`
	SlotDate          string        `gorm:"type:varchar(10);not null;index:idx_booking_slot" json:"slot_date"`
	SlotTime          string        `gorm:"type:varchar(5);not null;index:idx_booking_slot" json:"slot_time"`
	Duration          int           `gorm:"not null" json:"duration"`
	Name              string        `gorm:"not null" json:"name"`
	Email             string        `gorm:"not null" json:"email"`
	Phone             string        `json:"phone,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	FieldsData        FieldValues   `gorm:"type:jsonb" json:"fields_data,omitempty"`
	Status            BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ConfirmationToken string        `gorm:"not null" json:"-"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
