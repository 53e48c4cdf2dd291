package models

// TimeSlotRule generates bookable cells for one calendar. Exactly one of
// DayOfWeek (0=Sunday) or SpecificDate must be set: a weekday rule
// repeats every week, a specific-date rule applies to a single day.
type TimeSlotRule struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	CalendarID   string  `gorm:"not null;index" json:"calendar_id"`
	DayOfWeek    *int    `json:"day_of_week,omitempty"`
	SpecificDate *string `gorm:"type:varchar(10)" json:"specific_date,omitempty"`
	StartTime    string  `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string  `gorm:"type:varchar(5);not null" json:"end_time"`
	SlotDuration int     `gorm:"not null" json:"slot_duration"`
	BufferTime   int     `gorm:"not null;default:0" json:"buffer_time"`
	MaxBookings  int     `gorm:"not null;default:1" json:"max_bookings"`
}

func (TimeSlotRule) TableName() string { return "time_slot_rules" }

// AppliesTo reports whether the rule generates cells for the given
// date. Weekday rules and specific-date rules that both match are
// unioned by the generator rather than one overriding the other.
func (r *TimeSlotRule) AppliesTo(date string, dow int) bool {
	if r.DayOfWeek != nil && *r.DayOfWeek == dow {
		return true
	}
	return r.SpecificDate != nil && *r.SpecificDate == date
}
