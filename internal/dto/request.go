package dto

// CreateCalendarRequest provisions a new calendar configuration
// document. A default booking link is attached automatically.
type CreateCalendarRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=2000"`
	Timezone       string   `json:"timezone" validate:"omitempty,max=64"`
	AllowedOrigins []string `json:"allowed_origins" validate:"omitempty,dive,required"`
}

// UpdateCalendarRequest replaces the mutable parts of a calendar
// document. Nil slices leave the stored value untouched.
type UpdateCalendarRequest struct {
	Name           *string  `json:"name" validate:"omitempty,max=200"`
	Description    *string  `json:"description" validate:"omitempty,max=2000"`
	Timezone       *string  `json:"timezone" validate:"omitempty,max=64"`
	AllowedOrigins []string `json:"allowed_origins" validate:"omitempty,dive,required"`
}

// CreateLinkRequest adds a booking link to a calendar. Zero-valued
// numeric fields fall back to the link defaults; an empty slug gets a
// generated friendly one.
type CreateLinkRequest struct {
	Slug                string `json:"slug" validate:"omitempty,max=100,excludesall=/?#"`
	Name                string `json:"name" validate:"omitempty,max=200"`
	Description         string `json:"description" validate:"max=2000"`
	Duration            int    `json:"duration" validate:"omitempty,min=1,max=1440"`
	MinNotice           int    `json:"min_notice" validate:"min=0,max=8760"`
	MaxAdvance          int    `json:"max_advance" validate:"omitempty,min=1,max=365"`
	ConfirmationMessage string `json:"confirmation_message" validate:"max=2000"`
	AutoAccept          *bool  `json:"auto_accept"`
	HideTitle           bool   `json:"hide_title"`
	AdminEmail          string `json:"admin_email" validate:"omitempty,email"`
}

// RuleRequest creates or replaces a time slot rule. Exactly one of
// day_of_week and specific_date must be present.
type RuleRequest struct {
	DayOfWeek    *int    `json:"day_of_week" validate:"required_without=SpecificDate,omitempty,min=0,max=6"`
	SpecificDate *string `json:"specific_date" validate:"excluded_with=DayOfWeek,omitempty,datetime=2006-01-02"`
	StartTime    string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string  `json:"end_time" validate:"required,datetime=15:04"`
	SlotDuration int     `json:"slot_duration" validate:"required,min=1,max=1440"`
	BufferTime   int     `json:"buffer_time" validate:"min=0,max=1440"`
	MaxBookings  int     `json:"max_bookings" validate:"min=0,max=1000"`
}
