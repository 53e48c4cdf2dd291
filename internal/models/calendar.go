package models

// CalendarConfig is the per-resource configuration document. It lives in
// the key-value store under calendar:{id}, not in Postgres: booking links
// and CORS origins are read on every public request and change rarely.
type CalendarConfig struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Timezone       string        `json:"timezone"`
	BookingLinks   []BookingLink `json:"booking_links"`
	AllowedOrigins []string      `json:"allowed_origins"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

// Link finds an enabled booking link by slug.
func (c *CalendarConfig) Link(slug string) *BookingLink {
	for i := range c.BookingLinks {
		if c.BookingLinks[i].Slug == slug && c.BookingLinks[i].Enabled {
			return &c.BookingLinks[i]
		}
	}
	return nil
}

// BookingLink is a public entry point for booking against a calendar.
// Duration is the length requested per booking; the slot rules decide
// how raw availability is diced into offerable start times.
type BookingLink struct {
	ID                  string         `json:"id"`
	Slug                string         `json:"slug"`
	Name                string         `json:"name"`
	Description         string         `json:"description,omitempty"`
	Duration            int            `json:"duration"`
	MinNotice           int            `json:"min_notice"`  // hours
	MaxAdvance          int            `json:"max_advance"` // days
	Fields              []BookingField `json:"fields"`
	ConfirmationMessage string         `json:"confirmation_message"`
	Enabled             bool           `json:"enabled"`
	AutoAccept          bool           `json:"auto_accept"`
	HideTitle           bool           `json:"hide_title"`
	AdminEmail          string         `json:"admin_email,omitempty"`
}

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldMobile   FieldType = "mobile"
	FieldPhone    FieldType = "phone"
	FieldLongText FieldType = "long_text"
)

type BookingField struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	FieldType   FieldType `json:"field_type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// DefaultBookingLink mirrors the defaults a new link gets before an
// administrator edits it.
func DefaultBookingLink() BookingLink {
	return BookingLink{
		Name:       "Book a Meeting",
		Duration:   30,
		MinNotice:  24,
		MaxAdvance: 30,
		Fields: []BookingField{
			{ID: "name", Label: "Name", FieldType: FieldText, Required: true, Placeholder: "Your name"},
			{ID: "email", Label: "Email", FieldType: FieldEmail, Required: true, Placeholder: "your@email.com"},
		},
		ConfirmationMessage: "Your booking has been confirmed!",
		Enabled:             true,
		AutoAccept:          true,
	}
}
