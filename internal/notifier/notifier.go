// Package notifier defines the outbound notification contract. The
// engine reports state transitions; templating, channel selection and
// delivery retries belong to the consumer on the other side of the
// broker.
package notifier

import (
	"context"

	"github.com/calbook/booking-engine/internal/models"
)

type EventKind string

const (
	CustomerConfirmation EventKind = "customer_confirmation"
	CustomerDenial       EventKind = "customer_denial"
	AdminApprovalRequest EventKind = "admin_approval_request"
)

// ApprovalLinks carries the capability URLs embedded in an
// admin_approval_request. Empty for other event kinds.
type ApprovalLinks struct {
	ApproveURL string `json:"approve_url,omitempty"`
	DenyURL    string `json:"deny_url,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, kind EventKind, booking *models.Booking, link *models.BookingLink, calendar *models.CalendarConfig, links ApprovalLinks) error
}

// Event is the wire payload published for each notification.
type Event struct {
	Kind          EventKind          `json:"kind"`
	BookingID     string             `json:"booking_id"`
	CalendarID    string             `json:"calendar_id"`
	CalendarName  string             `json:"calendar_name"`
	LinkSlug      string             `json:"link_slug"`
	LinkName      string             `json:"link_name"`
	AdminEmail    string             `json:"admin_email,omitempty"`
	SlotDate      string             `json:"slot_date"`
	SlotTime      string             `json:"slot_time"`
	Duration      int                `json:"duration"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	Fields        models.FieldValues `json:"fields,omitempty"`
	ApproveURL    string             `json:"approve_url,omitempty"`
	DenyURL       string             `json:"deny_url,omitempty"`
}

// NewEvent flattens a transition into the wire payload.
func NewEvent(kind EventKind, booking *models.Booking, link *models.BookingLink, calendar *models.CalendarConfig, links ApprovalLinks) Event {
	ev := Event{
		Kind:          kind,
		BookingID:     booking.ID,
		CalendarID:    booking.CalendarID,
		SlotDate:      booking.SlotDate,
		SlotTime:      booking.SlotTime,
		Duration:      booking.Duration,
		CustomerName:  booking.Name,
		CustomerEmail: booking.Email,
		CustomerPhone: booking.Phone,
		Fields:        booking.FieldsData,
		ApproveURL:    links.ApproveURL,
		DenyURL:       links.DenyURL,
	}
	if calendar != nil {
		ev.CalendarName = calendar.Name
	}
	if link != nil {
		ev.LinkSlug = link.Slug
		ev.LinkName = link.Name
		ev.AdminEmail = link.AdminEmail
	}
	return ev
}
