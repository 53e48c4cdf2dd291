package dto

import (
	"time"

	"github.com/calbook/booking-engine/internal/models"
	"github.com/calbook/booking-engine/internal/service"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// BookingResponse is the public view of a booking. The confirmation
// token is deliberately absent; it only travels inside approval links.
type BookingResponse struct {
	ID         string             `json:"id"`
	CalendarID string             `json:"calendar_id"`
	LinkID     string             `json:"booking_link_id"`
	Date       string             `json:"date"`
	Time       string             `json:"time"`
	Duration   int                `json:"duration"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	Fields     models.FieldValues `json:"fields,omitempty"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		CalendarID: b.CalendarID,
		LinkID:     b.BookingLinkID,
		Date:       b.SlotDate,
		Time:       b.SlotTime,
		Duration:   b.Duration,
		Name:       b.Name,
		Email:      b.Email,
		Phone:      b.Phone,
		Notes:      b.Notes,
		Fields:     b.FieldsData,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func ToBookingResponses(bs []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for i := range bs {
		out = append(out, ToBookingResponse(&bs[i]))
	}
	return out
}

// SubmitResponse acknowledges a submission. Pending tells the embedding
// page whether to show the awaiting-approval copy instead of the link's
// confirmation message.
type SubmitResponse struct {
	Booking BookingResponse `json:"booking"`
	Message string          `json:"message"`
	Pending bool            `json:"pending"`
}

// AvailabilityResponse is one page of the public availability view.
// CSS and CSSURL echo the embedding query parameters so a rendering
// layer can style the widget.
type AvailabilityResponse struct {
	CalendarID  string                `json:"calendar_id"`
	Slug        string                `json:"slug"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Duration    int                   `json:"duration"`
	HideTitle   bool                  `json:"hide_title"`
	Fields      []models.BookingField `json:"fields"`
	Window      service.Window        `json:"window"`
	Slots       []service.Slot        `json:"slots"`
	CSS         string                `json:"css,omitempty"`
	CSSURL      string                `json:"css_url,omitempty"`
}
