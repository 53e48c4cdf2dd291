package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/calbook/booking-engine/internal/dateutil"
	"github.com/calbook/booking-engine/internal/dto"
	"github.com/calbook/booking-engine/internal/middleware"
	"github.com/calbook/booking-engine/internal/models"
	"github.com/calbook/booking-engine/internal/repository"
	"github.com/calbook/booking-engine/internal/service"
	"github.com/labstack/echo/v4"
)

// BookingHandler serves the public booking surface: availability pages,
// form submissions and the tokenized approve/deny links.
type BookingHandler struct {
	availability *service.AvailabilityService
	bookings     service.BookingService
	calendars    repository.CalendarRepository
}

func NewBookingHandler(availability *service.AvailabilityService, bookings service.BookingService, calendars repository.CalendarRepository) *BookingHandler {
	return &BookingHandler{availability: availability, bookings: bookings, calendars: calendars}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	book := e.Group("/book/:calendar/:slug", middleware.CalendarCORS(h.calendars))
	book.GET("", h.GetAvailability)
	book.POST("/submit", h.Submit)
	book.POST("/approve/:booking_id", h.Approve)
	book.POST("/deny/:booking_id", h.Deny)
}

// loadLink resolves the calendar and its enabled link for a public
// route, or fails with 404.
func (h *BookingHandler) loadLink(c echo.Context) (*models.CalendarConfig, *models.BookingLink, error) {
	calendar, err := h.calendars.Get(c.Request().Context(), c.Param("calendar"))
	if err != nil {
		if errors.Is(err, repository.ErrCalendarNotFound) {
			return nil, nil, echo.NewHTTPError(http.StatusNotFound, "calendar not found")
		}
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	link := calendar.Link(c.Param("slug"))
	if link == nil {
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "booking link not found")
	}
	return calendar, link, nil
}

func (h *BookingHandler) GetAvailability(c echo.Context) error {
	calendar, link, err := h.loadLink(c)
	if err != nil {
		return err
	}

	days := 1
	if d := c.QueryParam("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid days")
		}
		days = parsed
	}

	requested := c.QueryParam("date")
	if requested != "" {
		if _, err := dateutil.ParseDate(requested); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
		}
	}

	window, err := service.ComputeWindow(link, h.availability.Today(), requested, days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	slots, err := h.availability.AvailableSlots(c.Request().Context(), calendar.ID, link, window.ViewStart, window.ViewEnd)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	hideTitle := link.HideTitle
	if nt := c.QueryParam("notitle"); nt != "" {
		hideTitle = nt == "1" || nt == "true"
	}

	return c.JSON(http.StatusOK, dto.AvailabilityResponse{
		CalendarID:  calendar.ID,
		Slug:        link.Slug,
		Name:        link.Name,
		Description: link.Description,
		Duration:    link.Duration,
		HideTitle:   hideTitle,
		Fields:      link.Fields,
		Window:      window,
		Slots:       slots,
		CSS:         c.QueryParam("css"),
		CSSURL:      c.QueryParam("css_url"),
	})
}

func (h *BookingHandler) Submit(c echo.Context) error {
	calendar, link, err := h.loadLink(c)
	if err != nil {
		return err
	}

	req := service.SubmitRequest{
		Date:  c.FormValue("date"),
		Time:  c.FormValue("time"),
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Phone: c.FormValue("phone"),
		Notes: c.FormValue("notes"),
	}
	if len(link.Fields) > 0 {
		req.Fields = make(map[string]string, len(link.Fields))
		for _, f := range link.Fields {
			req.Fields[f.ID] = c.FormValue(f.ID)
		}
	}

	booking, err := h.bookings.Submit(c.Request().Context(), calendar, link, req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
		case errors.Is(err, service.ErrSlotUnavailable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	message := link.ConfirmationMessage
	pending := booking.Status == models.StatusPending
	if pending {
		message = "Your booking request has been received and is awaiting approval."
	}
	return c.JSON(http.StatusCreated, dto.SubmitResponse{
		Booking: dto.ToBookingResponse(booking),
		Message: message,
		Pending: pending,
	})
}

func (h *BookingHandler) Approve(c echo.Context) error {
	return h.decide(c, h.bookings.Approve)
}

func (h *BookingHandler) Deny(c echo.Context) error {
	return h.decide(c, h.bookings.Deny)
}

type decideFunc func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error)

// decide handles both emailed decision links. A missing booking and a
// bad token answer identically so the endpoint cannot be used to probe
// which booking ids exist.
func (h *BookingHandler) decide(c echo.Context, fn decideFunc) error {
	calendar, link, err := h.loadLink(c)
	if err != nil {
		return err
	}

	booking, err := fn(c.Request().Context(), calendar, link, c.Param("booking_id"), c.QueryParam("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound), errors.Is(err, service.ErrInvalidToken):
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		case errors.Is(err, service.ErrAlreadyDecided):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
