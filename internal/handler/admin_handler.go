package handler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/calbook/booking-engine/internal/dateutil"
	"github.com/calbook/booking-engine/internal/dto"
	"github.com/calbook/booking-engine/internal/models"
	"github.com/calbook/booking-engine/internal/repository"
	"github.com/calbook/booking-engine/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AdminHandler serves the management surface: calendar documents and
// their links, slot rules, and booking oversight. Authentication is
// expected to happen in front of this service.
type AdminHandler struct {
	calendars repository.CalendarRepository
	rules     repository.RuleRepository
	bookings  service.BookingService
	now       func() time.Time
}

func NewAdminHandler(calendars repository.CalendarRepository, rules repository.RuleRepository, bookings service.BookingService, now func() time.Time) *AdminHandler {
	if now == nil {
		now = time.Now
	}
	return &AdminHandler{calendars: calendars, rules: rules, bookings: bookings, now: now}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin")

	admin.POST("/calendars", h.CreateCalendar)
	admin.GET("/calendars", h.ListCalendars)
	admin.GET("/calendars/:id", h.GetCalendar)
	admin.PUT("/calendars/:id", h.UpdateCalendar)
	admin.DELETE("/calendars/:id", h.DeleteCalendar)
	admin.POST("/calendars/:id/links", h.CreateLink)

	admin.POST("/calendars/:id/rules", h.CreateRule)
	admin.GET("/calendars/:id/rules", h.ListRules)
	admin.PUT("/rules/:id", h.UpdateRule)
	admin.DELETE("/rules/:id", h.DeleteRule)

	admin.GET("/calendars/:id/bookings", h.ListBookings)
	admin.GET("/bookings/:id", h.GetBooking)
	admin.POST("/bookings/:id/cancel", h.CancelBooking)
}

func (h *AdminHandler) CreateCalendar(c echo.Context) error {
	var req dto.CreateCalendarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	now := h.now().UTC().Format(time.RFC3339)
	link := models.DefaultBookingLink()
	link.ID = uuid.NewString()
	link.Slug = generateSlug()

	calendar := &models.CalendarConfig{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Description:    req.Description,
		Timezone:       timezone,
		BookingLinks:   []models.BookingLink{link},
		AllowedOrigins: req.AllowedOrigins,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.calendars.Save(c.Request().Context(), calendar); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, calendar)
}

func (h *AdminHandler) ListCalendars(c echo.Context) error {
	calendars, err := h.calendars.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, calendars)
}

func (h *AdminHandler) GetCalendar(c echo.Context) error {
	calendar, err := h.loadCalendar(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, calendar)
}

func (h *AdminHandler) UpdateCalendar(c echo.Context) error {
	calendar, err := h.loadCalendar(c)
	if err != nil {
		return err
	}

	var req dto.UpdateCalendarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Name != nil {
		calendar.Name = *req.Name
	}
	if req.Description != nil {
		calendar.Description = *req.Description
	}
	if req.Timezone != nil {
		calendar.Timezone = *req.Timezone
	}
	if req.AllowedOrigins != nil {
		calendar.AllowedOrigins = req.AllowedOrigins
	}
	calendar.UpdatedAt = h.now().UTC().Format(time.RFC3339)

	if err := h.calendars.Save(c.Request().Context(), calendar); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, calendar)
}

func (h *AdminHandler) DeleteCalendar(c echo.Context) error {
	calendar, err := h.loadCalendar(c)
	if err != nil {
		return err
	}
	if err := h.calendars.Delete(c.Request().Context(), calendar.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) CreateLink(c echo.Context) error {
	calendar, err := h.loadCalendar(c)
	if err != nil {
		return err
	}

	var req dto.CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	link := models.DefaultBookingLink()
	link.ID = uuid.NewString()
	link.Slug = req.Slug
	if link.Slug == "" {
		link.Slug = generateSlug()
	}
	for i := range calendar.BookingLinks {
		if calendar.BookingLinks[i].Slug == link.Slug {
			return echo.NewHTTPError(http.StatusConflict, "slug already in use")
		}
	}
	if req.Name != "" {
		link.Name = req.Name
	}
	if req.Description != "" {
		link.Description = req.Description
	}
	if req.Duration > 0 {
		link.Duration = req.Duration
	}
	if req.MinNotice > 0 {
		link.MinNotice = req.MinNotice
	}
	if req.MaxAdvance > 0 {
		link.MaxAdvance = req.MaxAdvance
	}
	if req.ConfirmationMessage != "" {
		link.ConfirmationMessage = req.ConfirmationMessage
	}
	if req.AutoAccept != nil {
		link.AutoAccept = *req.AutoAccept
	}
	link.HideTitle = req.HideTitle
	link.AdminEmail = req.AdminEmail

	calendar.BookingLinks = append(calendar.BookingLinks, link)
	calendar.UpdatedAt = h.now().UTC().Format(time.RFC3339)

	if err := h.calendars.Save(c.Request().Context(), calendar); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, link)
}

func (h *AdminHandler) CreateRule(c echo.Context) error {
	calendar, err := h.loadCalendar(c)
	if err != nil {
		return err
	}

	var req dto.RuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := validateRuleTimes(&req); err != nil {
		return err
	}

	rule := ruleFromRequest(&req)
	rule.ID = uuid.NewString()
	rule.CalendarID = calendar.ID

	if err := h.rules.Save(c.Request().Context(), rule); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rule)
}

func (h *AdminHandler) ListRules(c echo.Context) error {
	calendar, err := h.loadCalendar(c)
	if err != nil {
		return err
	}
	rules, err := h.rules.ListByCalendar(c.Request().Context(), calendar.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rules)
}

func (h *AdminHandler) UpdateRule(c echo.Context) error {
	existing, err := h.rules.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "rule not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req dto.RuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := validateRuleTimes(&req); err != nil {
		return err
	}

	rule := ruleFromRequest(&req)
	rule.ID = existing.ID
	rule.CalendarID = existing.CalendarID

	if err := h.rules.Save(c.Request().Context(), rule); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rule)
}

func (h *AdminHandler) DeleteRule(c echo.Context) error {
	if _, err := h.rules.FindByID(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "rule not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.rules.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListBookings(c echo.Context) error {
	calendar, err := h.loadCalendar(c)
	if err != nil {
		return err
	}

	today := dateutil.FormatDate(h.now())
	start := c.QueryParam("start")
	if start == "" {
		start = today
	} else if _, err := dateutil.ParseDate(start); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start date")
	}
	end := c.QueryParam("end")
	if end == "" {
		end, err = dateutil.AddDays(start, 30)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start date")
		}
	} else if _, err := dateutil.ParseDate(end); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end date")
	}

	bookings, err := h.bookings.ListBookings(c.Request().Context(), calendar.ID, start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *AdminHandler) GetBooking(c echo.Context) error {
	booking, err := h.bookings.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *AdminHandler) CancelBooking(c echo.Context) error {
	booking, err := h.bookings.AdminCancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *AdminHandler) loadCalendar(c echo.Context) (*models.CalendarConfig, error) {
	calendar, err := h.calendars.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCalendarNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "calendar not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return calendar, nil
}

func validateRuleTimes(req *dto.RuleRequest) error {
	if dateutil.TimeToMinutes(req.EndTime) <= dateutil.TimeToMinutes(req.StartTime) {
		return echo.NewHTTPError(http.StatusBadRequest, "end_time must be after start_time")
	}
	return nil
}

func ruleFromRequest(req *dto.RuleRequest) *models.TimeSlotRule {
	maxBookings := req.MaxBookings
	if maxBookings < 1 {
		maxBookings = 1
	}
	return &models.TimeSlotRule{
		DayOfWeek:    req.DayOfWeek,
		SpecificDate: req.SpecificDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		SlotDuration: req.SlotDuration,
		BufferTime:   req.BufferTime,
		MaxBookings:  maxBookings,
	}
}

var (
	slugAdjectives = []string{"sunny", "quiet", "brisk", "calm", "bright", "swift", "gentle", "bold", "merry", "clear"}
	slugNouns      = []string{"meeting", "session", "chat", "call", "visit", "slot", "booking", "appointment"}
)

// generateSlug builds a memorable public slug like sunny-meeting-347.
// Collisions are handled by the caller's uniqueness check.
func generateSlug() string {
	adj := slugAdjectives[rand.IntN(len(slugAdjectives))]
	noun := slugNouns[rand.IntN(len(slugNouns))]
	return fmt.Sprintf("%s-%s-%d", adj, noun, 100+rand.IntN(900))
}
