package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/calbook/booking-engine/internal/dto"
	"github.com/calbook/booking-engine/internal/models"
	"github.com/calbook/booking-engine/internal/repository"
	"github.com/calbook/booking-engine/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Mock BookingService ---

type mockBookingService struct {
	submitFn func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req service.SubmitRequest) (*models.Booking, error)
	decideFn func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error)
	cancelFn func(ctx context.Context, bookingID string) (*models.Booking, error)
	listFn   func(ctx context.Context, calendarID, startDate, endDate string) ([]models.Booking, error)
}

func (m *mockBookingService) Submit(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req service.SubmitRequest) (*models.Booking, error) {
	return m.submitFn(ctx, calendar, link, req)
}
func (m *mockBookingService) Approve(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error) {
	return m.decideFn(ctx, calendar, link, bookingID, token)
}
func (m *mockBookingService) Deny(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error) {
	return m.decideFn(ctx, calendar, link, bookingID, token)
}
func (m *mockBookingService) AdminCancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	return m.cancelFn(ctx, bookingID)
}
func (m *mockBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return nil, service.ErrBookingNotFound
}
func (m *mockBookingService) ListBookings(ctx context.Context, calendarID, startDate, endDate string) ([]models.Booking, error) {
	if m.listFn != nil {
		return m.listFn(ctx, calendarID, startDate, endDate)
	}
	return nil, nil
}

// --- Mock CalendarRepository ---

type mockCalendarRepo struct {
	calendar *models.CalendarConfig
}

func (m *mockCalendarRepo) Get(ctx context.Context, id string) (*models.CalendarConfig, error) {
	if m.calendar != nil && m.calendar.ID == id {
		return m.calendar, nil
	}
	return nil, repository.ErrCalendarNotFound
}
func (m *mockCalendarRepo) Save(ctx context.Context, calendar *models.CalendarConfig) error {
	m.calendar = calendar
	return nil
}
func (m *mockCalendarRepo) Delete(ctx context.Context, id string) error { return nil }
func (m *mockCalendarRepo) List(ctx context.Context) ([]models.CalendarConfig, error) {
	if m.calendar == nil {
		return nil, nil
	}
	return []models.CalendarConfig{*m.calendar}, nil
}

// --- Mock repositories backing the availability service ---

type mockRuleRepo struct {
	rules []models.TimeSlotRule
	saved *models.TimeSlotRule
}

func (m *mockRuleRepo) ListByCalendar(ctx context.Context, calendarID string) ([]models.TimeSlotRule, error) {
	return m.rules, nil
}
func (m *mockRuleRepo) ListByCalendarForUpdate(ctx context.Context, tx *gorm.DB, calendarID string) ([]models.TimeSlotRule, error) {
	return m.rules, nil
}
func (m *mockRuleRepo) FindByID(ctx context.Context, id string) (*models.TimeSlotRule, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockRuleRepo) Save(ctx context.Context, rule *models.TimeSlotRule) error {
	m.saved = rule
	return nil
}
func (m *mockRuleRepo) Delete(ctx context.Context, id string) error               { return nil }

type mockBookingRepo struct{}

func (m *mockBookingRepo) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return nil
}
func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockBookingRepo) FindInRange(ctx context.Context, calendarID, startDate, endDate string) ([]models.Booking, error) {
	return nil, nil
}
func (m *mockBookingRepo) CountActiveForSlot(ctx context.Context, tx *gorm.DB, calendarID, date, tm string) (int64, error) {
	return 0, nil
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) error {
	return nil
}
func (m *mockBookingRepo) DecideFromPending(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) (int64, error) {
	return 1, nil
}
func (m *mockBookingRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// --- Fixtures ---

func fixedClock() time.Time {
	return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func testCalendar() *models.CalendarConfig {
	link := models.DefaultBookingLink()
	link.ID = "link-1"
	link.Slug = "intro-call"
	return &models.CalendarConfig{
		ID:           "cal-1",
		Name:         "Test Calendar",
		Timezone:     "UTC",
		BookingLinks: []models.BookingLink{link},
	}
}

func newHandler(svc service.BookingService, calendar *models.CalendarConfig) *BookingHandler {
	rules := &mockRuleRepo{rules: []models.TimeSlotRule{{
		ID:           "rule-1",
		CalendarID:   "cal-1",
		DayOfWeek:    intPtr(1),
		StartTime:    "09:00",
		EndTime:      "12:00",
		SlotDuration: 30,
		MaxBookings:  1,
	}}}
	availability := service.NewAvailabilityService(rules, &mockBookingRepo{}, fixedClock)
	return NewBookingHandler(availability, svc, &mockCalendarRepo{calendar: calendar})
}

func newContext(e *echo.Echo, req *http.Request, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params)/2)
	values := make([]string, 0, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

// --- GetAvailability ---

func TestGetAvailability_Handler_Success(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/book/cal-1/intro-call?date=2026-03-09&days=1", nil)
	c, rec := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(nil, testCalendar())
	require.NoError(t, h.GetAvailability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cal-1", resp.CalendarID)
	assert.Equal(t, "intro-call", resp.Slug)
	assert.Equal(t, "2026-03-09", resp.Window.ViewStart)
	assert.Len(t, resp.Slots, 6)
	assert.False(t, resp.HideTitle)
}

func TestGetAvailability_Handler_NotitleOverride(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/book/cal-1/intro-call?notitle=1", nil)
	c, rec := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(nil, testCalendar())
	require.NoError(t, h.GetAvailability(c))

	var resp dto.AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HideTitle)
}

func TestGetAvailability_Handler_CalendarNotFound(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/book/missing/intro-call", nil)
	c, _ := newContext(e, req, "calendar", "missing", "slug", "intro-call")

	h := newHandler(nil, testCalendar())
	err := h.GetAvailability(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetAvailability_Handler_UnknownSlug(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/book/cal-1/nope", nil)
	c, _ := newContext(e, req, "calendar", "cal-1", "slug", "nope")

	h := newHandler(nil, testCalendar())
	err := h.GetAvailability(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetAvailability_Handler_DisabledLink(t *testing.T) {
	calendar := testCalendar()
	calendar.BookingLinks[0].Enabled = false

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/book/cal-1/intro-call", nil)
	c, _ := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(nil, calendar)
	err := h.GetAvailability(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetAvailability_Handler_InvalidDate(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/book/cal-1/intro-call?date=tomorrow", nil)
	c, _ := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(nil, testCalendar())
	err := h.GetAvailability(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

// --- Submit ---

func submitForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/book/cal-1/intro-call/submit", strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func TestSubmit_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		submitFn: func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req service.SubmitRequest) (*models.Booking, error) {
			assert.Equal(t, "2026-03-09", req.Date)
			assert.Equal(t, "09:00", req.Time)
			assert.Equal(t, "Ada Lovelace", req.Name)
			return &models.Booking{
				ID:         "b-1",
				CalendarID: calendar.ID,
				SlotDate:   req.Date,
				SlotTime:   req.Time,
				Status:     models.StatusConfirmed,
			}, nil
		},
	}

	e := echo.New()
	req := submitForm(url.Values{
		"date":  {"2026-03-09"},
		"time":  {"09:00"},
		"name":  {"Ada Lovelace"},
		"email": {"ada@example.com"},
	})
	c, rec := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(svc, testCalendar())
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b-1", resp.Booking.ID)
	assert.False(t, resp.Pending)
	assert.Equal(t, "Your booking has been confirmed!", resp.Message)
}

func TestSubmit_Handler_PendingMessage(t *testing.T) {
	svc := &mockBookingService{
		submitFn: func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req service.SubmitRequest) (*models.Booking, error) {
			return &models.Booking{ID: "b-2", Status: models.StatusPending}, nil
		},
	}

	e := echo.New()
	req := submitForm(url.Values{"date": {"2026-03-09"}, "time": {"09:00"}, "name": {"Ada"}, "email": {"ada@example.com"}})
	c, rec := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(svc, testCalendar())
	require.NoError(t, h.Submit(c))

	var resp dto.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Pending)
	assert.NotEqual(t, "Your booking has been confirmed!", resp.Message)
}

func TestSubmit_Handler_ValidationError(t *testing.T) {
	svc := &mockBookingService{
		submitFn: func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req service.SubmitRequest) (*models.Booking, error) {
			return nil, &service.ValidationError{Message: "Name is required"}
		},
	}

	e := echo.New()
	req := submitForm(url.Values{"date": {"2026-03-09"}, "time": {"09:00"}})
	c, _ := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(svc, testCalendar())
	err := h.Submit(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "Name is required", he.Message)
}

func TestSubmit_Handler_SlotUnavailable(t *testing.T) {
	svc := &mockBookingService{
		submitFn: func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req service.SubmitRequest) (*models.Booking, error) {
			return nil, service.ErrSlotUnavailable
		},
	}

	e := echo.New()
	req := submitForm(url.Values{"date": {"2026-03-09"}, "time": {"09:00"}, "name": {"Ada"}, "email": {"ada@example.com"}})
	c, _ := newContext(e, req, "calendar", "cal-1", "slug", "intro-call")

	h := newHandler(svc, testCalendar())
	err := h.Submit(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

// --- Approve / Deny ---

func decideRequest(action string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/book/cal-1/intro-call/"+action+"/b-1?token=tok-1", nil)
}

func TestApprove_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		decideFn: func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error) {
			assert.Equal(t, "b-1", bookingID)
			assert.Equal(t, "tok-1", token)
			return &models.Booking{ID: bookingID, Status: models.StatusConfirmed}, nil
		},
	}

	e := echo.New()
	c, rec := newContext(e, decideRequest("approve"), "calendar", "cal-1", "slug", "intro-call", "booking_id", "b-1")

	h := newHandler(svc, testCalendar())
	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(models.StatusConfirmed), resp.Status)
}

func TestApprove_Handler_BadTokenLooksLikeMissingBooking(t *testing.T) {
	for _, svcErr := range []error{service.ErrInvalidToken, service.ErrBookingNotFound} {
		svc := &mockBookingService{
			decideFn: func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error) {
				return nil, svcErr
			},
		}

		e := echo.New()
		c, _ := newContext(e, decideRequest("approve"), "calendar", "cal-1", "slug", "intro-call", "booking_id", "b-1")

		h := newHandler(svc, testCalendar())
		err := h.Approve(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
		assert.Equal(t, "booking not found", he.Message)
	}
}

func TestDeny_Handler_AlreadyDecided(t *testing.T) {
	svc := &mockBookingService{
		decideFn: func(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error) {
			return nil, service.ErrAlreadyDecided
		},
	}

	e := echo.New()
	c, _ := newContext(e, decideRequest("deny"), "calendar", "cal-1", "slug", "intro-call", "booking_id", "b-1")

	h := newHandler(svc, testCalendar())
	err := h.Deny(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}
