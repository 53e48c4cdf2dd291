package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/calbook/booking-engine/internal/dateutil"
	"github.com/calbook/booking-engine/internal/models"
	"github.com/calbook/booking-engine/internal/notifier"
	"github.com/calbook/booking-engine/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotUnavailable = errors.New("this slot is no longer available")
	ErrInvalidToken    = errors.New("invalid confirmation token")
	ErrAlreadyDecided  = errors.New("booking has already been decided")
)

// ValidationError carries a user-facing message for a rejected
// submission field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SubmitRequest is a parsed public submission. Fields holds the raw
// answers for the link's declared custom fields, keyed by field id.
type SubmitRequest struct {
	Date   string
	Time   string
	Name   string
	Email  string
	Phone  string
	Notes  string
	Fields map[string]string
}

type BookingService interface {
	Submit(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req SubmitRequest) (*models.Booking, error)
	Approve(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error)
	Deny(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error)
	AdminCancel(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, calendarID, startDate, endDate string) ([]models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	ruleRepo    repository.RuleRepository
	notif       notifier.Notifier
	baseURL     string
	now         func() time.Time
}

// NewBookingService wires the consistency gate and state machine. notif
// may be nil (notifications disabled); now may be nil for the wall clock.
func NewBookingService(bookingRepo repository.BookingRepository, ruleRepo repository.RuleRepository, notif notifier.Notifier, baseURL string, now func() time.Time) BookingService {
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		bookingRepo: bookingRepo,
		ruleRepo:    ruleRepo,
		notif:       notif,
		baseURL:     strings.TrimRight(baseURL, "/"),
		now:         now,
	}
}

// Submit re-checks capacity and creates the booking in one transaction.
// The matching rule rows are locked first, so two submissions racing
// for the last seat serialize: the loser sees the winner's row in its
// count and is rejected.
func (s *bookingService) Submit(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, req SubmitRequest) (*models.Booking, error) {
	if req.Date == "" {
		return nil, &ValidationError{"Please select a date"}
	}
	if req.Time == "" {
		return nil, &ValidationError{"Please select a time"}
	}
	if _, err := dateutil.ParseDate(req.Date); err != nil {
		return nil, &ValidationError{"Please select a valid date"}
	}
	dow, err := dateutil.DayOfWeek(req.Date)
	if err != nil {
		return nil, &ValidationError{"Please select a valid date"}
	}

	var booking *models.Booking
	err = s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		rules, err := s.ruleRepo.ListByCalendarForUpdate(ctx, tx, calendar.ID)
		if err != nil {
			return fmt.Errorf("lock rules: %w", err)
		}

		// Multiple overlapping rules may cover the cell; the most
		// generous capacity wins.
		maxBookings := 1
		for i := range rules {
			if rules[i].AppliesTo(req.Date, dow) && rules[i].MaxBookings > maxBookings {
				maxBookings = rules[i].MaxBookings
			}
		}

		count, err := s.bookingRepo.CountActiveForSlot(ctx, tx, calendar.ID, req.Date, req.Time)
		if err != nil {
			return fmt.Errorf("count bookings: %w", err)
		}
		if count >= int64(maxBookings) {
			return ErrSlotUnavailable
		}

		fields, err := validateSubmission(link, &req)
		if err != nil {
			return err
		}

		status := models.StatusPending
		if link.AutoAccept {
			status = models.StatusConfirmed
		}
		now := s.now()
		booking = &models.Booking{
			ID:                uuid.NewString(),
			CalendarID:        calendar.ID,
			BookingLinkID:     link.ID,
			SlotDate:          req.Date,
			SlotTime:          req.Time,
			Duration:          link.Duration,
			Name:              req.Name,
			Email:             req.Email,
			Phone:             req.Phone,
			Notes:             req.Notes,
			FieldsData:        fields,
			Status:            status,
			ConfirmationToken: newConfirmationToken(),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return s.bookingRepo.Create(ctx, tx, booking)
	})
	if err != nil {
		return nil, err
	}

	if link.AutoAccept {
		s.notify(ctx, notifier.CustomerConfirmation, booking, link, calendar, notifier.ApprovalLinks{})
	} else {
		s.notify(ctx, notifier.AdminApprovalRequest, booking, link, calendar, s.approvalLinks(calendar, link, booking))
	}
	return booking, nil
}

func (s *bookingService) Approve(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error) {
	booking, err := s.decide(ctx, bookingID, token, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notifier.CustomerConfirmation, booking, link, calendar, notifier.ApprovalLinks{})
	return booking, nil
}

func (s *bookingService) Deny(ctx context.Context, calendar *models.CalendarConfig, link *models.BookingLink, bookingID, token string) (*models.Booking, error) {
	booking, err := s.decide(ctx, bookingID, token, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notifier.CustomerDenial, booking, link, calendar, notifier.ApprovalLinks{})
	return booking, nil
}

// decide performs one token-authorized transition out of Pending. The
// token is matched exactly and never cleared. The pending check rides
// inside the UPDATE's WHERE clause, so of two concurrent decisions
// exactly one changes a row and the other sees zero rows affected;
// that is the at-most-once semantic the emailed links rely on.
func (s *bookingService) decide(ctx context.Context, bookingID, token string, target models.BookingStatus) (*models.Booking, error) {
	var booking *models.Booking
	err := s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		found, err := s.bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if token == "" || found.ConfirmationToken == "" || token != found.ConfirmationToken {
			return ErrInvalidToken
		}
		if found.Status != models.StatusPending {
			return ErrAlreadyDecided
		}
		rows, err := s.bookingRepo.DecideFromPending(ctx, tx, bookingID, target)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Raced with another decision between the read and the update.
			return ErrAlreadyDecided
		}
		found.Status = target
		found.UpdatedAt = s.now()
		booking = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// AdminCancel is the privileged cancellation path: no token, no status
// guard. The surrounding admin surface is responsible for
// authenticating the caller.
func (s *bookingService) AdminCancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking *models.Booking
	err := s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		found, err := s.bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, bookingID, models.StatusCancelled); err != nil {
			return err
		}
		found.Status = models.StatusCancelled
		found.UpdatedAt = s.now()
		booking = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, calendarID, startDate, endDate string) ([]models.Booking, error) {
	return s.bookingRepo.FindInRange(ctx, calendarID, startDate, endDate)
}

// notify is fire-and-forget: a lost notification never rolls back a
// booking transition.
func (s *bookingService) notify(ctx context.Context, kind notifier.EventKind, booking *models.Booking, link *models.BookingLink, calendar *models.CalendarConfig, links notifier.ApprovalLinks) {
	if s.notif == nil {
		return
	}
	if err := s.notif.Notify(ctx, kind, booking, link, calendar, links); err != nil {
		log.Printf("[Notifier] %s for booking %s failed: %v", kind, booking.ID, err)
	}
}

func (s *bookingService) approvalLinks(calendar *models.CalendarConfig, link *models.BookingLink, booking *models.Booking) notifier.ApprovalLinks {
	token := url.QueryEscape(booking.ConfirmationToken)
	return notifier.ApprovalLinks{
		ApproveURL: fmt.Sprintf("%s/book/%s/%s/approve/%s?token=%s", s.baseURL, calendar.ID, link.Slug, booking.ID, token),
		DenyURL:    fmt.Sprintf("%s/book/%s/%s/deny/%s?token=%s", s.baseURL, calendar.ID, link.Slug, booking.ID, token),
	}
}

// validateSubmission enforces required fields and formats, then maps
// the declared custom-field answers into the typed storage form. Only
// fields the link declares are kept.
func validateSubmission(link *models.BookingLink, req *SubmitRequest) (models.FieldValues, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ValidationError{"Name is required"}
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, &ValidationError{"Email is required"}
	}
	if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
		return nil, &ValidationError{"Please enter a valid email address"}
	}
	if req.Phone != "" {
		digits := normalizePhone(req.Phone)
		if len(digits) < 7 || len(digits) > 15 {
			return nil, &ValidationError{"Please enter a valid phone number"}
		}
		req.Phone = digits
	}

	var fields models.FieldValues
	for _, f := range link.Fields {
		switch f.ID {
		case "name", "email", "phone", "notes":
			// Identity fields live on the booking row itself and are
			// validated above.
			continue
		}
		value := req.Fields[f.ID]
		if f.Required && strings.TrimSpace(value) == "" {
			return nil, &ValidationError{f.Label + " is required"}
		}
		if value == "" {
			continue
		}
		if fields == nil {
			fields = models.FieldValues{}
		}
		fields[f.ID] = models.StringValue(value)
	}
	return fields, nil
}

// normalizePhone keeps only digits; the 7-15 digit length window is the
// accepted range for submitted numbers.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

const tokenChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newConfirmationToken returns a 32-character opaque token from a
// cryptographic source.
func newConfirmationToken() string {
	var b strings.Builder
	charCount := big.NewInt(int64(len(tokenChars)))
	for i := 0; i < 32; i++ {
		n, err := rand.Int(rand.Reader, charCount)
		if err != nil {
			// crypto/rand only fails when the platform source is
			// broken; there is no useful fallback for a bearer token.
			panic(err)
		}
		b.WriteByte(tokenChars[n.Int64()])
	}
	return b.String()
}
