package service

import (
	"context"
	"fmt"
	"time"

	"github.com/calbook/booking-engine/internal/dateutil"
	"github.com/calbook/booking-engine/internal/models"
	"github.com/calbook/booking-engine/internal/repository"
)

// Slot is one bookable (date, time) cell offered to the public.
type Slot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// Window is the visible date range for one availability page, clamped
// inside the link's booking horizon.
type Window struct {
	Earliest  string `json:"earliest"`
	Latest    string `json:"latest"`
	ViewStart string `json:"view_start"`
	ViewEnd   string `json:"view_end"`
	Days      int    `json:"days"`
	HasPrev   bool   `json:"has_prev"`
	HasNext   bool   `json:"has_next"`
	PrevDate  string `json:"prev_date,omitempty"`
	NextDate  string `json:"next_date,omitempty"`
}

type AvailabilityService struct {
	rules    repository.RuleRepository
	bookings repository.BookingRepository
	now      func() time.Time
}

// NewAvailabilityService builds the generator. now may be nil, in which
// case the wall clock is used; tests inject a fixed clock.
func NewAvailabilityService(rules repository.RuleRepository, bookings repository.BookingRepository, now func() time.Time) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{rules: rules, bookings: bookings, now: now}
}

// Today returns the current date in the engine's wire format.
func (s *AvailabilityService) Today() string {
	return dateutil.FormatDate(s.now())
}

// ComputeWindow resolves the visible page for a requested date. The
// earliest bookable day honors the link's minimum notice (at least one
// day out), the latest its maximum advance; the requested date and the
// page end are clamped into that horizon. YYYY-MM-DD strings order
// lexicographically, so plain string comparison is date comparison.
func ComputeWindow(link *models.BookingLink, today, requested string, days int) (Window, error) {
	if days < 1 {
		days = 1
	} else if days > 30 {
		days = 30
	}

	noticeDays := link.MinNotice / 24
	if noticeDays < 1 {
		noticeDays = 1
	}
	earliest, err := dateutil.AddDays(today, noticeDays)
	if err != nil {
		return Window{}, fmt.Errorf("compute window: %w", err)
	}
	latest, err := dateutil.AddDays(today, link.MaxAdvance)
	if err != nil {
		return Window{}, fmt.Errorf("compute window: %w", err)
	}

	viewStart := requested
	if viewStart == "" || viewStart < earliest {
		viewStart = earliest
	} else if viewStart > latest {
		viewStart = latest
	}

	viewEnd, err := dateutil.AddDays(viewStart, days-1)
	if err != nil {
		return Window{}, fmt.Errorf("compute window: %w", err)
	}
	if viewEnd > latest {
		viewEnd = latest
	}

	prevDate, err := dateutil.AddDays(viewStart, -days)
	if err != nil {
		return Window{}, fmt.Errorf("compute window: %w", err)
	}
	nextDate, err := dateutil.AddDays(viewStart, days)
	if err != nil {
		return Window{}, fmt.Errorf("compute window: %w", err)
	}

	w := Window{
		Earliest:  earliest,
		Latest:    latest,
		ViewStart: viewStart,
		ViewEnd:   viewEnd,
		Days:      days,
	}
	if prevDate >= earliest || viewStart > earliest {
		w.HasPrev = true
		if prevDate < earliest {
			prevDate = earliest
		}
		w.PrevDate = prevDate
	}
	if nextDate <= latest {
		w.HasNext = true
		w.NextDate = nextDate
	}
	return w, nil
}

// AvailableSlots generates the ordered cells between start and end
// inclusive. A weekday rule and a specific-date rule matching the same
// day both contribute cells. A cell is available while the count of
// pending plus confirmed bookings at its exact (date, time) stays under
// the rule's capacity. Read-only; the authoritative capacity check
// happens again at submission.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, calendarID string, link *models.BookingLink, start, end string) ([]Slot, error) {
	rules, err := s.rules.ListByCalendar(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	existing, err := s.bookings.FindInRange(ctx, calendarID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	booked := make(map[string]int, len(existing))
	for _, b := range existing {
		booked[b.SlotDate+" "+b.SlotTime]++
	}

	var slots []Slot
	for date := start; date <= end; {
		dow, err := dateutil.DayOfWeek(date)
		if err != nil {
			return nil, err
		}

		for i := range rules {
			rule := &rules[i]
			if !rule.AppliesTo(date, dow) {
				continue
			}
			step := rule.SlotDuration + rule.BufferTime
			if step <= 0 {
				continue // a zero step would never terminate
			}
			endMins := dateutil.TimeToMinutes(rule.EndTime)
			for tm := rule.StartTime; dateutil.TimeToMinutes(tm)+link.Duration <= endMins; tm = dateutil.AddMinutes(tm, step) {
				slots = append(slots, Slot{
					Date:      date,
					Time:      tm,
					EndTime:   dateutil.AddMinutes(tm, link.Duration),
					Available: booked[date+" "+tm] < rule.MaxBookings,
				})
			}
		}

		next, err := dateutil.AddDays(date, 1)
		if err != nil {
			return nil, err
		}
		date = next
	}
	return slots, nil
}
