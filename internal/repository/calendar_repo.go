package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/calbook/booking-engine/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrCalendarNotFound is returned when no configuration document exists
// for the requested calendar id.
var ErrCalendarNotFound = errors.New("calendar not found")

const calendarKeyPrefix = "calendar:"

// CalendarRepository stores CalendarConfig documents as JSON in the
// key-value store, one document per calendar.
type CalendarRepository interface {
	Get(ctx context.Context, id string) (*models.CalendarConfig, error)
	Save(ctx context.Context, calendar *models.CalendarConfig) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.CalendarConfig, error)
}

type calendarRepository struct {
	client *redis.Client
}

func NewCalendarRepository(client *redis.Client) CalendarRepository {
	return &calendarRepository{client: client}
}

func (r *calendarRepository) Get(ctx context.Context, id string) (*models.CalendarConfig, error) {
	data, err := r.client.Get(ctx, calendarKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCalendarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar %s: %w", id, err)
	}
	var calendar models.CalendarConfig
	if err := json.Unmarshal(data, &calendar); err != nil {
		return nil, fmt.Errorf("decode calendar %s: %w", id, err)
	}
	return &calendar, nil
}

func (r *calendarRepository) Save(ctx context.Context, calendar *models.CalendarConfig) error {
	data, err := json.Marshal(calendar)
	if err != nil {
		return fmt.Errorf("encode calendar %s: %w", calendar.ID, err)
	}
	if err := r.client.Set(ctx, calendarKeyPrefix+calendar.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("save calendar %s: %w", calendar.ID, err)
	}
	return nil
}

func (r *calendarRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, calendarKeyPrefix+id).Err()
}

func (r *calendarRepository) List(ctx context.Context) ([]models.CalendarConfig, error) {
	var calendars []models.CalendarConfig
	iter := r.client.Scan(ctx, 0, calendarKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list calendars: %w", err)
		}
		var calendar models.CalendarConfig
		if err := json.Unmarshal(data, &calendar); err != nil {
			continue
		}
		calendars = append(calendars, calendar)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	sort.Slice(calendars, func(i, j int) bool {
		return calendars[i].UpdatedAt > calendars[j].UpdatedAt
	})
	return calendars, nil
}
