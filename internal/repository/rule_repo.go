package repository

import (
	"context"

	"github.com/calbook/booking-engine/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RuleRepository interface {
	ListByCalendar(ctx context.Context, calendarID string) ([]models.TimeSlotRule, error)
	// ListByCalendarForUpdate locks the calendar's rule rows within the
	// given transaction, serializing concurrent submissions against the
	// same calendar so the capacity count-then-insert stays atomic.
	ListByCalendarForUpdate(ctx context.Context, tx *gorm.DB, calendarID string) ([]models.TimeSlotRule, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlotRule, error)
	Save(ctx context.Context, rule *models.TimeSlotRule) error
	Delete(ctx context.Context, id string) error
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) ListByCalendar(ctx context.Context, calendarID string) ([]models.TimeSlotRule, error) {
	var rules []models.TimeSlotRule
	err := r.db.WithContext(ctx).
		Where("calendar_id = ?", calendarID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) ListByCalendarForUpdate(ctx context.Context, tx *gorm.DB, calendarID string) ([]models.TimeSlotRule, error) {
	var rules []models.TimeSlotRule
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("calendar_id = ?", calendarID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) FindByID(ctx context.Context, id string) (*models.TimeSlotRule, error) {
	var rule models.TimeSlotRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) Save(ctx context.Context, rule *models.TimeSlotRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.TimeSlotRule{}, "id = ?", id).Error
}
