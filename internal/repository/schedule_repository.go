package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/therapy-booking/internal/model"
)

type ScheduleRepository interface {
	// GetByProvider возвращает недельное расписание провайдера.
	GetByProvider(ctx context.Context, providerID string) (*model.Schedule, error)
	// Upsert создаёт или заменяет расписание провайдера.
	Upsert(ctx context.Context, schedule *model.Schedule) error
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) GetByProvider(ctx context.Context, providerID string) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.WithContext(ctx).First(&s, "provider_id = ?", providerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNoAvailability
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert: одна строка на провайдера, конфликт по provider_id перезаписывает правила.
func (r *GormScheduleRepository) Upsert(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"time_zone", "rules", "updated_at"}),
		}).
		Create(schedule).Error
}
