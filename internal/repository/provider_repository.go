package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/therapy-booking/internal/model"
)

type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*model.Provider, error)
	GetByUserID(ctx context.Context, userID string) (*model.Provider, error)
	Create(ctx context.Context, provider *model.Provider) error
}

type GormProviderRepository struct {
	db *gorm.DB
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

func (r *GormProviderRepository) GetByID(ctx context.Context, id string) (*model.Provider, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrProviderNotFound
	}
	var p model.Provider
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProviderRepository) GetByUserID(ctx context.Context, userID string) (*model.Provider, error) {
	var p model.Provider
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProviderRepository) Create(ctx context.Context, provider *model.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}
