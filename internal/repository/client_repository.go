package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/therapy-booking/internal/model"
)

type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*model.Client, error)
	GetByUserID(ctx context.Context, userID string) (*model.Client, error)
	EnsureByUserID(ctx context.Context, userID string) (*model.Client, error)
}

type GormClientRepository struct {
	db *gorm.DB
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrClientNotFound
	}
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormClientRepository) GetByUserID(ctx context.Context, userID string) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// EnsureByUserID находит клиента по внешнему ID или создаёт пустую карточку.
func (r *GormClientRepository) EnsureByUserID(ctx context.Context, userID string) (*model.Client, error) {
	if userID == "" {
		return nil, model.ErrClientNotFound
	}
	c, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, model.ErrClientNotFound) {
		return nil, err
	}

	c = &model.Client{UserID: userID}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		// Параллельный запрос мог успеть создать ту же карточку.
		if isUniqueViolation(err) {
			return r.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return c, nil
}
