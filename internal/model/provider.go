package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider — психолог, который ведёт приём.
// Идентичность (логин, верификация) живёт во внешнем сервисе, здесь только ссылка UserID.
type Provider struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Внешний идентификатор пользователя из сервиса авторизации.
	UserID string `gorm:"type:varchar(128);not null;uniqueIndex"`

	// Имя/отображаемое название в интерфейсе.
	DisplayName string `gorm:"type:varchar(255);not null"`

	// Адрес для уведомлений, может быть пустым.
	Email string `gorm:"type:varchar(255)"`

	// Текущая цена сеанса; в запись копируется при бронировании.
	PriceCents int64  `gorm:"not null;default:0"`
	Currency   string `gorm:"type:varchar(3);not null;default:'usd'"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Schedule *Schedule `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p *Provider) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
