package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// clients
type Client struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID      string `gorm:"type:varchar(128);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(255)"`
	Email       string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
