package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// schedules — недельное расписание провайдера, одна строка на провайдера.
type Schedule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ProviderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	// Часовой пояс, в котором провайдер заполнял расписание (для отображения).
	TimeZone string `gorm:"type:varchar(64);not null;default:'America/New_York'"`

	// AvailabilityModel в виде JSON (jsonb в Postgres).
	Rules datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewSchedule упаковывает модель доступности в строку таблицы.
func NewSchedule(providerID uuid.UUID, tz string, m AvailabilityModel) (*Schedule, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal availability: %w", err)
	}
	return &Schedule{ID: uuid.New(), ProviderID: providerID, TimeZone: tz, Rules: datatypes.JSON(raw)}, nil
}

// Availability разворачивает Rules обратно в AvailabilityModel.
func (s *Schedule) Availability() (AvailabilityModel, error) {
	var m AvailabilityModel
	if len(s.Rules) == 0 {
		return m, ErrNoAvailability
	}
	if err := json.Unmarshal(s.Rules, &m); err != nil {
		return m, fmt.Errorf("unmarshal availability: %w", err)
	}
	return m, nil
}
