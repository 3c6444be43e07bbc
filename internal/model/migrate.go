package model

import (
	"fmt"

	"gorm.io/gorm"
)

// ActiveSlotIndexSQL — частичный уникальный индекс: на один (провайдер, дата, время)
// не больше одной записи в статусе pending/confirmed. Синтаксис общий для Postgres и SQLite.
const ActiveSlotIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
	ON bookings (provider_id, appointment_date, start_time)
	WHERE status IN ('pending', 'confirmed')`

// AutoMigrate выполняет миграцию всех сущностей ядра записи.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Provider{},
		&Client{},
		&Schedule{},
		&Booking{},
		&Event{},
	); err != nil {
		return err
	}

	// GORM не умеет partial index с IN (...) через теги — создаём руками.
	if err := db.Exec(ActiveSlotIndexSQL).Error; err != nil {
		return fmt.Errorf("create active slot index: %w", err)
	}
	return nil
}
