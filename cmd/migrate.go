package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Leganyst/therapy-booking/internal/model"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema, including the active-slot unique index",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadBase()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := model.AutoMigrate(a.db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			a.log.Info("migrations applied")
			return nil
		},
	}
}
