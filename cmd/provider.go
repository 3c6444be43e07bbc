package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Leganyst/therapy-booking/internal/model"
	"github.com/Leganyst/therapy-booking/internal/repository"
)

func providerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Manage providers",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a provider for an external user ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user-id")
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			price, _ := cmd.Flags().GetInt64("price-cents")
			currency, _ := cmd.Flags().GetString("currency")

			if price < 0 {
				return errors.New("--price-cents must not be negative")
			}

			a, err := loadBase()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := model.AutoMigrate(a.db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}

			p := &model.Provider{
				UserID:      userID,
				DisplayName: name,
				Email:       email,
				PriceCents:  price,
				Currency:    strings.ToLower(currency),
			}
			if err := repository.NewGormProviderRepository(a.db).Create(cmd.Context(), p); err != nil {
				return fmt.Errorf("create provider: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}
	addCmd.Flags().String("user-id", "", "External user ID of the provider")
	addCmd.Flags().String("name", "", "Display name")
	addCmd.Flags().String("email", "", "Notification address")
	addCmd.Flags().Int64("price-cents", 0, "Session price in minor units")
	addCmd.Flags().String("currency", "usd", "ISO currency code")
	_ = addCmd.MarkFlagRequired("user-id")
	_ = addCmd.MarkFlagRequired("name")
	cmd.AddCommand(addCmd)

	return cmd
}
