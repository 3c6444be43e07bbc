package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/config"
	"github.com/Leganyst/therapy-booking/internal/service"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed actor token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, _ := cmd.Flags().GetString("sub")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if cfg.App.IsProduction() {
				return errors.New("refusing to mint tokens in production")
			}

			actor, err := calendar.ValidateActor(calendar.Actor{UserID: sub, Role: calendar.Role(role)})
			if err != nil {
				return err
			}
			token, err := service.IssueToken([]byte(cfg.Auth.JWTSecret), actor, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("sub", "", "User ID")
	cmd.Flags().String("role", string(calendar.RoleClient), "client, provider or system")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
