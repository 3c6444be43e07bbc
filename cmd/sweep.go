package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Complete confirmed bookings whose session has ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			loop, _ := cmd.Flags().GetBool("loop")

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if loop {
				a.log.Info("completion sweeper started", zap.Duration("interval", a.cfg.App.SweepInterval))
				return a.svc.Sweeper().Run(ctx, a.cfg.App.SweepInterval)
			}

			res, err := a.svc.SweepCompletions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %d booking(s)\n", res.UpdatedCount)
			return nil
		},
	}
	cmd.Flags().Bool("loop", false, "Keep sweeping every SWEEP_INTERVAL until interrupted")
	return cmd
}
