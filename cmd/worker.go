package main

import (
	"errors"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/Leganyst/therapy-booking/internal/integrations/notify"
)

func workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued notification emails through Brevo",
		RunE: func(cmd *cobra.Command, args []string) error {
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			// Воркеру нужна только очередь и почта, БД не открываем.
			a, err := loadCore()
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.Redis.Enabled() {
				return errors.New("REDIS_ADDR is required for the worker")
			}
			if !a.cfg.Brevo.Enabled() {
				return errors.New("BREVO_API_KEY and BREVO_SENDER_EMAIL are required for the worker")
			}

			log := a.log.Named("worker")
			srv := asynq.NewServer(
				redisOpt(a.cfg.Redis),
				asynq.Config{
					Concurrency: concurrency,
					Queues: map[string]int{
						notify.QueueName: 1,
					},
					Logger: log.Sugar(),
				},
			)

			// Run сам ловит SIGINT/SIGTERM и дожидается текущих задач.
			return srv.Run(notify.NewServeMux(notify.NewBrevoMailer(a.cfg.Brevo), log))
		},
	}
	cmd.Flags().Int("concurrency", 10, "Number of concurrent deliveries")
	return cmd
}
