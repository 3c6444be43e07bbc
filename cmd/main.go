package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "therapy-booking",
		Short:        "Scheduling core for therapy sessions",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(providerCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
