package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Leganyst/therapy-booking/internal/model"
)

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print a provider's free slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			providerID, _ := cmd.Flags().GetString("provider")
			fromRaw, _ := cmd.Flags().GetString("from")
			toRaw, _ := cmd.Flags().GetString("to")

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			loc, err := a.cfg.App.Location()
			if err != nil {
				return err
			}
			from, err := parseDateFlag(fromRaw, loc)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			to, err := parseDateFlag(toRaw, loc)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			slots, err := a.svc.ListAvailableSlots(cmd.Context(), providerID, from, to)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tSTART\tEND")
			for _, s := range slots {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Date, s.StartTime, s.EndTime)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("provider", "", "Provider ID")
	cmd.Flags().String("from", "", "First date, YYYY-MM-DD (default: today)")
	cmd.Flags().String("to", "", "Last date, YYYY-MM-DD (default: end of horizon)")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

// parseDateFlag: пустое значение — нулевое время, сервис подставит дефолт.
func parseDateFlag(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(model.DateLayout, raw, loc)
}
