package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/slotbook/internal/booking"
	"github.com/example/slotbook/internal/config"
	"github.com/example/slotbook/internal/gateway"
)

func newPublishCmd() *cobra.Command {
	var username, password, date string
	var slots []string

	c := &cobra.Command{
		Use:   "publish",
		Short: "Publish a day's bookable time slots (administrative)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			spans := make([]booking.SlotSpan, 0, len(slots))
			for _, s := range slots {
				startEnd := strings.SplitN(s, "-", 2)
				if len(startEnd) != 2 {
					return fmt.Errorf("--slot %q: want HH:MM-HH:MM", s)
				}
				spans = append(spans, booking.SlotSpan{StartTime: startEnd[0], EndTime: startEnd[1]})
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			api := gateway.New(cfg.APIBaseURL, cfg.APITimeout)
			_, cred, err := api.Login(ctx, username, password)
			if err != nil {
				return err
			}

			rec, err := api.PublishAvailability(ctx, cred, date, spans)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "published %s with %d slots (id=%s)\n", rec.Date, len(rec.TimeSlots), rec.ID)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&date, "date", "", "date to publish, YYYY-MM-DD")
	c.Flags().StringArrayVar(&slots, "slot", nil, "slot as HH:MM-HH:MM (repeatable)")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("slot")
	return c
}
