package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/slotbook/internal/booking"
	"github.com/example/slotbook/internal/config"
	"github.com/example/slotbook/internal/gateway"
	"github.com/example/slotbook/internal/logging"
	"github.com/example/slotbook/internal/selection"
)

func newBookCmd() *cobra.Command {
	var username, password, date, start string

	c := &cobra.Command{
		Use:   "book",
		Short: "Log in and book one slot without the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.DevMode)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			day, err := time.Parse(booking.DateLayout, date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			m := selection.New(gateway.New(cfg.APIBaseURL, cfg.APITimeout), log)
			if err := m.Login(ctx, username, password); err != nil {
				return err
			}
			defer m.Logout()

			if err := m.ChangeMonth(ctx, day); err != nil {
				return fmt.Errorf("load availability: %w", err)
			}
			if !m.SelectDate(day) {
				return fmt.Errorf("no availability on %s", date)
			}

			v := m.View()
			rec := v.Index[booking.DateKey(day)]
			var picked bool
			for _, slot := range rec.TimeSlots {
				if slot.StartTime == start && m.SelectSlot(slot) {
					picked = true
					break
				}
			}
			if !picked {
				return fmt.Errorf("slot %s on %s is not open", start, date)
			}

			msg, err := m.Confirm(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, msg)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&date, "date", "", "date to book, YYYY-MM-DD")
	c.Flags().StringVar(&start, "start", "", "slot start time, HH:MM")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("start")
	return c
}
