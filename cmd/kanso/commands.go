package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/cli"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kanso",
		Short:         "Weekly habit tracker",
		Long:          "Kanso tracks recurring habits against a weekly target and reminds you of the ones still open.",
		RunE:          runInteractive,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newListCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newResetCmd())
	return root
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cli.NewSyncWriter(cmd.OutOrStdout())
	menu := cli.NewMenu(a.tracker, cmd.InOrStdin(), out, a.log)

	fmt.Fprintln(out, "==================================================")
	fmt.Fprintln(out, "KANSO HABIT TRACKER")
	fmt.Fprintln(out, "==================================================")
	fmt.Fprintln(out)

	if err := menu.EnsureProfile(ctx); err != nil {
		return err
	}

	if err := a.tracker.StartReminder(a.cfg.ReminderInterval, menu.Remind); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- menu.Run(ctx)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
	}

	a.tracker.StopReminder()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintln(out, "Goodbye!")
	return nil
}

func newListCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print habits with this week's progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := domain.ParseHabitFilter(filter)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			cli.RenderHabitList(cmd.OutOrStdout(), a.tracker.ListHabits(f))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(domain.FilterAll), "all, active or completed")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			cli.RenderStatistics(cmd.OutOrStdout(), a.tracker.Statistics())
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every habit, keeping the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.tracker.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All habits cleared.")
			return nil
		},
	}
}
