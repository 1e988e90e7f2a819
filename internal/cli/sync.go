package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/parkside/discscore/internal/queue"
)

// NewSyncCommand creates the sync command: drain the pending-operation
// queue against the configured remote, once or on a schedule.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued changes to the remote store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !watch {
				return drainOnce(cmd.Context(), cmd, a)
			}

			// Watch mode: drain now, then on a timer. The queue's own
			// guard refuses overlap but the scheduler never produces it:
			// singleton mode skips a tick while the previous one runs.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := drainOnce(ctx, cmd, a); err != nil {
				slog.Warn("initial drain incomplete", "error", err)
			}

			sched, err := gocron.NewScheduler()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create scheduler", err)
			}
			_, err = sched.NewJob(
				gocron.DurationJob(interval),
				gocron.NewTask(func() {
					if err := drainOnce(ctx, cmd, a); err != nil {
						slog.Warn("scheduled drain incomplete", "error", err)
					}
				}),
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
			)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to schedule drain", err)
			}
			sched.Start()
			defer func() {
				if err := sched.Shutdown(); err != nil {
					slog.Error("scheduler shutdown failed", "error", err)
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching; draining every %s. Ctrl-C to stop.\n", interval)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and drain on a timer")
	cmd.Flags().DurationVar(&interval, "every", 5*time.Minute, "drain interval in watch mode")
	return cmd
}

func drainOnce(ctx context.Context, cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()

	pending := a.queue.Pending(ctx)
	if pending == 0 {
		fmt.Fprintln(out, "Nothing to sync.")
		return nil
	}

	if err := a.gw.HealthCheck(ctx); err != nil {
		fmt.Fprintf(out, "Remote unavailable; %d change(s) still queued.\n", pending)
		return WrapExitError(ExitFailure, "remote unavailable", err)
	}
	if err := a.queue.EnsureRemote(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to prepare remote collections", err)
	}

	ok, err := a.queue.Drain(ctx)
	if err == queue.ErrDrainInProgress {
		return WrapExitError(ExitFailure, "another sync is running", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "drain failed", err)
	}
	if !ok {
		remaining := a.queue.Pending(ctx)
		fmt.Fprintf(out, "Partial sync: %d change(s) still queued.\n", remaining)
		return NewExitError(ExitFailure, "some operations were retained")
	}
	fmt.Fprintf(out, "Synced %d change(s).\n", pending)
	return nil
}
