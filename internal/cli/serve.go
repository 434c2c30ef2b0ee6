package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/internal/notify"
	"github.com/example/lingua/internal/review"
	"github.com/example/lingua/internal/scheduler"
	"github.com/example/lingua/internal/server"
	"github.com/example/lingua/internal/spaced_repetition"
)

func newServeCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := load(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ladder := spaced_repetition.NewLadder()
			states := database.NewReviewStateRepository(a.db, ladder)
			svc := review.NewService(
				states,
				database.NewItemRepository(a.db),
				database.NewEventRepository(a.db),
				ladder,
				a.cfg.SRS,
				a.logger,
			)
			srv := server.New(a.cfg.Server, svc, server.HeaderUserResolver{Header: a.cfg.Server.UserHeader}, a.logger)

			var sched *scheduler.Scheduler
			if a.cfg.Reminder.Enabled {
				notifier, err := newNotifier(a)
				if err != nil {
					return err
				}
				sched = scheduler.New(a.cfg.Reminder, database.NewUserRepository(a.db), states, notifier, a.logger)
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(ctx) })
			if sched != nil {
				g.Go(func() error { return sched.Run(ctx) })
			}

			return g.Wait()
		},
	}
}

func newNotifier(a *app) (scheduler.Notifier, error) {
	if a.cfg.Telegram.Token == "" {
		a.logger.Warn("No Telegram token configured, reminders are only logged")
		return notify.LogNotifier{Logger: a.logger}, nil
	}
	return notify.NewTelegramNotifier(a.cfg.Telegram.Token, a.logger)
}
