package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shaiso/cvpromote/internal/config"
	"github.com/shaiso/cvpromote/internal/repo"
	"github.com/shaiso/cvpromote/internal/scheduler"
)

// NewScheduleCmd создаёт команду schedule: batch по cron-расписанию.
func NewScheduleCmd(opts *config.Options) *cobra.Command {
	sched := &config.ScheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the batch on a cron schedule until interrupted",
		Long: `schedule keeps running and executes the batch on every tick of the cron
expression. A failed batch is logged and the next tick runs as usual.

With --audit-db, instances sharing the database elect a leader through a
PostgreSQL advisory lock, so each tick runs the batch only once. The leader
keeps the lock until it stops; another instance takes over on the next tick.`,
		Example: `  cvpromote schedule --cron "0 2 * * 1-5" --timezone Europe/Moscow --batch nightly.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd, opts, sched)
		},
	}

	bindScheduleFlags(cmd.Flags(), sched)

	return cmd
}

func runSchedule(cmd *cobra.Command, opts *config.Options, sched *config.ScheduleOptions) error {
	resolved, logger, err := prepare(cmd, *opts)
	if err != nil {
		return err
	}

	sched.ApplyEnv()
	if err := sched.Validate(); err != nil {
		return err
	}

	schedule, err := scheduler.ParseSchedule(sched.Cron, sched.Timezone)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := NewApp(ctx, resolved, newOutput(cmd, resolved), logger)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := scheduler.Config{
		Schedule: schedule,
		Job:      app.RunOnce,
		Logger:   logger,
	}

	if pool := app.Pool(); pool != nil {
		key := sched.LockKey
		if key == 0 {
			key = repo.DefaultLockKey
		}
		cfg.Locker = repo.NewAdvisoryLock(pool, key)
	}

	if sched.Listen != "" {
		srv, err := serveHTTP(sched.Listen, app, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return scheduler.New(cfg).Start(ctx)
}

// serveHTTP поднимает /healthz и /metrics.
func serveHTTP(addr string, app *App, logger *slog.Logger) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(app.Metrics().Registry(), promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	return srv, nil
}
