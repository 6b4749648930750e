package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/cvpromote/internal/config"
	"github.com/shaiso/cvpromote/internal/katello"
	"github.com/shaiso/cvpromote/internal/mq"
	"github.com/shaiso/cvpromote/internal/orchestrator"
	"github.com/shaiso/cvpromote/internal/repo"
	"github.com/shaiso/cvpromote/internal/telemetry"
)

// pushJob — имя job в Pushgateway.
const pushJob = "cvpromote"

// App — собранные зависимости одного процесса: клиент API, метрики,
// sinks событий и Orchestrator.
type App struct {
	opts    config.Options
	logger  *slog.Logger
	out     *Output
	metrics *telemetry.Metrics
	orch    *orchestrator.Orchestrator

	// Опциональные sinks
	amqp *mq.Connection
	pool *pgxpool.Pool
}

// NewApp подключается к внешним системам по opts.
//
// opts должны быть уже проверены (config.Options.Validate).
func NewApp(ctx context.Context, opts config.Options, out *Output, logger *slog.Logger) (*App, error) {
	app := &App{
		opts:    opts,
		logger:  logger,
		out:     out,
		metrics: telemetry.NewMetrics(),
	}

	client, err := katello.New(katello.Config{
		Server:   opts.Server,
		User:     opts.User,
		Password: opts.Password,
		CAFile:   opts.CAFile,
		Recorder: app.metrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	var sinks []orchestrator.EventSink

	if opts.AMQPURL != "" {
		publisher, err := app.connectAMQP(ctx)
		if err != nil {
			app.Close()
			return nil, err
		}
		sinks = append(sinks, publisher)
	}

	if opts.AuditDB != "" {
		events, err := app.connectAudit(ctx)
		if err != nil {
			app.Close()
			return nil, err
		}
		sinks = append(sinks, events)
	}

	eventSinks := orchestrator.NewSinks(logger, sinks...)

	app.orch = orchestrator.New(orchestrator.Config{
		API:            client,
		PollInterval:   opts.PollInterval,
		PollTimeout:    opts.PollTimeout,
		AwaitPromotion: opts.AwaitPromotion,
		Sinks:          eventSinks,
		Recorder:       app.metrics,
		Logger:         logger,
	})

	logger.Debug("app initialized",
		"api", client.BaseURL(),
		"sinks", eventSinks.Len(),
	)

	return app, nil
}

func (a *App) connectAMQP(ctx context.Context) (*mq.Publisher, error) {
	conn, err := mq.NewConnection(a.opts.AMQPURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	a.amqp = conn

	if err := mq.SetupTopology(ctx, conn); err != nil {
		return nil, fmt.Errorf("setup amqp topology: %w", err)
	}
	a.logger.Debug("amqp topology ready", "topology", mq.TopologyInfo())

	return mq.NewPublisher(conn, a.logger), nil
}

func (a *App) connectAudit(ctx context.Context) (*repo.EventRepo, error) {
	pool, err := repo.NewPool(ctx, a.opts.AuditDB)
	if err != nil {
		return nil, fmt.Errorf("connect audit db: %w", err)
	}
	a.pool = pool

	events := repo.NewEventRepo(pool)
	if err := events.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// Request собирает orchestrator.Request из opts.
func (a *App) Request() orchestrator.Request {
	return orchestrator.Request{
		ContentViews:   a.opts.ContentViews,
		UseDefaultEnvs: a.opts.AllEnvironments,
		Environments:   a.opts.Environments,
		DryRun:         a.opts.DryRun,
	}
}

// RunOnce выполняет один batch, печатает итог и выгружает метрики.
//
// Итог печатается и при ошибке: в нём content views, обработанные
// до сбоя. Ошибка выгрузки метрик не меняет результат run.
func (a *App) RunOnce(ctx context.Context) error {
	report, err := a.orch.Run(ctx, a.Request())
	a.out.PrintReport(report)

	if a.opts.DryRun {
		return err
	}
	a.exportMetrics()

	if err == nil {
		a.out.Success(fmt.Sprintf("Run %s completed: %d content views promoted", report.RunID, len(report.Results)))
	}
	return err
}

func (a *App) exportMetrics() {
	if a.opts.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.opts.MetricsTextfile); err != nil {
			a.logger.Warn("failed to write metrics", "path", a.opts.MetricsTextfile, "error", err)
		}
	}

	if a.opts.Pushgateway != "" {
		if err := a.metrics.Push(a.opts.Pushgateway, pushJob); err != nil {
			a.logger.Warn("failed to push metrics", "url", a.opts.Pushgateway, "error", err)
		}
	}
}

// Metrics возвращает метрики процесса.
func (a *App) Metrics() *telemetry.Metrics {
	return a.metrics
}

// Pool возвращает пул audit-БД или nil, если --audit-db не задан.
func (a *App) Pool() *pgxpool.Pool {
	return a.pool
}

// Close закрывает соединения sinks.
func (a *App) Close() error {
	var errs []error

	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	return errors.Join(errs...)
}
