package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/cvpromote/internal/domain"
	"github.com/shaiso/cvpromote/internal/telemetry"
)

// Orchestrator публикует и продвигает batch content views.
//
// Порядок работы:
//   - Резолвит все content views (и явные окружения) — до первой публикации
//   - Для каждого content view по порядку: Publish → Poller.Await → Promote
//   - Первая ошибка прерывает batch
type Orchestrator struct {
	resolver  *Resolver
	publisher *Publisher
	poller    *Poller
	promoter  *Promoter

	sinks    *Sinks
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Config — конфигурация Orchestrator.
type Config struct {
	API API

	// PollInterval — интервал опроса статуса (default: 1s).
	PollInterval time.Duration

	// PollTimeout — предел ожидания одного события. 0 — ждать бесконечно.
	PollTimeout time.Duration

	// AwaitPromotion — ждать завершения каждого продвижения перед следующим.
	AwaitPromotion bool

	// Sinks — получатели событий (опционально).
	Sinks *Sinks

	// Recorder — метрики (опционально).
	Recorder Recorder

	Logger *slog.Logger

	// Now — источник времени (для тестов). Default: time.Now.
	Now func() time.Time
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	poller := NewPoller(cfg.API, cfg.PollInterval, recorder, logger)
	poller.timeout = cfg.PollTimeout

	var await *Poller
	if cfg.AwaitPromotion {
		await = poller
	}

	promoter := NewPromoter(cfg.API, await, recorder, logger)
	promoter.now = now

	return &Orchestrator{
		resolver:  NewResolver(cfg.API, logger),
		publisher: NewPublisher(cfg.API, logger),
		poller:    poller,
		promoter:  promoter,
		sinks:     cfg.Sinks,
		recorder:  recorder,
		logger:    logger,
		now:       now,
	}
}

// Request — параметры одного run.
type Request struct {
	// ContentViews — имена content views в порядке приоритета.
	ContentViews []string

	// UseDefaultEnvs — продвигать в окружения, связанные с каждым content view.
	UseDefaultEnvs bool

	// Environments — явный список окружений, общий для всех content views.
	// Используется, если UseDefaultEnvs == false.
	Environments []string

	// DryRun — только резолв, без публикации и продвижения.
	DryRun bool
}

// Validate проверяет запрос.
func (r Request) Validate() error {
	if len(r.ContentViews) == 0 {
		return ErrNoContentViews
	}
	if !r.UseDefaultEnvs && len(r.Environments) == 0 {
		return ErrNoEnvironments
	}
	return nil
}

// Report — итог run.
type Report struct {
	RunID      uuid.UUID           `json:"run_id"`
	Date       string              `json:"date"`
	DryRun     bool                `json:"dry_run,omitempty"`
	Plans      []domain.ViewPlan   `json:"plans"`
	Results    []domain.ViewResult `json:"results"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// Run выполняет batch.
//
// Report возвращается и при ошибке: в нём content views, обработанные
// до сбоя.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	started := o.now()
	report := &Report{
		RunID:     uuid.New(),
		Date:      FormatDate(started),
		DryRun:    req.DryRun,
		StartedAt: started,
	}

	logger := telemetry.WithRunID(o.logger, report.RunID.String())
	ctx = telemetry.WithLogger(ctx, logger)

	err := o.run(ctx, req, report)

	report.FinishedAt = o.now()
	o.recorder.RunFinished(len(report.Results), err)

	if err != nil {
		logger.Error("run aborted",
			"completed", len(report.Results),
			"total", len(req.ContentViews),
			"error", err,
		)
		return report, err
	}

	logger.Info("run completed",
		"content_views", len(report.Results),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request, report *Report) error {
	if err := req.Validate(); err != nil {
		return err
	}

	logger := telemetry.FromContext(ctx)
	logger.Info("starting run",
		"content_views", req.ContentViews,
		"use_default_envs", req.UseDefaultEnvs,
		"environments", req.Environments,
		"dry_run", req.DryRun,
	)

	// 1. Резолвим всё до первой публикации
	plans, err := o.Plan(ctx, req)
	if err != nil {
		return err
	}
	report.Plans = plans

	if req.DryRun {
		return nil
	}

	// 2. Публикуем и продвигаем по порядку
	for i := range plans {
		result, err := o.process(ctx, report.RunID, report.Date, &plans[i])
		report.Plans[i] = plans[i]
		if err != nil {
			return err
		}
		report.Results = append(report.Results, result)
	}

	return nil
}

// Plan резолвит content views и целевые окружения.
//
// Явный список окружений резолвится в организации каждого content view
// (поиск кэшируется на организацию в пределах одного Plan).
func (o *Orchestrator) Plan(ctx context.Context, req Request) ([]domain.ViewPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o.resolver.Reset()

	plans := make([]domain.ViewPlan, 0, len(req.ContentViews))
	for _, name := range req.ContentViews {
		view, err := o.resolver.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		plans = append(plans, domain.ViewPlan{View: view})
	}

	for i := range plans {
		if req.UseDefaultEnvs {
			plans[i].Targets = plans[i].View.Environments
			continue
		}

		targets, err := o.resolver.ResolveEnvironments(ctx, plans[i].View.OrganizationID, req.Environments)
		if err != nil {
			return nil, fmt.Errorf("content view %q: %w", plans[i].View.Name, err)
		}
		plans[i].Targets = targets
	}

	return plans, nil
}

// process публикует, ждёт и продвигает один content view.
func (o *Orchestrator) process(ctx context.Context, runID uuid.UUID, date string, plan *domain.ViewPlan) (domain.ViewResult, error) {
	view := plan.View
	logger := telemetry.WithContentView(telemetry.FromContext(ctx), view.Name)

	result := domain.ViewResult{
		Name:          view.Name,
		ContentViewID: view.ID,
	}

	description := PublishDescription(date)
	versionID, err := o.publisher.Publish(ctx, view.ID, description)
	if err != nil {
		return result, err
	}
	plan.VersionID = versionID
	result.VersionID = versionID

	waitStart := o.now()
	queries, err := o.poller.Await(ctx, view.ID)
	result.PollQueries = queries
	if err != nil {
		return result, fmt.Errorf("content view %q version %d: %w", view.Name, versionID, err)
	}
	result.PublishWait = o.now().Sub(waitStart)

	o.recorder.Published(view.Name, result.PublishWait)
	o.sinks.Emit(ctx, domain.NewPublishedEvent(runID, view, versionID, description, o.now()))

	logger.Info("publish finished",
		"version_id", versionID,
		"queries", queries,
		"wait", result.PublishWait,
	)

	promoted, err := o.promoter.Promote(ctx, view, versionID, plan.Targets, date)
	for _, p := range promoted.Promotions {
		result.Promoted = append(result.Promoted, p.Environment.Name)
		o.sinks.Emit(ctx, domain.NewPromotedEvent(runID, view, versionID, p.Environment, p.Description, p.Timestamp))
	}
	result.Skipped = promoted.Skipped
	if err != nil {
		return result, fmt.Errorf("content view %q: %w", view.Name, err)
	}

	return result, nil
}
