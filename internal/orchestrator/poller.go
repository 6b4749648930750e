package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/shaiso/cvpromote/internal/domain"
)

// DefaultPollInterval — пауза между запросами статуса.
const DefaultPollInterval = time.Second

// taskPathFormat — задача foreman-tasks, от корня сервера.
const taskPathFormat = "/foreman_tasks/api/tasks/%s"

// Poller ждёт завершения последнего события content view
// или задачи foreman-tasks.
//
// Интервал постоянный, без backoff. Ограничения по числу итераций нет:
// ожидание прерывается отменой ctx или timeout.
type Poller struct {
	api      API
	interval time.Duration
	recorder Recorder
	logger   *slog.Logger

	// timeout — предел одного Await. 0 — без предела.
	timeout time.Duration
}

// NewPoller создаёт новый Poller.
func NewPoller(api API, interval time.Duration, recorder Recorder, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		api:      api,
		interval: interval,
		recorder: recorder,
		logger:   logger,
	}
}

// Await блокируется, пока последнее событие content view не станет success.
//
// Возвращает количество сделанных запросов (минимум один).
// Статус вне {pending, success} — ErrPublishFailed.
func (p *Poller) Await(ctx context.Context, contentViewID int) (int, error) {
	path := fmt.Sprintf("content_views/%d", contentViewID)
	subject := fmt.Sprintf("content view %d", contentViewID)

	return p.poll(ctx, path, subject, ErrPublishFailed, func(res gjson.Result) domain.EventResult {
		event := res.Get("last_event")
		return domain.ParseEventStatus(event.Get("status").String(), failureReason(event))
	})
}

// AwaitTask блокируется, пока задача foreman-tasks не завершится.
//
// Продвижение ждётся по его собственной задаче: last_event content view
// сразу после запроса может ещё показывать завершённую публикацию.
// Ошибка задачи — ErrPromotionFailed.
func (p *Poller) AwaitTask(ctx context.Context, taskID string) (int, error) {
	path := fmt.Sprintf(taskPathFormat, taskID)
	subject := fmt.Sprintf("task %s", taskID)

	return p.poll(ctx, path, subject, ErrPromotionFailed, func(res gjson.Result) domain.EventResult {
		return domain.ParseTaskStatus(res.Get("state").String(), res.Get("result").String(), taskFailureReason(res))
	})
}

// poll опрашивает path с постоянным интервалом до терминального статуса.
func (p *Poller) poll(ctx context.Context, path, subject string, failed error, parse func(gjson.Result) domain.EventResult) (int, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	for queries := 1; ; queries++ {
		res, err := p.api.Get(ctx, path, nil)
		if err != nil {
			return queries, fmt.Errorf("poll %s: %w", subject, err)
		}

		result := parse(res)
		p.recorder.PollQuery(result.Status)

		switch result.State {
		case domain.EventSucceeded:
			p.logger.Info("event finished",
				"subject", subject,
				"queries", queries,
			)
			return queries, nil
		case domain.EventFailed:
			return queries, fmt.Errorf("%w: %s: %s", failed, subject, result.Reason)
		}

		p.logger.Debug("event pending",
			"subject", subject,
			"queries", queries,
		)

		if err := p.sleep(ctx); err != nil {
			return queries, fmt.Errorf("poll %s: %w", subject, err)
		}
	}
}

// sleep ждёт один интервал или отмену ctx.
func (p *Poller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// failureReason собирает текст ошибки из last_event.
func failureReason(event gjson.Result) string {
	status := event.Get("status").String()
	if status == domain.EventStatusPending || status == domain.EventStatusSuccess {
		return ""
	}

	for _, key := range []string{"task.humanized.errors.0", "task.result", "action"} {
		if v := event.Get(key).String(); v != "" {
			return fmt.Sprintf("status %q: %s", status, v)
		}
	}
	return ""
}

// taskFailureReason собирает текст ошибки задачи.
func taskFailureReason(task gjson.Result) string {
	for _, key := range []string{"humanized.errors.0", "humanized.output"} {
		if v := task.Get(key).String(); v != "" {
			return v
		}
	}
	return ""
}
