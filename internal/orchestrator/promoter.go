package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/cvpromote/internal/domain"
)

// Promoter продвигает опубликованную версию по окружениям.
//
// Окружения обходятся строго в переданном порядке, по одному запросу
// на окружение. Library пропускается.
type Promoter struct {
	api      API
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	// await — если задан, после каждого продвижения ждём завершения его
	// задачи до перехода к следующему окружению.
	await *Poller
}

// NewPromoter создаёт новый Promoter. await может быть nil.
func NewPromoter(api API, await *Poller, recorder Recorder, logger *slog.Logger) *Promoter {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Promoter{
		api:      api,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		await:    await,
	}
}

// PromoteResult — итог продвижения одной версии.
type PromoteResult struct {
	Promotions []domain.Promotion
	Skipped    []string
}

// Promote продвигает версию versionID content view по envs.
//
// При ошибке возвращает уже выполненные продвижения вместе с ошибкой.
func (p *Promoter) Promote(ctx context.Context, view domain.ContentView, versionID int, envs []domain.Environment, date string) (PromoteResult, error) {
	var result PromoteResult
	path := fmt.Sprintf("content_view_versions/%d/promote", versionID)

	for _, env := range envs {
		if env.IsLibrary() {
			p.logger.Debug("skipping baseline environment",
				"content_view", view.Name,
				"environment", env.Name,
			)
			result.Skipped = append(result.Skipped, env.Name)
			continue
		}

		description := PromoteDescription(date, env.Name)
		body := map[string]any{
			"environment_id": env.ID,
			"description":    description,
		}

		res, err := p.api.Post(ctx, path, body)
		if err != nil {
			return result, fmt.Errorf("promote version %d to %q: %w", versionID, env.Name, err)
		}
		taskID := res.Get("id").String()

		p.logger.Info("promoted content view version",
			"content_view", view.Name,
			"version_id", versionID,
			"environment", env.Name,
			"task_id", taskID,
		)

		result.Promotions = append(result.Promotions, domain.Promotion{
			Environment: env,
			VersionID:   versionID,
			Description: description,
			Timestamp:   p.now(),
		})
		p.recorder.Promoted(view.Name, env.Name)

		if p.await != nil {
			if taskID == "" {
				return result, fmt.Errorf("await promotion to %q: %w", env.Name, ErrMissingTask)
			}
			if _, err := p.await.AwaitTask(ctx, taskID); err != nil {
				return result, fmt.Errorf("await promotion to %q: %w", env.Name, err)
			}
		}
	}

	return result, nil
}
