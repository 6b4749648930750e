package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
)

// versionIDPaths — где в ответе на публикацию искать id новой версии.
// Katello возвращает foreman task с input.content_view_version_id.
var versionIDPaths = []string{
	"input.content_view_version_id",
	"content_view_version_id",
}

// Publisher публикует новые версии content views.
type Publisher struct {
	api    API
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(api API, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{api: api, logger: logger}
}

// Publish создаёт новую версию content view и возвращает её id.
func (p *Publisher) Publish(ctx context.Context, contentViewID int, description string) (int, error) {
	path := fmt.Sprintf("content_views/%d/publish", contentViewID)

	res, err := p.api.Post(ctx, path, map[string]string{"description": description})
	if err != nil {
		return 0, fmt.Errorf("publish content view %d: %w", contentViewID, err)
	}

	for _, key := range versionIDPaths {
		if id := res.Get(key).Int(); id > 0 {
			p.logger.Info("published content view",
				"content_view_id", contentViewID,
				"version_id", id,
			)
			return int(id), nil
		}
	}

	return 0, fmt.Errorf("%w: content view %d", ErrMissingVersion, contentViewID)
}
