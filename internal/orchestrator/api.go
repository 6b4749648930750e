package orchestrator

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/shaiso/cvpromote/internal/domain"
)

// API — минимальный HTTP-клиент к серверу.
//
// Реализация: katello.Client. path задаётся относительно корня API,
// например "content_views/7/publish"; с ведущим "/" — от корня сервера.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (gjson.Result, error)
	Post(ctx context.Context, path string, body any) (gjson.Result, error)
}

// Recorder получает события run для метрик.
//
// Реализация: telemetry.Metrics.
type Recorder interface {
	PollQuery(status string)
	Published(contentView string, wait time.Duration)
	Promoted(contentView, environment string)
	RunFinished(views int, err error)
}

// EventSink принимает события публикации и продвижения.
//
// Реализации: mq.Publisher (RabbitMQ), repo.EventRepo (audit-таблица).
type EventSink interface {
	Emit(ctx context.Context, event domain.Event) error
}

// Sinks рассылает событие во все sinks.
//
// Ошибка sink не фатальна: workflow уже изменил состояние сервера,
// поэтому ошибка только логируется.
type Sinks struct {
	sinks  []EventSink
	logger *slog.Logger
}

// NewSinks создаёт Sinks, пропуская nil.
func NewSinks(logger *slog.Logger, sinks ...EventSink) *Sinks {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sinks{logger: logger}
	for _, sink := range sinks {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
	return s
}

// Emit отправляет событие во все sinks.
func (s *Sinks) Emit(ctx context.Context, event domain.Event) {
	if s == nil {
		return
	}
	for _, sink := range s.sinks {
		if err := sink.Emit(ctx, event); err != nil {
			s.logger.Warn("failed to emit event",
				"event_id", event.ID,
				"type", event.Type,
				"error", err,
			)
		}
	}
}

// Len возвращает количество sinks.
func (s *Sinks) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sinks)
}

type noopRecorder struct{}

func (noopRecorder) PollQuery(string) {}
func (noopRecorder) Published(string, time.Duration) {}
func (noopRecorder) Promoted(string, string) {}
func (noopRecorder) RunFinished(int, error) {}
