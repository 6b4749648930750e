package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType — тип события жизненного цикла content view.
type EventType string

const (
	// EventTypePublished — опубликована новая версия.
	EventTypePublished EventType = "content_view.published"

	// EventTypePromoted — версия продвинута в окружение.
	EventTypePromoted EventType = "content_view.promoted"
)

// Event — запись о публикации или продвижении.
//
// Пишется один раз и отправляется в sinks (RabbitMQ, audit-таблица).
// Сам workflow события обратно не читает.
type Event struct {
	ID            uuid.UUID `json:"id"`
	RunID         uuid.UUID `json:"run_id"`
	Type          EventType `json:"type"`
	ContentView   string    `json:"content_view"`
	ContentViewID int       `json:"content_view_id"`
	VersionID     int       `json:"version_id"`

	// EnvironmentID и Environment заполнены только для EventTypePromoted.
	EnvironmentID int    `json:"environment_id,omitempty"`
	Environment   string `json:"environment,omitempty"`

	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewPublishedEvent создаёт событие публикации.
func NewPublishedEvent(runID uuid.UUID, view ContentView, versionID int, description string, at time.Time) Event {
	return Event{
		ID:            uuid.New(),
		RunID:         runID,
		Type:          EventTypePublished,
		ContentView:   view.Name,
		ContentViewID: view.ID,
		VersionID:     versionID,
		Description:   description,
		Timestamp:     at,
	}
}

// NewPromotedEvent создаёт событие продвижения в окружение.
func NewPromotedEvent(runID uuid.UUID, view ContentView, versionID int, env Environment, description string, at time.Time) Event {
	return Event{
		ID:            uuid.New(),
		RunID:         runID,
		Type:          EventTypePromoted,
		ContentView:   view.Name,
		ContentViewID: view.ID,
		VersionID:     versionID,
		EnvironmentID: env.ID,
		Environment:   env.Name,
		Description:   description,
		Timestamp:     at,
	}
}
