package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/cvpromote/internal/domain"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	event := domain.NewPromotedEvent(uuid.New(), domain.ContentView{ID: 1, Name: "app-a"}, 101,
		domain.Environment{ID: 11, Name: "dev"}, "2026-10-18 automated promotion to dev", at)

	msg := NewMessage(event)
	assert.Equal(t, event.ID.String(), msg.ID)
	assert.Equal(t, at, msg.Timestamp)
	assert.Equal(t, RoutingKey("content_view.promoted"), RoutingKeyFor(event))

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "content_view.promoted", decoded["type"])

	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "app-a", payload["content_view"])
	assert.Equal(t, "dev", payload["environment"])
	assert.Equal(t, 101.0, payload["version_id"])
}

func TestPublishedEventOmitsEnvironment(t *testing.T) {
	event := domain.NewPublishedEvent(uuid.New(), domain.ContentView{ID: 1, Name: "app-a"}, 101, "d", time.Now())

	body, err := json.Marshal(NewMessage(event))
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"environment"`)
	assert.Equal(t, RoutingKey("content_view.published"), RoutingKeyFor(event))
}

func TestWithChannel_NoChannel(t *testing.T) {
	c := &Connection{closedCh: make(chan struct{})}

	err := c.WithChannel(context.Background(), func(*amqp.Channel) error { return nil })
	assert.True(t, errors.Is(err, ErrNoChannel))
	assert.False(t, c.IsConnected())
}
