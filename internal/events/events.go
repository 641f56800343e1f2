// Package events publishes widget UI event hooks to JetStream for
// analytics consumers. The hooks are observable side channels only; no
// widget logic depends on them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	natsclient "github.com/vybrant-care/chat-widget/internal/nats"
	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/pkg/logger"
	"github.com/vybrant-care/chat-widget/pkg/metrics"
)

const (
	// StreamName is the name of the widget events stream.
	StreamName = "WIDGET_EVENTS"

	// SubjectPrefix is the prefix for all widget event subjects.
	SubjectPrefix = "widget"
)

// Publisher records widget events. Implementations are best-effort.
type Publisher interface {
	Publish(ctx context.Context, event *model.WidgetEvent) error
}

// StreamPublisher publishes widget events to a JetStream stream.
type StreamPublisher struct {
	client *natsclient.Client
	logger *logger.Logger
}

// NewStreamPublisher creates a publisher on the given client.
func NewStreamPublisher(client *natsclient.Client, log *logger.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, logger: log}
}

// EnsureStream ensures the widget events stream exists.
func (p *StreamPublisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Widget UI events for analytics",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject for one event.
func EventSubject(sessionID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, sessionID, eventType)
}

// Publish publishes one widget event.
func (p *StreamPublisher) Publish(ctx context.Context, event *model.WidgetEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		metrics.WidgetEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := EventSubject(event.SessionID, event.Type)
	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		metrics.WidgetEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to publish event: %w", err)
	}

	metrics.WidgetEventsTotal.WithLabelValues(string(event.Type), "success").Inc()
	return nil
}
