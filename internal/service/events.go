package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

const (
	TopicUserEvents    = "user_events"
	TopicProductEvents = "product_events"
)

// Publisher is satisfied by mykafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish is best effort: a broker outage never fails the request.
func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	event["at"] = time.Now().UTC().Format(time.RFC3339)
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
