// Package notify dispatches fire-and-forget domain events to interested
// listeners. Delivery is best effort: a failed dispatch is logged and
// never fails the originating operation.
package notify

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is a domain notification.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

const (
	EventFeePlanAssigned = "feeplan.assigned"
	EventFeePlanUpdated  = "feeplan.updated"
	EventFeePlanRemoved  = "feeplan.removed"
	EventPaymentsCreated = "payments.generated"
)

// Dispatcher publishes events without blocking the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

type redisDispatcher struct {
	log     *zap.Logger
	client  *redis.Client
	channel string
}

// NewDispatcher returns a redis pub/sub dispatcher, or a logging no-op
// when redis is not configured.
func NewDispatcher(log *zap.Logger, client *redis.Client, channel string) Dispatcher {
	named := log.Named("notify")
	if client == nil {
		return &noopDispatcher{log: named}
	}
	return &redisDispatcher{
		log:     named,
		client:  client,
		channel: channel,
	}
}

func (d *redisDispatcher) Dispatch(ctx context.Context, event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		d.log.Warn("drop unserializable event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	go func() {
		// Detach from the request context; the caller must not wait on,
		// or be failed by, notification delivery.
		publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := d.client.Publish(publishCtx, d.channel, raw).Err(); err != nil {
			d.log.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
		}
	}()
}

type noopDispatcher struct {
	log *zap.Logger
}

func (d *noopDispatcher) Dispatch(_ context.Context, event Event) {
	d.log.Debug("event dropped, no dispatcher configured", zap.String("type", event.Type))
}
