package service

import (
	"context"
	"errors"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/pkg/logger"
)

// Clock returns the current time; tests substitute a fixed one
type Clock func() time.Time

// UTCClock is the production clock
func UTCClock() time.Time {
	return time.Now().UTC()
}

// notifier publishes events on a best-effort basis
type notifier struct {
	publisher events.Publisher
	metrics   metrics.StorefrontMetrics
	log       *logger.Logger
}

// emit never fails the calling operation
func (n notifier) emit(ctx context.Context, eventType, key string, payload any) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, events.New(eventType, key, payload)); err != nil {
		n.log.Warnw("Failed to publish event", "type", eventType, "key", key, "error", err)
		n.metrics.IncEventPublishFailed(eventType)
	}
}

// imageRejected records the reason of an image policy rejection
func (n notifier) imageRejected(err error) {
	var me *domain.MediaError
	if !errors.As(err, &me) {
		return
	}
	reason := "type"
	if me.TooLarge {
		reason = "size"
	}
	n.metrics.IncImageRejected(reason)
}
