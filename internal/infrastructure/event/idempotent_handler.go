package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/bookloop/backend/internal/domain/shared"
)

// DedupKeyer lets a handler choose its own deduplication key for an
// event. The reputation handler keys by loan id so a replayed
// settlement under a fresh event id is still recognized; handlers
// without an opinion default to the event id.
type DedupKeyer interface {
	DedupKey(event shared.DomainEvent) string
}

// IdempotencyMetrics tracks idempotency-related statistics
type IdempotencyMetrics struct {
	EventsProcessed atomic.Int64
	EventsDuplicate atomic.Int64
	EventsFailed    atomic.Int64
}

// IdempotentHandler wraps an EventHandler with exactly-once semantics
// per dedup key, backed by an IdempotencyStore.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics *IdempotencyMetrics
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
) *IdempotentHandler {
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  logger,
		metrics: &IdempotencyMetrics{},
	}
}

// EventTypes returns the event types this handler is interested in
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// dedupKey resolves the deduplication key for an event
func (h *IdempotentHandler) dedupKey(event shared.DomainEvent) string {
	if keyer, ok := h.handler.(DedupKeyer); ok {
		return keyer.DedupKey(event)
	}
	return event.EventID().String()
}

// Handle processes the event, skipping keys seen before
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	key := h.dedupKey(event)

	isNew, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	if err != nil {
		// Better to risk duplicate processing than to drop events.
		h.logger.Warn("failed to check idempotency, processing anyway",
			zap.String("dedup_key", key),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.metrics.EventsDuplicate.Add(1)
		h.logger.Debug("duplicate event detected, skipping",
			zap.String("dedup_key", key),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.EventsFailed.Add(1)
		h.logger.Error("event handler failed",
			zap.String("dedup_key", key),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		// The key stays marked; it expires after the TTL, which
		// doubles as a retry cooldown.
		return err
	}

	h.metrics.EventsProcessed.Add(1)
	return nil
}

// Metrics returns the counters for this handler
func (h *IdempotentHandler) Metrics() *IdempotencyMetrics {
	return h.metrics
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
