package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/clinic-triage/internal/model"
	"github.com/jwalitptl/clinic-triage/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/messaging"
	"github.com/jwalitptl/clinic-triage/pkg/metrics"
)

type EventRelayConfig struct {
	BufferSize     int
	Channel        string
	RetryAttempts  int
	RetryDelay     time.Duration
	PublishTimeout time.Duration
}

// EventRelay buffers triage events and publishes them to the broker from its
// own goroutine, so the triage engine never waits on the network.
type EventRelay struct {
	broker  messaging.Broker
	config  EventRelayConfig
	events  chan model.TriageEvent
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewEventRelay(
	broker messaging.Broker,
	config EventRelayConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *EventRelay {
	// Config validation instead of defaults
	if config.BufferSize <= 0 {
		panic("BufferSize must be greater than 0")
	}
	if config.Channel == "" {
		panic("Channel must not be empty")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = 5 * time.Second
	}

	return &EventRelay{
		broker:  broker,
		config:  config,
		events:  make(chan model.TriageEvent, config.BufferSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Enqueue never blocks. It returns false and counts a drop when the buffer is
// full.
func (r *EventRelay) Enqueue(event model.TriageEvent) bool {
	select {
	case r.events <- event:
		return true
	default:
		r.metrics.EventsDropped.Inc()
		return false
	}
}

// Pending returns the number of buffered events.
func (r *EventRelay) Pending() int {
	return len(r.events)
}

func (r *EventRelay) Start(ctx context.Context) {
	r.logger.Info("Starting event relay", "channel", r.config.Channel)

	for {
		select {
		case <-ctx.Done():
			r.flush()
			r.logger.Info("Shutting down event relay")
			return
		case event := <-r.events:
			if err := r.processEvent(ctx, event); err != nil {
				r.logger.Error(err, "Failed to publish event",
					"event_id", event.ID.String(),
					"event_type", string(event.Type))
			}
		}
	}
}

// flush makes one attempt at every event still buffered at shutdown.
func (r *EventRelay) flush() {
	for {
		select {
		case event := <-r.events:
			ctx, cancel := context.WithTimeout(context.Background(), r.config.PublishTimeout)
			if err := r.publish(ctx, event); err != nil {
				r.metrics.EventsFailed.Inc()
				r.logger.Error(err, "Failed to flush event", "event_id", event.ID.String())
			} else {
				r.metrics.EventsPublished.Inc()
			}
			cancel()
		default:
			return
		}
	}
}

func (r *EventRelay) processEvent(ctx context.Context, event model.TriageEvent) error {
	timer := prometheus.NewTimer(r.metrics.EventPublishLatency)
	defer timer.ObserveDuration()

	attempt := 0
	err := retry(ctx, r.config.RetryAttempts, r.config.RetryDelay, func() error {
		if attempt > 0 {
			r.metrics.EventRetries.WithLabelValues(string(event.Type)).Inc()
		}
		attempt++
		pubCtx, cancel := context.WithTimeout(ctx, r.config.PublishTimeout)
		defer cancel()
		return r.publish(pubCtx, event)
	})
	if err != nil {
		r.metrics.EventsFailed.Inc()
		return err
	}

	r.metrics.EventsPublished.Inc()
	return nil
}

func (r *EventRelay) publish(ctx context.Context, event model.TriageEvent) error {
	return r.broker.Publish(ctx, r.config.Channel, event)
}

// Helper retry function. It gives up early when ctx ends or the broker's
// circuit breaker is open.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if circuitbreaker.IsOpen(err) {
			return err
		}
		if i < attempts-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return err
			}
		}
	}
	return err
}
