package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/telemetry"
)

const (
	queueSize = 1000

	// maxResponseBodySize limits how much of a subscriber response is logged.
	maxResponseBodySize = 1024
)

// Endpoint is one configured webhook subscriber.
type Endpoint struct {
	URL        string
	Secret     string
	MaxRetries int
	Timeout    time.Duration
}

// Dispatcher fans events out to all configured endpoints from a single
// background worker. Events are dropped, not queued indefinitely, when the
// buffer fills.
type Dispatcher struct {
	endpoints []Endpoint
	client    *http.Client
	queue     chan Event
	done      chan struct{}
	closed    int32
	log       zerolog.Logger
}

// NewDispatcher creates a dispatcher for the given endpoints. Call Start to
// begin delivery.
func NewDispatcher(endpoints []Endpoint, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 10 * time.Second},
		queue:     make(chan Event, queueSize),
		done:      make(chan struct{}),
		log:       log.With().Str("component", "webhook").Logger(),
	}
}

// Start begins processing events from the queue.
func (d *Dispatcher) Start() {
	go d.worker()
}

// Close drains pending events and stops the worker. Safe to call more than
// once.
func (d *Dispatcher) Close() error {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return nil
	}
	close(d.queue)
	<-d.done
	return nil
}

// Dispatch queues an event without blocking the caller. A full queue drops
// the event and bumps the drop counter.
func (d *Dispatcher) Dispatch(event Event) {
	select {
	case d.queue <- event:
	default:
		telemetry.WebhookDropped.Inc()
		d.log.Warn().
			Str("event", event.Type).
			Str("resource", event.Resource.Kind+"/"+event.Resource.ID).
			Msg("webhook queue full, dropping event")
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for event := range d.queue {
		for _, ep := range d.endpoints {
			d.deliverWithRetry(context.Background(), ep, event)
		}
	}
}

// deliverWithRetry posts one event to one endpoint, backing off exponentially
// between failed attempts.
func (d *Dispatcher) deliverWithRetry(ctx context.Context, ep Endpoint, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.log.Error().Err(err).Str("event", event.Type).Msg("failed to marshal webhook payload")
		return
	}

	signature := ComputeHMAC(payload, ep.Secret)
	deliveryID := uuid.NewString()

	for attempt := 0; attempt <= ep.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(payload))
		if err != nil {
			d.log.Error().Err(err).Str("url", ep.URL).Msg("failed to build webhook request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Policy-Signature", signature)
		req.Header.Set("X-Policy-Event", event.Type)
		req.Header.Set("X-Policy-Delivery", deliveryID)

		reqCtx, cancel := context.WithTimeout(ctx, ep.Timeout)
		start := time.Now()
		resp, err := d.client.Do(req.WithContext(reqCtx))
		duration := time.Since(start)

		var statusCode int
		var errorMsg string
		if err != nil {
			errorMsg = err.Error()
		} else {
			statusCode = resp.StatusCode
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
			resp.Body.Close()
		}
		cancel()

		if err == nil && statusCode >= 200 && statusCode < 300 {
			telemetry.WebhookDeliveries.WithLabelValues("success").Inc()
			d.log.Debug().
				Str("url", ep.URL).
				Str("event", event.Type).
				Int("status", statusCode).
				Dur("duration", duration).
				Msg("webhook delivered")
			return
		}

		if attempt < ep.MaxRetries {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			d.log.Warn().
				Str("url", ep.URL).
				Str("event", event.Type).
				Int("status", statusCode).
				Str("error", errorMsg).
				Int("attempt", attempt+1).
				Dur("retry_in", backoff).
				Msg("webhook delivery failed, retrying")
			time.Sleep(backoff)
		} else {
			telemetry.WebhookDeliveries.WithLabelValues("failure").Inc()
			d.log.Error().
				Str("url", ep.URL).
				Str("event", event.Type).
				Int("status", statusCode).
				Str("error", errorMsg).
				Int("attempts", attempt+1).
				Msg("webhook delivery failed permanently")
		}
	}
}
