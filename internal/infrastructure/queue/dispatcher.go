package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/api/metrics"
	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes account events to a fixed set of workers using consistent
// hashing on the account id, guaranteeing per-account event ordering.
type Dispatcher struct {
	workers   []chan domain.AccountEvent
	publisher ports.AccountEventPublisher
	log       zerolog.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.AccountEventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.AccountEvent, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AccountEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func(id int, ch <-chan domain.AccountEvent) {
			defer d.wg.Done()
			d.runWorker(ctx, id, ch)
		}(i, ch)
	}
}

// Close stops accepting events and waits until the workers have published
// what is already queued, or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue hands an event to the worker responsible for its account. It never
// blocks: when that worker's buffer is full, or after Close, the event is
// dropped and counted.
func (d *Dispatcher) Enqueue(event domain.AccountEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.shardIndex(event.AccountID)
	if d.closed {
		metrics.AccountEventsPublishedTotal.WithLabelValues(string(event.Type), "dropped").Inc()
		d.log.Warn().Str("event_type", string(event.Type)).Msg("dispatcher closed, dropping event")
		return
	}
	select {
	case d.workers[idx] <- event:
		metrics.AccountEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AccountEventsPublishedTotal.WithLabelValues(string(event.Type), "dropped").Inc()
		d.log.Warn().
			Str("event_type", string(event.Type)).
			Str("account_id", event.AccountID).
			Int("worker_id", idx).
			Msg("event queue full, dropping event")
	}
}

// EnqueueBatch enqueues multiple events preserving per-account ordering.
func (d *Dispatcher) EnqueueBatch(events []domain.AccountEvent) {
	for _, e := range events {
		d.Enqueue(e)
	}
}

// shardIndex maps an account id deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AccountEvent) {
	workerLabel := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AccountEventsQueueDepth.WithLabelValues(workerLabel).Set(float64(len(ch)))

			start := time.Now()
			err := d.publisher.Publish(ctx, event)
			metrics.AccountEventPublishDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.AccountEventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
				d.log.Error().Err(err).
					Str("event_type", string(event.Type)).
					Str("account_id", event.AccountID).
					Int("worker_id", id).
					Msg("event publishing failed")
				continue
			}
			metrics.AccountEventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
		}
	}
}
