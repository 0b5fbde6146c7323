package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

type queuedEvent struct {
	eventType string
	payload   any
}

// Dispatcher decouples event delivery from the request path. Events go
// into a bounded queue drained by a single worker; when the queue is
// full the event is dropped and logged rather than blocking the caller.
type Dispatcher struct {
	broadcaster Broadcaster
	log         zerolog.Logger
	queue       chan queuedEvent
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

func NewDispatcher(b Broadcaster, log zerolog.Logger, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	d := &Dispatcher{
		broadcaster: b,
		log:         log,
		queue:       make(chan queuedEvent, bufferSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) Enqueue(eventType string, payload any) {
	select {
	case d.queue <- queuedEvent{eventType: eventType, payload: payload}:
	default:
		d.log.Warn().Str("event_type", eventType).Msg("broadcast queue full, event dropped")
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.broadcaster.Publish(ctx, ev.eventType, ev.payload); err != nil {
			d.log.Error().Err(err).Str("event_type", ev.eventType).Msg("broadcast publish failed")
		}
		cancel()
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
