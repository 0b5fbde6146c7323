package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureBroadcaster struct {
	mu      sync.Mutex
	events  []string
	err     error
	blockCh chan struct{}
}

func (b *captureBroadcaster) Publish(_ context.Context, eventType string, _ any) error {
	if b.blockCh != nil {
		<-b.blockCh
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	return b.err
}

func (b *captureBroadcaster) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	capture := &captureBroadcaster{}
	d := NewDispatcher(capture, zerolog.Nop(), 16)

	d.Enqueue(EventGeofenceEnter, nil)
	d.Enqueue(EventGeofenceExit, nil)
	d.Enqueue(EventOrderStatusChanged, nil)
	d.Close()

	require.Equal(t, []string{EventGeofenceEnter, EventGeofenceExit, EventOrderStatusChanged}, capture.published())
}

func TestDispatcher_PublishErrorDoesNotStopWorker(t *testing.T) {
	capture := &captureBroadcaster{err: errors.New("broker gone")}
	d := NewDispatcher(capture, zerolog.Nop(), 16)

	d.Enqueue(EventOrderStatusChanged, nil)
	d.Enqueue(EventOrderOverdue, nil)
	d.Close()

	assert.Len(t, capture.published(), 2)
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	capture := &captureBroadcaster{blockCh: make(chan struct{})}
	d := NewDispatcher(capture, zerolog.Nop(), 1)

	// First event may be picked up by the worker, which then blocks in
	// Publish; keep enqueueing until the buffered slot is full too.
	for i := 0; i < 10; i++ {
		d.Enqueue(EventGeofenceEnter, i)
	}
	// Every further enqueue hits the full-queue branch and returns
	// immediately instead of blocking the caller.
	done := make(chan struct{})
	go func() {
		d.Enqueue(EventGeofenceEnter, "overflow")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(capture.blockCh)
	d.Close()

	// At most the in-flight event plus the buffered one got through.
	assert.LessOrEqual(t, len(capture.published()), 2)
	assert.NotEmpty(t, capture.published())
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(NopBroadcaster{}, zerolog.Nop(), 4)
	d.Enqueue(EventGeofenceExit, nil)
	d.Close()
	d.Close()
}
