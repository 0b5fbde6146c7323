package broadcast

import "context"

// Event types delivered downstream. Consumers receive at-least-once
// and must dedup on (entity id, event type, occurred_at).
const (
	EventGeofenceEnter      = "geofence.enter"
	EventGeofenceExit       = "geofence.exit"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderOverdue       = "order.overdue"
)

// Broadcaster delivers a single event to the downstream transport.
type Broadcaster interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Publisher is what the services see: enqueue and forget. Delivery
// failures are logged by the dispatcher and never surface to the
// request path.
type Publisher interface {
	Enqueue(eventType string, payload any)
}

// NopBroadcaster drops every event. Used when no broker is configured,
// typically in local development.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(_ context.Context, _ string, _ any) error {
	return nil
}
