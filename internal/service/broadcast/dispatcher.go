package broadcast

import (
	"errors"
	"log/slog"

	"github.com/goccy/go-json"

	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/services"
)

var errQueueFull = errors.New("outbound queue full")

// Dispatcher delivers domain events to the subscriptions of a Registry.
// Delivery is best effort: failures evict the client and never reach the publisher.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

var _ services.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher over registry
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

// Publish encodes payload once and queues it for every subscription the
// audience includes.
func (d *Dispatcher) Publish(kind models.EventKind, payload interface{}, audience models.Audience) {
	data, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("encode event", "event", kind, "error", err)
		return
	}

	delivered := 0
	for _, sub := range d.registry.Snapshot() {
		if !audience.Includes(sub.Scope()) {
			continue
		}
		if !sub.offer(message{event: string(kind), data: data}) {
			d.registry.evict(sub, errQueueFull)
			continue
		}
		delivered++
	}

	d.logger.Debug("event published", "event", kind, "recipients", delivered)
}
