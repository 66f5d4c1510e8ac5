// Package broadcast tracks live client connections and fans domain events
// out to them.
package broadcast

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"cloudfiles/internal/domain/models"
)

// DefaultQueueSize bounds the events buffered for one slow client.
// A client that falls this far behind is evicted.
const DefaultQueueSize = 256

// ErrRegistryClosed is returned by Subscribe after Shutdown
var ErrRegistryClosed = errors.New("subscription registry closed")

// Transport writes one framed event to a connected client.
// Send is only ever called from one goroutine at a time per subscription.
type Transport interface {
	Send(event string, data []byte) error
}

type message struct {
	event string
	data  []byte
}

// Subscription is one live connection
type Subscription struct {
	id        string
	scope     *string
	transport Transport

	outbox  chan message
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// ID returns the client ID sent in the connected handshake
func (s *Subscription) ID() string { return s.id }

// Scope returns the folder the subscription watches (nil = whole tree)
func (s *Subscription) Scope() *string { return s.scope }

// Done is closed when the subscription ends, by Unsubscribe or eviction
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Wait blocks until the subscription's writer has stopped. Connection
// handlers call it before returning so no write outlives the request.
func (s *Subscription) Wait() {
	<-s.stopped
}

// offer queues an event without blocking; false means the queue is full
func (s *Subscription) offer(m message) bool {
	select {
	case <-s.done:
		return true
	default:
	}
	select {
	case s.outbox <- m:
		return true
	default:
		return false
	}
}

func (s *Subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// Registry holds the live subscriptions
type Registry struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	closed    bool
	queueSize int
	logger    *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		subs:      make(map[string]*Subscription),
		queueSize: DefaultQueueSize,
		logger:    logger,
	}
}

// Subscribe registers a transport. The connected handshake is written before
// the subscription becomes visible, so it always precedes broadcast events.
func (r *Registry) Subscribe(transport Transport, scope *string) (*Subscription, error) {
	sub := &Subscription{
		id:        "client_" + uuid.NewString(),
		scope:     scope,
		transport: transport,
		outbox:    make(chan message, r.queueSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	handshake, err := json.Marshal(models.ConnectedPayload{ClientID: sub.id, FolderID: scope})
	if err != nil {
		return nil, fmt.Errorf("encode handshake: %w", err)
	}
	if err := transport.Send(string(models.EventConnected), handshake); err != nil {
		return nil, fmt.Errorf("send handshake: %w", err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	r.subs[sub.id] = sub
	count := len(r.subs)
	r.mu.Unlock()

	go r.pump(sub)

	r.logger.Debug("client subscribed", "client_id", sub.id, "folder_id", scope, "subscribers", count)
	return sub, nil
}

// Unsubscribe removes a subscription and waits until its writer has stopped.
// Unknown or already removed IDs are ignored.
func (r *Registry) Unsubscribe(id string) {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	sub.stop()
	<-sub.stopped
	r.logger.Debug("client unsubscribed", "client_id", id)
}

// Count returns the number of live subscriptions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Snapshot returns the live subscriptions at this instant
func (r *Registry) Snapshot() []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]*Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	return subs
}

// Shutdown ends every subscription and refuses new ones
func (r *Registry) Shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	subs := r.subs
	r.subs = make(map[string]*Subscription)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	for _, sub := range subs {
		<-sub.stopped
	}
}

// evict removes a subscription whose client can no longer keep up
func (r *Registry) evict(sub *Subscription, reason error) {
	r.mu.Lock()
	if current, ok := r.subs[sub.id]; ok && current == sub {
		delete(r.subs, sub.id)
	}
	r.mu.Unlock()

	sub.stop()
	r.logger.Warn("client evicted", "client_id", sub.id, "error", reason)
}

// pump writes queued events in order until the subscription ends
func (r *Registry) pump(sub *Subscription) {
	defer close(sub.stopped)

	for {
		select {
		case <-sub.done:
			return
		case m := <-sub.outbox:
			if err := sub.transport.Send(m.event, m.data); err != nil {
				r.evict(sub, err)
				return
			}
		}
	}
}
