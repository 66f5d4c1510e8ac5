package sse

import (
	"log/slog"
	"time"
)

// KeepAliveWriter writes one keepalive ping to a connection.
// SSE streams write a comment line, WebSocket connections a ping frame.
type KeepAliveWriter interface {
	WriteKeepAlive() error
}

// TickerKeepAlive pings a connection at a fixed interval until stopped
// or until a ping fails.
type TickerKeepAlive struct {
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

// NewTickerKeepAlive creates a keepalive for the given interval
func NewTickerKeepAlive(interval time.Duration) *TickerKeepAlive {
	return &TickerKeepAlive{
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start pings writer in the background. The returned channel closes when
// pinging ends, either after Stop or after a failed write.
func (k *TickerKeepAlive) Start(writer KeepAliveWriter, logger *slog.Logger) <-chan struct{} {
	go func() {
		defer close(k.stopped)

		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					logger.Debug("keep-alive write failed, stopping", "error", err)
					return
				}
			case <-k.done:
				return
			}
		}
	}()

	return k.stopped
}

// Stop ends pinging and waits for the goroutine launched by Start.
// Safe to call twice.
func (k *TickerKeepAlive) Stop() {
	select {
	case <-k.done:
	default:
		close(k.done)
	}
	<-k.stopped
}
