package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"cloudfiles/internal/handler/sse"
	"cloudfiles/internal/handler/ws"
	"cloudfiles/internal/httputil"
	"cloudfiles/internal/service/broadcast"
)

// EventsHandler serves live update subscriptions over SSE and WebSocket
type EventsHandler struct {
	registry *broadcast.Registry
	config   *sse.Config
	upgrader *websocket.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(registry *broadcast.Registry, config *sse.Config, upgrader *websocket.Upgrader, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		registry: registry,
		config:   config,
		upgrader: upgrader,
		logger:   logger,
	}
}

// Stream subscribes the caller to live events over SSE.
// folderId narrows the subscription to one folder; without it every event is sent.
// GET /api/events?folderId=
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	scope := httputil.QueryOptional(r, "folderId")

	stream, err := sse.NewStream(w)
	if err != nil {
		h.logger.Error("SSE unavailable", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	defer stream.Close()

	sub, err := h.registry.Subscribe(stream, scope)
	if err != nil {
		h.logSubscribeError(err)
		return
	}

	h.serve(sub, stream, r.Context().Done(), nil)
}

// StreamWebSocket subscribes the caller to live events over WebSocket
// GET /api/events/ws?folderId=
func (h *EventsHandler) StreamWebSocket(w http.ResponseWriter, r *http.Request) {
	scope := httputil.QueryOptional(r, "folderId")

	conn, err := ws.Upgrade(h.upgrader, w, r)
	if err != nil {
		// the upgrader has already answered the request
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub, err := h.registry.Subscribe(conn, scope)
	if err != nil {
		h.logSubscribeError(err)
		return
	}

	h.serve(sub, conn, r.Context().Done(), conn.Closed())
}

// serve keeps a subscription open until the client leaves, the registry
// drops it, or a keepalive ping fails. It returns only after the
// subscription's writer has stopped.
func (h *EventsHandler) serve(sub *broadcast.Subscription, pinger sse.KeepAliveWriter, requestDone, connClosed <-chan struct{}) {
	keepalive := sse.NewTickerKeepAlive(h.config.KeepAliveInterval)
	pingFailed := keepalive.Start(pinger, h.logger)

	h.logger.Info("client connected", "client_id", sub.ID(), "folder_id", sub.Scope(), "subscribers", h.registry.Count())

	select {
	case <-requestDone:
	case <-connClosed:
	case <-sub.Done():
	case <-pingFailed:
	}

	keepalive.Stop()
	h.registry.Unsubscribe(sub.ID())
	sub.Wait()

	h.logger.Info("client disconnected", "client_id", sub.ID(), "subscribers", h.registry.Count())
}

func (h *EventsHandler) logSubscribeError(err error) {
	if errors.Is(err, broadcast.ErrRegistryClosed) {
		h.logger.Debug("subscription refused during shutdown")
		return
	}
	h.logger.Warn("subscription failed", "error", err)
}
