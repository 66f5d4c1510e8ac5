package sse

import (
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamFraming(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := NewStream(rec)
	require.NoError(t, err)

	require.NoError(t, stream.Send("file:added", []byte(`{"id":"f1"}`)))
	require.NoError(t, stream.WriteKeepAlive())

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: file:added\ndata: {\"id\":\"f1\"}\n\n: keepalive\n\n", rec.Body.String())

	stream.Close()
	assert.ErrorIs(t, stream.Send("file:deleted", []byte(`{}`)), ErrStreamClosed)
	assert.ErrorIs(t, stream.WriteKeepAlive(), ErrStreamClosed)
}

type countingWriter struct {
	pings  atomic.Int32
	failAt int32
}

func (w *countingWriter) WriteKeepAlive() error {
	if n := w.pings.Add(1); w.failAt > 0 && n >= w.failAt {
		return errors.New("broken pipe")
	}
	return nil
}

func TestTickerKeepAlive(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("pings until stopped", func(t *testing.T) {
		w := &countingWriter{}
		k := NewTickerKeepAlive(5 * time.Millisecond)
		k.Start(w, logger)

		require.Eventually(t, func() bool { return w.pings.Load() >= 3 }, time.Second, time.Millisecond)
		k.Stop()
		k.Stop()

		stopped := w.pings.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, stopped, w.pings.Load())
	})

	t.Run("ends on write failure", func(t *testing.T) {
		w := &countingWriter{failAt: 2}
		k := NewTickerKeepAlive(5 * time.Millisecond)
		done := k.Start(w, logger)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("keepalive did not stop after failed write")
		}
		k.Stop()
	})
}

func TestNewConfig(t *testing.T) {
	assert.Equal(t, DefaultConfig().KeepAliveInterval, NewConfig(0).KeepAliveInterval)
	assert.Equal(t, 3*time.Second, NewConfig(3*time.Second).KeepAliveInterval)
}
