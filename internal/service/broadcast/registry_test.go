package broadcast

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudfiles/internal/domain/models"
)

type frame struct {
	event string
	data  string
}

// recordingTransport remembers every frame written to it
type recordingTransport struct {
	mu      sync.Mutex
	frames  []frame
	failOn  string
	block   chan struct{}
	sendErr error
}

func (t *recordingTransport) Send(event string, data []byte) error {
	if t.block != nil && event != string(models.EventConnected) {
		<-t.block
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failOn != "" && event == t.failOn {
		return t.sendErr
	}
	t.frames = append(t.frames, frame{event: event, data: string(data)})
	return nil
}

func (t *recordingTransport) events() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.frames))
	for _, f := range t.frames {
		out = append(out, f.event)
	}
	return out
}

func (t *recordingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func TestSubscribe_SendsHandshakeFirst(t *testing.T) {
	registry := NewRegistry(testLogger())
	tr := &recordingTransport{}

	sub, err := registry.Subscribe(tr, strPtr("f1"))
	require.NoError(t, err)
	defer registry.Unsubscribe(sub.ID())

	require.Equal(t, 1, tr.count())
	assert.Equal(t, "connected", tr.frames[0].event)

	var payload models.ConnectedPayload
	require.NoError(t, json.Unmarshal([]byte(tr.frames[0].data), &payload))
	assert.Equal(t, sub.ID(), payload.ClientID)
	require.NotNil(t, payload.FolderID)
	assert.Equal(t, "f1", *payload.FolderID)
	assert.Equal(t, 1, registry.Count())
}

func TestSubscribe_HandshakeFailureRegistersNothing(t *testing.T) {
	registry := NewRegistry(testLogger())
	tr := &recordingTransport{failOn: "connected", sendErr: errors.New("closed")}

	_, err := registry.Subscribe(tr, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, registry.Count())
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	registry := NewRegistry(testLogger())
	sub, err := registry.Subscribe(&recordingTransport{}, nil)
	require.NoError(t, err)

	registry.Unsubscribe(sub.ID())
	registry.Unsubscribe(sub.ID())
	registry.Unsubscribe("client_unknown")

	assert.Equal(t, 0, registry.Count())
	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after Unsubscribe")
	}
}

func TestShutdown_ClosesEverything(t *testing.T) {
	registry := NewRegistry(testLogger())
	a, err := registry.Subscribe(&recordingTransport{}, nil)
	require.NoError(t, err)
	b, err := registry.Subscribe(&recordingTransport{}, strPtr("f1"))
	require.NoError(t, err)

	registry.Shutdown()

	assert.Equal(t, 0, registry.Count())
	for _, sub := range []*Subscription{a, b} {
		select {
		case <-sub.Done():
		default:
			t.Fatalf("subscription %s still open after Shutdown", sub.ID())
		}
	}

	_, err = registry.Subscribe(&recordingTransport{}, nil)
	assert.ErrorIs(t, err, ErrRegistryClosed)
}
