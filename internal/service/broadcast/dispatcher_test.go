package broadcast

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudfiles/internal/domain/models"
)

func waitForFrames(t *testing.T, tr *recordingTransport, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return tr.count() >= n }, time.Second, 5*time.Millisecond)
}

func TestPublish_AudienceScoping(t *testing.T) {
	registry := NewRegistry(testLogger())
	dispatcher := NewDispatcher(registry, testLogger())

	root := &recordingTransport{}
	inF1 := &recordingTransport{}
	inF2 := &recordingTransport{}
	for tr, scope := range map[*recordingTransport]*string{root: nil, inF1: strPtr("f1"), inF2: strPtr("f2")} {
		sub, err := registry.Subscribe(tr, scope)
		require.NoError(t, err)
		defer registry.Unsubscribe(sub.ID())
	}

	// file added to f1: root observer and f1 watcher, not the sibling
	dispatcher.Publish(models.EventFileAdded, models.File{ID: "x"}, models.Folders(strPtr("f1")))
	// root-level item: only the unscoped observer
	dispatcher.Publish(models.EventFolderAdded, models.Folder{ID: "y"}, models.Folders(nil))
	// moved from f1 to f2: both folder watchers
	dispatcher.Publish(models.EventFileMoved, models.FileMoved{ID: "x"}, models.Folders(strPtr("f1"), strPtr("f2")))
	// marker everyone receives, so the asserts below see a settled stream
	dispatcher.Publish("sync", struct{}{}, models.Everyone())

	waitForFrames(t, root, 5)
	waitForFrames(t, inF1, 4)
	waitForFrames(t, inF2, 3)

	assert.Equal(t, []string{"connected", "file:added", "folder:added", "file:moved", "sync"}, root.events())
	assert.Equal(t, []string{"connected", "file:added", "file:moved", "sync"}, inF1.events())
	assert.Equal(t, []string{"connected", "file:moved", "sync"}, inF2.events())
}

func TestPublish_PreservesOrder(t *testing.T) {
	registry := NewRegistry(testLogger())
	dispatcher := NewDispatcher(registry, testLogger())
	tr := &recordingTransport{}
	sub, err := registry.Subscribe(tr, nil)
	require.NoError(t, err)
	defer registry.Unsubscribe(sub.ID())

	const n = 100
	for i := 0; i < n; i++ {
		dispatcher.Publish(models.EventKind(fmt.Sprintf("e%d", i)), i, models.Everyone())
	}
	waitForFrames(t, tr, n+1)

	events := tr.events()
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("e%d", i), events[i+1])
	}
}

func TestPublish_FailingTransportIsEvicted(t *testing.T) {
	registry := NewRegistry(testLogger())
	dispatcher := NewDispatcher(registry, testLogger())

	broken := &recordingTransport{failOn: "file:added", sendErr: errors.New("broken pipe")}
	healthy := &recordingTransport{}
	bad, err := registry.Subscribe(broken, nil)
	require.NoError(t, err)
	good, err := registry.Subscribe(healthy, nil)
	require.NoError(t, err)
	defer registry.Unsubscribe(good.ID())

	dispatcher.Publish(models.EventFileAdded, models.File{ID: "x"}, models.Everyone())

	waitForFrames(t, healthy, 2)
	select {
	case <-bad.Done():
	case <-time.After(time.Second):
		t.Fatal("failing subscription was not evicted")
	}
	bad.Wait()
	assert.Equal(t, 1, registry.Count())

	// later events keep flowing to the healthy client
	dispatcher.Publish(models.EventFileDeleted, models.Deleted{ID: "x"}, models.Everyone())
	waitForFrames(t, healthy, 3)
}

func TestPublish_SlowClientEvictedWhenQueueFull(t *testing.T) {
	registry := NewRegistry(testLogger())
	registry.queueSize = 2
	dispatcher := NewDispatcher(registry, testLogger())

	slow := &recordingTransport{block: make(chan struct{})}
	sub, err := registry.Subscribe(slow, nil)
	require.NoError(t, err)

	// one event held by the blocked writer, two queued, the fourth overflows
	for i := 0; i < 4; i++ {
		dispatcher.Publish(models.EventFileAdded, i, models.Everyone())
	}

	require.Eventually(t, func() bool { return registry.Count() == 0 }, time.Second, 5*time.Millisecond)
	close(slow.block)
	sub.Wait()
}

func TestPublish_NoSubscribers(t *testing.T) {
	dispatcher := NewDispatcher(NewRegistry(testLogger()), testLogger())
	assert.NotPanics(t, func() {
		dispatcher.Publish(models.EventFolderDeleted, models.Deleted{ID: "x"}, models.Everyone())
	})
}
