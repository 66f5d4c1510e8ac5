package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/repository/memory"
)

type publishedEvent struct {
	kind     models.EventKind
	payload  interface{}
	audience models.Audience
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(kind models.EventKind, payload interface{}, audience models.Audience) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{kind: kind, payload: payload, audience: audience})
}

func (p *recordingPublisher) kinds() []models.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []models.EventKind{}
	for _, e := range p.events {
		out = append(out, e.kind)
	}
	return out
}

func (p *recordingPublisher) last() publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type recordingActivity struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingActivity) Record(ctx context.Context, action string, attrs models.ActivityAttributes) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

// memBlobs is an in-memory BlobStorage with switchable failures
type memBlobs struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	seq        int
	failStore  bool
	failDelete bool
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: make(map[string][]byte)} }

func (b *memBlobs) Backend() string { return "memory" }

func (b *memBlobs) Store(ctx context.Context, name string, content io.Reader, size int64, contentType string) (string, error) {
	if b.failStore {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	key := fmt.Sprintf("%d-%s", b.seq, name)
	b.blobs[key] = data
	return key, nil
}

func (b *memBlobs) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	if b.failDelete {
		return errors.New("network unreachable")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

func (b *memBlobs) Exists(ctx context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok, nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

type testEnv struct {
	folders    services.FolderService
	files      services.FileService
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	txManager  repositories.TransactionManager
	blobs      *memBlobs
	events     *recordingPublisher
	activity   *recordingActivity
	logger     *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		folderRepo: memory.NewFolderRepository(store),
		fileRepo:   memory.NewFileRepository(store),
		txManager:  memory.NewTransactionManager(store),
		blobs:      newMemBlobs(),
		events:     &recordingPublisher{},
		activity:   &recordingActivity{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	env.folders = NewFolderService(env.folderRepo, env.fileRepo, env.txManager, env.events, env.activity, env.logger)
	env.files = NewFileService(env.fileRepo, env.folderRepo, env.blobs, config.DefaultUploadPolicy(), env.events, env.activity, env.logger)
	return env
}

func (e *testEnv) mkdir(t *testing.T, name string, parentID *string) *models.FolderSummary {
	t.Helper()
	f, err := e.folders.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return f
}

func (e *testEnv) upload(t *testing.T, name string, folderID *string) *models.File {
	t.Helper()
	f, err := e.files.UploadFile(context.Background(), &services.UploadFileRequest{
		Name:        name,
		ContentType: "application/pdf",
		Size:        4,
		Content:     bytes.NewReader([]byte("%PDF")),
		FolderID:    folderID,
	})
	require.NoError(t, err)
	return f
}

// pathsByID returns the stored path of every folder
func (e *testEnv) pathsByID(t *testing.T) map[string]string {
	t.Helper()
	all, err := e.folderRepo.ListAll(context.Background())
	require.NoError(t, err)
	out := make(map[string]string, len(all))
	for _, f := range all {
		out[f.ID] = f.Path
	}
	return out
}

func strPtr(s string) *string { return &s }
