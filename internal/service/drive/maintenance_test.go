package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	kept := env.upload(t, "kept.pdf", nil)
	lost := env.upload(t, "lost.pdf", nil)

	// blob vanished behind the record's back
	require.NoError(t, env.blobs.Delete(ctx, lost.StorageKey))

	maint := NewMaintenance(env.folderRepo, env.fileRepo, env.blobs, env.txManager, env.logger)

	report, err := maint.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	require.Len(t, report.Dangling, 1)
	assert.Equal(t, lost.ID, report.Dangling[0].ID)
	assert.Equal(t, 0, report.Pruned)

	report, err = maint.Reconcile(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pruned)

	_, err = env.files.GetFile(ctx, lost.ID)
	assert.Error(t, err)
	_, err = env.files.GetFile(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestVerifyPaths(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.mkdir(t, "a", nil)
	b := env.mkdir(t, "b", &a.ID)
	c := env.mkdir(t, "c", &b.ID)

	maint := NewMaintenance(env.folderRepo, env.fileRepo, env.blobs, env.txManager, env.logger)

	report, err := maint.VerifyPaths(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Empty(t, report.Violations)

	// corrupt a middle node directly
	require.NoError(t, env.folderRepo.UpdatePath(ctx, b.ID, "/wrong"))

	report, err = maint.VerifyPaths(ctx, false)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, b.ID, report.Violations[0].FolderID)
	assert.Equal(t, "/a/b", report.Violations[0].Expected)

	report, err = maint.VerifyPaths(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)

	paths := env.pathsByID(t)
	assert.Equal(t, "/a/b", paths[b.ID])
	assert.Equal(t, "/a/b/c", paths[c.ID])
}
