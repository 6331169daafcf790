package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_Save(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())
	ctx := context.Background()

	t.Run("saves file successfully", func(t *testing.T) {
		content := []byte("PDF content here")

		err := fs.Save(ctx, "invoices/inv-1.pdf", content)

		require.NoError(t, err)
		saved, err := os.ReadFile(filepath.Join(tempDir, "invoices", "inv-1.pdf"))
		require.NoError(t, err)
		assert.Equal(t, content, saved)
	})

	t.Run("creates parent directories", func(t *testing.T) {
		err := fs.Save(ctx, "deep/nested/dir/file.pdf", []byte("content"))

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(tempDir, "deep", "nested", "dir", "file.pdf"))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "overwrite/file.txt", []byte("original")))
		require.NoError(t, fs.Save(ctx, "overwrite/file.txt", []byte("updated")))

		content, _ := os.ReadFile(filepath.Join(tempDir, "overwrite", "file.txt"))
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		err := fs.Save(ctx, "../outside.txt", []byte("nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "escapes base directory")
	})
}

func TestLocalFileStorage_ReadExistsDelete(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "receipts/r1.pdf", []byte("receipt")))

	t.Run("reads saved content", func(t *testing.T) {
		content, err := fs.Read(ctx, "receipts/r1.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("receipt"), content)
	})

	t.Run("exists reflects the filesystem", func(t *testing.T) {
		assert.True(t, fs.Exists(ctx, "receipts/r1.pdf"))
		assert.False(t, fs.Exists(ctx, "receipts/missing.pdf"))
	})

	t.Run("read of missing file fails", func(t *testing.T) {
		_, err := fs.Read(ctx, "receipts/missing.pdf")
		assert.Error(t, err)
	})

	t.Run("delete removes the file", func(t *testing.T) {
		require.NoError(t, fs.Delete(ctx, "receipts/r1.pdf"))
		assert.False(t, fs.Exists(ctx, "receipts/r1.pdf"))
	})

	t.Run("deleting a missing file is not an error", func(t *testing.T) {
		assert.NoError(t, fs.Delete(ctx, "receipts/r1.pdf"))
	})
}

func TestLocalFileStorage_GetFullPath(t *testing.T) {
	fs := NewLocalFileStorage("/data/files", zap.NewNop())
	assert.Equal(t, filepath.Join("/data/files", "invoices", "x.pdf"), fs.GetFullPath("invoices/x.pdf"))
}
