package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kedorion/careers-api/internal/config"
	"github.com/kedorion/careers-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocalStorage(t *testing.T) (*storage.LocalStorage, string) {
	t.Helper()

	dir, err := os.MkdirTemp("", "storage_test")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	return store, dir
}

func TestLocalStorage_Save(t *testing.T) {
	store, dir := newTestLocalStorage(t)
	ctx := context.Background()

	t.Run("writes file under its basename", func(t *testing.T) {
		name, err := store.Save(ctx, "cv.pdf", []byte("resume content"))
		require.NoError(t, err)
		assert.Equal(t, "cv.pdf", name)

		data, err := os.ReadFile(filepath.Join(dir, "cv.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "resume content", string(data))
	})

	t.Run("overwrites existing file of the same name", func(t *testing.T) {
		_, err := store.Save(ctx, "dup.pdf", []byte("first"))
		require.NoError(t, err)

		_, err = store.Save(ctx, "dup.pdf", []byte("second"))
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "dup.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("strips directory components from the filename", func(t *testing.T) {
		name, err := store.Save(ctx, "../../etc/passwd.pdf", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "passwd.pdf", name)

		_, err = os.Stat(filepath.Join(dir, "passwd.pdf"))
		assert.NoError(t, err)
	})
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cv.pdf", "cv.pdf"},
		{"dir/cv.pdf", "cv.pdf"},
		{"../../cv.pdf", "cv.pdf"},
		{"/absolute/path/cv.pdf", "cv.pdf"},
		{`C:\Users\me\cv.pdf`, "cv.pdf"},
		{"file with spaces.docx", "file with spaces.docx"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, storage.SanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestNewStorage(t *testing.T) {
	logger := zap.NewNop()

	t.Run("local mode", func(t *testing.T) {
		dir, err := os.MkdirTemp("", "storage_mode_test")
		require.NoError(t, err)
		t.Cleanup(func() { os.RemoveAll(dir) })

		store, err := storage.NewStorage(&config.StorageConfig{
			Mode:      "local",
			UploadDir: filepath.Join(dir, "uploads"),
		}, logger)
		require.NoError(t, err)
		assert.NotNil(t, store)

		// Upload directory is created eagerly
		_, err = os.Stat(filepath.Join(dir, "uploads"))
		assert.NoError(t, err)
	})

	t.Run("cloud mode without connection string fails", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "cloud"}, logger)
		assert.Error(t, err)
	})

	t.Run("unsupported mode fails", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, logger)
		assert.Error(t, err)
	})
}
