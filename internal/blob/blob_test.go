package blob

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the common Store contract against one driver.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	info, err := s.Put(ctx, "recipes/1/abc.jpg", strings.NewReader("jpeg-bytes"), PutOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, int64(len("jpeg-bytes")), info.Size)
	assert.Equal(t, "image/jpeg", info.ContentType)

	head, err := s.Head(ctx, "recipes/1/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", head.ContentType)

	got, rc, err := s.Get(ctx, "recipes/1/abc.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "image/jpeg", got.ContentType)

	require.NoError(t, s.Delete(ctx, "recipes/1/abc.jpg"))
	_, err = s.Head(ctx, "recipes/1/abc.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Get(ctx, "recipes/1/abc.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "recipes/1/abc.jpg"))
}

func TestFilesystem(t *testing.T) {
	s, err := NewFilesystem(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())
	exerciseStore(t, s)
}

func TestFilesystem_RejectsTraversal(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../escape.txt", strings.NewReader("x"), PutOptions{})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	assert.Equal(t, DriverMemory, s.Driver())
	exerciseStore(t, s)
	assert.Equal(t, 0, s.Len())
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"recipes/1/a.png", "recipes/1/a.png", false},
		{"recipes//1/./a.png", "recipes/1/a.png", false},
		{"", "", true},
		{"   ", "", true},
		{"/etc/passwd", "", true},
		{"recipes/../../x", "", true},
		{`recipes\..\x`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	s, err = Open(ctx, Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	_, err = Open(ctx, Config{Driver: DriverS3})
	assert.Error(t, err, "s3 without a bucket must fail")

	_, err = Open(ctx, Config{Driver: "tape"})
	assert.Error(t, err)
}
