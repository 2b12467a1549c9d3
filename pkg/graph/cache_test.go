package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *atomic.Int32, fail *atomic.Bool) LoadFunc {
	return func(ctx context.Context, opts LoadOptions) (*Bundle, error) {
		calls.Add(1)
		if fail.Load() {
			return nil, &MissingArtifactError{Dir: opts.Dir, Missing: []string{"entities.parquet"}}
		}
		return &Bundle{Dir: opts.Dir}, nil
	}
}

func TestCache_MemoisesAndInvalidates(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	c := NewCacheWithLoader(LoadOptions{Dir: "out"}, countingLoader(&calls, &fail))

	b1, err := c.Get(context.Background())
	require.NoError(t, err)
	b2, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, b1, b2)
	assert.Equal(t, int32(1), calls.Load())

	c.Invalidate()
	b3, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, b1, b3)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "out", c.Dir())
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	fail.Store(true)
	c := NewCacheWithLoader(LoadOptions{Dir: "out"}, countingLoader(&calls, &fail))

	_, err := c.Get(context.Background())
	require.True(t, errors.Is(err, ErrMissingArtifact))

	fail.Store(false)
	b, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_WatchInvalidatesOnArtifactWrite(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	var fail atomic.Bool
	c := NewCacheWithLoader(LoadOptions{Dir: dir}, countingLoader(&calls, &fail))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	path := filepath.Join(dir, FileName(ArtifactEntities))
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(time.Now().String()), 0o644)
		time.Sleep(20 * time.Millisecond)
		_, _ = c.Get(context.Background())
		return calls.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestIsArtifactEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"parquet write", fsnotify.Event{Name: "out/entities.parquet", Op: fsnotify.Write}, true},
		{"parquet remove", fsnotify.Event{Name: "out/documents.parquet", Op: fsnotify.Remove}, true},
		{"parquet chmod", fsnotify.Event{Name: "out/entities.parquet", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "out/stats.json", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isArtifactEvent(tt.ev))
		})
	}
}

func TestCache_WatchMissingDir(t *testing.T) {
	c := NewCache(LoadOptions{Dir: filepath.Join(t.TempDir(), "missing")})
	err := c.Watch(context.Background())
	assert.Error(t, err)
}
