package artifact

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingLoader struct {
	loads atomic.Int32
	err   atomic.Pointer[error]
}

func (l *countingLoader) Load(_ context.Context, version string) (*Bundle, error) {
	n := l.loads.Add(1)
	if errp := l.err.Load(); errp != nil {
		return nil, *errp
	}
	return &Bundle{Version: version, Token: string(rune('a' + n))}, nil
}

func (l *countingLoader) fail(err error) { l.err.Store(&err) }

func TestCache_GetLoadsOnce(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader)

	a, err := cache.Get(context.Background(), "v1")
	require.NoError(t, err)
	b, err := cache.Get(context.Background(), "v1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.EqualValues(t, 1, loader.loads.Load())
}

func TestCache_ConcurrentGet(t *testing.T) {
	defer goleak.VerifyNone(t)

	loader := &countingLoader{}
	cache := NewCache(loader)

	const workers = 32
	var wg sync.WaitGroup
	results := make([]*Bundle, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := cache.Get(context.Background(), "v1")
			if err == nil {
				results[i] = b
			}
		}()
	}
	wg.Wait()

	for _, b := range results {
		require.NotNil(t, b)
		assert.Equal(t, "v1", b.Version)
	}
	// redundant loads are allowed, but the cache settles on one bundle
	settled, err := cache.Get(context.Background(), "v1")
	require.NoError(t, err)
	again, err := cache.Get(context.Background(), "v1")
	require.NoError(t, err)
	assert.Same(t, settled, again)
	assert.LessOrEqual(t, loader.loads.Load(), int32(workers))
}

func TestCache_FailedLoadNotCached(t *testing.T) {
	loader := &countingLoader{}
	loader.fail(errors.New("store down"))
	cache := NewCache(loader)

	_, err := cache.Get(context.Background(), "v1")
	require.Error(t, err)
	assert.Empty(t, cache.Loaded())

	loader.err.Store(nil)
	_, err = cache.Get(context.Background(), "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.loads.Load())
}

func TestCache_InvalidateAndReload(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader)
	ctx := context.Background()

	first, err := cache.Get(ctx, "v1")
	require.NoError(t, err)

	cache.Invalidate("v1")
	second, err := cache.Get(ctx, "v1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	reloaded, err := cache.Reload(ctx, "v1")
	require.NoError(t, err)
	current, err := cache.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Same(t, reloaded, current)

	loader.fail(errors.New("corrupt"))
	_, err = cache.Reload(ctx, "v1")
	require.Error(t, err)
	kept, err := cache.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Same(t, reloaded, kept)
}

func TestCache_Loaded(t *testing.T) {
	cache := NewCache(&countingLoader{})
	ctx := context.Background()
	for _, v := range []string{"v2", "v1", ""} {
		_, err := cache.Get(ctx, v)
		require.NoError(t, err)
	}

	loaded := cache.Loaded()
	require.Len(t, loaded, 3)
	assert.Equal(t, "", loaded[0].Version)
	assert.Equal(t, "v1", loaded[1].Version)
	assert.Equal(t, "v2", loaded[2].Version)
}
