package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager struct {
	mock.Mock
}

func (m *mockCacheManager) Get(ctx context.Context, key string) (string, bool) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1)
}

func (m *mockCacheManager) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager) Delete(ctx context.Context, keys ...string) { m.Called(ctx, keys) }
func (m *mockCacheManager) Flush(ctx context.Context)                  { m.Called(ctx) }
func (m *mockCacheManager) ItemCount() int                             { return m.Called().Int(0) }

func fakeLoader(calls *int) func(context.Context, string) (string, error) {
	return func(_ context.Context, in string) (string, error) {
		*calls++
		if in == "" {
			return "", errors.New("empty input")
		}
		return "decl:" + in, nil
	}
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	m := &mockCacheManager{}
	calls := 0
	rtc := NewReadThroughCache[string, string](m, fakeLoader(&calls), true)

	v, err := rtc.Get(context.Background(), "k", "a", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "decl:a", v)
	require.Equal(t, 1, calls)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_Hit(t *testing.T) {
	ctx := context.Background()
	m := &mockCacheManager{}
	m.On("Get", ctx, "k").Return("cached", true).Once()

	calls := 0
	rtc := NewReadThroughCache[string, string](m, fakeLoader(&calls), false)

	v, err := rtc.Get(ctx, "k", "a", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", v)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissStores(t *testing.T) {
	ctx := context.Background()
	m := &mockCacheManager{}
	m.On("Get", ctx, "k").Return("", false).Once()
	m.On("Set", ctx, "k", "decl:a", time.Minute).Once()

	calls := 0
	rtc := NewReadThroughCache[string, string](m, fakeLoader(&calls), false)

	v, err := rtc.Get(ctx, "k", "a", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "decl:a", v)
	require.Equal(t, 1, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	m := &mockCacheManager{}
	m.On("Get", ctx, "k").Return("", false).Once()

	calls := 0
	rtc := NewReadThroughCache[string, string](m, fakeLoader(&calls), false)

	_, err := rtc.Get(ctx, "k", "", time.Minute)
	require.Error(t, err)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInMemoryCacheManager(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[int]("test", DefaultExpiration, DefaultCleanupInterval)

	_, ok := c.Get(ctx, "a")
	require.False(t, ok)

	c.Set(ctx, "a", 1, 0)
	c.Set(ctx, "b", 2, time.Minute)
	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, c.ItemCount())

	c.Delete(ctx, "a")
	_, ok = c.Get(ctx, "a")
	require.False(t, ok)

	c.Flush(ctx)
	require.Zero(t, c.ItemCount())
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "short", "v", time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "short")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
